// Package suggest proposes a marketplace category from a listing title.
package suggest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const General = "General"

// Categories are the marketplace categories a suggestion may name.
var Categories = []string{"Furniture", "Books", "Appliances", "Kids", "Clothes", General}

var keywordRules = []struct {
	category string
	words    []string
}{
	{"Furniture", []string{"chair", "table", "sofa"}},
	{"Books", []string{"book", "novel"}},
	{"Appliances", []string{"oven", "fridge", "tv"}},
	{"Kids", []string{"kids", "toy", "bicycle"}},
	{"Clothes", []string{"dress", "shirt", "scarf"}},
}

// ByKeyword applies the fixed keyword rules; the first matching rule wins.
func ByKeyword(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				return rule.category
			}
		}
	}
	return General
}

// Model asks a language model to pick one of the given categories.
type Model interface {
	Categorize(ctx context.Context, title string, categories []string) (string, error)
}

type Suggester struct {
	model   Model
	timeout time.Duration
	log     *zap.Logger
}

// New returns a suggester; a nil model means keyword rules only.
func New(model Model, log *zap.Logger) *Suggester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Suggester{model: model, timeout: 5 * time.Second, log: log}
}

// Suggest never fails: model errors and answers outside Categories fall back to the rules.
func (s *Suggester) Suggest(ctx context.Context, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return General
	}
	if s.model == nil {
		return ByKeyword(title)
	}

	mctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.model.Categorize(mctx, title, Categories)
	if err != nil {
		s.log.Warn("category model failed, using keyword rules", zap.Error(err))
		return ByKeyword(title)
	}
	if c, ok := match(answer); ok {
		return c
	}
	s.log.Debug("category model answered outside the category list", zap.String("answer", answer))
	return ByKeyword(title)
}

func match(answer string) (string, bool) {
	answer = strings.Trim(strings.TrimSpace(answer), ".\"'`")
	for _, c := range Categories {
		if strings.EqualFold(answer, c) {
			return c, true
		}
	}
	return "", false
}
