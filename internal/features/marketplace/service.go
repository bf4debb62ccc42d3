package marketplace

import (
	"context"
	"strings"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
	"github.com/skyon-community/skyon-backend/internal/suggest"
)

const maxSimilar = 2

type Service struct {
	*crud.Service[*Listing]
	suggester *suggest.Suggester
}

func NewService(deps crud.Deps, suggester *suggest.Suggester) *Service {
	if suggester == nil {
		suggester = suggest.New(nil, deps.Log)
	}
	return &Service{
		Service: crud.NewService[*Listing](deps, registry.Listings, crud.Options{
			ImageField: "imageUrl",
			Validate:   validateListing,
		}),
		suggester: suggester,
	}
}

// ByType keeps listings of the given type; "" and "All" keep everything.
func ByType(t string) (func(docstore.Record, *Listing) bool, error) {
	switch t {
	case "", "All":
		return nil, nil
	case TypeForSale, TypeForRent:
		return func(_ docstore.Record, l *Listing) bool { return l.Type == t }, nil
	default:
		return nil, apperr.Invalid("type", "must be one of All, For Sale, For Rent")
	}
}

// Similar returns up to two other listings in the same category, most recent first.
func (s *Service) Similar(ctx context.Context, id string) ([]*Listing, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.List(ctx, func(_ docstore.Record, l *Listing) bool {
		return l.ID != listing.ID && strings.EqualFold(strings.TrimSpace(l.Category), strings.TrimSpace(listing.Category))
	})
	if err != nil {
		return nil, err
	}
	if len(all) > maxSimilar {
		all = all[:maxSimilar]
	}
	return all, nil
}

// SuggestCategory proposes a category for a listing title.
func (s *Service) SuggestCategory(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if len(title) < 3 {
		return "", apperr.Invalid("title", "must be at least 3 characters")
	}
	return s.suggester.Suggest(ctx, title), nil
}
