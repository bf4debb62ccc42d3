package suggest

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

func (g *GeminiModel) Categorize(ctx context.Context, title string, categories []string) (string, error) {
	prompt := fmt.Sprintf(
		"A resident is selling an item titled %q in a neighborhood marketplace. "+
			"Answer with exactly one category from this list and nothing else: %s.",
		title, strings.Join(categories, ", "),
	)

	var temperature float32 = 0
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 10,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
