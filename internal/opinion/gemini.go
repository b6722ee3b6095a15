package opinion

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/debtlens/internal/contract"
	"google.golang.org/genai"
)

var errEmptyAnswer = errors.New("model returned no candidates")

// GeminiGenerator is a thin wrapper around the official genai client.
type GeminiGenerator struct {
	cli   *genai.Client
	model string
}

// NewGeminiGenerator creates a Gemini API generator for model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: an API key is required, set GEMINI_API_KEY or --llm-api-key", contract.ErrInvalidInput)
	}
	if model == "" {
		model = contract.DefaultLLMModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{cli: cli, model: model}, nil
}

// GenerateJSON asks for application/json and returns the first candidate's text.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyAnswer
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
