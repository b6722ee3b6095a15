// Package opinion asks a hosted language model for a secondary authorship verdict.
package opinion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Generator returns the raw JSON answer of a model for one prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Client implements contract.OpinionProvider on top of a Generator.
type Client struct {
	gen    Generator
	budget int
}

var _ contract.OpinionProvider = &Client{} // Compile-time check

// NewClient creates an opinion client that truncates content to budget characters.
func NewClient(gen Generator, budget int) *Client {
	if budget <= 0 {
		budget = contract.DefaultCharBudget
	}
	return &Client{gen: gen, budget: budget}
}

// New creates an opinion client backed by the Gemini API.
func New(ctx context.Context, cfg *contract.Config) (*Client, error) {
	gen, err := NewGeminiGenerator(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		return nil, err
	}
	return NewClient(gen, cfg.LLMCharBudget), nil
}

type modelVerdict struct {
	AIProbability float64  `json:"aiProbability"`
	Confidence    float64  `json:"confidence"`
	Signals       []string `json:"signals"`
	Verdict       string   `json:"verdict"`
	Explanation   string   `json:"explanation"`
}

// Opinion sends the truncated file text to the model and normalizes its verdict.
func (c *Client) Opinion(ctx context.Context, filename, content string) (schema.OpinionVerdict, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return schema.OpinionVerdict{}, fmt.Errorf("%w: filename is required", contract.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return schema.OpinionVerdict{}, fmt.Errorf("%w: %s is empty", contract.ErrInvalidInput, filename)
	}

	text, truncated := contract.TruncateText(content, c.budget)
	raw, err := c.gen.GenerateJSON(ctx, buildPrompt(filename, text, truncated))
	if err != nil {
		return schema.OpinionVerdict{}, classifyError(err)
	}

	var mv modelVerdict
	if err := json.Unmarshal([]byte(stripFences(raw)), &mv); err != nil {
		contract.LogDebug("Unparseable model answer", logrus.Fields{"filename": filename, "answer": raw})
		return schema.OpinionVerdict{}, fmt.Errorf("%w: model returned malformed JSON: %v", contract.ErrUpstreamUnavailable, err)
	}
	return normalize(filename, mv, truncated), nil
}

func buildPrompt(filename, text string, truncated bool) string {
	var b strings.Builder
	b.WriteString("You review source code and estimate whether it was written by an AI assistant.\n")
	b.WriteString("Answer with a single JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"aiProbability": number 0..1, "confidence": number 0..1, "signals": [short strings], `)
	b.WriteString(`"verdict": "ai-generated" | "human-written" | "mixed", "explanation": string}` + "\n")
	if truncated {
		b.WriteString("The file was truncated; judge only the visible part.\n")
	}
	fmt.Fprintf(&b, "\nFilename: %s\n\n%s\n", filename, text)
	return b.String()
}

// stripFences removes a markdown code fence around a JSON answer.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func normalize(filename string, mv modelVerdict, truncated bool) schema.OpinionVerdict {
	verdict := schema.Verdict(strings.ToLower(strings.TrimSpace(mv.Verdict)))
	if _, ok := schema.ValidVerdicts[verdict]; !ok {
		verdict = schema.MixedVerdict
	}
	signals := make([]string, 0, len(mv.Signals))
	for _, s := range mv.Signals {
		if s = strings.TrimSpace(s); s != "" {
			signals = append(signals, s)
		}
	}
	return schema.OpinionVerdict{
		Filename:      filename,
		AIProbability: clamp01(mv.AIProbability),
		Confidence:    clamp01(mv.Confidence),
		Signals:       signals,
		Verdict:       verdict,
		Explanation:   strings.TrimSpace(mv.Explanation),
		Truncated:     truncated,
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// classifyError turns model failures into the degraded kinds callers can act on.
func classifyError(err error) error {
	if errors.Is(err, contract.ErrSecondaryDegraded) || errors.Is(err, contract.ErrInvalidInput) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
			return rateOrQuota(apiErr.Message, err)
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: model rejected the API key: %v", contract.ErrInvalidInput, err)
		}
		return fmt.Errorf("%w: model request failed: %v", contract.ErrUpstreamUnavailable, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429") {
		return rateOrQuota(msg, err)
	}
	return fmt.Errorf("%w: model request failed: %v", contract.ErrUpstreamUnavailable, err)
}

func rateOrQuota(message string, err error) error {
	if strings.Contains(strings.ToLower(message), "quota") {
		return fmt.Errorf("%w: %v", contract.ErrQuotaExhausted, err)
	}
	return fmt.Errorf("%w: %v", contract.ErrRateLimited, err)
}
