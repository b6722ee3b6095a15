package opinion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// generatorFunc adapts a function to the Generator interface.
type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func answer(raw string) generatorFunc {
	return func(context.Context, string) (string, error) { return raw, nil }
}

func TestOpinion(t *testing.T) {
	var prompt string
	c := NewClient(generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"aiProbability": 0.9, "confidence": 0.7, "signals": ["uniform comments", " "], "verdict": "AI-Generated", "explanation": " looks templated "}`, nil
	}), 100)

	v, err := c.Opinion(context.Background(), "main.go", "package main\n")
	require.NoError(t, err)
	assert.Equal(t, schema.OpinionVerdict{
		Filename:      "main.go",
		AIProbability: 0.9,
		Confidence:    0.7,
		Signals:       []string{"uniform comments"},
		Verdict:       schema.AIGeneratedVerdict,
		Explanation:   "looks templated",
	}, v)
	assert.Contains(t, prompt, "Filename: main.go")
	assert.Contains(t, prompt, "package main")
	assert.NotContains(t, prompt, "truncated")
}

func TestOpinionTruncates(t *testing.T) {
	var prompt string
	c := NewClient(generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"verdict": "mixed"}`, nil
	}), 10)

	v, err := c.Opinion(context.Background(), "big.py", strings.Repeat("x", 50)+"TAIL")
	require.NoError(t, err)
	assert.True(t, v.Truncated)
	assert.Contains(t, prompt, strings.Repeat("x", 10))
	assert.NotContains(t, prompt, strings.Repeat("x", 11))
	assert.NotContains(t, prompt, "TAIL")
	assert.Contains(t, prompt, "truncated")
}

func TestOpinionNormalizes(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		verdict    schema.Verdict
		prob, conf float64
	}{
		{"unknown verdict", `{"verdict": "robot", "aiProbability": 0.4, "confidence": 0.4}`, schema.MixedVerdict, 0.4, 0.4},
		{"clamped high", `{"verdict": "human-written", "aiProbability": 3, "confidence": 1.5}`, schema.HumanWrittenVerdict, 1, 1},
		{"clamped low", `{"verdict": "mixed", "aiProbability": -1, "confidence": -0.1}`, schema.MixedVerdict, 0, 0},
		{"fenced", "```json\n{\"verdict\": \"ai-generated\", \"aiProbability\": 0.8}\n```", schema.AIGeneratedVerdict, 0.8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewClient(answer(tt.raw), 100).Opinion(context.Background(), "a.go", "x")
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, v.Verdict)
			assert.InDelta(t, tt.prob, v.AIProbability, 1e-9)
			assert.InDelta(t, tt.conf, v.Confidence, 1e-9)
			assert.NotNil(t, v.Signals)
		})
	}
}

func TestOpinionInvalidInput(t *testing.T) {
	c := NewClient(answer(`{}`), 100)
	_, err := c.Opinion(context.Background(), " ", "x")
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	_, err = c.Opinion(context.Background(), "a.go", " \n ")
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestOpinionMalformedAnswer(t *testing.T) {
	_, err := NewClient(answer("I think it is human"), 100).Opinion(context.Background(), "a.go", "x")
	assert.ErrorIs(t, err, contract.ErrUpstreamUnavailable)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "Too many requests"}, contract.ErrRateLimited},
		{"quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "You exceeded your current quota"}, contract.ErrQuotaExhausted},
		{"bad key", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "API key not valid"}, contract.ErrInvalidInput},
		{"server", genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}, contract.ErrUpstreamUnavailable},
		{"plain text 429", errors.New("Error 429, Message: Resource exhausted"), contract.ErrRateLimited},
		{"network", errors.New("dial tcp: timeout"), contract.ErrUpstreamUnavailable},
		{"already classified", contract.ErrQuotaExhausted, contract.ErrQuotaExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestGeneratorErrorsAreDegraded(t *testing.T) {
	c := NewClient(generatorFunc(func(context.Context, string) (string, error) {
		return "", genai.APIError{Code: 429, Message: "quota exceeded"}
	}), 100)
	_, err := c.Opinion(context.Background(), "a.go", "x")
	assert.ErrorIs(t, err, contract.ErrSecondaryDegraded)
	assert.Equal(t, contract.CodeQuotaExhausted, contract.ErrorCode(err))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}  "))
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "")
	assert.ErrorIs(t, err, contract.ErrInvalidInput)

	_, err = New(context.Background(), &contract.Config{})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestNewClientDefaultBudget(t *testing.T) {
	assert.Equal(t, contract.DefaultCharBudget, NewClient(answer(""), 0).budget)
}
