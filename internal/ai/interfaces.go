package ai

import (
	"context"
	"time"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/observability"
)

// AIProvider sends one prompt to a model and returns its generated text.
// Token usage is informational; callers can ignore it.
type AIProvider interface {
	GenerateAnalysis(ctx context.Context, prompt string) (string, *TokenUsage, error)
	Close() error
}

// ProviderOptions are the per-request settings a provider is built with
type ProviderOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// ProviderFactory builds a provider for a single request
type ProviderFactory func(ctx context.Context, opts ProviderOptions, logger *errors.Logger) (AIProvider, error)

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

func (t *TokenUsage) toObservability() *observability.TokenUsage {
	if t == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  t.InputTokens,
		OutputTokens: t.OutputTokens,
		TotalTokens:  t.TotalTokens,
	}
}
