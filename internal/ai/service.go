package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/observability"
	"jobanalyzer/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// Service relays analysis requests to the configured model provider
type Service struct {
	config  config.AIConfig
	logger  *errors.Logger
	factory ProviderFactory
	metrics *observability.Metrics
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithProviderFactory replaces the provider constructor
func WithProviderFactory(factory ProviderFactory) ServiceOption {
	return func(s *Service) {
		s.factory = factory
	}
}

// WithMetrics records AI request metrics on m
func WithMetrics(m *observability.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new AI service instance
func NewService(cfg config.AIConfig, logger *errors.Logger, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		config: cfg,
		logger: logger,
	}

	switch cfg.Provider {
	case "", "gemini":
		s.factory = NewGeminiProvider
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported AI provider: %s", cfg.Provider), nil)
	}

	for _, opt := range opts {
		opt(s)
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"has_default_key", cfg.APIKey != "")

	return s, nil
}

// DefaultModel returns the model used when a request names none
func (s *Service) DefaultModel() string {
	return s.config.Model
}

// Analyze validates the request, builds the prompt and makes one provider call
func (s *Service) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
	if strings.TrimSpace(req.JobPosting) == "" {
		return types.AnalysisResult{}, errors.NewValidationError(errors.ErrCodeMissingInput, "job posting is required", nil)
	}
	if strings.TrimSpace(req.Resume) == "" {
		return types.AnalysisResult{}, errors.NewValidationError(errors.ErrCodeMissingInput, "resume is required", nil)
	}

	apiKey := firstNonBlank(req.APIKey, s.config.APIKey)
	if apiKey == "" {
		return types.AnalysisResult{}, errors.NewValidationError(errors.ErrCodeMissingAPIKey,
			"API key is required: provide apiKey in the request or configure a default key", nil)
	}
	model := firstNonBlank(req.Model, s.config.Model)

	logger := s.logger.With(
		"model", model,
		"job_posting_length", len(req.JobPosting),
		"resume_length", len(req.Resume),
		"request_key", req.APIKey != "")
	logger.Debug("Starting job analysis")

	provider, err := s.factory(ctx, ProviderOptions{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: s.config.BaseURL,
		Timeout: s.config.Timeout,
	}, s.logger)
	if err != nil {
		logger.LogError(err, "Failed to create AI provider")
		return types.AnalysisResult{}, err
	}
	defer func() {
		if closeErr := provider.Close(); closeErr != nil {
			logger.Warn("Failed to close AI provider", "error", closeErr)
		}
	}()

	prompt := BuildAnalysisPrompt(req.JobPosting, req.Resume)

	start := time.Now()
	var analysis string
	err = s.metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
		text, usage, genErr := provider.GenerateAnalysis(ctx, prompt)
		analysis = text
		return &observability.AIOperationResult{Error: genErr, TokenUsage: usage.toObservability()}
	}, attribute.String("model", model))
	duration := time.Since(start)

	if err != nil {
		logger.LogError(err, "Job analysis failed",
			"kind", observability.ErrorKind(err),
			"duration", duration)
		return types.AnalysisResult{}, err
	}

	logger.Info("Job analysis completed",
		"analysis_length", len(analysis),
		"duration", duration)

	return types.AnalysisResult{Analysis: analysis}, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
