package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"jobanalyzer/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const (
	generationTemperature     float32 = 0.7
	generationMaxOutputTokens int32   = 2048
)

// Messages returned to callers for each upstream failure class
const (
	msgUnauthorized  = "invalid or unauthorized API key"
	msgModelNotFound = "model not found"
	msgRateLimited   = "rate limit exceeded, try again later or use a different model"
	msgTimedOut      = "request timed out"
	msgUpstream      = "upstream request failed"
	msgEmptyResponse = "empty or malformed response from model"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client  *genai.Client
	status  *statusRecorder
	model   string
	timeout time.Duration
	logger  *errors.Logger
	tracer  trace.Tracer
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini client bound to one API key and model
func NewGeminiProvider(ctx context.Context, opts ProviderOptions, logger *errors.Logger) (AIProvider, error) {
	recorder := &statusRecorder{next: otelhttp.NewTransport(http.DefaultTransport)}

	clientConfig := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: recorder},
	}
	if opts.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		// the client error echoes its config, key included
		return nil, errors.NewInternalError(errors.ErrCodeAIServiceFailed, "failed to create Gemini client", nil)
	}

	return &GeminiProvider{
		client:  client,
		status:  recorder,
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  logger,
		tracer:  otel.Tracer("jobanalyzer.ai.gemini"),
	}, nil
}

// GenerateAnalysis issues exactly one generateContent call and returns the model text verbatim
func (g *GeminiProvider) GenerateAnalysis(ctx context.Context, prompt string) (string, *TokenUsage, error) {
	ctx, span := g.tracer.Start(ctx, "gemini.generate_analysis",
		trace.WithAttributes(
			attribute.String("ai.provider", "gemini"),
			attribute.String("ai.model", g.model),
			attribute.Int("ai.prompt_length", len(prompt)),
		))
	defer span.End()

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	generationConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(generationTemperature),
		MaxOutputTokens:   generationMaxOutputTokens,
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	}

	resp, err := g.generate(callCtx, prompt, generationConfig)
	if err != nil {
		mapped := g.mapError(callCtx, err)
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Message)
		span.SetAttributes(attribute.String("error.kind", string(mapped.Type)))
		return "", nil, mapped
	}

	text, ok := extractText(resp)
	if !ok {
		parseErr := errors.NewParseError(errors.ErrCodeAIResponseParse, msgEmptyResponse, nil)
		span.SetStatus(codes.Error, parseErr.Message)
		span.SetAttributes(attribute.String("error.kind", string(parseErr.Type)))
		return "", nil, parseErr
	}

	usage := extractTokenUsage(resp)
	if g.logger != nil && usage != nil {
		g.logger.Debug("Gemini token usage",
			"model", g.model,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}
	span.SetAttributes(attribute.Int("ai.response_length", len(text)))
	span.SetStatus(codes.Ok, "")
	return text, usage, nil
}

// generate runs the SDK call; a malformed error envelope can panic inside the SDK
func (g *GeminiProvider) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (resp *genai.GenerateContentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("unreadable upstream response: %v", r)
		}
	}()

	contents := genai.Text(prompt)
	return g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
}

// mapError folds an SDK or transport error into the AppError taxonomy
func (g *GeminiProvider) mapError(ctx context.Context, err error) *errors.AppError {
	if isTimeout(ctx, err) {
		return errors.NewTimeoutError(errors.ErrCodeAITimeout, msgTimedOut, err).
			WithContext("timeout", g.timeout.String())
	}

	status := g.status.last()
	var apiErr genai.APIError
	hasAPIErr := stderrors.As(err, &apiErr)
	if status == 0 && hasAPIErr {
		status = apiErr.Code
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		hasAPIErr && (apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED"):
		return errors.NewAuthError(errors.ErrCodeUnauthorized, msgUnauthorized, err).
			WithContext("status", status)
	case status == http.StatusNotFound || hasAPIErr && apiErr.Status == "NOT_FOUND":
		return errors.NewNotFoundError(errors.ErrCodeModelNotFound, msgModelNotFound, err).
			WithContext("model", g.model)
	case status == http.StatusTooManyRequests || hasAPIErr && apiErr.Status == "RESOURCE_EXHAUSTED":
		return errors.NewRateLimitError(errors.ErrCodeRateLimited, msgRateLimited, err).
			WithContext("status", status)
	}

	detail := err.Error()
	if hasAPIErr && strings.TrimSpace(apiErr.Message) != "" {
		detail = strings.TrimSpace(apiErr.Message)
	}
	return errors.NewUpstreamError(errors.ErrCodeAIServiceFailed,
		fmt.Sprintf("%s (status %d): %s", msgUpstream, status, detail), err).
		WithContext("status", status)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// extractText returns the generated text of the first candidate
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", false
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func extractTokenUsage(resp *genai.GenerateContentResponse) *TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int64(resp.UsageMetadata.TotalTokenCount),
	}
}

// Close releases provider resources
func (g *GeminiProvider) Close() error {
	return nil
}

// statusRecorder remembers the status of the last upstream response
type statusRecorder struct {
	next   http.RoundTripper
	status atomic.Int64
}

func (s *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.next.RoundTrip(req)
	if resp != nil {
		s.status.Store(int64(resp.StatusCode))
	}
	return resp, err
}

func (s *statusRecorder) last() int {
	return int(s.status.Load())
}
