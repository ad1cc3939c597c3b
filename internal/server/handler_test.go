package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobanalyzer/internal/ai"
	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/observability"
	"jobanalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = errors.NewLoggerWithHandler(slog.NewTextHandler(io.Discard, nil))

type analyzerFunc func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error)

func (f analyzerFunc) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
	return f(ctx, req)
}

func newTestServer(t *testing.T, analyzer Analyzer) http.Handler {
	t.Helper()
	s := NewServer(&config.Config{}, ServerConfig{
		Version:        "test",
		MaxRequestSize: 1024,
	}, testLogger)
	s.Analyzer = analyzer

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{})
	require.NoError(t, err)
	return s.Handler(om)
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestAnalyzeSuccess(t *testing.T) {
	var got types.AnalysisRequest
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		got = req
		return types.AnalysisResult{Analysis: "## APPLICATION RECOMMENDATION\nApply."}, nil
	}))

	rec := doRequest(h, http.MethodPost, "/api/analyze",
		`{"jobPosting":"Go engineer","resume":"Gopher","model":"gemini-1.5-pro","apiKey":"k"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "## APPLICATION RECOMMENDATION\nApply.", result.Analysis)

	assert.Equal(t, types.AnalysisRequest{JobPosting: "Go engineer", Resume: "Gopher", Model: "gemini-1.5-pro", APIKey: "k"}, got)
}

func TestAnalyzePreflight(t *testing.T) {
	called := false
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		called = true
		return types.AnalysisResult{}, nil
	}))

	rec := doRequest(h, http.MethodOptions, "/api/analyze", "this is not json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertCORS(t, rec)
	assert.False(t, called)
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		t.Fatal("analyzer must not run")
		return types.AnalysisResult{}, nil
	}))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := doRequest(h, method, "/api/analyze", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assertCORS(t, rec)
		assert.Equal(t, "Method not allowed", decodeError(t, rec).Error)
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		t.Fatal("analyzer must not run")
		return types.AnalysisResult{}, nil
	}))

	rec := doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assertCORS(t, rec)
	resp := decodeError(t, rec)
	assert.Equal(t, "Invalid JSON in request body", resp.Error)
	assert.Equal(t, "validation", resp.Kind)
}

func TestAnalyzeBodyTooLarge(t *testing.T) {
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		t.Fatal("analyzer must not run")
		return types.AnalysisResult{}, nil
	}))

	body := `{"jobPosting":"` + strings.Repeat("x", 2048) + `","resume":"r"}`
	rec := doRequest(h, http.MethodPost, "/api/analyze", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body too large (limit is 1024 bytes)", decodeError(t, rec).Error)
}

func TestAnalyzeErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		kind    string
	}{
		{"validation", errors.NewValidationError(errors.ErrCodeMissingInput, "resume is required", nil), http.StatusBadRequest, "resume is required", "validation"},
		{"auth", errors.NewAuthError(errors.ErrCodeUnauthorized, "invalid or unauthorized API key", nil), http.StatusUnauthorized, "invalid or unauthorized API key", "auth"},
		{"not found", errors.NewNotFoundError(errors.ErrCodeModelNotFound, "model not found", nil), http.StatusNotFound, "model not found", "not_found"},
		{"rate limit", errors.NewRateLimitError(errors.ErrCodeRateLimited, "rate limit exceeded, try again later or use a different model", nil), http.StatusTooManyRequests, "rate limit exceeded, try again later or use a different model", "rate_limit"},
		{"timeout", errors.NewTimeoutError(errors.ErrCodeAITimeout, "request timed out", nil), http.StatusGatewayTimeout, "request timed out", "timeout"},
		{"upstream", errors.NewUpstreamError(errors.ErrCodeAIServiceFailed, "upstream request failed (status 500): boom", nil), http.StatusBadGateway, "upstream request failed (status 500): boom", "upstream"},
		{"parse", errors.NewParseError(errors.ErrCodeAIResponseParse, "empty or malformed response from model", nil), http.StatusBadGateway, "empty or malformed response from model", "parse"},
		{"internal", errors.NewInternalError(errors.ErrCodeAIServiceFailed, "failed to create Gemini client", nil), http.StatusInternalServerError, "Internal server error", "internal"},
		{"untyped", assert.AnError, http.StatusInternalServerError, "Internal server error", "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
				return types.AnalysisResult{}, tt.err
			}))

			rec := doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":"p","resume":"r"}`)

			assert.Equal(t, tt.status, rec.Code)
			assertCORS(t, rec)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, tt.kind, resp.Kind)
		})
	}
}

func TestAnalyzePanicIsContained(t *testing.T) {
	calls := 0
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return types.AnalysisResult{Analysis: "fine"}, nil
	}))

	rec := doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":"p","resume":"r"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "Internal server error", decodeError(t, rec).Error)

	rec = doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":"p","resume":"r"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "a failed request must not affect the next one")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := newTestServer(t, analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
		seen = requestIDFromContext(ctx)
		return types.AnalysisResult{Analysis: "ok"}, nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"jobPosting":"p","resume":"r"}`))
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", seen)

	rec = doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":"p","resume":"r"}`)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doRequest(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.HealthResponse{Status: "healthy", Service: "jobanalyzer", Version: "test"}, resp)

	rec = doRequest(h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCustomAllowedOrigin(t *testing.T) {
	s := NewServer(&config.Config{}, ServerConfig{AllowedOrigin: "https://jobs.example.com"}, testLogger)
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{})
	require.NoError(t, err)

	rec := doRequest(s.Handler(om), http.MethodOptions, "/api/analyze", "")
	assert.Equal(t, "https://jobs.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnalyzeEndToEnd(t *testing.T) {
	var hits atomic.Int32
	var status atomic.Int32
	status.Store(http.StatusOK)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if code := int(status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"T"}]}}]}`)
	}))
	t.Cleanup(upstream.Close)

	service, err := ai.NewService(config.AIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		APIKey:   "default-key",
		BaseURL:  upstream.URL + "/",
		Timeout:  2 * time.Second,
	}, testLogger)
	require.NoError(t, err)

	h := newTestServer(t, service)

	rec := doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":"p","resume":"r"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"analysis":"T"}`, rec.Body.String())

	status.Store(http.StatusTooManyRequests)
	rec = doRequest(h, http.MethodPost, "/api/analyze", `{"job_posting":"p","resume":"r"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded, try again later or use a different model", decodeError(t, rec).Error)
	assert.Equal(t, int32(2), hits.Load(), "one upstream call per request")

	rec = doRequest(h, http.MethodPost, "/api/analyze", `{"jobPosting":"  ","resume":"r"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(2), hits.Load(), "blank input never reaches upstream")
}
