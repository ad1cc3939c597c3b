package observability

import (
	"context"
	"testing"

	"jobanalyzer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestTrackAIOperationWithTokens(t *testing.T) {
	m, reader := newTestMetrics(t)

	err := m.TrackAIOperationWithTokens(context.Background(), "analyze", func(ctx context.Context) *AIOperationResult {
		return &AIOperationResult{TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}
	})
	require.NoError(t, err)

	appErr := errors.NewRateLimitError(errors.ErrCodeRateLimited, "slow down", nil)
	err = m.TrackAIOperationWithTokens(context.Background(), "analyze", func(ctx context.Context) *AIOperationResult {
		return &AIOperationResult{Error: appErr}
	})
	assert.Same(t, appErr, err)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, metrics["jobanalyzer_ai_requests_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["jobanalyzer_ai_errors_total"]))
	assert.Contains(t, metrics, "jobanalyzer_ai_processing_duration_seconds")

	tokens, ok := metrics["jobanalyzer_ai_token_usage_total"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, tokens.DataPoints, 3, "one series per token type")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	called := false
	err := m.TrackAIOperationWithTokens(context.Background(), "analyze", func(ctx context.Context) *AIOperationResult {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	assert.NotPanics(t, func() { m.RecordAnalysis(context.Background(), nil) })
}

func TestRecordAnalysis(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordAnalysis(context.Background(), nil)
	m.RecordAnalysis(context.Background(), errors.NewValidationError(errors.ErrCodeMissingInput, "job posting is required", nil))

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, metrics["jobanalyzer_analyses_total"]))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "timeout", ErrorKind(errors.NewTimeoutError(errors.ErrCodeAITimeout, "request timed out", nil)))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false})
	require.NoError(t, err)

	assert.Nil(t, om.GetMetrics())
	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(context.Background()))
}
