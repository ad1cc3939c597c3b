package common

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = errors.NewLoggerWithHandler(slog.NewTextHandler(io.Discard, nil))

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidateAndReadFiles(t *testing.T) {
	posting := writeTemp(t, "posting.txt", "Senior Go Engineer")
	resume := writeTemp(t, "resume.md", "# Jane Doe")

	contents, err := NewFileProcessor(testLogger, 1024).ValidateAndReadFiles(posting, resume)
	require.NoError(t, err)
	assert.Equal(t, []string{"Senior Go Engineer", "# Jane Doe"}, contents)
}

func TestValidateAndReadFilesErrors(t *testing.T) {
	large := writeTemp(t, "large.txt", strings.Repeat("x", 2048))

	tests := []struct {
		name string
		path string
		code string
	}{
		{name: "missing", path: filepath.Join(t.TempDir(), "missing.txt"), code: "INVALID_INPUT_FILE"},
		{name: "directory", path: t.TempDir(), code: "INVALID_INPUT_FILE"},
		{name: "too large", path: large, code: "INPUT_FILE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileProcessor(testLogger, 1024).ValidateAndReadFiles(tt.path)
			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestRunAICommandWritesOutput(t *testing.T) {
	posting := writeTemp(t, "posting.txt", "posting")
	resume := writeTemp(t, "resume.txt", "resume")
	output := filepath.Join(t.TempDir(), "out", "analysis.txt")

	cfg := CommandConfig{OutputFile: output, OutputFormat: "text", MaxFileSize: 1024}

	var got types.AnalysisRequest
	err := RunAICommand(context.Background(), testLogger, cfg, []string{posting, resume},
		func(contents []string) (types.AnalysisRequest, error) {
			return types.AnalysisRequest{JobPosting: contents[0], Resume: contents[1]}, nil
		},
		func(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
			got = req
			return types.AnalysisResult{Analysis: "Apply."}, nil
		},
		func(types.AnalysisRequest, CommandConfig) {},
	)
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisRequest{JobPosting: "posting", Resume: "resume"}, got)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "=== JOB APPLICATION ANALYSIS ===\n\nApply.\n", string(written))
}

func TestRunAICommandPropagatesOperationError(t *testing.T) {
	posting := writeTemp(t, "posting.txt", "posting")
	opErr := errors.NewRateLimitError(errors.ErrCodeRateLimited, "rate limit exceeded, try again later or use a different model", nil)

	err := RunAICommand(context.Background(), testLogger, CommandConfig{OutputFormat: "text"}, []string{posting},
		func(contents []string) (string, error) { return contents[0], nil },
		func(ctx context.Context, in string) (types.AnalysisResult, error) { return types.AnalysisResult{}, opErr },
		func(string, CommandConfig) {},
	)
	assert.Same(t, opErr, err)
}
