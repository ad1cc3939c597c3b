package common

import (
	"bytes"
	stderrors "errors"
	"io"
	"testing"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"text", "json", "markdown"}

	tests := []struct {
		name        string
		format      string
		supported   []string
		expectedErr string
	}{
		{name: "text", format: "text", supported: supported},
		{name: "json", format: "json", supported: supported},
		{name: "markdown", format: "markdown", supported: supported},
		{name: "xml", format: "xml", supported: supported, expectedErr: "unsupported output format 'xml'. Supported formats: [text json markdown]"},
		{name: "case sensitive", format: "JSON", supported: supported, expectedErr: "unsupported output format 'JSON'. Supported formats: [text json markdown]"},
		{name: "empty format", format: "", supported: supported, expectedErr: "unsupported output format ''. Supported formats: [text json markdown]"},
		{name: "no restrictions", format: "xml", supported: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectedErr)
			}
		})
	}
}

func TestHandleOutputToWriter(t *testing.T) {
	var out bytes.Buffer
	handler := NewOutputHandler(nil)
	handler.stdout = &out

	err := handler.HandleOutput(types.AnalysisResult{Analysis: "Apply."}, CommandConfig{OutputFormat: "markdown"})
	require.NoError(t, err)
	assert.Equal(t, "# Job Application Analysis\n\nApply.\n", out.String())
}

func TestHandleOutputUnknownFormat(t *testing.T) {
	handler := NewOutputHandler(nil)
	handler.stdout = io.Discard

	err := handler.HandleOutput(types.AnalysisResult{}, CommandConfig{OutputFormat: "xml"})
	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeInvalidFormat, appErr.Code)
}
