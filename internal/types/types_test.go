package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRequestLegacyKeys(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected AnalysisRequest
	}{
		{
			name:     "camelCase",
			body:     `{"jobPosting":"J","resume":"R","model":"m","apiKey":"k"}`,
			expected: AnalysisRequest{JobPosting: "J", Resume: "R", Model: "m", APIKey: "k"},
		},
		{
			name:     "snake_case",
			body:     `{"job_posting":"J","resume":"R","api_key":"k"}`,
			expected: AnalysisRequest{JobPosting: "J", Resume: "R", APIKey: "k"},
		},
		{
			name:     "camelCase wins over legacy",
			body:     `{"jobPosting":"new","job_posting":"old","resume":"R"}`,
			expected: AnalysisRequest{JobPosting: "new", Resume: "R"},
		},
		{
			name:     "blank camelCase falls back to legacy",
			body:     `{"jobPosting":"  ","job_posting":"old","resume":"R"}`,
			expected: AnalysisRequest{JobPosting: "old", Resume: "R"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AnalysisRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestAnalysisRequestRejectsInvalidJSON(t *testing.T) {
	var req AnalysisRequest
	assert.Error(t, json.Unmarshal([]byte(`{"jobPosting":`), &req))
}
