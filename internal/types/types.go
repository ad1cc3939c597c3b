package types

import (
	"encoding/json"
	"strings"
)

// AnalysisRequest is the body accepted by the analyze endpoint
type AnalysisRequest struct {
	JobPosting string `json:"jobPosting"`
	Resume     string `json:"resume"`
	Model      string `json:"model,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
}

// UnmarshalJSON accepts the snake_case keys older clients send
// (job_posting, api_key) alongside the camelCase ones.
func (r *AnalysisRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		JobPosting       string `json:"jobPosting"`
		LegacyJobPosting string `json:"job_posting"`
		Resume           string `json:"resume"`
		Model            string `json:"model"`
		APIKey           string `json:"apiKey"`
		LegacyAPIKey     string `json:"api_key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.JobPosting = firstNonEmpty(raw.JobPosting, raw.LegacyJobPosting)
	r.Resume = raw.Resume
	r.Model = raw.Model
	r.APIKey = firstNonEmpty(raw.APIKey, raw.LegacyAPIKey)
	return nil
}

// AnalysisResult is the successful outcome of an analysis
type AnalysisResult struct {
	Analysis string `json:"analysis"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
