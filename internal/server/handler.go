package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/observability"
	"jobanalyzer/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// createAnalyzeHandler serves POST /api/analyze with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			writeErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("jobanalyzer.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		logger := s.Logger.With("request_id", requestIDFromContext(ctx))
		metrics := om.GetMetrics()

		var req types.AnalysisRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.kind", string(errors.ErrorTypeValidation)))
			metrics.RecordAnalysis(ctx, err)
			logger.LogError(err, "Rejected analysis request")
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_posting_length", len(req.JobPosting)),
			attribute.Int("request.resume_length", len(req.Resume)),
			attribute.Bool("request.has_api_key", req.APIKey != ""),
		)

		result, err := s.Analyzer.Analyze(ctx, req)
		metrics.RecordAnalysis(ctx, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "analysis failed")
			span.SetAttributes(attribute.String("error.kind", observability.ErrorKind(err)))
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.analysis_length", len(result.Analysis)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			logger.Warn("Failed to encode analysis response", "error", err)
		}
	}
}

// writeAppError writes err with the status and message of its category.
// Errors outside the taxonomy become a bare 500.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		writeErrorResponse(w, "Internal server error", string(errors.ErrorTypeInternal), http.StatusInternalServerError)
		return
	}

	message := appErr.Message
	if appErr.Type == errors.ErrorTypeInternal {
		message = "Internal server error"
	}
	writeErrorResponse(w, message, string(appErr.Type), appErr.HTTPStatus())
}
