package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"runbookai/internal/contextutil"
	"runbookai/internal/ingest"
)

// IngestHandler handles POST /api/ingest.
type IngestHandler struct {
	pipeline *ingest.Pipeline
	validate *validator.Validate
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(pipeline *ingest.Pipeline) *IngestHandler {
	return &IngestHandler{
		pipeline: pipeline,
		validate: validator.New(),
	}
}

// IngestRequest is the request payload: one document or a batch.
type IngestRequest struct {
	Documents []ingest.DocumentInput `json:"documents" validate:"required,min=1,max=100,dive"`
}

// IngestResponse summarizes the batch.
type IngestResponse struct {
	Results []*ingest.Result `json:"results"`
	Partial bool             `json:"partial,omitempty"`
}

// ServeHTTP ingests the submitted documents. Per-document failures yield a
// 207-style partial result rather than failing the batch.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			logger.WarnContext(ctx, "invalid ingest request", "error", err)
			writeError(w, http.StatusBadRequest, "each document needs a filename and content")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if dup := duplicateFilename(req.Documents); dup != "" {
		writeError(w, http.StatusBadRequest, "duplicate filename in batch: "+dup)
		return
	}

	results, err := h.pipeline.IngestAll(ctx, req.Documents)
	if err != nil && len(results) == 0 {
		logger.ErrorContext(ctx, "ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to ingest documents")
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Results: results,
		Partial: err != nil,
	})
}

func duplicateFilename(docs []ingest.DocumentInput) string {
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if _, ok := seen[doc.Filename]; ok {
			return doc.Filename
		}
		seen[doc.Filename] = struct{}{}
	}
	return ""
}
