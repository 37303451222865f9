package handlers

import (
	"context"
	"net/http"
	"time"

	"runbookai/internal/contextutil"
	"runbookai/internal/storage"
	"runbookai/internal/vectorstore"
)

// HealthHandler handles GET /api/health.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	documentRepo       storage.DocumentStore
	collection         string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore, documentRepo storage.DocumentStore, collection string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		documentRepo:       documentRepo,
		collection:         collection,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse is the health check response.
type HealthResponse struct {
	// "healthy", "degraded", or "unhealthy"
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP reports service health. The corpus store is the critical
// dependency; a missing vector store only degrades the service because the
// pipeline answers lexical-only without it.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	documents, err := h.documentRepo.Count(checkCtx)
	if err != nil {
		logger.WarnContext(ctx, "corpus store health check failed", "error", err)
		checks["corpus_store"] = "error"
		issues = append(issues, "corpus_store_unavailable")
	} else {
		checks["corpus_store"] = "ok"
	}

	if exists, err := h.vectorStore.CollectionExists(checkCtx, h.collection); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	} else if !exists {
		checks["vector_store"] = "missing_collection"
		issues = append(issues, "vector_collection_missing")
	} else {
		checks["vector_store"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case checks["corpus_store"] != "ok":
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Documents: documents,
		Issues:    issues,
	})
}
