package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	storage_mocks "runbookai/internal/storage/mocks"
	vectorstore_mocks "runbookai/internal/vectorstore/mocks"
)

func newHealthHandler(t *testing.T) (*HealthHandler, *vectorstore_mocks.MockVectorStore, *storage_mocks.MockDocumentStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	vectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	documentRepo := storage_mocks.NewMockDocumentStore(ctrl)
	return NewHealthHandler(vectorStore, documentRepo, "runbooks"), vectorStore, documentRepo
}

func TestHealthHandlerHealthy(t *testing.T) {
	handler, vectorStore, documentRepo := newHealthHandler(t)
	documentRepo.EXPECT().Count(gomock.Any()).Return(12, nil)
	vectorStore.EXPECT().CollectionExists(gomock.Any(), "runbooks").Return(true, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Documents != 12 {
		t.Errorf("documents = %d, want 12", resp.Documents)
	}
}

func TestHealthHandlerVectorStoreDownIsDegraded(t *testing.T) {
	handler, vectorStore, documentRepo := newHealthHandler(t)
	documentRepo.EXPECT().Count(gomock.Any()).Return(12, nil)
	vectorStore.EXPECT().CollectionExists(gomock.Any(), "runbooks").
		Return(false, errors.New("connection refused"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	// Lexical answering still works, so this is 200 degraded, not 503.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if len(resp.Issues) == 0 {
		t.Error("no issues reported")
	}
}

func TestHealthHandlerMissingCollectionIsDegraded(t *testing.T) {
	handler, vectorStore, documentRepo := newHealthHandler(t)
	documentRepo.EXPECT().Count(gomock.Any()).Return(0, nil)
	vectorStore.EXPECT().CollectionExists(gomock.Any(), "runbooks").Return(false, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Checks["vector_store"] != "missing_collection" {
		t.Errorf("vector_store check = %q", resp.Checks["vector_store"])
	}
}

func TestHealthHandlerCorpusStoreDownIsUnhealthy(t *testing.T) {
	handler, vectorStore, documentRepo := newHealthHandler(t)
	documentRepo.EXPECT().Count(gomock.Any()).Return(0, errors.New("database locked"))
	vectorStore.EXPECT().CollectionExists(gomock.Any(), "runbooks").Return(true, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
}
