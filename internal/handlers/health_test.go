package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rocon-docs-ai/internal/corpus"
	"rocon-docs-ai/internal/rag"
	"rocon-docs-ai/internal/vectorstore"
)

func TestHealthHandlerNotReady(t *testing.T) {
	handler := NewHealthHandler(rag.NewHolder())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
	if len(resp.Issues) == 0 {
		t.Error("expected issues listed")
	}
}

func TestHealthHandlerHealthy(t *testing.T) {
	store, err := corpus.NewStore([]corpus.Chunk{
		{ChunkID: "c1", URL: "u1", Content: "documentation content here"},
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	index := vectorstore.NewMemory(2)
	if err := index.Add([]float32{1, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	holder := rag.NewHolder()
	holder.Swap(&rag.Snapshot{Corpus: store, Index: index})
	handler := NewHealthHandler(holder)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.VectorsIndexed != 1 {
		t.Errorf("vectors_indexed = %d, want 1", resp.VectorsIndexed)
	}
	if resp.Checks["index"] != "ok" {
		t.Errorf("index check = %q, want ok", resp.Checks["index"])
	}
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	handler := NewHealthHandler(rag.NewHolder())

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
