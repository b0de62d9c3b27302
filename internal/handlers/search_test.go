package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rocon-docs-ai/internal/corpus"
	"rocon-docs-ai/internal/rag"
)

func TestSearchHandler(t *testing.T) {
	okEngine := &fakeEngine{
		searchFn: func(_ context.Context, q string, k int) ([]rag.SearchResult, error) {
			return []rag.SearchResult{
				{Chunk: corpus.Chunk{ChunkID: "c1", URL: "u1"}, RerankScore: 0.9, Reranked: true},
			}, nil
		},
	}

	tests := []struct {
		name       string
		method     string
		body       string
		engine     rag.Engine
		wantStatus int
	}{
		{
			name:       "valid query",
			method:     http.MethodPost,
			body:       `{"query": "create site", "k": 5}`,
			engine:     okEngine,
			wantStatus: http.StatusOK,
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			engine:     okEngine,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "empty query",
			method:     http.MethodPost,
			body:       `{"query": "  "}`,
			engine:     okEngine,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "index not ready",
			method: http.MethodPost,
			body:   `{"query": "create site"}`,
			engine: &fakeEngine{
				searchFn: func(context.Context, string, int) ([]rag.SearchResult, error) {
					return nil, &rag.NotReadyError{Artifact: "vector index"}
				},
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSearchHandler(tt.engine)
			req := httptest.NewRequest(tt.method, "/api/search", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSearchHandlerEmptyResults(t *testing.T) {
	handler := NewSearchHandler(&fakeEngine{
		searchFn: func(context.Context, string, int) ([]rag.SearchResult, error) {
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query": "nothing matches"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Results == nil {
		t.Error("results must be an empty array, not null")
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
}
