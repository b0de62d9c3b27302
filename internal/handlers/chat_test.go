package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rocon-docs-ai/internal/rag"
)

// fakeEngine implements rag.Engine with pluggable behavior.
type fakeEngine struct {
	answerFn func(ctx context.Context, req rag.AnswerRequest) (rag.AnswerResponse, error)
	searchFn func(ctx context.Context, q string, k int) ([]rag.SearchResult, error)
}

func (f *fakeEngine) Answer(ctx context.Context, req rag.AnswerRequest) (rag.AnswerResponse, error) {
	return f.answerFn(ctx, req)
}

func (f *fakeEngine) Search(ctx context.Context, q string, k int) ([]rag.SearchResult, error) {
	return f.searchFn(ctx, q, k)
}

func TestChatHandler(t *testing.T) {
	okEngine := &fakeEngine{
		answerFn: func(_ context.Context, req rag.AnswerRequest) (rag.AnswerResponse, error) {
			return rag.AnswerResponse{
				Answer:  "**Use** the dashboard.",
				Sources: []rag.Source{{Title: "Sites", URL: "https://docs.example.com/sites"}},
				Metadata: rag.Metadata{
					ChunksRetrieved: 2,
					Confidence:      rag.ConfidenceHigh,
					QueryExpanded:   req.UseExpansion,
				},
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
			name:       "valid question",
			method:     http.MethodPost,
			body:       `{"question": "how do I create a site?"}`,
			engine:     okEngine,
			wantStatus: http.StatusOK,
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			body:       "",
			engine:     okEngine,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON",
			method:     http.MethodPost,
			body:       `{not json`,
			engine:     okEngine,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "question too short",
			method:     http.MethodPost,
			body:       `{"question": "hi"}`,
			engine:     okEngine,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "whitespace-only question",
			method:     http.MethodPost,
			body:       `{"question": "    "}`,
			engine:     okEngine,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "index not ready",
			method: http.MethodPost,
			body:   `{"question": "how do I create a site?"}`,
			engine: &fakeEngine{
				answerFn: func(context.Context, rag.AnswerRequest) (rag.AnswerResponse, error) {
					return rag.AnswerResponse{}, &rag.NotReadyError{Artifact: "vector index"}
				},
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewChatHandler(tt.engine)
			req := httptest.NewRequest(tt.method, "/api/chat", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestChatHandlerDefaultsExpansionOn(t *testing.T) {
	var captured rag.AnswerRequest
	handler := NewChatHandler(&fakeEngine{
		answerFn: func(_ context.Context, req rag.AnswerRequest) (rag.AnswerResponse, error) {
			captured = req
			return rag.AnswerResponse{Sources: []rag.Source{}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"question": "how do I create a site?"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !captured.UseExpansion {
		t.Error("expansion should default to enabled")
	}
	if captured.Temperature != defaultSynthesisTemperature {
		t.Errorf("temperature = %v, want default %v", captured.Temperature, defaultSynthesisTemperature)
	}

	// Explicit false must win over the default.
	req = httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"question": "how do I create a site?", "use_expansion": false, "temperature": 0.5}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured.UseExpansion {
		t.Error("explicit use_expansion=false should disable expansion")
	}
	if captured.Temperature != 0.5 {
		t.Errorf("temperature = %v, want 0.5", captured.Temperature)
	}

	// An explicit zero is a deliberate choice, not an omission, and must
	// reach the engine as zero rather than the default.
	captured.Temperature = -1
	req = httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"question": "how do I create a site?", "temperature": 0}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured.Temperature != 0 {
		t.Errorf("temperature = %v, want explicit 0", captured.Temperature)
	}
}

func TestChatHandlerRenderHTML(t *testing.T) {
	handler := NewChatHandler(&fakeEngine{
		answerFn: func(context.Context, rag.AnswerRequest) (rag.AnswerResponse, error) {
			return rag.AnswerResponse{Answer: "**bold** answer", Sources: []rag.Source{}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"question": "how do I create a site?", "render_html": true}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.AnswerHTML, "<strong>bold</strong>") {
		t.Errorf("expected rendered HTML, got %q", resp.AnswerHTML)
	}
	if resp.Answer != "**bold** answer" {
		t.Errorf("raw answer must be preserved, got %q", resp.Answer)
	}
}
