package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/rag"
)

// SearchHandler handles HTTP requests for raw retrieval without answer
// synthesis.
type SearchHandler struct {
	engine rag.Engine
	logger *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine) *SearchHandler {
	return &SearchHandler{
		engine: engine,
		logger: slog.Default(),
	}
}

// SearchRequest represents the HTTP request payload for search.
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// SearchResponse represents the HTTP response payload for search.
type SearchResponse struct {
	Results []rag.SearchResult `json:"results"`
	Count   int                `json:"count"`
}

// ServeHTTP handles HTTP requests for search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	results, err := h.engine.Search(ctx, req.Query, req.K)
	if err != nil {
		if rag.IsNotReady(err) {
			writeError(w, http.StatusServiceUnavailable, "Index is not ready yet. Try again shortly.")
			return
		}
		logger.ErrorContext(ctx, "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	if results == nil {
		results = []rag.SearchResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SearchResponse{
		Results: results,
		Count:   len(results),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
