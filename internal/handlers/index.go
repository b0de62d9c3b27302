package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/indexer"
)

// IndexHandler handles HTTP requests for triggering a rebuild of the
// vector index.
type IndexHandler struct {
	pipeline *indexer.Pipeline
	busy     atomic.Bool
	logger   *slog.Logger
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(pipeline *indexer.Pipeline) *IndexHandler {
	return &IndexHandler{
		pipeline: pipeline,
		logger:   slog.Default(),
	}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests for triggering re-indexing. The build
// runs in the background; concurrent triggers are rejected while one is
// in flight.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if !h.busy.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "An index build is already running")
		return
	}

	logger.InfoContext(ctx, "re-indexing triggered via API")

	// Background context so the build continues after the HTTP request
	// completes.
	go func() {
		defer h.busy.Store(false)
		buildCtx := context.Background()
		if err := h.pipeline.Run(buildCtx); err != nil {
			h.logger.ErrorContext(buildCtx, "re-indexing failed", "error", err)
		} else {
			h.logger.InfoContext(buildCtx, "re-indexing completed successfully")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(IndexResponse{
		Message: "Index build started. Check server logs for progress.",
		Status:  "accepted",
	})
}
