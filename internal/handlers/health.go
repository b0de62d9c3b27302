package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/rag"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	holder *rag.Holder
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(holder *rag.Holder) *HealthHandler {
	return &HealthHandler{holder: holder}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Number of vectors in the published index
	VectorsIndexed int `json:"vectors_indexed"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks. Returns 200 OK
// when a snapshot is published, 503 Service Unavailable before the
// first index build completes.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	var issues []string
	vectors := 0

	snap := h.holder.Current()
	if snap != nil && snap.Index != nil && snap.Index.Size() > 0 {
		checks["index"] = "ok"
		checks["corpus"] = "ok"
		vectors = snap.Index.Size()
	} else {
		checks["index"] = "error"
		checks["corpus"] = "error"
		issues = append(issues, "index_not_ready")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:         status,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Checks:         checks,
		VectorsIndexed: vectors,
	}
	if len(issues) > 0 {
		response.Issues = issues
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
