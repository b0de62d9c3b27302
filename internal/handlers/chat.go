package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/llm"
	"rocon-docs-ai/internal/rag"
)

// minQuestionLength rejects questions too short to retrieve against.
const minQuestionLength = 3

const defaultSynthesisTemperature = 0.1

// ChatHandler handles HTTP requests for question answering.
type ChatHandler struct {
	engine rag.Engine
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine rag.Engine) *ChatHandler {
	return &ChatHandler{
		engine: engine,
		logger: slog.Default(),
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Question string `json:"question"`
	// UseExpansion defaults to true when omitted.
	UseExpansion *bool    `json:"use_expansion,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty"`
	Category     string   `json:"category,omitempty"`
	// RenderHTML additionally returns the answer rendered as HTML.
	RenderHTML bool `json:"render_html,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer     string       `json:"answer"`
	AnswerHTML string       `json:"answer_html,omitempty"`
	Sources    []rag.Source `json:"sources"`
	Metadata   rag.Metadata `json:"metadata"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for question answering.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if len(req.Question) < minQuestionLength {
		writeError(w, http.StatusBadRequest, "Question must be at least 3 characters")
		return
	}

	answerReq := rag.AnswerRequest{
		Question:     req.Question,
		UseExpansion: true,
		Temperature:  defaultSynthesisTemperature,
		Category:     req.Category,
	}
	if req.UseExpansion != nil {
		answerReq.UseExpansion = *req.UseExpansion
	}
	if req.Temperature != nil {
		answerReq.Temperature = *req.Temperature
	}

	answer, err := h.engine.Answer(ctx, answerReq)
	if err != nil {
		h.handleEngineError(w, ctx, err)
		return
	}

	resp := ChatResponse{
		Answer:   answer.Answer,
		Sources:  answer.Sources,
		Metadata: answer.Metadata,
	}
	if req.RenderHTML {
		resp.AnswerHTML = renderMarkdown(ctx, answer.Answer)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleEngineError maps engine errors to HTTP status codes.
func (h *ChatHandler) handleEngineError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "engine error", "error", err)

	if rag.IsNotReady(err) {
		writeError(w, http.StatusServiceUnavailable, "Index is not ready yet. Try again shortly.")
		return
	}

	var callErr *llm.CallError
	if errors.As(err, &callErr) {
		writeError(w, http.StatusBadGateway, "Language model service error")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to answer question")
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
