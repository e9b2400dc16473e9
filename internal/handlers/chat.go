package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/yuin/goldmark"

	"broll/internal/contextutil"
	"broll/internal/service"
)

// ChatSender is the chat service surface for the chat endpoint.
type ChatSender interface {
	Send(ctx context.Context, sessionID, message string) (*service.Reply, error)
}

// ChatHandler handles HTTP requests for catalog chat.
type ChatHandler struct {
	chat ChatSender
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat ChatSender) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	SessionID  string         `json:"session_id"`
	Answer     string         `json:"answer"`
	AnswerHTML string         `json:"answer_html"`
	Clips      []ClipResponse `json:"clips,omitempty"`
}

// ServeHTTP handles HTTP requests for catalog chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message must not be empty")
		return
	}

	reply, err := h.chat.Send(ctx, req.SessionID, req.Message)
	if err != nil {
		logger.ErrorContext(ctx, "chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}

	resp := ChatResponse{
		SessionID:  reply.SessionID,
		Answer:     reply.Answer,
		AnswerHTML: renderMarkdown(ctx, reply.Answer),
	}
	for _, clip := range reply.Clips {
		resp.Clips = append(resp.Clips, toClipResponse(clip))
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// renderMarkdown converts the model's markdown reply to HTML for the
// web UI. On render failure the raw text is returned unrendered.
func renderMarkdown(ctx context.Context, text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to render markdown", "error", err)
		return text
	}
	return buf.String()
}
