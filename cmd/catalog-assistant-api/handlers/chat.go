// Package handlers provides HTTP handlers for the catalog assistant API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopsense-ai/catalog-assistant/internal/genai"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

// ChatService produces an assistant reply and the extended history.
type ChatService interface {
	Generate(ctx context.Context, query string, history []string) (string, []string, error)
}

// ChatHandler handles chat requests.
type ChatHandler struct {
	logger  *observability.Logger
	service ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(logger *observability.Logger, service ChatService) *ChatHandler {
	return &ChatHandler{
		logger:  logger.WithComponent("chat-handler"),
		service: service,
	}
}

// ChatRequestDTO is the chat request body.
type ChatRequestDTO struct {
	Query   string   `json:"query"`
	History []string `json:"history,omitempty"`
}

// ChatResponseDTO is the chat response body. History is the full
// conversation including the turn just produced, ready to send back on the
// next request.
type ChatResponseDTO struct {
	Response string   `json:"response"`
	History  []string `json:"history"`
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	reply, history, err := h.service.Generate(ctx, req.Query, req.History)
	if err != nil {
		if errors.Is(err, genai.ErrMissingAPIKey) {
			h.logger.WithContext(ctx).Error().Err(err).Msg("Chat misconfigured")
			writeError(w, http.StatusInternalServerError, "generation model is not configured")
			return
		}
		h.logger.WithContext(ctx).Error().Err(err).Msg("Chat failed")
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	if history == nil {
		history = []string{}
	}

	writeJSON(w, http.StatusOK, ChatResponseDTO{Response: reply, History: history})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
