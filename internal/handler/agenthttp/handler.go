// Package agenthttp exposes the agent over HTTP with the same semantics as
// the stdin/stdout line protocol.
package agenthttp

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/postty/showcase-agent/internal/service/agent"
	"github.com/postty/showcase-agent/pkg/utils"
)

// Agent is the conversational surface the transport needs.
type Agent interface {
	Chat(ctx context.Context, sessionID, message string) (agent.Result, error)
	ResetSession(ctx context.Context, sessionID string)
	AgentID() string
}

// Handler serves the chat, reset and health endpoints.
type Handler struct {
	agent Agent
}

// New creates the HTTP handler.
func New(a Agent) *Handler {
	return &Handler{agent: a}
}

// RegisterRoutes mounts the agent endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/reset", h.handleReset)
	r.Get("/health", h.handleHealth)
}

type chatRequest struct {
	Message   string `json:"message"`
	ImagePath string `json:"image_path,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Message == "" && payload.ImagePath == "" {
		utils.RespondError(w, http.StatusBadRequest, "message or image_path required")
		return
	}

	message := ComposeMessage(payload.Message, payload.ImagePath)

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := h.agent.Chat(r.Context(), sessionID, message)
	if err != nil {
		log.Printf("[http] session=%s chat failed: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"session_id": sessionID,
		"result":     result,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	h.agent.ResetSession(r.Context(), payload.SessionID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "conversation cleared",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"agent_id": h.agent.AgentID(),
	})
}

// ComposeMessage appends a client-supplied image path to the message text
// when the file actually exists, so the resolver picks it up like any other
// inline reference. A missing path is logged and dropped.
func ComposeMessage(message, imagePath string) string {
	if imagePath == "" {
		return message
	}
	if _, err := os.Stat(imagePath); err != nil {
		log.Printf("[http] image path does not exist, ignoring: %s", imagePath)
		return message
	}
	return strings.TrimSpace(message + " " + imagePath)
}
