package agenthttp

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/postty/showcase-agent/internal/service/agent"
)

// WebSocketHandler carries the line-protocol semantics over a websocket: one
// JSON frame in, one JSON frame out, with a per-connection default session.
type WebSocketHandler struct {
	agent    Agent
	upgrader websocket.Upgrader
}

// NewWebSocket creates the websocket chat handler.
func NewWebSocket(a Agent) *WebSocketHandler {
	return &WebSocketHandler{
		agent: a,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type wsRequest struct {
	Message   string `json:"message"`
	ImagePath string `json:"image_path,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type wsResponse struct {
	Status  string        `json:"status"`
	Result  *agent.Result `json:"result,omitempty"`
	Message string        `json:"message,omitempty"`
}

// HandleWS upgrades the connection and processes frames until the client
// disconnects. Frames within one connection share a session unless the frame
// names its own.
func (h *WebSocketHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	defaultSession := uuid.NewString()
	log.Printf("[ws] connection opened, session=%s", defaultSession)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		if req.Message == "" && req.ImagePath == "" {
			h.write(conn, wsResponse{Status: "error", Message: "message or image_path required"})
			continue
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = defaultSession
		}

		result, err := h.agent.Chat(r.Context(), sessionID, ComposeMessage(req.Message, req.ImagePath))
		if err != nil {
			log.Printf("[ws] session=%s chat failed: %v", sessionID, err)
			h.write(conn, wsResponse{Status: "error", Message: "internal error"})
			continue
		}

		h.write(conn, wsResponse{Status: "success", Result: &result})
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
