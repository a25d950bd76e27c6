package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/fii-advisor/backend/internal/assistant"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// ChatHandler serves the FII chat over HTTP and websocket
type ChatHandler struct {
	assistant *assistant.Assistant
	upgrader  websocket.Upgrader
	logger    *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(asst *assistant.Assistant, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: asst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// ChatRequest carries the client-held history plus the new message
type ChatRequest struct {
	Messages []assistant.Message `json:"messages"`
	Message  string              `json:"message"`
}

// ChatResponse returns the reply and the updated history
type ChatResponse struct {
	Response string              `json:"response"`
	Messages []assistant.Message `json:"messages"`
}

// Chat answers one turn; the client keeps the history
// POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, history, err := h.assistant.Chat(r.Context(), req.Messages, req.Message)
	if err != nil {
		respondAssistantError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{Response: reply, Messages: history})
}

// wsMessage is one websocket frame in either direction
type wsMessage struct {
	Message  string `json:"message,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	wsReadLimit = 64 << 10
	wsIdle      = 10 * time.Minute
	wsWriteWait = 10 * time.Second
)

// ChatSocket keeps the history server-side for the lifetime of the connection
// GET /ws/chat
func (h *ChatHandler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	ctx := r.Context()
	var history []assistant.Message

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdle))

		var in wsMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Debug("WebSocket closed")
			}
			return
		}

		out := wsMessage{}
		reply, updated, err := h.assistant.Chat(ctx, history, in.Message)
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Response = reply
			history = updated
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			h.logger.WithError(err).Debug("WebSocket write failed")
			return
		}
	}
}
