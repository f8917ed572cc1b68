package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: login session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/engagement/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(who.UserID)

	// A login session keeps one stream; reconnecting replaces the old one.
	if who.SessionID != uuid.Nil {
		h.mu.Lock()
		if existing, ok := h.clients[who.SessionID]; ok {
			h.hub.CloseClient(existing)
		}
		h.clients[who.SessionID] = client
		h.mu.Unlock()
	}
	h.log.Debug("SSE stream open", "user_id", who.UserID, "client_id", client.ID)

	h.hub.AddChannel(client, realtime.UserChannel(who.UserID))
	h.hub.ServeHTTP(c.Writer, c.Request, client)

	if who.SessionID != uuid.Nil {
		h.mu.Lock()
		if h.clients[who.SessionID] == client {
			delete(h.clients, who.SessionID)
		}
		h.mu.Unlock()
	}
	h.hub.CloseClient(client)
}
