package handlers

import (
	"encoding/json"
	"time"

	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/realtime"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsWriteTimeout = 10 * time.Second

// Subscriber is the part of the realtime hub the stream needs.
type Subscriber interface {
	Subscribe(userID uuid.UUID) (<-chan realtime.Event, func())
}

// HandleWebSocket streams the caller's realtime events until either side
// closes. The read loop only exists to notice the client going away.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals(middleware.LocalUserID).(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	events, cancel := h.hub.Subscribe(userID)
	defer cancel()
	h.log.Info("WS connected", "user", userID)
	defer h.log.Info("WS disconnected", "user", userID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			msg, err := json.Marshal(event)
			if err != nil {
				h.log.Error("WS marshal failed", "type", event.Type, "error", err)
				continue
			}
			c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Warn("WS write failed", "user", userID, "error", err)
				return
			}
		}
	}
}
