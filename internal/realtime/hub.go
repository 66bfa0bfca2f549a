package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Event types emitted to subscribers
const (
	EventChallengeUpdated   = "challenge_updated"
	EventChallengeDeleted   = "challenge_deleted"
	EventAchievementUpdated = "achievement_updated"
	EventAchievementUnlock  = "achievement_unlocked"
	EventProfileUpdated     = "profile_updated"
)

// Event is the JSON message sent to connected clients
type Event struct {
	Type   string      `json:"type"`
	UserID string      `json:"userId"`
	Data   interface{} `json:"data,omitempty"`
}

// Publisher is what stores and services need from the hub.
type Publisher interface {
	Publish(userID uuid.UUID, event Event)
}

type subscriber struct {
	ch chan Event
}

// Hub fans events out to every subscriber of a user.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*subscriber]bool
	buffer int
	log    *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[*subscriber]bool),
		buffer: 16,
		log:    log,
	}
}

// Subscribe registers interest in a user's events. The returned cancel func
// must be called to release the subscription; it closes the channel.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*subscriber]bool)
	}
	h.rooms[userID][sub] = true
	total := len(h.rooms[userID])
	h.mu.Unlock()
	h.log.Debug("realtime subscribe", "user", userID, "total", total)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.rooms[userID]; ok {
				delete(subs, sub)
				if len(subs) == 0 {
					delete(h.rooms, userID)
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers event to the user's subscribers without blocking. A
// subscriber whose buffer is full misses the event.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	if event.UserID == "" {
		event.UserID = userID.String()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.rooms[userID]
	if !ok {
		return
	}
	for sub := range subs {
		select {
		case sub.ch <- event:
		default:
			h.log.Warn("realtime subscriber lagging, event dropped", "user", userID, "type", event.Type)
		}
	}
}

func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(uuid.UUID, Event) {}
