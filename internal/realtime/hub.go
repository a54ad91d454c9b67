// Package realtime fans room change events out to websocket subscribers.
// One logical channel per room; events are forwarded verbatim in whatever
// order mutations publish them. No dedup, no replay, no buffering beyond a
// small per-subscriber queue: a subscriber that cannot keep up loses events.
package realtime

import (
	"sync"
)

type Kind string

const (
	KindParticipants Kind = "participants_changed"
	KindOrderItems   Kind = "order_items_changed"
	KindStatus       Kind = "status"
	KindError        Kind = "error"
)

// Event is the tagged variant delivered to subscribers; consumers switch on
// Kind.
type Event struct {
	Kind    Kind   `json:"kind"`
	RoomID  string `json:"room_id"`
	Payload any    `json:"payload,omitempty"`
}

type Subscriber struct {
	C chan Event
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(roomID string) *Subscriber {
	s := &Subscriber{C: make(chan Event, 16)}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.rooms[roomID] = subs
	}
	subs[s] = struct{}{}
	return s
}

func (h *Hub) Unsubscribe(roomID string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[roomID]; ok {
		if _, in := subs[s]; in {
			delete(subs, s)
			close(s.C)
		}
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Publish delivers the event to every subscriber of its room. Sends never
// block: a full subscriber queue drops the event.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[ev.RoomID] {
		select {
		case s.C <- ev:
		default:
		}
	}
}

// Count reports the number of live subscribers for a room.
func (h *Hub) Count(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
