package chat

import (
	"sync"

	"golang.org/x/time/rate"
)

// TextMessage matches the websocket text frame opcode.
const TextMessage = 1

// Sender writes one frame to a connection
type Sender interface {
	WriteMessage(messageType int, data []byte) error
}

// Member is one connection in a room. Writes to it are serialized.
type Member struct {
	mu      sync.Mutex
	conn    Sender
	limiter *rate.Limiter
}

// NewMember wraps conn. A nil limiter never throttles.
func NewMember(conn Sender, limiter *rate.Limiter) *Member {
	return &Member{conn: conn, limiter: limiter}
}

// Send writes text as a single frame
func (m *Member) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn.WriteMessage(TextMessage, []byte(text))
}

// Allow reports whether the member may send another message now
func (m *Member) Allow() bool {
	return m.limiter == nil || m.limiter.Allow()
}

// Hub tracks room membership
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Member]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Member]struct{})}
}

// Join adds m to room
func (h *Hub) Join(room string, m *Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Member]struct{})
		h.rooms[room] = members
	}
	members[m] = struct{}{}
}

// Leave removes m from room and returns how many members remain.
// Empty rooms are dropped.
func (h *Hub) Leave(room string, m *Member) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return 0
	}
	delete(members, m)
	if len(members) == 0 {
		delete(h.rooms, room)
		return 0
	}
	return len(members)
}

// Members returns a snapshot of room's members
func (h *Hub) Members(room string) []*Member {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[room]
	out := make([]*Member, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	return out
}

// Rooms returns the number of rooms with at least one member
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Broadcast sends text to every member of room except the given one, which may
// be nil. It returns the members whose write failed.
func (h *Hub) Broadcast(room, text string, except *Member) []*Member {
	var failed []*Member
	for _, m := range h.Members(room) {
		if m == except {
			continue
		}
		if err := m.Send(text); err != nil {
			failed = append(failed, m)
		}
	}
	return failed
}
