package realtime

import (
	"sync"

	"github.com/Procodx/familyGuardian/pkg/model"
)

// Hub is the live session table: every authenticated realtime connection is
// registered here for the connection's lifetime. It is the single shared
// structure the broadcast fan-out reads, guarded by its own lock independent
// of the per-device locks in the presence registry.
type Hub struct {
	sync.RWMutex
	channels map[int32]*Channel
	nextID   int32
}

// NewHub creates an empty session table.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[int32]*Channel),
	}
}

// Register assigns a session ID to the channel and adds it to the table.
func (h *Hub) Register(cc *Channel) int32 {
	h.Lock()
	defer h.Unlock()

	h.nextID++
	h.channels[h.nextID] = cc
	return h.nextID
}

// Unregister removes a session from the table. Unknown IDs are ignored so a
// double-close of a connection stays harmless.
func (h *Hub) Unregister(sessionID int32) {
	h.Lock()
	defer h.Unlock()
	delete(h.channels, sessionID)
}

// Operators returns a snapshot of all operator channels. Broadcasting
// iterates this snapshot so sessions connecting or disconnecting mid-publish
// never block the fan-out.
func (h *Hub) Operators() []*Channel {
	h.RLock()
	defer h.RUnlock()

	channels := make([]*Channel, 0, len(h.channels))
	for _, cc := range h.channels {
		if cc.Session().Kind == model.SessionKindOperator {
			channels = append(channels, cc)
		}
	}
	return channels
}

// Sessions returns a snapshot of all live sessions for inspection endpoints.
func (h *Hub) Sessions() []model.Session {
	h.RLock()
	defer h.RUnlock()

	sessions := make([]model.Session, 0, len(h.channels))
	for _, cc := range h.channels {
		sessions = append(sessions, cc.Session())
	}
	return sessions
}

// CloseAll terminates every live connection. Used at engine shutdown.
func (h *Hub) CloseAll() {
	h.RLock()
	channels := make([]*Channel, 0, len(h.channels))
	for _, cc := range h.channels {
		channels = append(channels, cc)
	}
	h.RUnlock()

	for _, cc := range channels {
		cc.terminate()
	}
}
