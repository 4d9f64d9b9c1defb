package registry

import (
	"log/slog"
	"sync"

	"github.com/mizucoffee/canislupus-server/internal/model"
)

const defaultSendBuffer = 256

// Subscriber is a handle for one connected client. The registry owns the
// outbound channel: messages are delivered via Messages() and the channel is
// closed when the subscriber is removed from its last room via LeaveAll.
type Subscriber struct {
	id     string
	send   chan []byte
	closed bool // guarded by the registry mutex
}

// NewSubscriber creates a subscriber handle with a buffered outbound channel
func NewSubscriber(id string) *Subscriber {
	return &Subscriber{
		id:   id,
		send: make(chan []byte, defaultSendBuffer),
	}
}

// ID returns the subscriber's connection id
func (s *Subscriber) ID() string {
	return s.id
}

// Messages returns the outbound message channel. It is closed when the
// subscriber is disconnected from the registry.
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Config holds registry policy settings
type Config struct {
	// SingleRoom, when true, makes a join move the subscriber's membership:
	// joining a second session evicts the first. When false, memberships
	// accumulate and the subscriber receives broadcasts from every joined
	// session.
	SingleRoom bool
}

// DefaultConfig returns the reference policy: one room per connection
func DefaultConfig() Config {
	return Config{SingleRoom: true}
}

// Registry maintains the in-memory mapping from session id to the set of
// subscribers currently joined to it. It is the sole owner of room
// membership; membership is never persisted and resets on restart.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[model.SessionID]map[*Subscriber]struct{}
	members map[*Subscriber]map[model.SessionID]struct{}
	cfg     Config
	logger  *slog.Logger
}

// New creates an empty registry
func New(cfg Config, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:   make(map[model.SessionID]map[*Subscriber]struct{}),
		members: make(map[*Subscriber]map[model.SessionID]struct{}),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Join adds the subscriber to the room for sessionID, creating the room if
// absent. Joining a room the subscriber is already in is a no-op. Under the
// single-room policy any prior memberships are removed first.
func (r *Registry) Join(sub *Subscriber, sessionID model.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.closed {
		return
	}

	if r.cfg.SingleRoom {
		for prior := range r.members[sub] {
			if prior != sessionID {
				r.removeLocked(sub, prior)
			}
		}
	}

	room, ok := r.rooms[sessionID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		r.rooms[sessionID] = room
	}
	if _, joined := room[sub]; joined {
		return
	}
	room[sub] = struct{}{}

	if r.members[sub] == nil {
		r.members[sub] = make(map[model.SessionID]struct{})
	}
	r.members[sub][sessionID] = struct{}{}

	r.logger.Info("subscriber joined",
		slog.String("connection_id", sub.id),
		slog.String("session_id", string(sessionID)),
		slog.Int("room_size", len(room)))
}

// Leave removes the subscriber from one room. Leaving a room the subscriber
// is not in is a no-op.
func (r *Registry) Leave(sub *Subscriber, sessionID model.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(sub, sessionID)
}

// LeaveAll removes the subscriber from every room and closes its outbound
// channel. Called synchronously on transport disconnect so broadcasts never
// target dead connections.
func (r *Registry) LeaveAll(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sessionID := range r.members[sub] {
		r.removeLocked(sub, sessionID)
	}

	if !sub.closed {
		sub.closed = true
		close(sub.send)
	}
}

// removeLocked drops one membership. Caller holds the write lock.
func (r *Registry) removeLocked(sub *Subscriber, sessionID model.SessionID) {
	room, ok := r.rooms[sessionID]
	if !ok {
		return
	}
	if _, joined := room[sub]; !joined {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(r.rooms, sessionID)
	}

	delete(r.members[sub], sessionID)
	if len(r.members[sub]) == 0 {
		delete(r.members, sub)
	}
}

// Broadcast delivers message to every subscriber in the room for sessionID,
// including the one that triggered the update. An empty or unknown room is a
// no-op. Delivery is best-effort: a subscriber whose buffer is full has the
// message dropped rather than blocking the broadcaster. Returns the number
// of successful deliveries.
func (r *Registry) Broadcast(sessionID model.SessionID, message []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sent := 0
	for sub := range r.rooms[sessionID] {
		select {
		case sub.send <- message:
			sent++
		default:
			r.logger.Warn("broadcast message dropped - subscriber buffer full",
				slog.String("connection_id", sub.id),
				slog.String("session_id", string(sessionID)))
		}
	}
	return sent
}

// Send delivers message directly to one subscriber, outside any room. Used
// for the initial snapshot on join. Best-effort like Broadcast.
func (r *Registry) Send(sub *Subscriber, message []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sub.closed {
		return false
	}
	select {
	case sub.send <- message:
		return true
	default:
		r.logger.Warn("direct message dropped - subscriber buffer full",
			slog.String("connection_id", sub.id))
		return false
	}
}

// RoomSize returns the number of subscribers in the room for sessionID
func (r *Registry) RoomSize(sessionID model.SessionID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[sessionID])
}

// Rooms returns the session ids of the subscriber's current memberships
func (r *Registry) Rooms(sub *Subscriber) []model.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]model.SessionID, 0, len(r.members[sub]))
	for sessionID := range r.members[sub] {
		ids = append(ids, sessionID)
	}
	return ids
}
