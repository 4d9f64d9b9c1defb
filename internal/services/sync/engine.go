package sync

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mizucoffee/canislupus-server/internal/dependencies/clock"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/registry"
	"github.com/mizucoffee/canislupus-server/internal/storage"
)

// GameEvent is the wire message sent to room subscribers. Every subscriber,
// including the writer that triggered the update, receives the same
// serialized payload.
type GameEvent struct {
	Type  string          `json:"type"`
	Phase int             `json:"phase"`
	State json.RawMessage `json:"state"`
}

// EventTypeGame is the only server-to-client event type
const EventTypeGame = "game"

// Update carries a partial session mutation. Nil fields are left untouched
// on the stored record.
type Update struct {
	Phase *int
	State json.RawMessage
}

// Config holds engine policy settings
type Config struct {
	// RejectMissingJoin, when true, refuses to register a connection joining
	// a session id that does not exist in the store. The reference behavior
	// (false) registers the connection anyway so it receives future
	// broadcasts, and surfaces the lookup failure to the caller.
	RejectMissingJoin bool
}

// DefaultConfig returns the reference join policy
func DefaultConfig() Config {
	return Config{RejectMissingJoin: false}
}

// Engine orchestrates session lifecycle: creation, join snapshots, and
// persist-then-broadcast writes. It holds no durable state of its own; room
// membership lives in the registry and session records in the store.
//
// Any caller holding a session id may mutate it: there is intentionally no
// ownership check on Set. An authorization layer, if ever wanted, belongs in
// front of this interface, not inside the broadcast/persistence path.
type Engine struct {
	storage  storage.Storage
	registry *registry.Registry
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger
}

// New creates a new synchronization engine
func New(storage storage.Storage, reg *registry.Registry, clk clock.Clock, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		storage:  storage,
		registry: reg,
		clock:    clk,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "sync")),
	}
}

// CreateSession allocates a new empty session record: phase 0, null state.
// No room exists until the first join.
func (e *Engine) CreateSession(ctx context.Context) (*model.Session, error) {
	now := e.clock.Now()
	session := &model.Session{
		ID:        model.SessionID(uuid.NewString()),
		Phase:     0,
		State:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	e.logger.Info("session created", slog.String("session_id", string(session.ID)))
	return session, nil
}

// GetSession fetches a session record by id
func (e *Engine) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return e.storage.GetSession(ctx, id)
}

// Join registers the subscriber in the session's room and sends the current
// (phase, state) snapshot directly to it; the rest of the room is not
// notified. If the session does not exist the lookup error is returned and,
// under the default policy, the membership still stands so the connection
// receives future broadcasts.
func (e *Engine) Join(ctx context.Context, sub *registry.Subscriber, id model.SessionID) (*model.Session, error) {
	e.registry.Join(sub, id)

	session, err := e.storage.GetSession(ctx, id)
	if err != nil {
		if e.cfg.RejectMissingJoin {
			e.registry.Leave(sub, id)
		}
		return nil, err
	}

	payload, err := json.Marshal(GameEvent{Type: EventTypeGame, Phase: session.Phase, State: session.State})
	if err != nil {
		return nil, err
	}
	e.registry.Send(sub, payload)
	return session, nil
}

// Set applies a partial update to the session, persists it, and then
// broadcasts the new (phase, state) to every room member including the
// setter. The updated record is returned synchronously, independent of the
// fan-out. A failed persist never broadcasts.
func (e *Engine) Set(ctx context.Context, id model.SessionID, upd Update) (*model.Session, error) {
	if upd.Phase != nil && *upd.Phase < 0 {
		return nil, model.ErrInvalidUpdate
	}
	if upd.State != nil && !json.Valid(upd.State) {
		return nil, model.ErrInvalidUpdate
	}

	session, err := e.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Phase != nil {
		session.Phase = *upd.Phase
	}
	if upd.State != nil {
		session.State = upd.State
	}
	session.UpdatedAt = e.clock.Now()

	if err := e.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(GameEvent{Type: EventTypeGame, Phase: session.Phase, State: session.State})
	if err != nil {
		return nil, err
	}

	delivered := e.registry.Broadcast(id, payload)
	e.logger.Info("session updated",
		slog.String("session_id", string(id)),
		slog.Int("phase", session.Phase),
		slog.Int("delivered", delivered))

	return session, nil
}
