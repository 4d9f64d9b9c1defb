package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mizucoffee/canislupus-server/internal/dependencies/mocks"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/registry"
	"github.com/mizucoffee/canislupus-server/internal/storage/memory"
	"github.com/mizucoffee/canislupus-server/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	engine   *Engine
	registry *registry.Registry
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.registry = registry.New(registry.DefaultConfig(), logger)
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.engine = New(memory.New(), s.registry, clk, DefaultConfig(), logger)
	s.ctx = context.Background()
}

func intPtr(v int) *int { return &v }

func (s *EngineSuite) receiveEvent(sub *registry.Subscriber) GameEvent {
	select {
	case payload := <-sub.Messages():
		var ev GameEvent
		s.Require().NoError(json.Unmarshal(payload, &ev))
		return ev
	default:
		s.Require().FailNow("expected an event but none was delivered")
		return GameEvent{}
	}
}

func (s *EngineSuite) assertNoEvent(sub *registry.Subscriber) {
	select {
	case payload := <-sub.Messages():
		s.Require().FailNowf("unexpected event", "got %s", payload)
	default:
	}
}

func (s *EngineSuite) TestCreateSessionStartsEmpty() {
	session, err := s.engine.CreateSession(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(session.ID)
	s.Equal(0, session.Phase)
	s.Nil(session.State)

	fetched, err := s.engine.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(0, fetched.Phase)
	s.Equal(0, s.registry.RoomSize(session.ID), "no room until the first join")
}

func (s *EngineSuite) TestJoinDeliversSnapshot() {
	session, _ := s.engine.CreateSession(s.ctx)
	sub := registry.NewSubscriber("conn-a")

	_, err := s.engine.Join(s.ctx, sub, session.ID)
	s.Require().NoError(err)
	s.Equal(1, s.registry.RoomSize(session.ID))

	ev := s.receiveEvent(sub)
	s.Equal(EventTypeGame, ev.Type)
	s.Equal(0, ev.Phase)
	s.JSONEq(`null`, string(ev.State))
}

func (s *EngineSuite) TestJoinMissingSessionStillRegisters() {
	sub := registry.NewSubscriber("conn-a")

	_, err := s.engine.Join(s.ctx, sub, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Reference policy: membership stands, no snapshot was delivered.
	s.Equal(1, s.registry.RoomSize("missing"))
	s.assertNoEvent(sub)
}

func (s *EngineSuite) TestJoinMissingSessionRejectPolicy() {
	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Now())
	engine := New(memory.New(), s.registry, clk, Config{RejectMissingJoin: true}, logger)
	sub := registry.NewSubscriber("conn-a")

	_, err := engine.Join(s.ctx, sub, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal(0, s.registry.RoomSize("missing"))
}

func (s *EngineSuite) TestSetPersistsAndAcks() {
	session, _ := s.engine.CreateSession(s.ctx)

	updated, err := s.engine.Set(s.ctx, session.ID, Update{
		Phase: intPtr(1),
		State: json.RawMessage(`{"turn":"A"}`),
	})
	s.Require().NoError(err)
	s.Equal(1, updated.Phase)
	s.JSONEq(`{"turn":"A"}`, string(updated.State))

	fetched, err := s.engine.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, fetched.Phase)
	s.JSONEq(`{"turn":"A"}`, string(fetched.State))
}

func (s *EngineSuite) TestSetBroadcastsToWholeRoom() {
	session, _ := s.engine.CreateSession(s.ctx)

	subs := []*registry.Subscriber{
		registry.NewSubscriber("a"),
		registry.NewSubscriber("b"),
		registry.NewSubscriber("c"),
	}
	for _, sub := range subs {
		_, err := s.engine.Join(s.ctx, sub, session.ID)
		s.Require().NoError(err)
		s.receiveEvent(sub) // drain the join snapshot
	}

	_, err := s.engine.Set(s.ctx, session.ID, Update{Phase: intPtr(2)})
	s.Require().NoError(err)

	// Exactly one delivery per member, including any member that issued the
	// set itself.
	for _, sub := range subs {
		ev := s.receiveEvent(sub)
		s.Equal(2, ev.Phase)
		s.assertNoEvent(sub)
	}
}

func (s *EngineSuite) TestSetUnknownSession() {
	sub := registry.NewSubscriber("a")
	s.registry.Join(sub, "other")

	_, err := s.engine.Set(s.ctx, "missing", Update{Phase: intPtr(1)})
	s.ErrorIs(err, model.ErrSessionNotFound)

	s.Equal(0, s.registry.RoomSize("missing"), "failed set must not create a room")
	s.assertNoEvent(sub)
}

func (s *EngineSuite) TestSetPartialUpdatePreservesOmittedFields() {
	session, _ := s.engine.CreateSession(s.ctx)

	_, err := s.engine.Set(s.ctx, session.ID, Update{
		Phase: intPtr(3),
		State: json.RawMessage(`{"board":[1,2,3]}`),
	})
	s.Require().NoError(err)

	// Phase only: state untouched
	updated, err := s.engine.Set(s.ctx, session.ID, Update{Phase: intPtr(4)})
	s.Require().NoError(err)
	s.Equal(4, updated.Phase)
	s.JSONEq(`{"board":[1,2,3]}`, string(updated.State))

	// State only: phase untouched
	updated, err = s.engine.Set(s.ctx, session.ID, Update{State: json.RawMessage(`{"board":[]}`)})
	s.Require().NoError(err)
	s.Equal(4, updated.Phase)
	s.JSONEq(`{"board":[]}`, string(updated.State))
}

func (s *EngineSuite) TestSetRejectsNegativePhase() {
	session, _ := s.engine.CreateSession(s.ctx)

	_, err := s.engine.Set(s.ctx, session.ID, Update{Phase: intPtr(-1)})
	s.ErrorIs(err, model.ErrInvalidUpdate)
}

func (s *EngineSuite) TestSetRejectsMalformedState() {
	session, _ := s.engine.CreateSession(s.ctx)

	_, err := s.engine.Set(s.ctx, session.ID, Update{State: json.RawMessage(`{not json`)})
	s.ErrorIs(err, model.ErrInvalidUpdate)

	// The record is untouched
	fetched, err := s.engine.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(0, fetched.Phase)
}

func (s *EngineSuite) TestLateJoinerGetsFreshSnapshot() {
	session, _ := s.engine.CreateSession(s.ctx)

	a := registry.NewSubscriber("a")
	_, err := s.engine.Join(s.ctx, a, session.ID)
	s.Require().NoError(err)
	ev := s.receiveEvent(a)
	s.Equal(0, ev.Phase)

	_, err = s.engine.Set(s.ctx, session.ID, Update{
		Phase: intPtr(1),
		State: json.RawMessage(`{"turn":"A"}`),
	})
	s.Require().NoError(err)

	ev = s.receiveEvent(a)
	s.Equal(1, ev.Phase)
	s.JSONEq(`{"turn":"A"}`, string(ev.State))

	// B joins after the set and must see the new state, not a stale snapshot
	b := registry.NewSubscriber("b")
	_, err = s.engine.Join(s.ctx, b, session.ID)
	s.Require().NoError(err)

	ev = s.receiveEvent(b)
	s.Equal(1, ev.Phase)
	s.JSONEq(`{"turn":"A"}`, string(ev.State))
}
