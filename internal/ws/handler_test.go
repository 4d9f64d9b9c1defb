package ws_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizucoffee/canislupus-server/internal/factory"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/services/sync"
	"github.com/mizucoffee/canislupus-server/internal/testutil"
	"github.com/mizucoffee/canislupus-server/internal/ws"
)

type wsTestServer struct {
	app    *factory.TestApp
	server *httptest.Server
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()

	app := factory.NewTestApp()
	handler := ws.NewHandler(app.SyncEngine, app.Registry, testutil.NopLogger())
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &wsTestServer{app: app, server: server}
}

func (ts *wsTestServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func sendJoin(t *testing.T, conn *websocket.Conn, sessionID model.SessionID) {
	t.Helper()

	cmd := map[string]string{"type": "join", "session_id": string(sessionID)}
	require.NoError(t, conn.WriteJSON(cmd))
}

func TestJoinDeliversSnapshot(t *testing.T) {
	ts := newWSTestServer(t)

	session, err := ts.app.SyncEngine.CreateSession(context.Background())
	require.NoError(t, err)

	conn := ts.dial(t)
	sendJoin(t, conn, session.ID)

	event := readEvent(t, conn)
	assert.JSONEq(t, `"game"`, string(event["type"]))
	assert.JSONEq(t, `0`, string(event["phase"]))
	assert.JSONEq(t, `null`, string(event["state"]))
}

func TestSetFansOutToAllConnections(t *testing.T) {
	ts := newWSTestServer(t)
	ctx := context.Background()

	session, err := ts.app.SyncEngine.CreateSession(ctx)
	require.NoError(t, err)

	connA := ts.dial(t)
	connB := ts.dial(t)
	sendJoin(t, connA, session.ID)
	sendJoin(t, connB, session.ID)
	readEvent(t, connA)
	readEvent(t, connB)

	_, err = ts.app.SyncEngine.Set(ctx, session.ID, sync.Update{
		State: json.RawMessage(`{"turn":"a"}`),
	})
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{connA, connB} {
		event := readEvent(t, conn)
		assert.JSONEq(t, `{"turn":"a"}`, string(event["state"]))
	}
}

func TestLateJoinerGetsCurrentState(t *testing.T) {
	ts := newWSTestServer(t)
	ctx := context.Background()

	session, err := ts.app.SyncEngine.CreateSession(ctx)
	require.NoError(t, err)

	_, err = ts.app.SyncEngine.Set(ctx, session.ID, sync.Update{
		Phase: intPtr(3),
		State: json.RawMessage(`{"round":3}`),
	})
	require.NoError(t, err)

	conn := ts.dial(t)
	sendJoin(t, conn, session.ID)

	event := readEvent(t, conn)
	assert.JSONEq(t, `3`, string(event["phase"]))
	assert.JSONEq(t, `{"round":3}`, string(event["state"]))
}

func TestJoinUnknownSession(t *testing.T) {
	ts := newWSTestServer(t)

	conn := ts.dial(t)
	sendJoin(t, conn, "missing")

	event := readEvent(t, conn)
	assert.JSONEq(t, `"error"`, string(event["type"]))
}

func TestMalformedCommand(t *testing.T) {
	ts := newWSTestServer(t)

	conn := ts.dial(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	event := readEvent(t, conn)
	assert.JSONEq(t, `"error"`, string(event["type"]))

	// The connection survives a bad command
	session, err := ts.app.SyncEngine.CreateSession(context.Background())
	require.NoError(t, err)
	sendJoin(t, conn, session.ID)
	event = readEvent(t, conn)
	assert.JSONEq(t, `"game"`, string(event["type"]))
}

func TestDisconnectLeavesRoom(t *testing.T) {
	ts := newWSTestServer(t)
	ctx := context.Background()

	session, err := ts.app.SyncEngine.CreateSession(ctx)
	require.NoError(t, err)

	conn := ts.dial(t)
	sendJoin(t, conn, session.ID)
	readEvent(t, conn)
	require.Equal(t, 1, ts.app.Registry.RoomSize(session.ID))

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return ts.app.Registry.RoomSize(session.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func intPtr(v int) *int { return &v }
