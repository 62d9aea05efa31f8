package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/observability"
)

// newGatewayServer starts a gateway on an httptest server and returns the
// websocket URL to dial.
func newGatewayServer(t *testing.T) (string, *Registry, *Deliverer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := NewRegistry(logger.NewTestLogger(t))
	gateway := NewGateway(registry, logger.NewTestLogger(t), 1024, 5*time.Second)
	deliverer := NewDeliverer(registry, logger.NewTestLogger(t), observability.NewNoop())

	router := gin.New()
	router.GET("/ws", gateway.Handler())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return wsURL, registry, deliverer
}

func dialAndRegister(t *testing.T, wsURL, userID string, registry *Registry) *websocket.Conn {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	require.NoError(t, ws.WriteJSON(Frame{Event: EventRegister, Data: userID}))

	// The register frame is processed asynchronously by the read loop.
	require.Eventually(t, func() bool {
		_, ok := registry.Lookup(userID)
		return ok
	}, 2*time.Second, 10*time.Millisecond, "binding for %s never appeared", userID)

	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn, timeout time.Duration) (Frame, error) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(timeout))
	var frame Frame
	err := ws.ReadJSON(&frame)
	return frame, err
}

func TestGateway_ConnectedUserReceivesPush(t *testing.T) {
	wsURL, registry, deliverer := newGatewayServer(t)
	ws := dialAndRegister(t, wsURL, "u1", registry)

	reachable := deliverer.Deliver(context.Background(), "u1", "Alice assigned you a new task: Ship it")
	require.True(t, reachable)

	frame, err := readFrame(t, ws, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventNewNotification, frame.Event)
	assert.Equal(t, "Alice assigned you a new task: Ship it", frame.Data)

	// Exactly one push per delivery call: nothing else is in flight.
	_, err = readFrame(t, ws, 200*time.Millisecond)
	assert.Error(t, err, "no second frame expected")
}

func TestGateway_NeverConnectedUserIsUnreachable(t *testing.T) {
	_, _, deliverer := newGatewayServer(t)

	reachable := deliverer.Deliver(context.Background(), "u2", "anything")
	assert.False(t, reachable)
}

func TestGateway_DisconnectRemovesBinding(t *testing.T) {
	wsURL, registry, deliverer := newGatewayServer(t)
	ws := dialAndRegister(t, wsURL, "u1", registry)

	require.NoError(t, ws.Close())

	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "binding survived disconnect")

	assert.False(t, deliverer.Deliver(context.Background(), "u1", "late"))
}

func TestGateway_CloseBeforeIdentifyIsHarmless(t *testing.T) {
	wsURL, registry, _ := newGatewayServer(t)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.NoError(t, ws.Close())

	// The close path unregisters unconditionally; with no binding this is a
	// no-op and nothing else should be disturbed.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, registry.Size())
}

func TestGateway_ReconnectRestoresReachability(t *testing.T) {
	wsURL, registry, deliverer := newGatewayServer(t)

	ws := dialAndRegister(t, wsURL, "u1", registry)
	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	require.False(t, deliverer.Deliver(context.Background(), "u1", "while offline"))

	ws2 := dialAndRegister(t, wsURL, "u1", registry)

	require.True(t, deliverer.Deliver(context.Background(), "u1", "back online"))
	frame, err := readFrame(t, ws2, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventNewNotification, frame.Event)
	assert.Equal(t, "back online", frame.Data)
}

func TestGateway_SecondRegistrationSupersedesFirstConnection(t *testing.T) {
	wsURL, registry, deliverer := newGatewayServer(t)

	ws1 := dialAndRegister(t, wsURL, "u1", registry)
	first, _ := registry.Lookup("u1")

	// Same identity announced from a second connection.
	ws2, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws2.Close() })
	require.NoError(t, ws2.WriteJSON(Frame{Event: EventRegister, Data: "u1"}))

	require.Eventually(t, func() bool {
		h, ok := registry.Lookup("u1")
		return ok && h != first
	}, 2*time.Second, 10*time.Millisecond, "second registration never superseded the first")

	require.True(t, deliverer.Deliver(context.Background(), "u1", "for the new connection"))

	frame, err := readFrame(t, ws2, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "for the new connection", frame.Data)

	// The superseded connection gets nothing, and its eventual close must
	// not evict the new binding.
	_, err = readFrame(t, ws1, 200*time.Millisecond)
	assert.Error(t, err)
	require.NoError(t, ws1.Close())
	time.Sleep(50 * time.Millisecond)
	_, ok := registry.Lookup("u1")
	assert.True(t, ok, "stale disconnect removed the newer binding")
}

func TestGateway_UnknownFrameIsIgnored(t *testing.T) {
	wsURL, registry, deliverer := newGatewayServer(t)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	require.NoError(t, ws.WriteJSON(Frame{Event: "ping", Data: "x"}))
	require.NoError(t, ws.WriteJSON(Frame{Event: EventRegister, Data: "u1"}))

	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, deliverer.Deliver(context.Background(), "u1", "after noise"))
}
