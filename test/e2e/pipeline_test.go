// test/e2e/pipeline_test.go
//
// Exercises the whole push pipeline in process: the task service's
// notify client posts to the delivery endpoint, which routes through
// the registry to a live websocket session held by a subscriber.
package e2e

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/observability"
	"taskflow-backend/internal/notify"
	"taskflow-backend/internal/realtime"
)

type collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *collector) add(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *collector) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

func startNotifyServer(t *testing.T) (*httptest.Server, *realtime.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewTestLogger(t)
	registry := realtime.NewRegistry(log)
	gateway := realtime.NewGateway(registry, log, 1024, time.Second)
	deliverer := realtime.NewDeliverer(registry, log, observability.NewNoop())

	router := gin.New()
	router.GET("/ws", gateway.Handler())
	router.POST("/notify", deliverer.Handler())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, registry
}

func TestPipeline_PersistThenPushReachesSubscriber(t *testing.T) {
	srv, registry := startNotifyServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	received := &collector{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := realtime.NewSubscriber(wsURL, "u1", received.add, logger.NewTestLogger(t))
	go sub.Run(ctx)

	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	client := notify.NewClient(srv.URL, time.Second, logger.NewTestLogger(t))
	reachable, err := client.Notify(context.Background(), "u1", "Alice assigned you a new task: Ship it")
	require.NoError(t, err)
	assert.True(t, reachable)

	require.Eventually(t, func() bool {
		return received.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Alice assigned you a new task: Ship it", received.last())
}

func TestPipeline_OfflineRecipientReportsUnreachable(t *testing.T) {
	srv, _ := startNotifyServer(t)

	client := notify.NewClient(srv.URL, time.Second, logger.NewTestLogger(t))
	reachable, err := client.Notify(context.Background(), "nobody", "hello")

	require.NoError(t, err)
	assert.False(t, reachable)
}

func TestPipeline_SubscriberStopsOnCancel(t *testing.T) {
	srv, registry := startNotifyServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	received := &collector{}
	ctx, cancel := context.WithCancel(context.Background())

	sub := realtime.NewSubscriber(wsURL, "u1", received.add, logger.NewTestLogger(t))
	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}

	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
