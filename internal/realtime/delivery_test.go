package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/observability"
)

// failingHandle simulates a bound connection whose transport send fails.
type failingHandle struct {
	calls int
}

func (f *failingHandle) Send(event, data string) error {
	f.calls++
	return errors.New("broken pipe")
}

func newTestDeliverer(t *testing.T) (*Deliverer, *Registry) {
	t.Helper()
	r := NewRegistry(logger.NewTestLogger(t))
	d := NewDeliverer(r, logger.NewTestLogger(t), observability.NewNoop())
	return d, r
}

func TestDeliverer_Deliver_BoundRecipient(t *testing.T) {
	d, r := newTestDeliverer(t)
	h := &fakeHandle{name: "h1"}
	r.Register("u1", h)

	reachable := d.Deliver(context.Background(), "u1", "Alice assigned you a new task: Write docs")

	assert.True(t, reachable)
	require.Equal(t, 1, h.sentCount(), "exactly one push per delivery call")
	assert.Equal(t, "newNotification:Alice assigned you a new task: Write docs", h.sent[0])
}

func TestDeliverer_Deliver_UnboundRecipient(t *testing.T) {
	d, _ := newTestDeliverer(t)

	reachable := d.Deliver(context.Background(), "u2", "hello")

	assert.False(t, reachable, "offline recipient is an expected, non-exceptional outcome")
}

func TestDeliverer_Deliver_SendFailureIsBestEffort(t *testing.T) {
	d, r := newTestDeliverer(t)
	h := &failingHandle{}
	r.Register("u1", h)

	reachable := d.Deliver(context.Background(), "u1", "hello")

	assert.True(t, reachable, "send failure must not surface to the caller")
	assert.Equal(t, 1, h.calls, "no retry on send failure")
}

func TestDeliverer_Deliver_ReachabilityFollowsRegistry(t *testing.T) {
	d, r := newTestDeliverer(t)
	h := &fakeHandle{name: "h1"}

	assert.False(t, d.Deliver(context.Background(), "u1", "m1"))

	r.Register("u1", h)
	assert.True(t, d.Deliver(context.Background(), "u1", "m2"))

	r.Unregister(h)
	assert.False(t, d.Deliver(context.Background(), "u1", "m3"))

	assert.Equal(t, 1, h.sentCount(), "zero pushes while unbound")
}

// ==========================
// HTTP handler tests
// ==========================

func newNotifyRouter(t *testing.T) (*gin.Engine, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d, r := newTestDeliverer(t)
	router := gin.New()
	router.POST("/notify", d.Handler())
	return router, r
}

func postNotify(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/notify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNotifyHandler_BoundRecipient(t *testing.T) {
	router, r := newNotifyRouter(t)
	h := &fakeHandle{name: "h1"}
	r.Register("u1", h)

	body, _ := json.Marshal(NotifyRequest{RecipientID: "u1", Message: "task assigned"})
	w := postNotify(router, body)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 1, h.sentCount())
}

func TestNotifyHandler_UnboundRecipient(t *testing.T) {
	router, _ := newNotifyRouter(t)

	body, _ := json.Marshal(NotifyRequest{RecipientID: "nobody", Message: "task assigned"})
	w := postNotify(router, body)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "recipient not connected", resp["error"])
}

func TestNotifyHandler_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing recipientId", body: `{"message":"hi"}`},
		{name: "missing message", body: `{"recipientId":"u1"}`},
		{name: "empty recipientId", body: `{"recipientId":"","message":"hi"}`},
		{name: "unexpected field", body: `{"recipientId":"u1","message":"hi","ack":true}`},
		{name: "not JSON", body: `recipientId=u1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newNotifyRouter(t)
			w := postNotify(router, []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
