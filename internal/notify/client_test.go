package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/internal/common/logger"
)

func newNotifyServer(t *testing.T, status int) (*Client, *[]notifyRequest) {
	t.Helper()
	received := &[]notifyRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/notify", r.URL.Path)
		var req notifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*received = append(*received, req)
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, logger.NewTestLogger(t)), received
}

func TestClient_Notify_Reachable(t *testing.T) {
	client, received := newNotifyServer(t, http.StatusOK)

	reachable, err := client.Notify(context.Background(), "u1", "hello")

	require.NoError(t, err)
	assert.True(t, reachable)
	require.Len(t, *received, 1)
	assert.Equal(t, "u1", (*received)[0].RecipientID)
	assert.Equal(t, "hello", (*received)[0].Message)
}

func TestClient_Notify_Unreachable(t *testing.T) {
	client, _ := newNotifyServer(t, http.StatusNotFound)

	reachable, err := client.Notify(context.Background(), "u1", "hello")

	require.NoError(t, err)
	assert.False(t, reachable)
}

func TestClient_Notify_UnexpectedStatus(t *testing.T) {
	client, _ := newNotifyServer(t, http.StatusInternalServerError)

	reachable, err := client.Notify(context.Background(), "u1", "hello")

	require.Error(t, err)
	assert.False(t, reachable)
}

func TestClient_Notify_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewClient(url, 200*time.Millisecond, logger.NewTestLogger(t))

	reachable, err := client.Notify(context.Background(), "u1", "hello")

	require.Error(t, err)
	assert.False(t, reachable)
}
