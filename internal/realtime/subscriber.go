package realtime

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"taskflow-backend/internal/common/logger"
)

// MessageHandler receives each pushed notification message. It is a side
// effect only; the subscriber never touches the notification store.
type MessageHandler func(message string)

// Subscriber maintains live reachability for one logged-in user: it dials the
// gateway, announces identity on every successful connect, and dials again
// with backoff after any drop. There is no resumption token and no replay;
// re-announcement is the whole reconnect contract.
type Subscriber struct {
	url     string
	userID  string
	handler MessageHandler
	logger  logger.Logger
	dialer  *websocket.Dialer

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func NewSubscriber(url, userID string, handler MessageHandler, log logger.Logger) *Subscriber {
	return &Subscriber{
		url:     url,
		userID:  userID,
		handler: handler,
		logger: log.WithFields(map[string]interface{}{
			"component": "subscriber",
			"userId":    userID,
		}),
		dialer:         websocket.DefaultDialer,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
	}
}

// Run connects and keeps the session alive until ctx is cancelled. Closing
// the context closes the transport; registry cleanup happens on the gateway
// side, the client never sends an explicit unregister.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := s.initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		if s.runOnce(ctx) {
			// A session that identified successfully resets the backoff.
			backoff = s.initialBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// runOnce performs one connect/announce/read session. It reports whether the
// identity announcement was sent, so the caller can reset its backoff.
func (s *Subscriber) runOnce(ctx context.Context) bool {
	ws, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.logger.Warn("dial failed", map[string]interface{}{
			"url":   s.url,
			"error": err,
		})
		return false
	}
	defer ws.Close()

	// Announce immediately on every (re)connect.
	if err := ws.WriteJSON(Frame{Event: EventRegister, Data: s.userID}); err != nil {
		s.logger.Warn("identity announcement failed", map[string]interface{}{
			"error": err,
		})
		return false
	}
	s.logger.Info("session established", map[string]interface{}{
		"url": s.url,
	})

	// Close the transport when ctx ends so the read loop unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.Close()
		case <-done:
		}
	}()

	for {
		var frame Frame
		if err := ws.ReadJSON(&frame); err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("connection dropped", map[string]interface{}{
					"error": err,
				})
			}
			return true
		}

		if frame.Event == EventNewNotification {
			s.handler(frame.Data)
		}
	}
}
