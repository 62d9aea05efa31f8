// Package notify is the task service's client for the realtime push
// endpoint. Pushes are best effort; a failed or unreachable push never
// fails the operation that triggered it.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/httpclient"
	"taskflow-backend/internal/common/logger"
)

// Notifier delivers a message to a connected recipient.
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string) (bool, error)
}

// Client calls the delivery endpoint of the realtime service.
type Client struct {
	http   *httpclient.Client
	logger logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		http:   httpclient.NewClient(baseURL, timeout),
		logger: log.WithFields(map[string]interface{}{"component": "notify_client"}),
	}
}

type notifyRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// Notify pushes a message to the recipient's live session. It reports
// whether the recipient was reachable. An unreachable recipient is a
// normal outcome, not an error.
func (c *Client) Notify(ctx context.Context, recipientID, message string) (bool, error) {
	req := notifyRequest{RecipientID: recipientID, Message: message}
	status, err := c.http.PostJSON(ctx, "/notify", req, nil)
	if err != nil {
		return false, apperrors.NewPushSendFailedError(recipientID, err)
	}

	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		c.logger.Debug("recipient not connected", map[string]interface{}{
			"recipient_id": recipientID,
		})
		return false, nil
	default:
		return false, apperrors.NewPushSendFailedError(recipientID, fmt.Errorf("unexpected status %d", status))
	}
}
