package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/metrics"
	"taskflow-backend/internal/common/observability"
	"taskflow-backend/internal/common/validation"
)

// notifyRequestSchema validates the delivery ingestion payload.
var notifyRequestSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []string{"recipientId", "message"},
	"properties": map[string]interface{}{
		"recipientId": map[string]interface{}{"type": "string", "minLength": 1},
		"message":     map[string]interface{}{"type": "string", "minLength": 1},
	},
	"additionalProperties": false,
})

// NotifyRequest is the body of a delivery ingestion call.
type NotifyRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// Deliverer implements the delivery endpoint contract: the task service calls
// it after a notification record has been durably committed, and it attempts
// a live push if and only if the recipient currently holds an open session.
// It never blocks on the caller's transaction and never retries.
type Deliverer struct {
	registry *Registry
	logger   logger.Logger
	obs      *observability.Observability
}

func NewDeliverer(registry *Registry, log logger.Logger, obs *observability.Observability) *Deliverer {
	return &Deliverer{
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"component": "deliverer"}),
		obs:      obs,
	}
}

// Deliver looks up the recipient and pushes the message if bound. It returns
// true when the recipient was reachable, regardless of whether the underlying
// transport send completed: the push is fire-and-forget and a send failure is
// logged, not surfaced. False means no live session existed, an expected
// outcome; the persisted record remains the system of record.
func (d *Deliverer) Deliver(ctx context.Context, recipientID, message string) bool {
	start := time.Now()

	handle, ok := d.registry.Lookup(recipientID)
	if !ok {
		metrics.RecipientsUnreachable.Inc()
		d.obs.RecordDelivery(ctx, observability.OutcomeUnreachable)
		d.obs.RecordDeliveryDuration(ctx, time.Since(start), observability.OutcomeUnreachable)
		d.logger.Info("recipient not connected", map[string]interface{}{
			"recipientId": recipientID,
		})
		return false
	}

	if err := handle.Send(EventNewNotification, message); err != nil {
		metrics.PushSendFailures.Inc()
		sendErr := errors.NewPushSendFailedError(recipientID, err)
		d.logger.Error(sendErr.Message, map[string]interface{}{
			"recipientId": recipientID,
			"code":        sendErr.Code,
			"details":     sendErr.Details,
		})
	} else {
		metrics.PushesDelivered.Inc()
		d.logger.Info("notification pushed", map[string]interface{}{
			"recipientId": recipientID,
		})
	}

	d.obs.RecordDelivery(ctx, observability.OutcomeDelivered)
	d.obs.RecordDeliveryDuration(ctx, time.Since(start), observability.OutcomeDelivered)
	return true
}

// Handler returns the gin handler for POST /notify.
func (d *Deliverer) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}

		result, err := notifyRequestSchema.ValidateBytes(body)
		if err != nil || !result.Valid {
			details := "malformed JSON"
			if result != nil {
				details = result.Describe()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": details})
			return
		}

		var req NotifyRequest
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON"})
			return
		}

		if d.Deliver(c.Request.Context(), req.RecipientID, req.Message) {
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "recipient not connected"})
	}
}
