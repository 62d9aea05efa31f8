package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/metrics"
	"taskflow-backend/internal/models"
)

// NotificationStore persists durable notification records. Records are
// created exactly once per task-assignment event and only ever mutated by
// the mark-read operations; nothing here deletes them.
type NotificationStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewNotificationStore(db *sql.DB, log logger.Logger) *NotificationStore {
	return &NotificationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "notifications"}),
	}
}

// Create inserts a new unread record. ID and CreatedAt are assigned here
// when the caller left them empty.
func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.Read = false

	const query = `INSERT INTO notifications (id, recipient_id, task_id, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.TaskID, n.Message, n.Read, n.CreatedAt); err != nil {
		return apperrors.NewQueryExecutionFailedError("notification insert", err)
	}

	metrics.NotificationsCreated.Inc()
	s.logger.Info("notification persisted", map[string]interface{}{
		"notificationId": n.ID,
		"recipientId":    n.RecipientID,
	})
	return nil
}

// ListByRecipient returns all records for a recipient, newest first.
func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	const query = `SELECT id, recipient_id, task_id, message, read, created_at
		FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("notification list", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// ListUnread returns the unread records for a recipient, newest first.
func (s *NotificationStore) ListUnread(ctx context.Context, recipientID string) ([]models.Notification, error) {
	const query = `SELECT id, recipient_id, task_id, message, read, created_at
		FROM notifications WHERE recipient_id = $1 AND NOT read ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("notification list unread", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// MarkRead flips one record to read. The flag is monotonic; marking an
// already-read record again is harmless.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("notification mark read", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("notification mark read", err)
	}
	if affected == 0 {
		return apperrors.NewNotificationNotFoundError(id)
	}
	return nil
}

// MarkAllRead flips every unread record for a recipient and returns how many
// were updated.
func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	const query = `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`
	res, err := s.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, apperrors.NewQueryExecutionFailedError("notification mark all read", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewQueryExecutionFailedError("notification mark all read", err)
	}
	return affected, nil
}

func scanNotifications(rows *sql.Rows) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.TaskID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("notification scan", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("notification rows", err)
	}
	return notifications, nil
}
