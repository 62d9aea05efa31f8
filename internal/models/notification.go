package models

import "time"

// Notification is the durable record created once per task-assignment event.
// The record itself is the system of record for eventual delivery; the live
// push attempted after it is persisted is best-effort only.
type Notification struct {
	ID          string    `json:"id" db:"id"`
	RecipientID string    `json:"recipientId" db:"recipient_id"`
	TaskID      string    `json:"taskId" db:"task_id"`
	Message     string    `json:"message" db:"message"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
