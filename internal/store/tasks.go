package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/models"
)

// TaskStore persists tracked work items.
type TaskStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTaskStore(db *sql.DB, log logger.Logger) *TaskStore {
	return &TaskStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "tasks"}),
	}
}

// Create inserts a new task. ID and timestamps are assigned here when the
// caller left them empty.
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt
	if t.Priority == "" {
		t.Priority = models.PriorityLow
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}

	const query = `INSERT INTO tasks (id, title, description, due_date, priority, status, created_by, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := s.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.DueDate, t.Priority, t.Status,
		t.CreatedBy, t.AssignedTo, t.CreatedAt, t.UpdatedAt); err != nil {
		return apperrors.NewQueryExecutionFailedError("task insert", err)
	}
	return nil
}

// GetByID fetches one task.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT id, title, description, due_date, priority, status, created_by, assigned_to, created_at, updated_at
		FROM tasks WHERE id = $1`
	var t models.Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status,
		&t.CreatedBy, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewTaskNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("task select", err)
	}
	return &t, nil
}

// List returns all tasks, newest first.
func (s *TaskStore) List(ctx context.Context) ([]models.Task, error) {
	const query = `SELECT id, title, description, due_date, priority, status, created_by, assigned_to, created_at, updated_at
		FROM tasks ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("task list", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status,
			&t.CreatedBy, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("task scan", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("task rows", err)
	}
	return tasks, nil
}

// Update rewrites the mutable fields of a task and bumps updated_at.
func (s *TaskStore) Update(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = time.Now().UTC()

	const query = `UPDATE tasks SET title = $2, description = $3, due_date = $4, priority = $5,
		status = $6, assigned_to = $7, updated_at = $8 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.DueDate, t.Priority, t.Status, t.AssignedTo, t.UpdatedAt)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("task update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("task update", err)
	}
	if affected == 0 {
		return apperrors.NewTaskNotFoundError(t.ID)
	}
	return nil
}

// Delete removes a task. Notification records referencing it survive on
// purpose; the reference is weak.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("task delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("task delete", err)
	}
	if affected == 0 {
		return apperrors.NewTaskNotFoundError(id)
	}
	return nil
}
