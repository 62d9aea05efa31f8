package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/models"
)

// uniqueViolation is the postgres error code raised on duplicate emails.
const uniqueViolation = "23505"

// UserStore persists team member accounts.
type UserStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewUserStore(db *sql.DB, log logger.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "users"}),
	}
}

// Create inserts a new account. A duplicate email maps to EMAIL_ALREADY_USED.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return apperrors.NewEmailAlreadyUsedError(u.Email)
		}
		return apperrors.NewQueryExecutionFailedError("user insert", err)
	}
	return nil
}

// GetByEmail fetches an account for login.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email), email)
}

// GetByID fetches an account by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id), id)
}

// List returns all accounts, oldest first. Password hashes stay internal;
// the API layer never serializes them.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("user list", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("user scan", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("user rows", err)
	}
	return users, nil
}

func (s *UserStore) scanOne(row *sql.Row, ref string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewUserNotFoundError(ref)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("user select", err)
	}
	return &u, nil
}
