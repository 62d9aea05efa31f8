package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/models"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps server-side session records in redis so that
// tokens can be revoked on logout. Records expire together with the
// tokens that reference them.
type SessionStore struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, log logger.Logger, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"store": "sessions"}),
		ttl:    ttl,
	}
}

// Create opens a new session for the user and returns its record.
func (s *SessionStore) Create(ctx context.Context, userID string) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, s.ttl).Err(); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return session, nil
}

// Get loads a session by ID. A missing or expired record means the
// token that references it has been revoked.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewSessionNotFoundError()
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	if session.IsExpired() {
		return nil, apperrors.NewSessionNotFoundError()
	}
	return &session, nil
}

// Delete revokes a session. Deleting an unknown session is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}
