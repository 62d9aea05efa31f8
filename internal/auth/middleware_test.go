package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *TokenManager, *SessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	tokens := NewTokenManager("test-secret", 1, "taskflow")
	sessions := NewSessionStore(client, log, time.Hour)
	mw := NewMiddleware(tokens, sessions, apperrors.NewHTTPResponder(log))

	router := gin.New()
	router.GET("/me", mw.Handler(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(ContextUserID)})
	})
	return router, tokens, sessions
}

func issueToken(t *testing.T, tokens *TokenManager, sessions *SessionStore) (string, string) {
	t.Helper()
	session, err := sessions.Create(context.Background(), "u1")
	require.NoError(t, err)
	token, err := tokens.Generate(testUser(), session.ID)
	require.NoError(t, err)
	return token, session.ID
}

func TestMiddleware_AllowsValidToken(t *testing.T) {
	router, tokens, sessions := newAuthRouter(t)
	token, _ := issueToken(t, tokens, sessions)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"u1"`)
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsMalformedToken(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsRevokedSession(t *testing.T) {
	router, tokens, sessions := newAuthRouter(t)
	token, sessionID := issueToken(t, tokens, sessions)
	require.NoError(t, sessions.Delete(context.Background(), sessionID))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
