package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "taskflow-backend/internal/common/errors"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextSessionID = "session_id"
)

// Middleware authenticates requests with a bearer token and rejects
// tokens whose server-side session has been revoked.
type Middleware struct {
	tokens    *TokenManager
	sessions  *SessionStore
	responder *apperrors.HTTPResponder
}

func NewMiddleware(tokens *TokenManager, sessions *SessionStore, responder *apperrors.HTTPResponder) *Middleware {
	return &Middleware{
		tokens:    tokens,
		sessions:  sessions,
		responder: responder,
	}
}

// Handler returns the gin middleware.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.responder.Respond(c, apperrors.NewTokenInvalidError("missing bearer token"))
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			m.responder.Respond(c, err)
			return
		}

		if _, err := m.sessions.Get(c.Request.Context(), claims.ID); err != nil {
			m.responder.Respond(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextSessionID, claims.ID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
