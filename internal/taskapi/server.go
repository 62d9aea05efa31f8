// Package taskapi is the HTTP surface of the task service. It owns
// accounts, tasks and notification records, and hands live pushes off
// to the realtime service after persisting.
package taskapi

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskflow-backend/internal/auth"
	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/metrics"
	"taskflow-backend/internal/common/validation"
	"taskflow-backend/internal/notify"
	"taskflow-backend/internal/store"
)

// Server wires the stores, auth components and the push client into a
// gin router.
type Server struct {
	users         *store.UserStore
	tasks         *store.TaskStore
	notifications *store.NotificationStore
	sessions      *auth.SessionStore
	tokens        *auth.TokenManager
	notifier      notify.Notifier
	responder     *apperrors.HTTPResponder
	logger        logger.Logger
	bcryptCost    int
}

type ServerParams struct {
	Users         *store.UserStore
	Tasks         *store.TaskStore
	Notifications *store.NotificationStore
	Sessions      *auth.SessionStore
	Tokens        *auth.TokenManager
	Notifier      notify.Notifier
	Logger        logger.Logger
	BcryptCost    int
}

func NewServer(p ServerParams) *Server {
	return &Server{
		users:         p.Users,
		tasks:         p.Tasks,
		notifications: p.Notifications,
		sessions:      p.Sessions,
		tokens:        p.Tokens,
		notifier:      p.Notifier,
		responder:     apperrors.NewHTTPResponder(p.Logger),
		logger:        p.Logger.WithFields(map[string]interface{}{"component": "taskapi"}),
		bcryptCost:    p.BcryptCost,
	}
}

// Router builds the route table.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.RequestDuration("task-api"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMW := auth.NewMiddleware(s.tokens, s.sessions, s.responder).Handler()

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", s.handleRegister)
		v1.POST("/auth/login", s.handleLogin)

		authed := v1.Group("", authMW)
		{
			authed.POST("/auth/logout", s.handleLogout)
			authed.GET("/users", s.handleListUsers)

			authed.POST("/tasks", s.handleCreateTask)
			authed.GET("/tasks", s.handleListTasks)
			authed.GET("/tasks/:id", s.handleGetTask)
			authed.PUT("/tasks/:id", s.handleUpdateTask)
			authed.DELETE("/tasks/:id", s.handleDeleteTask)

			authed.GET("/notifications", s.handleListNotifications)
			authed.PUT("/notifications/read-all", s.handleMarkAllNotificationsRead)
			authed.PUT("/notifications/:id/read", s.handleMarkNotificationRead)
		}
	}
	return router
}

// validateBody reads the request body, checks it against the schema and
// decodes it into dst. It responds with 400 and returns false on any
// failure.
func (s *Server) validateBody(c *gin.Context, schema *validation.Schema, decode func([]byte) error) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.responder.Respond(c, apperrors.NewValidationFailedError("unreadable request body"))
		return false
	}
	result, err := schema.ValidateBytes(body)
	if err != nil {
		s.responder.Respond(c, apperrors.NewValidationFailedError("request body is not valid JSON"))
		return false
	}
	if !result.Valid {
		s.responder.Respond(c, apperrors.NewValidationFailedError(result.Describe()))
		return false
	}
	if err := decode(body); err != nil {
		s.responder.Respond(c, apperrors.NewValidationFailedError(err.Error()))
		return false
	}
	return true
}
