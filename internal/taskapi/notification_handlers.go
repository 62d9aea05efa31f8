package taskapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow-backend/internal/auth"
)

func (s *Server) handleListNotifications(c *gin.Context) {
	recipientID := c.GetString(auth.ContextUserID)

	var err error
	var notifications interface{}
	if c.Query("unread") == "true" {
		notifications, err = s.notifications.ListUnread(c.Request.Context(), recipientID)
	} else {
		notifications, err = s.notifications.ListByRecipient(c.Request.Context(), recipientID)
	}
	if err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(c *gin.Context) {
	if err := s.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleMarkAllNotificationsRead(c *gin.Context) {
	updated, err := s.notifications.MarkAllRead(c.Request.Context(), c.GetString(auth.ContextUserID))
	if err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}
