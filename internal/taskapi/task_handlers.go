package taskapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow-backend/internal/auth"
	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/models"
)

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if !s.validateBody(c, createTaskRequestSchema, func(body []byte) error {
		return json.Unmarshal(body, &req)
	}) {
		return
	}

	task := &models.Task{
		Title:     *req.Title,
		CreatedBy: c.GetString(auth.ContextUserID),
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			s.responder.Respond(c, apperrors.NewValidationFailedError("dueDate must be RFC 3339"))
			return
		}
		task.DueDate = &due
	}

	if err := s.tasks.Create(c.Request.Context(), task); err != nil {
		s.responder.Respond(c, err)
		return
	}

	if task.AssignedTo != "" && task.AssignedTo != task.CreatedBy {
		s.notifyAssignment(c, task)
	}

	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.List(c.Request.Context())
	if err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskRequest
	if !s.validateBody(c, updateTaskRequestSchema, func(body []byte) error {
		return json.Unmarshal(body, &req)
	}) {
		return
	}

	task, err := s.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.responder.Respond(c, err)
		return
	}

	previousAssignee := task.AssignedTo
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			s.responder.Respond(c, apperrors.NewValidationFailedError("dueDate must be RFC 3339"))
			return
		}
		task.DueDate = &due
	}

	if err := s.tasks.Update(c.Request.Context(), task); err != nil {
		s.responder.Respond(c, err)
		return
	}

	// A reassignment notifies the new assignee the same way a fresh
	// assignment does.
	actorID := c.GetString(auth.ContextUserID)
	if task.AssignedTo != "" && task.AssignedTo != previousAssignee && task.AssignedTo != actorID {
		s.notifyAssignment(c, task)
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// notifyAssignment persists a notification record for the assignee and
// then attempts a live push. The push is best effort; the task
// operation has already succeeded by the time we get here.
func (s *Server) notifyAssignment(c *gin.Context, task *models.Task) {
	ctx := c.Request.Context()

	actorName := c.GetString(auth.ContextEmail)
	if actor, err := s.users.GetByID(ctx, c.GetString(auth.ContextUserID)); err == nil {
		actorName = actor.Name
	}
	message := fmt.Sprintf("%s assigned you a new task: %s", actorName, task.Title)

	notification := &models.Notification{
		RecipientID: task.AssignedTo,
		TaskID:      task.ID,
		Message:     message,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.WithError(err).Error("persist notification failed", map[string]interface{}{
			"task_id":      task.ID,
			"recipient_id": task.AssignedTo,
		})
		return
	}

	reachable, err := s.notifier.Notify(ctx, task.AssignedTo, message)
	if err != nil {
		s.logger.WithError(err).Warn("live push failed", map[string]interface{}{
			"recipient_id": task.AssignedTo,
		})
		return
	}
	if !reachable {
		s.logger.Debug("assignee offline, notification persisted only", map[string]interface{}{
			"recipient_id": task.AssignedTo,
		})
	}
}
