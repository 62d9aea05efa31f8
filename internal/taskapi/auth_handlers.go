package taskapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow-backend/internal/auth"
	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if !s.validateBody(c, registerRequestSchema, func(body []byte) error {
		return json.Unmarshal(body, &req)
	}) {
		return
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.responder.Respond(c, apperrors.NewInternalError(err))
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(c.Request.Context(), user); err != nil {
		s.responder.Respond(c, err)
		return
	}

	token, err := s.issueToken(c, user)
	if err != nil {
		s.responder.Respond(c, err)
		return
	}

	s.logger.Info("account registered", map[string]interface{}{"user_id": user.ID})
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !s.validateBody(c, loginRequestSchema, func(body []byte) error {
		return json.Unmarshal(body, &req)
	}) {
		return
	}

	user, err := s.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// An unknown email reads the same as a bad password.
		if stdErr, ok := err.(*apperrors.StandardError); ok && stdErr.Code == apperrors.ErrCodeUserNotFound {
			s.responder.Respond(c, apperrors.NewInvalidCredentialsError())
			return
		}
		s.responder.Respond(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.responder.Respond(c, apperrors.NewInvalidCredentialsError())
		return
	}

	token, err := s.issueToken(c, user)
	if err != nil {
		s.responder.Respond(c, err)
		return
	}

	s.logger.Info("login", map[string]interface{}{"user_id": user.ID})
	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(c *gin.Context) {
	sessionID := c.GetString(auth.ContextSessionID)
	if err := s.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) issueToken(c *gin.Context, user *models.User) (string, error) {
	session, err := s.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.Generate(user, session.ID)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}
