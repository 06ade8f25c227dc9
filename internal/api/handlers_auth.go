// internal/api/handlers_auth.go
package api

import (
	"net/http"

	"recruitflow/internal/auth"
	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/store"

	"github.com/gin-gonic/gin"
)

type AuthHandlers struct {
	store    store.Store
	sessions *auth.SessionStore
	logger   logger.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidationFailed("email and password are required"))
		return
	}

	user, err := h.store.GetUserByEmail(contextOf(c), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		apperrors.Respond(c, apperrors.NewInvalidCredentials())
		return
	}
	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		apperrors.Respond(c, apperrors.NewInvalidCredentials())
		return
	}

	session, err := h.sessions.Create(contextOf(c), user.ID, user.Email, user.Role)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	resp := loginResponse{Token: session.Token}
	resp.User.ID = user.ID
	resp.User.Email = user.Email
	resp.User.Name = user.Name
	resp.User.Role = user.Role
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	token := BearerToken(c)
	if token != "" {
		if err := h.sessions.Delete(contextOf(c), token); err != nil {
			h.logger.Warn("failed to delete session", map[string]interface{}{"error": err})
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *AuthHandlers) Me(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		apperrors.Respond(c, apperrors.NewSessionInvalid())
		return
	}

	user, err := h.store.GetUser(contextOf(c), session.UserID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
