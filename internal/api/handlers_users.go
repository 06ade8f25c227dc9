// internal/api/handlers_users.go
package api

import (
	"net/http"

	"recruitflow/internal/auth"
	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/validation"
	"recruitflow/internal/models"
	"recruitflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandlers struct {
	store  store.Store
	logger logger.Logger
}

type userCreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userUpdateRequest struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

func (h *UserHandlers) Create(c *gin.Context) {
	_, req, err := bindValidated[userCreateRequest](c, validation.SchemaUserCreate)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apperrors.Respond(c, apperrors.NewValidationFailed(err.Error()))
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}
	if err := h.store.CreateUser(contextOf(c), user); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) List(c *gin.Context) {
	users, err := h.store.ListUsers(contextOf(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandlers) Update(c *gin.Context) {
	user, err := h.store.GetUser(contextOf(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidationFailed("invalid request body"))
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		switch req.Role {
		case models.RoleAdmin, models.RoleRecruiter, models.RoleViewer:
			user.Role = req.Role
		default:
			apperrors.Respond(c, apperrors.NewValidationFailed("unknown role: "+req.Role))
			return
		}
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidationFailed(err.Error()))
			return
		}
		user.PasswordHash = hash
	}

	if err := h.store.UpdateUser(contextOf(c), user); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
