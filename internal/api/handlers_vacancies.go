// internal/api/handlers_vacancies.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/validation"
	"recruitflow/internal/models"
	"recruitflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VacancyHandlers struct {
	store  store.Store
	logger logger.Logger
}

type vacancyRequest struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	RequiredSkills []string           `json:"requiredSkills"`
	Thresholds     *models.Thresholds `json:"thresholds"`
	AIAgentID      string             `json:"aiAgentId"`
	Open           *bool              `json:"open"`
}

func (h *VacancyHandlers) Create(c *gin.Context) {
	_, req, err := bindValidated[vacancyRequest](c, validation.SchemaVacancyCreate)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if req.AIAgentID != "" {
		if _, err := h.store.GetAgent(contextOf(c), req.AIAgentID); err != nil {
			apperrors.Respond(c, err)
			return
		}
	}

	open := true
	if req.Open != nil {
		open = *req.Open
	}

	vacancy := &models.Vacancy{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Thresholds:     req.Thresholds,
		AIAgentID:      req.AIAgentID,
		Open:           open,
	}
	if err := h.store.CreateVacancy(contextOf(c), vacancy); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, vacancy)
}

func (h *VacancyHandlers) Get(c *gin.Context) {
	vacancy, err := h.store.GetVacancy(contextOf(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, vacancy)
}

func (h *VacancyHandlers) List(c *gin.Context) {
	vacancies, err := h.store.ListVacancies(contextOf(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if vacancies == nil {
		vacancies = []models.Vacancy{}
	}
	c.JSON(http.StatusOK, gin.H{"vacancies": vacancies})
}

func (h *VacancyHandlers) Update(c *gin.Context) {
	existing, err := h.store.GetVacancy(contextOf(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	_, req, err := bindValidated[vacancyRequest](c, validation.SchemaVacancyCreate)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if req.AIAgentID != "" {
		if _, err := h.store.GetAgent(contextOf(c), req.AIAgentID); err != nil {
			apperrors.Respond(c, err)
			return
		}
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.RequiredSkills = req.RequiredSkills
	existing.Thresholds = req.Thresholds
	existing.AIAgentID = req.AIAgentID
	if req.Open != nil {
		existing.Open = *req.Open
	}

	if err := h.store.UpdateVacancy(contextOf(c), existing); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (h *VacancyHandlers) Delete(c *gin.Context) {
	if err := h.store.DeleteVacancy(contextOf(c), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindValidated reads the request body, checks it against a named schema,
// and decodes it into T. The raw payload is returned for handlers that need
// to re-inspect it.
func bindValidated[T any](c *gin.Context, schemaName string) ([]byte, *T, error) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, nil, apperrors.NewValidationFailed("failed to read request body")
	}

	result, err := validation.Validate(schemaName, payload)
	if err != nil {
		return nil, nil, apperrors.NewInternal(err)
	}
	if !result.Valid {
		return nil, nil, apperrors.NewValidationFailed(result.ErrorString())
	}

	var req T
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, nil, apperrors.NewValidationFailed("payload is not valid JSON")
	}
	return payload, &req, nil
}
