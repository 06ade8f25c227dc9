// internal/api/handlers_agents.go
package api

import (
	"net/http"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/validation"
	"recruitflow/internal/models"
	"recruitflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AgentHandlers struct {
	store  store.Store
	logger logger.Logger
}

type agentRequest struct {
	Name         string             `json:"name"`
	SystemPrompt string             `json:"systemPrompt"`
	Thresholds   *models.Thresholds `json:"thresholds"`
}

func (h *AgentHandlers) Create(c *gin.Context) {
	_, req, err := bindValidated[agentRequest](c, validation.SchemaAgentCreate)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	agent := &models.AIAgent{
		ID:           uuid.New().String(),
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Thresholds:   req.Thresholds,
	}
	if err := h.store.CreateAgent(contextOf(c), agent); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *AgentHandlers) Get(c *gin.Context) {
	agent, err := h.store.GetAgent(contextOf(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AgentHandlers) List(c *gin.Context) {
	agents, err := h.store.ListAgents(contextOf(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if agents == nil {
		agents = []models.AIAgent{}
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}
