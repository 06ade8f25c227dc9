// internal/api/handlers_candidates.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/validation"
	"recruitflow/internal/cv"
	"recruitflow/internal/models"
	"recruitflow/internal/pipeline"
	"recruitflow/internal/search"
	"recruitflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CandidateHandlers struct {
	store     store.Store
	pipeline  *pipeline.Service
	indexer   *search.Indexer
	extractor *cv.Extractor
	logger    logger.Logger
}

type candidateCreateRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	VacancyID string `json:"vacancyId"`
	CVText    string `json:"cvText"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type notifyRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Create accepts either a JSON body carrying cvText directly, or a
// multipart form with a "cv" file that gets extracted to text.
func (h *CandidateHandlers) Create(c *gin.Context) {
	var req candidateCreateRequest

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		req.Name = c.PostForm("name")
		req.Email = c.PostForm("email")
		req.Phone = c.PostForm("phone")
		req.VacancyID = c.PostForm("vacancyId")

		fileHeader, err := c.FormFile("cv")
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidationFailed("cv file is required for multipart uploads"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			apperrors.Respond(c, apperrors.NewCVExtractionFailed(err.Error()))
			return
		}
		defer file.Close()

		extracted, err := h.extractor.Extract(fileHeader.Filename, file)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		req.CVText = extracted.Text
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.NewValidationFailed("invalid request body"))
			return
		}
	}

	if req.Name == "" || req.Email == "" || req.VacancyID == "" {
		apperrors.Respond(c, apperrors.NewValidationFailed("name, email and vacancyId are required"))
		return
	}
	if _, err := h.store.GetVacancy(contextOf(c), req.VacancyID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	candidate := &models.Candidate{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		VacancyID: req.VacancyID,
		CVText:    req.CVText,
		Status:    models.StatusApplied,
	}
	if err := h.store.CreateCandidate(contextOf(c), candidate); err != nil {
		apperrors.Respond(c, err)
		return
	}

	if h.indexer != nil {
		if err := h.indexer.IndexCandidate(contextOf(c), candidate); err != nil {
			h.logger.Warn("failed to index new candidate", map[string]interface{}{
				"candidateId": candidate.ID,
				"error":       err,
			})
		}
	}

	c.JSON(http.StatusCreated, candidate)
}

func (h *CandidateHandlers) Get(c *gin.Context) {
	candidate, err := h.store.GetCandidate(contextOf(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandlers) List(c *gin.Context) {
	candidates, err := h.store.ListCandidates(contextOf(c), c.Query("vacancyId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

func (h *CandidateHandlers) Evaluate(c *gin.Context) {
	result, err := h.pipeline.Evaluate(contextOf(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CandidateHandlers) UpdateStatus(c *gin.Context) {
	_, req, err := bindValidated[statusUpdateRequest](c, validation.SchemaStatusUpdate)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	candidate, err := h.pipeline.ChangeStatus(contextOf(c), c.Param("id"), models.Status(req.Status))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandlers) Notify(c *gin.Context) {
	_, req, err := bindValidated[notifyRequest](c, validation.SchemaNotify)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	results, err := h.pipeline.Notify(contextOf(c), c.Param("id"), req.Message, req.Type)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *CandidateHandlers) Search(c *gin.Context) {
	minScore := 0
	if raw := c.Query("minScore"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidationFailed("minScore must be an integer"))
			return
		}
		minScore = parsed
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidationFailed("size must be an integer"))
			return
		}
		size = parsed
	}

	docs, err := h.indexer.Search(contextOf(c), search.Query{
		Text:           c.Query("q"),
		VacancyID:      c.Query("vacancyId"),
		Status:         c.Query("status"),
		Classification: c.Query("classification"),
		MinScore:       minScore,
		Size:           size,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if docs == nil {
		docs = []search.CandidateDocument{}
	}
	c.JSON(http.StatusOK, gin.H{"results": docs})
}
