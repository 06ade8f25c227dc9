// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"strings"
	"time"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/metrics"
	"recruitflow/internal/common/observability"
	"recruitflow/internal/models"
	"recruitflow/internal/scoring"
	"recruitflow/internal/store"
)

// Notifier is the outbound messaging surface the pipeline drives.
type Notifier interface {
	StatusChanged(ctx context.Context, candidate *models.Candidate, vacancyTitle string, oldStatus, newStatus models.Status)
	SendAdHoc(ctx context.Context, candidate *models.Candidate, message, channel string) ([]models.SendResult, error)
}

// EventPublisher emits the hiring event when a candidate reaches hired.
type EventPublisher interface {
	PublishHired(ctx context.Context, candidate *models.Candidate) error
}

// CandidateIndexer mirrors candidate records into the search index.
type CandidateIndexer interface {
	IndexCandidate(ctx context.Context, candidate *models.Candidate) error
}

// EvaluationResult is what one scoring pass produced for a candidate.
type EvaluationResult struct {
	Candidate      *models.Candidate     `json:"candidate"`
	Score          int                   `json:"score"`
	Classification models.Classification `json:"classification"`
	Thresholds     models.Thresholds     `json:"thresholds"`
	Degraded       bool                  `json:"degraded"`
	DegradedReason string                `json:"degradedReason,omitempty"`
}

// Service orchestrates the candidate pipeline: AI evaluation, status
// transitions with their notifications, and ad-hoc outreach.
type Service struct {
	store     store.Store
	provider  scoring.Provider
	notifier  Notifier
	indexer   CandidateIndexer
	publisher EventPublisher
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(st store.Store, provider scoring.Provider, notifier Notifier, indexer CandidateIndexer, publisher EventPublisher, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		store:     st,
		provider:  provider,
		notifier:  notifier,
		indexer:   indexer,
		publisher: publisher,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Evaluate scores a candidate's CV against their vacancy and persists the
// score, classification, and justification as one unit. A degraded scoring
// result is still persisted: the candidate ends up classified under the
// effective thresholds rather than stuck unscored.
func (s *Service) Evaluate(ctx context.Context, candidateID string) (*EvaluationResult, error) {
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(candidate.CVText) == "" {
		return nil, apperrors.NewMissingCVText(candidateID)
	}

	vacancy, err := s.store.GetVacancy(ctx, candidate.VacancyID)
	if err != nil {
		return nil, err
	}

	var agent *models.AIAgent
	if vacancy.AIAgentID != "" {
		agent, err = s.store.GetAgent(ctx, vacancy.AIAgentID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				return nil, err
			}
			s.logger.Warn("vacancy references missing agent, scoring without it", map[string]interface{}{
				"vacancyId": vacancy.ID,
				"agentId":   vacancy.AIAgentID,
			})
			agent = nil
		}
	}

	start := time.Now()
	result := s.provider.Score(ctx, scoring.ScoreRequest{
		CVText:         candidate.CVText,
		JobDescription: vacancy.Description,
		RequiredSkills: vacancy.RequiredSkills,
		Agent:          agent,
	})
	elapsed := time.Since(start)

	outcome := "scored"
	if result.Degraded {
		outcome = "degraded"
	}
	metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()
	metrics.EvaluationDuration.Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordScoringCall(ctx, outcome)
		s.obs.RecordScoringDuration(ctx, elapsed, outcome)
	}

	var agentThresholds *models.Thresholds
	if agent != nil {
		agentThresholds = agent.Thresholds
	}
	thresholds := scoring.EffectiveThresholds(vacancy.Thresholds, agentThresholds)
	classification := scoring.Classify(result.Score, thresholds)

	eval := models.Evaluation{
		Score:          result.Score,
		Classification: classification,
		Justification:  buildJustification(result),
	}
	if err := s.store.UpdateEvaluation(ctx, candidateID, eval); err != nil {
		return nil, err
	}

	if agent != nil && !result.Degraded {
		if err := s.store.IncrementAgentUsage(ctx, agent.ID); err != nil {
			s.logger.Warn("failed to count agent usage", map[string]interface{}{
				"agentId": agent.ID,
				"error":   err,
			})
		}
	}

	candidate.AIScore = &eval.Score
	candidate.AIClassification = eval.Classification
	candidate.AIJustification = eval.Justification
	candidate.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.reindex(ctx, candidate)

	s.logger.Info("candidate evaluated", map[string]interface{}{
		"candidateId":    candidateID,
		"score":          result.Score,
		"classification": string(classification),
		"degraded":       result.Degraded,
	})

	return &EvaluationResult{
		Candidate:      candidate,
		Score:          result.Score,
		Classification: classification,
		Thresholds:     thresholds,
		Degraded:       result.Degraded,
		DegradedReason: result.DegradedReason,
	}, nil
}

// ChangeStatus moves a candidate to a new pipeline status. The transition
// is persisted first; the notification, hired event, and index update that
// follow are best effort and never undo it.
func (s *Service) ChangeStatus(ctx context.Context, candidateID string, newStatus models.Status) (*models.Candidate, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidStatus(string(newStatus))
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	oldStatus := candidate.Status

	if err := s.store.UpdateStatus(ctx, candidateID, newStatus); err != nil {
		return nil, err
	}
	candidate.Status = newStatus
	candidate.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	metrics.StatusTransitionsTotal.WithLabelValues(string(newStatus)).Inc()

	vacancyTitle := ""
	if vacancy, err := s.store.GetVacancy(ctx, candidate.VacancyID); err != nil {
		s.logger.Warn("failed to load vacancy for notification", map[string]interface{}{
			"candidateId": candidateID,
			"vacancyId":   candidate.VacancyID,
			"error":       err,
		})
	} else {
		vacancyTitle = vacancy.Title
	}

	s.notifier.StatusChanged(ctx, candidate, vacancyTitle, oldStatus, newStatus)

	if newStatus == models.StatusHired && s.publisher != nil {
		if err := s.publisher.PublishHired(ctx, candidate); err != nil {
			s.logger.Error("failed to publish hired event", map[string]interface{}{
				"candidateId": candidateID,
				"error":       err,
			})
		}
	}

	s.reindex(ctx, candidate)

	s.logger.Info("candidate status changed", map[string]interface{}{
		"candidateId": candidateID,
		"from":        string(oldStatus),
		"to":          string(newStatus),
	})
	return candidate, nil
}

// Notify sends a free-form message to a candidate over the requested
// channel. Every attempted channel is recorded in the candidate's
// communication log, failed deliveries included, so the log reflects what
// was attempted rather than what arrived.
func (s *Service) Notify(ctx context.Context, candidateID, message, channel string) ([]models.SendResult, error) {
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	results, err := s.notifier.SendAdHoc(ctx, candidate, message, channel)
	if err != nil {
		return nil, err
	}

	sentAt := time.Now().UTC().Format(time.RFC3339)
	for _, r := range results {
		comm := models.Communication{
			Type:    r.Channel,
			Message: message,
			SentAt:  sentAt,
		}
		if err := s.store.AppendCommunication(ctx, candidateID, comm); err != nil {
			s.logger.Error("failed to record communication", map[string]interface{}{
				"candidateId": candidateID,
				"channel":     r.Channel,
				"error":       err,
			})
		}
	}

	return results, nil
}

func (s *Service) reindex(ctx context.Context, candidate *models.Candidate) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexCandidate(ctx, candidate); err != nil {
		s.logger.Warn("failed to index candidate", map[string]interface{}{
			"candidateId": candidate.ID,
			"error":       err,
		})
	}
}

func buildJustification(result scoring.ScoreResult) string {
	var parts []string
	if result.Summary != "" {
		parts = append(parts, result.Summary)
	}
	if len(result.Strengths) > 0 {
		parts = append(parts, "Strengths: "+strings.Join(result.Strengths, "; "))
	}
	if len(result.Concerns) > 0 {
		parts = append(parts, "Concerns: "+strings.Join(result.Concerns, "; "))
	}
	if len(parts) == 0 && result.DegradedReason != "" {
		parts = append(parts, result.DegradedReason)
	}
	return strings.Join(parts, " ")
}
