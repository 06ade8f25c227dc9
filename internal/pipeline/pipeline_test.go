// internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"testing"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/metrics"
	"recruitflow/internal/models"
	"recruitflow/internal/scoring"
	"recruitflow/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	result scoring.ScoreResult
	calls  int
}

func (s *stubProvider) Score(_ context.Context, _ scoring.ScoreRequest) scoring.ScoreResult {
	s.calls++
	return s.result
}

type statusCall struct {
	candidateID string
	title       string
	from, to    models.Status
}

type stubNotifier struct {
	statusCalls []statusCall
	adhocResult []models.SendResult
	adhocErr    error
}

func (s *stubNotifier) StatusChanged(_ context.Context, c *models.Candidate, title string, from, to models.Status) {
	s.statusCalls = append(s.statusCalls, statusCall{candidateID: c.ID, title: title, from: from, to: to})
}

func (s *stubNotifier) SendAdHoc(_ context.Context, _ *models.Candidate, _, _ string) ([]models.SendResult, error) {
	return s.adhocResult, s.adhocErr
}

type stubPublisher struct {
	hired []string
}

func (s *stubPublisher) PublishHired(_ context.Context, c *models.Candidate) error {
	s.hired = append(s.hired, c.ID)
	return nil
}

type stubIndexer struct {
	indexed []string
}

func (s *stubIndexer) IndexCandidate(_ context.Context, c *models.Candidate) error {
	s.indexed = append(s.indexed, c.ID)
	return nil
}

type fixture struct {
	store     *store.MemoryStore
	provider  *stubProvider
	notifier  *stubNotifier
	publisher *stubPublisher
	indexer   *stubIndexer
	svc       *Service
	candidate *models.Candidate
	vacancy   *models.Vacancy
	agent     *models.AIAgent
}

func newFixture(t *testing.T, result scoring.ScoreResult) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:     store.NewMemoryStore(),
		provider:  &stubProvider{result: result},
		notifier:  &stubNotifier{},
		publisher: &stubPublisher{},
		indexer:   &stubIndexer{},
	}
	f.svc = NewService(f.store, f.provider, f.notifier, f.indexer, f.publisher, nil, logger.NewTestLogger(t))

	f.agent = &models.AIAgent{ID: "agent-1", Name: "Tech screener", SystemPrompt: "Score strictly."}
	require.NoError(t, f.store.CreateAgent(ctx, f.agent))

	f.vacancy = &models.Vacancy{
		ID:          "vac-1",
		Title:       "Backend Engineer",
		Description: "Go services",
		AIAgentID:   "agent-1",
		Open:        true,
	}
	require.NoError(t, f.store.CreateVacancy(ctx, f.vacancy))

	f.candidate = &models.Candidate{
		ID:        "cand-1",
		Name:      "Ana Torres",
		Email:     "ana@example.com",
		Phone:     "+521555",
		VacancyID: "vac-1",
		CVText:    "Go, PostgreSQL, five years.",
		Status:    models.StatusApplied,
	}
	require.NoError(t, f.store.CreateCandidate(ctx, f.candidate))
	return f
}

func TestEvaluate_PersistsScoreAndClassification(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{Score: 86, Summary: "Strong match."})
	ctx := context.Background()

	result, err := f.svc.Evaluate(ctx, "cand-1")
	require.NoError(t, err)

	assert.Equal(t, 86, result.Score)
	assert.Equal(t, models.ClassificationIdeal, result.Classification)
	assert.False(t, result.Degraded)

	stored, err := f.store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	require.NotNil(t, stored.AIScore)
	assert.Equal(t, 86, *stored.AIScore)
	assert.Equal(t, models.ClassificationIdeal, stored.AIClassification)
	assert.Contains(t, stored.AIJustification, "Strong match.")

	agent, err := f.store.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, 1, agent.UsageCount)

	assert.Equal(t, []string{"cand-1"}, f.indexer.indexed)
}

func TestEvaluate_VacancyThresholdsWin(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{Score: 86, Summary: "Good."})
	ctx := context.Background()

	// Agent thresholds exist but the vacancy's stricter set must apply.
	require.NoError(t, f.store.CreateAgent(ctx, &models.AIAgent{
		ID:           "agent-2",
		Name:         "Lenient screener",
		SystemPrompt: "Be generous.",
		Thresholds:   &models.Thresholds{Ideal: 80, Potential: 60, Review: 40},
	}))
	f.vacancy.Thresholds = &models.Thresholds{Ideal: 90, Potential: 70, Review: 50}
	f.vacancy.AIAgentID = "agent-2"
	require.NoError(t, f.store.UpdateVacancy(ctx, f.vacancy))

	result, err := f.svc.Evaluate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, models.ClassificationPotencial, result.Classification)
	assert.Equal(t, models.Thresholds{Ideal: 90, Potential: 70, Review: 50}, result.Thresholds)
}

func TestEvaluate_DegradedStillPersists(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{
		Score:          scoring.DegradedScore,
		Degraded:       true,
		DegradedReason: "scoring integration not configured",
	})
	ctx := context.Background()

	result, err := f.svc.Evaluate(ctx, "cand-1")
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, scoring.DegradedScore, result.Score)
	assert.Equal(t, models.ClassificationPotencial, result.Classification)

	stored, err := f.store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	require.NotNil(t, stored.AIScore)
	assert.Equal(t, scoring.DegradedScore, *stored.AIScore)

	// Degraded evaluations must not count as agent usage.
	agent, err := f.store.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, 0, agent.UsageCount)
}

func TestEvaluate_MissingCVText(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{Score: 80})
	ctx := context.Background()

	noCV := &models.Candidate{
		ID:        "cand-2",
		Name:      "Luis",
		Email:     "luis@example.com",
		VacancyID: "vac-1",
		Status:    models.StatusApplied,
	}
	require.NoError(t, f.store.CreateCandidate(ctx, noCV))

	_, err := f.svc.Evaluate(ctx, "cand-2")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMissingCVText, apperrors.CodeOf(err))
	assert.Zero(t, f.provider.calls)
}

func TestEvaluate_UnknownCandidate(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{Score: 80})

	_, err := f.svc.Evaluate(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestChangeStatus_NotifiesAfterPersisting(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})
	ctx := context.Background()

	updated, err := f.svc.ChangeStatus(ctx, "cand-1", models.StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, updated.Status)

	stored, err := f.store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, stored.Status)

	require.Len(t, f.notifier.statusCalls, 1)
	call := f.notifier.statusCalls[0]
	assert.Equal(t, "cand-1", call.candidateID)
	assert.Equal(t, "Backend Engineer", call.title)
	assert.Equal(t, models.StatusApplied, call.from)
	assert.Equal(t, models.StatusInterview, call.to)

	// Status-triggered notifications never touch the communication log.
	assert.Empty(t, stored.Communications)
	assert.Empty(t, f.publisher.hired)
}

func TestChangeStatus_CountsEveryDestination(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})

	// Screening has no notification template, but the transition counter
	// tracks every persisted status change, not just the notifiable ones.
	before := testutil.ToFloat64(metrics.StatusTransitionsTotal.WithLabelValues(string(models.StatusScreening)))

	_, err := f.svc.ChangeStatus(context.Background(), "cand-1", models.StatusScreening)
	require.NoError(t, err)

	after := testutil.ToFloat64(metrics.StatusTransitionsTotal.WithLabelValues(string(models.StatusScreening)))
	assert.Equal(t, before+1, after)
}

func TestChangeStatus_MissingVacancyStillTransitions(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})
	ctx := context.Background()

	require.NoError(t, f.store.DeleteVacancy(ctx, "vac-1"))

	updated, err := f.svc.ChangeStatus(ctx, "cand-1", models.StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, updated.Status)

	// The notifier still fires; it just has no vacancy title to render.
	require.Len(t, f.notifier.statusCalls, 1)
	assert.Equal(t, "", f.notifier.statusCalls[0].title)
}

func TestChangeStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})

	_, err := f.svc.ChangeStatus(context.Background(), "cand-1", models.Status("limbo"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidStatus, apperrors.CodeOf(err))
	assert.Empty(t, f.notifier.statusCalls)
}

func TestChangeStatus_HiredPublishesEvent(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})

	_, err := f.svc.ChangeStatus(context.Background(), "cand-1", models.StatusHired)
	require.NoError(t, err)

	assert.Equal(t, []string{"cand-1"}, f.publisher.hired)
	// Hired is not a notifiable status for the notifier's template map, but
	// the pipeline still reports the transition; the notifier decides.
	require.Len(t, f.notifier.statusCalls, 1)
}

func TestNotify_AppendsCommunicationPerChannel(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})
	ctx := context.Background()

	f.notifier.adhocResult = []models.SendResult{
		{Channel: models.ChannelEmail, Success: true, MessageID: "m1"},
		{Channel: models.ChannelWhatsApp, Success: false, Error: "graph error"},
	}

	results, err := f.svc.Notify(ctx, "cand-1", "Please confirm your availability.", models.ChannelBoth)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	stored, err := f.store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	require.Len(t, stored.Communications, 2)

	// The failed WhatsApp attempt is logged as well.
	assert.Equal(t, models.ChannelEmail, stored.Communications[0].Type)
	assert.Equal(t, models.ChannelWhatsApp, stored.Communications[1].Type)
	for _, comm := range stored.Communications {
		assert.Equal(t, "Please confirm your availability.", comm.Message)
		assert.NotEmpty(t, comm.SentAt)
	}
}

func TestNotify_InvalidChannelAppendsNothing(t *testing.T) {
	f := newFixture(t, scoring.ScoreResult{})
	ctx := context.Background()

	f.notifier.adhocErr = apperrors.NewInvalidChannel("fax")

	_, err := f.svc.Notify(ctx, "cand-1", "hello", "fax")
	require.Error(t, err)

	stored, err := f.store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Communications)
}
