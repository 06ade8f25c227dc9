// internal/store/memory_test.go
package store

import (
	"context"
	"testing"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCandidate(t *testing.T, s *MemoryStore, id, vacancyID string) *models.Candidate {
	t.Helper()
	c := &models.Candidate{
		ID:        id,
		Name:      "Ana Torres",
		Email:     id + "@example.com",
		VacancyID: vacancyID,
		CVText:    "Go, PostgreSQL",
		Status:    models.StatusApplied,
	}
	require.NoError(t, s.CreateCandidate(context.Background(), c))
	return c
}

func TestMemoryStore_CandidateLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedCandidate(t, s, "cand-1", "vac-1")

	got, err := s.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", got.Name)
	assert.NotEmpty(t, got.CreatedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	require.NoError(t, s.UpdateEvaluation(ctx, "cand-1", models.Evaluation{
		Score:          72,
		Classification: models.ClassificationPotencial,
		Justification:  "Solid but narrow.",
	}))

	got, err = s.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	require.NotNil(t, got.AIScore)
	assert.Equal(t, 72, *got.AIScore)
	assert.Equal(t, models.ClassificationPotencial, got.AIClassification)

	require.NoError(t, s.UpdateStatus(ctx, "cand-1", models.StatusInterview))
	got, err = s.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Status)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetCandidate(ctx, "nope")
	assert.True(t, apperrors.IsNotFound(err))

	assert.True(t, apperrors.IsNotFound(s.UpdateStatus(ctx, "nope", models.StatusHired)))
	assert.True(t, apperrors.IsNotFound(s.UpdateEvaluation(ctx, "nope", models.Evaluation{})))
	assert.True(t, apperrors.IsNotFound(s.AppendCommunication(ctx, "nope", models.Communication{})))
	assert.True(t, apperrors.IsNotFound(s.IncrementAgentUsage(ctx, "nope")))

	_, err = s.GetVacancy(ctx, "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryStore_ListCandidatesFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedCandidate(t, s, "cand-1", "vac-1")
	seedCandidate(t, s, "cand-2", "vac-1")
	seedCandidate(t, s, "cand-3", "vac-2")

	all, err := s.ListCandidates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := s.ListCandidates(ctx, "vac-1")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestMemoryStore_AppendCommunicationIsAppendOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedCandidate(t, s, "cand-1", "vac-1")

	require.NoError(t, s.AppendCommunication(ctx, "cand-1", models.Communication{
		Type: models.ChannelEmail, Message: "first", SentAt: "2026-01-01T00:00:00Z",
	}))
	require.NoError(t, s.AppendCommunication(ctx, "cand-1", models.Communication{
		Type: models.ChannelWhatsApp, Message: "second", SentAt: "2026-01-02T00:00:00Z",
	}))

	got, err := s.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	require.Len(t, got.Communications, 2)
	assert.Equal(t, "first", got.Communications[0].Message)
	assert.Equal(t, "second", got.Communications[1].Message)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedCandidate(t, s, "cand-1", "vac-1")

	got, err := s.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	got.Name = "mutated"
	got.Communications = append(got.Communications, models.Communication{Message: "rogue"})

	fresh, err := s.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", fresh.Name)
	assert.Empty(t, fresh.Communications)
}

func TestMemoryStore_DuplicateUserEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "x@example.com", Role: models.RoleRecruiter}))
	err := s.CreateUser(ctx, &models.User{ID: "u2", Email: "x@example.com", Role: models.RoleViewer})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDuplicateEmail, apperrors.CodeOf(err))
}

func TestMemoryStore_AgentUsage(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateAgent(ctx, &models.AIAgent{ID: "agent-1", Name: "a", SystemPrompt: "p"}))
	require.NoError(t, s.IncrementAgentUsage(ctx, "agent-1"))
	require.NoError(t, s.IncrementAgentUsage(ctx, "agent-1"))

	agent, err := s.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, 2, agent.UsageCount)
}
