// internal/store/postgres_test.go
package store

import (
	"context"
	"testing"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateColumns() []string {
	return []string{
		"id", "name", "email", "phone", "vacancy_id", "cv_text",
		"ai_score", "ai_classification", "ai_justification", "status",
		"communications", "created_at", "updated_at",
	}
}

func TestPostgresStore_GetCandidate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	rows := sqlmock.NewRows(candidateColumns()).AddRow(
		"cand-1", "Ana Torres", "ana@example.com", "+521555", "vac-1", "Go, PostgreSQL",
		86, "ideal", "Strong match.", "interview",
		[]byte(`[{"type":"email","message":"hi","sentAt":"2026-01-01T00:00:00Z"}]`),
		"2026-01-01T00:00:00Z", "2026-01-02T00:00:00Z",
	)
	mock.ExpectQuery(`FROM candidates WHERE id = \$1`).
		WithArgs("cand-1").
		WillReturnRows(rows)

	got, err := s.GetCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", got.Name)
	require.NotNil(t, got.AIScore)
	assert.Equal(t, 86, *got.AIScore)
	assert.Equal(t, models.ClassificationIdeal, got.AIClassification)
	assert.Equal(t, models.StatusInterview, got.Status)
	require.Len(t, got.Communications, 1)
	assert.Equal(t, "hi", got.Communications[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCandidate_NullScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	rows := sqlmock.NewRows(candidateColumns()).AddRow(
		"cand-1", "Ana Torres", "ana@example.com", "", "vac-1", "",
		nil, "", "", "applied", []byte(`[]`),
		"2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z",
	)
	mock.ExpectQuery(`FROM candidates WHERE id = \$1`).
		WithArgs("cand-1").
		WillReturnRows(rows)

	got, err := s.GetCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Nil(t, got.AIScore)
	assert.Empty(t, got.Communications)
}

func TestPostgresStore_GetCandidate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectQuery(`FROM candidates WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(candidateColumns()))

	_, err = s.GetCandidate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, apperrors.ErrCodeCandidateNotFound, apperrors.CodeOf(err))
}

func TestPostgresStore_UpdateEvaluation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectExec(`UPDATE candidates`).
		WithArgs("cand-1", 72, "potencial", "Solid but narrow.", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.UpdateEvaluation(context.Background(), "cand-1", models.Evaluation{
		Score:          72,
		Classification: models.ClassificationPotencial,
		Justification:  "Solid but narrow.",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectExec(`UPDATE candidates SET status`).
		WithArgs("missing", "hired", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.UpdateStatus(context.Background(), "missing", models.StatusHired)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPostgresStore_AppendCommunication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectExec(`UPDATE candidates\s+SET communications = communications \|\| \$2::jsonb`).
		WithArgs("cand-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.AppendCommunication(context.Background(), "cand-1", models.Communication{
		Type:    models.ChannelEmail,
		Message: "hello",
		SentAt:  "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateUser_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})

	err = s.CreateUser(context.Background(), &models.User{
		ID:    "u1",
		Email: "x@example.com",
		Role:  models.RoleRecruiter,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDuplicateEmail, apperrors.CodeOf(err))
}

func TestPostgresStore_GetVacancy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "required_skills", "thresholds",
		"ai_agent_id", "open", "created_at", "updated_at",
	}).AddRow(
		"vac-1", "Backend Engineer", "Go services", `{"Go","PostgreSQL"}`,
		[]byte(`{"ideal":90,"potential":70,"review":50}`),
		"agent-1", true, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z",
	)
	mock.ExpectQuery(`FROM vacancies WHERE id = \$1`).
		WithArgs("vac-1").
		WillReturnRows(rows)

	got, err := s.GetVacancy(context.Background(), "vac-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.RequiredSkills)
	require.NotNil(t, got.Thresholds)
	assert.Equal(t, 90, got.Thresholds.Ideal)
}

func TestPostgresStore_IncrementAgentUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectExec(`UPDATE agents SET usage_count = usage_count \+ 1`).
		WithArgs("agent-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.IncrementAgentUsage(context.Background(), "agent-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
