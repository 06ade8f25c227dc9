// internal/store/store.go
package store

import (
	"context"
	"time"

	"recruitflow/internal/models"
)

// Mode names the record store backing, resolved once at startup.
type Mode string

const (
	ModePostgres Mode = "postgres"
	ModeMemory   Mode = "memory"
)

type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	ListCandidates(ctx context.Context, vacancyID string) ([]models.Candidate, error)
	// UpdateEvaluation overwrites score, classification and justification as
	// one unit so the stored classification can never go stale against the
	// stored score.
	UpdateEvaluation(ctx context.Context, id string, eval models.Evaluation) error
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	// AppendCommunication adds one entry to the candidate's message log.
	// The log is append-only; entries are never rewritten or pruned.
	AppendCommunication(ctx context.Context, id string, comm models.Communication) error
}

type VacancyStore interface {
	CreateVacancy(ctx context.Context, v *models.Vacancy) error
	GetVacancy(ctx context.Context, id string) (*models.Vacancy, error)
	ListVacancies(ctx context.Context) ([]models.Vacancy, error)
	UpdateVacancy(ctx context.Context, v *models.Vacancy) error
	DeleteVacancy(ctx context.Context, id string) error
}

type AgentStore interface {
	CreateAgent(ctx context.Context, a *models.AIAgent) error
	GetAgent(ctx context.Context, id string) (*models.AIAgent, error)
	ListAgents(ctx context.Context) ([]models.AIAgent, error)
	IncrementAgentUsage(ctx context.Context, id string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

// Store is the full record store backing the pipeline.
type Store interface {
	CandidateStore
	VacancyStore
	AgentStore
	UserStore
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
