// internal/store/memory.go
package store

import (
	"context"
	"sync"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/models"
)

// MemoryStore is the degraded-mode record store. It holds everything in
// process memory behind a single RWMutex and loses all records on restart,
// which is acceptable for local development and for keeping the service up
// when PostgreSQL is unreachable.
type MemoryStore struct {
	mu         sync.RWMutex
	candidates map[string]*models.Candidate
	vacancies  map[string]*models.Vacancy
	agents     map[string]*models.AIAgent
	users      map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		candidates: make(map[string]*models.Candidate),
		vacancies:  make(map[string]*models.Vacancy),
		agents:     make(map[string]*models.AIAgent),
		users:      make(map[string]*models.User),
	}
}

// --- Candidates ---

func (s *MemoryStore) CreateCandidate(_ context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.CreatedAt == "" {
		c.CreatedAt = nowISO()
	}
	c.UpdatedAt = c.CreatedAt
	s.candidates[c.ID] = copyCandidate(c)
	return nil
}

func (s *MemoryStore) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, apperrors.NewCandidateNotFound(id)
	}
	return copyCandidate(c), nil
}

func (s *MemoryStore) ListCandidates(_ context.Context, vacancyID string) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Candidate
	for _, c := range s.candidates {
		if vacancyID != "" && c.VacancyID != vacancyID {
			continue
		}
		out = append(out, *copyCandidate(c))
	}
	return out, nil
}

func (s *MemoryStore) UpdateEvaluation(_ context.Context, id string, eval models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return apperrors.NewCandidateNotFound(id)
	}
	score := eval.Score
	c.AIScore = &score
	c.AIClassification = eval.Classification
	c.AIJustification = eval.Justification
	c.UpdatedAt = nowISO()
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return apperrors.NewCandidateNotFound(id)
	}
	c.Status = status
	c.UpdatedAt = nowISO()
	return nil
}

func (s *MemoryStore) AppendCommunication(_ context.Context, id string, comm models.Communication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return apperrors.NewCandidateNotFound(id)
	}
	c.Communications = append(c.Communications, comm)
	c.UpdatedAt = nowISO()
	return nil
}

// --- Vacancies ---

func (s *MemoryStore) CreateVacancy(_ context.Context, v *models.Vacancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.CreatedAt == "" {
		v.CreatedAt = nowISO()
	}
	v.UpdatedAt = v.CreatedAt
	s.vacancies[v.ID] = copyVacancy(v)
	return nil
}

func (s *MemoryStore) GetVacancy(_ context.Context, id string) (*models.Vacancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vacancies[id]
	if !ok {
		return nil, apperrors.NewVacancyNotFound(id)
	}
	return copyVacancy(v), nil
}

func (s *MemoryStore) ListVacancies(_ context.Context) ([]models.Vacancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Vacancy
	for _, v := range s.vacancies {
		out = append(out, *copyVacancy(v))
	}
	return out, nil
}

func (s *MemoryStore) UpdateVacancy(_ context.Context, v *models.Vacancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.vacancies[v.ID]
	if !ok {
		return apperrors.NewVacancyNotFound(v.ID)
	}
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = nowISO()
	s.vacancies[v.ID] = copyVacancy(v)
	return nil
}

func (s *MemoryStore) DeleteVacancy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vacancies[id]; !ok {
		return apperrors.NewVacancyNotFound(id)
	}
	delete(s.vacancies, id)
	return nil
}

// --- Agents ---

func (s *MemoryStore) CreateAgent(_ context.Context, a *models.AIAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt == "" {
		a.CreatedAt = nowISO()
	}
	a.UpdatedAt = a.CreatedAt
	s.agents[a.ID] = copyAgent(a)
	return nil
}

func (s *MemoryStore) GetAgent(_ context.Context, id string) (*models.AIAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return nil, apperrors.NewAgentNotFound(id)
	}
	return copyAgent(a), nil
}

func (s *MemoryStore) ListAgents(_ context.Context) ([]models.AIAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AIAgent
	for _, a := range s.agents {
		out = append(out, *copyAgent(a))
	}
	return out, nil
}

func (s *MemoryStore) IncrementAgentUsage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[id]
	if !ok {
		return apperrors.NewAgentNotFound(id)
	}
	a.UsageCount++
	a.UpdatedAt = nowISO()
	return nil
}

// --- Users ---

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperrors.NewDuplicateEmail(u.Email)
		}
	}
	if u.CreatedAt == "" {
		u.CreatedAt = nowISO()
	}
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewUserNotFound(id)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NewUserNotFound(email)
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return apperrors.NewUserNotFound(u.ID)
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = nowISO()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

// --- copy helpers ---

func copyCandidate(c *models.Candidate) *models.Candidate {
	cp := *c
	if c.AIScore != nil {
		score := *c.AIScore
		cp.AIScore = &score
	}
	if c.Communications != nil {
		cp.Communications = append([]models.Communication(nil), c.Communications...)
	}
	return &cp
}

func copyVacancy(v *models.Vacancy) *models.Vacancy {
	cp := *v
	if v.RequiredSkills != nil {
		cp.RequiredSkills = append([]string(nil), v.RequiredSkills...)
	}
	if v.Thresholds != nil {
		t := *v.Thresholds
		cp.Thresholds = &t
	}
	return &cp
}

func copyAgent(a *models.AIAgent) *models.AIAgent {
	cp := *a
	if a.Thresholds != nil {
		t := *a.Thresholds
		cp.Thresholds = &t
	}
	return &cp
}
