// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/models"

	"github.com/lib/pq"
)

// PostgresStore persists records in PostgreSQL. List and threshold shaped
// fields are stored as JSONB so the row layout stays close to the document
// shape the pipeline reads and writes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// --- Candidates ---

func (s *PostgresStore) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	if c.CreatedAt == "" {
		c.CreatedAt = nowISO()
	}
	c.UpdatedAt = c.CreatedAt

	comms, err := json.Marshal(c.Communications)
	if err != nil {
		return apperrors.NewInternal(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates
			(id, name, email, phone, vacancy_id, cv_text, ai_score, ai_classification, ai_justification, status, communications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.Name, c.Email, c.Phone, c.VacancyID, c.CVText,
		nullableInt(c.AIScore), string(c.AIClassification), c.AIJustification,
		string(c.Status), comms, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("insert candidate: %v", err))
	}
	return nil
}

func (s *PostgresStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, vacancy_id, cv_text, ai_score, ai_classification, ai_justification, status, communications, created_at, updated_at
		FROM candidates WHERE id = $1`, id)

	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewCandidateNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("get candidate: %v", err))
	}
	return c, nil
}

func (s *PostgresStore) ListCandidates(ctx context.Context, vacancyID string) ([]models.Candidate, error) {
	query := `
		SELECT id, name, email, phone, vacancy_id, cv_text, ai_score, ai_classification, ai_justification, status, communications, created_at, updated_at
		FROM candidates`
	args := []interface{}{}
	if vacancyID != "" {
		query += ` WHERE vacancy_id = $1`
		args = append(args, vacancyID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list candidates: %v", err))
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("scan candidate: %v", err))
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list candidates: %v", err))
	}
	return out, nil
}

func (s *PostgresStore) UpdateEvaluation(ctx context.Context, id string, eval models.Evaluation) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET ai_score = $2, ai_classification = $3, ai_justification = $4, updated_at = $5
		WHERE id = $1`,
		id, eval.Score, string(eval.Classification), eval.Justification, nowISO(),
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("update evaluation: %v", err))
	}
	return requireRow(res, apperrors.NewCandidateNotFound(id))
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), nowISO(),
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("update status: %v", err))
	}
	return requireRow(res, apperrors.NewCandidateNotFound(id))
}

func (s *PostgresStore) AppendCommunication(ctx context.Context, id string, comm models.Communication) error {
	entry, err := json.Marshal(comm)
	if err != nil {
		return apperrors.NewInternal(err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET communications = communications || $2::jsonb, updated_at = $3
		WHERE id = $1`,
		id, entry, nowISO(),
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("append communication: %v", err))
	}
	return requireRow(res, apperrors.NewCandidateNotFound(id))
}

// --- Vacancies ---

func (s *PostgresStore) CreateVacancy(ctx context.Context, v *models.Vacancy) error {
	if v.CreatedAt == "" {
		v.CreatedAt = nowISO()
	}
	v.UpdatedAt = v.CreatedAt

	thresholds, err := marshalThresholds(v.Thresholds)
	if err != nil {
		return apperrors.NewInternal(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vacancies (id, title, description, required_skills, thresholds, ai_agent_id, open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.Title, v.Description, pq.Array(v.RequiredSkills), thresholds, v.AIAgentID, v.Open, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("insert vacancy: %v", err))
	}
	return nil
}

func (s *PostgresStore) GetVacancy(ctx context.Context, id string) (*models.Vacancy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, required_skills, thresholds, ai_agent_id, open, created_at, updated_at
		FROM vacancies WHERE id = $1`, id)

	v, err := scanVacancy(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewVacancyNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("get vacancy: %v", err))
	}
	return v, nil
}

func (s *PostgresStore) ListVacancies(ctx context.Context) ([]models.Vacancy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, required_skills, thresholds, ai_agent_id, open, created_at, updated_at
		FROM vacancies ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list vacancies: %v", err))
	}
	defer rows.Close()

	var out []models.Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("scan vacancy: %v", err))
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list vacancies: %v", err))
	}
	return out, nil
}

func (s *PostgresStore) UpdateVacancy(ctx context.Context, v *models.Vacancy) error {
	v.UpdatedAt = nowISO()

	thresholds, err := marshalThresholds(v.Thresholds)
	if err != nil {
		return apperrors.NewInternal(err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE vacancies
		SET title = $2, description = $3, required_skills = $4, thresholds = $5, ai_agent_id = $6, open = $7, updated_at = $8
		WHERE id = $1`,
		v.ID, v.Title, v.Description, pq.Array(v.RequiredSkills), thresholds, v.AIAgentID, v.Open, v.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("update vacancy: %v", err))
	}
	return requireRow(res, apperrors.NewVacancyNotFound(v.ID))
}

func (s *PostgresStore) DeleteVacancy(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vacancies WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("delete vacancy: %v", err))
	}
	return requireRow(res, apperrors.NewVacancyNotFound(id))
}

// --- Agents ---

func (s *PostgresStore) CreateAgent(ctx context.Context, a *models.AIAgent) error {
	if a.CreatedAt == "" {
		a.CreatedAt = nowISO()
	}
	a.UpdatedAt = a.CreatedAt

	thresholds, err := marshalThresholds(a.Thresholds)
	if err != nil {
		return apperrors.NewInternal(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agents (id, name, system_prompt, thresholds, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, a.SystemPrompt, thresholds, a.UsageCount, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("insert agent: %v", err))
	}
	return nil
}

func (s *PostgresStore) GetAgent(ctx context.Context, id string) (*models.AIAgent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, system_prompt, thresholds, usage_count, created_at, updated_at
		FROM agents WHERE id = $1`, id)

	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewAgentNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("get agent: %v", err))
	}
	return a, nil
}

func (s *PostgresStore) ListAgents(ctx context.Context) ([]models.AIAgent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, system_prompt, thresholds, usage_count, created_at, updated_at
		FROM agents ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list agents: %v", err))
	}
	defer rows.Close()

	var out []models.AIAgent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("scan agent: %v", err))
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list agents: %v", err))
	}
	return out, nil
}

func (s *PostgresStore) IncrementAgentUsage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agents SET usage_count = usage_count + 1, updated_at = $2 WHERE id = $1`,
		id, nowISO(),
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("increment agent usage: %v", err))
	}
	return requireRow(res, apperrors.NewAgentNotFound(id))
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt == "" {
		u.CreatedAt = nowISO()
	}
	u.UpdatedAt = u.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperrors.NewDuplicateEmail(u.Email)
		}
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("insert user: %v", err))
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, role, active, created_at, updated_at
		FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewUserNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("get user: %v", err))
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, role, active, created_at, updated_at
		FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewUserNotFound(email)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("get user by email: %v", err))
	}
	return u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, password_hash, role, active, created_at, updated_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list users: %v", err))
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("scan user: %v", err))
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailed(fmt.Sprintf("list users: %v", err))
	}
	return out, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = nowISO()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = $2, name = $3, password_hash = $4, role = $5, active = $6, updated_at = $7
		WHERE id = $1`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Active, u.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailed(fmt.Sprintf("update user: %v", err))
	}
	return requireRow(res, apperrors.NewUserNotFound(u.ID))
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var score sql.NullInt64
	var classification string
	var comms []byte

	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.VacancyID, &c.CVText,
		&score, &classification, &c.AIJustification, (*string)(&c.Status),
		&comms, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		v := int(score.Int64)
		c.AIScore = &v
	}
	c.AIClassification = models.Classification(classification)

	if len(comms) > 0 {
		if err := json.Unmarshal(comms, &c.Communications); err != nil {
			return nil, fmt.Errorf("decode communications: %w", err)
		}
	}
	return &c, nil
}

func scanVacancy(row rowScanner) (*models.Vacancy, error) {
	var v models.Vacancy
	var thresholds []byte
	var skills pq.StringArray

	err := row.Scan(&v.ID, &v.Title, &v.Description, &skills, &thresholds,
		&v.AIAgentID, &v.Open, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}

	v.RequiredSkills = []string(skills)
	if len(thresholds) > 0 {
		var t models.Thresholds
		if err := json.Unmarshal(thresholds, &t); err != nil {
			return nil, fmt.Errorf("decode thresholds: %w", err)
		}
		v.Thresholds = &t
	}
	return &v, nil
}

func scanAgent(row rowScanner) (*models.AIAgent, error) {
	var a models.AIAgent
	var thresholds []byte

	err := row.Scan(&a.ID, &a.Name, &a.SystemPrompt, &thresholds,
		&a.UsageCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(thresholds) > 0 {
		var t models.Thresholds
		if err := json.Unmarshal(thresholds, &t); err != nil {
			return nil, fmt.Errorf("decode thresholds: %w", err)
		}
		a.Thresholds = &t
	}
	return &a, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func requireRow(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailed(err.Error())
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func marshalThresholds(t *models.Thresholds) (interface{}, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}
