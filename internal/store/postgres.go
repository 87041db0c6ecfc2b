// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/models"

	"github.com/lib/pq"
)

// PostgresStore is the authoritative Store implementation.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the schema when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id                TEXT PRIMARY KEY,
			company_id        TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			name              TEXT NOT NULL,
			type              TEXT NOT NULL,
			status            TEXT NOT NULL,
			current_step      INT NOT NULL DEFAULT 1,
			total_steps       INT NOT NULL,
			responses         JSONB NOT NULL DEFAULT '{}'::jsonb,
			category_statuses JSONB NOT NULL DEFAULT '{}'::jsonb,
			completed_steps   INT[] NOT NULL DEFAULT '{}',
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at      TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_company ON assessments(company_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.NewQueryExecutionFailedError("migrate", err)
		}
	}
	return nil
}

const assessmentColumns = `id, company_id, name, type, status, current_step, total_steps, responses, created_at, updated_at, completed_at`

// --- companies ---

func (s *PostgresStore) CreateCompany(ctx context.Context, company *models.Company) error {
	query := `INSERT INTO companies (id, name, description, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, company.ID, company.Name, company.Description, company.CreatedAt); err != nil {
		return apperrors.NewQueryExecutionFailedError("create company", err)
	}
	return nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	query := `SELECT c.id, c.name, c.description, c.created_at,
		(SELECT COUNT(*) FROM assessments a WHERE a.company_id = c.id) AS assessment_count
		FROM companies c WHERE c.id = $1`

	var company models.Company
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID, &company.Name, &company.Description, &company.CreatedAt, &company.AssessmentCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewCompanyNotFoundError(id)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get company", err)
	}
	return &company, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	query := `SELECT c.id, c.name, c.description, c.created_at,
		(SELECT COUNT(*) FROM assessments a WHERE a.company_id = c.id) AS assessment_count
		FROM companies c ORDER BY c.created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list companies", err)
	}
	defer rows.Close()

	var out []*models.Company
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.Description, &company.CreatedAt, &company.AssessmentCount); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan company", err)
		}
		out = append(out, &company)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCompany(ctx context.Context, company *models.Company) error {
	query := `UPDATE companies SET name = $2, description = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, company.ID, company.Name, company.Description)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("update company", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewCompanyNotFoundError(company.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("delete company", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewCompanyNotFoundError(id)
	}
	return nil
}

// --- assessments ---

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	responses, err := json.Marshal(orEmpty(a.Responses))
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("marshal responses", err)
	}
	query := `INSERT INTO assessments
		(id, company_id, name, type, status, current_step, total_steps, responses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := s.db.ExecContext(ctx, query,
		a.ID, a.CompanyID, a.Name, a.Type, a.Status, a.CurrentStep, a.TotalSteps, responses, a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return apperrors.NewQueryExecutionFailedError("create assessment", err)
	}
	return nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	a, err := scanAssessment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewAssessmentNotFoundError(id)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get assessment", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context) ([]*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments ORDER BY created_at`
	return s.queryAssessments(ctx, query)
}

func (s *PostgresStore) ListAssessmentsByCompany(ctx context.Context, companyID string) ([]*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE company_id = $1 ORDER BY created_at`
	return s.queryAssessments(ctx, query, companyID)
}

func (s *PostgresStore) queryAssessments(ctx context.Context, query string, args ...interface{}) ([]*models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list assessments", err)
	}
	defer rows.Close()

	var out []*models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan assessment", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	query := `UPDATE assessments SET name = $2, status = $3, current_step = $4, updated_at = NOW() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, a.ID, a.Name, a.Status, a.CurrentStep)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("update assessment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewAssessmentNotFoundError(a.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteAssessment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("delete assessment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewAssessmentNotFoundError(id)
	}
	return nil
}

func (s *PostgresStore) SaveResponses(ctx context.Context, assessmentID, groupID string, responses models.GroupResponses, currentStep int) (*models.Assessment, error) {
	payload, err := json.Marshal(responses)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("marshal responses", err)
	}

	query := `UPDATE assessments
		SET responses = jsonb_set(responses, $2, $3::jsonb, true),
		    current_step = $4,
		    status = CASE WHEN status = 'DRAFT' THEN 'IN_PROGRESS' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND status <> 'COMPLETED'
		RETURNING ` + assessmentColumns

	a, err := scanAssessment(s.db.QueryRowContext(ctx, query,
		assessmentID, pq.Array([]string{groupID}), payload, currentStep,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMissing(ctx, assessmentID)
		}
		return nil, apperrors.NewResponseSaveFailedError(err)
	}
	return a, nil
}

// classifyMissing distinguishes an unknown assessment from a completed one
// after a zero-row write.
func (s *PostgresStore) classifyMissing(ctx context.Context, assessmentID string) error {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM assessments WHERE id = $1`, assessmentID).Scan(&status)
	if err != nil {
		return apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	if status == string(models.StatusCompleted) {
		return apperrors.NewAssessmentCompletedError(assessmentID)
	}
	return apperrors.NewAssessmentNotFoundError(assessmentID)
}

func (s *PostgresStore) SaveCategoryStatus(ctx context.Context, assessmentID, groupID string, status models.CategoryStatus, step int) error {
	query := `UPDATE assessments
		SET category_statuses = jsonb_set(category_statuses, $2, to_jsonb($3::text), true),
		    completed_steps = CASE WHEN $4::bool
		        THEN (SELECT ARRAY(SELECT DISTINCT s FROM unnest(array_append(completed_steps, $5)) AS s ORDER BY s))
		        ELSE completed_steps END,
		    updated_at = NOW()
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		assessmentID, pq.Array([]string{groupID}), string(status), status == models.CategoryCompleted, step,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("save category status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	return nil
}

func (s *PostgresStore) GetCategoryStatuses(ctx context.Context, assessmentID string) (map[string]models.CategoryStatus, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT category_statuses FROM assessments WHERE id = $1`, assessmentID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get category statuses", err)
	}
	out := make(map[string]models.CategoryStatus)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("decode category statuses", err)
		}
	}
	return out, nil
}

func (s *PostgresStore) GetCompletedSteps(ctx context.Context, assessmentID string) ([]int, error) {
	var steps pq.Int64Array
	err := s.db.QueryRowContext(ctx, `SELECT completed_steps FROM assessments WHERE id = $1`, assessmentID).Scan(&steps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get completed steps", err)
	}
	out := make([]int, 0, len(steps))
	for _, s64 := range steps {
		out = append(out, int(s64))
	}
	return out, nil
}

func (s *PostgresStore) CompleteAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error) {
	query := `UPDATE assessments
		SET status = 'COMPLETED', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status <> 'COMPLETED'
		RETURNING ` + assessmentColumns

	a, err := scanAssessment(s.db.QueryRowContext(ctx, query, assessmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMissing(ctx, assessmentID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("complete assessment", err)
	}
	return a, nil
}

// --- users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *User) error {
	query := `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, u.ID, u.Email, u.PasswordHash); err != nil {
		return apperrors.NewQueryExecutionFailedError("create user", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash FROM users WHERE email = $1`, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, apperrors.NewQueryExecutionFailedError("get user", err)
	}
	return &u, nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var (
		a           models.Assessment
		rawResponses []byte
		completedAt sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Name, &a.Type, &a.Status,
		&a.CurrentStep, &a.TotalSteps, &rawResponses,
		&a.CreatedAt, &a.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Responses = models.ResponseSet{}
	if len(rawResponses) > 0 {
		if err := json.Unmarshal(rawResponses, &a.Responses); err != nil {
			return nil, err
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return &a, nil
}

func orEmpty(r models.ResponseSet) models.ResponseSet {
	if r == nil {
		return models.ResponseSet{}
	}
	return r
}
