// internal/store/store.go

// Package store defines the persistence interfaces for companies,
// assessments and users, with a PostgreSQL implementation for production and
// an in-memory implementation for tests. Repositories are always injected;
// nothing in the service reaches for ambient storage.
package store

import (
	"context"

	"assessment-service/internal/models"
)

// CompanyStore persists companies.
type CompanyStore interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	UpdateCompany(ctx context.Context, company *models.Company) error
	DeleteCompany(ctx context.Context, id string) error
}

// AssessmentStore persists assessments and their responses.
type AssessmentStore interface {
	CreateAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, id string) (*models.Assessment, error)
	ListAssessments(ctx context.Context) ([]*models.Assessment, error)
	ListAssessmentsByCompany(ctx context.Context, companyID string) ([]*models.Assessment, error)
	UpdateAssessment(ctx context.Context, a *models.Assessment) error
	DeleteAssessment(ctx context.Context, id string) error

	// SaveResponses replaces the response map of one group and advances the
	// step pointer. A DRAFT assessment moves to IN_PROGRESS on first save.
	// Returns the updated assessment.
	SaveResponses(ctx context.Context, assessmentID, groupID string, responses models.GroupResponses, currentStep int) (*models.Assessment, error)

	// SaveCategoryStatus records the derived completion status for a group
	// and, when completed, adds the step to the completed set.
	SaveCategoryStatus(ctx context.Context, assessmentID, groupID string, status models.CategoryStatus, step int) error

	// GetCategoryStatuses returns the recorded status per group id.
	GetCategoryStatuses(ctx context.Context, assessmentID string) (map[string]models.CategoryStatus, error)

	// GetCompletedSteps returns the distinct completed step numbers.
	GetCompletedSteps(ctx context.Context, assessmentID string) ([]int, error)

	// CompleteAssessment transitions to COMPLETED and stamps completedAt.
	CompleteAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error)
}

// User is an API account.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// UserStore persists API users.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// Store aggregates all repositories.
type Store interface {
	CompanyStore
	AssessmentStore
	UserStore
}
