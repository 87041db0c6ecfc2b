// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/models"
)

// MemoryStore is a thread-safe in-memory Store used by tests and local
// development. Behaviour mirrors the PostgreSQL implementation, including
// typed not-found errors and DRAFT -> IN_PROGRESS promotion on first save.
type MemoryStore struct {
	mu          sync.RWMutex
	companies   map[string]*models.Company
	assessments map[string]*models.Assessment
	statuses    map[string]map[string]models.CategoryStatus
	steps       map[string]map[int]bool
	users       map[string]*User
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies:   make(map[string]*models.Company),
		assessments: make(map[string]*models.Assessment),
		statuses:    make(map[string]map[string]models.CategoryStatus),
		steps:       make(map[string]map[int]bool),
		users:       make(map[string]*User),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the clock. Test helper.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

// --- companies ---

func (s *MemoryStore) CreateCompany(_ context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *company
	s.companies[company.ID] = &cp
	return nil
}

func (s *MemoryStore) GetCompany(_ context.Context, id string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, apperrors.NewCompanyNotFoundError(id)
	}
	cp := *company
	cp.AssessmentCount = s.assessmentCountLocked(id)
	return &cp, nil
}

func (s *MemoryStore) ListCompanies(_ context.Context) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Company, 0, len(s.companies))
	for _, company := range s.companies {
		cp := *company
		cp.AssessmentCount = s.assessmentCountLocked(company.ID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateCompany(_ context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[company.ID]; !ok {
		return apperrors.NewCompanyNotFoundError(company.ID)
	}
	cp := *company
	s.companies[company.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteCompany(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return apperrors.NewCompanyNotFoundError(id)
	}
	delete(s.companies, id)
	for aid, a := range s.assessments {
		if a.CompanyID == id {
			delete(s.assessments, aid)
			delete(s.statuses, aid)
			delete(s.steps, aid)
		}
	}
	return nil
}

func (s *MemoryStore) assessmentCountLocked(companyID string) int {
	n := 0
	for _, a := range s.assessments {
		if a.CompanyID == companyID {
			n++
		}
	}
	return n
}

// --- assessments ---

func (s *MemoryStore) CreateAssessment(_ context.Context, a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.Responses = a.Responses.Clone()
	s.assessments[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAssessment(_ context.Context, id string) (*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[id]
	if !ok {
		return nil, apperrors.NewAssessmentNotFoundError(id)
	}
	return cloneAssessment(a), nil
}

func (s *MemoryStore) ListAssessments(_ context.Context) ([]*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, cloneAssessment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListAssessmentsByCompany(_ context.Context, companyID string) ([]*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Assessment
	for _, a := range s.assessments {
		if a.CompanyID == companyID {
			out = append(out, cloneAssessment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateAssessment(_ context.Context, a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; !ok {
		return apperrors.NewAssessmentNotFoundError(a.ID)
	}
	cp := *a
	cp.Responses = a.Responses.Clone()
	cp.UpdatedAt = s.now()
	s.assessments[a.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteAssessment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[id]; !ok {
		return apperrors.NewAssessmentNotFoundError(id)
	}
	delete(s.assessments, id)
	delete(s.statuses, id)
	delete(s.steps, id)
	return nil
}

func (s *MemoryStore) SaveResponses(_ context.Context, assessmentID, groupID string, responses models.GroupResponses, currentStep int) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assessments[assessmentID]
	if !ok {
		return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	if a.Status == models.StatusCompleted {
		return nil, apperrors.NewAssessmentCompletedError(assessmentID)
	}

	if a.Responses == nil {
		a.Responses = models.ResponseSet{}
	}
	group := make(models.GroupResponses, len(responses))
	for k, v := range responses {
		group[k] = v
	}
	a.Responses[groupID] = group
	a.CurrentStep = currentStep
	if a.Status == models.StatusDraft {
		a.Status = models.StatusInProgress
	}
	a.UpdatedAt = s.now()
	return cloneAssessment(a), nil
}

func (s *MemoryStore) SaveCategoryStatus(_ context.Context, assessmentID, groupID string, status models.CategoryStatus, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[assessmentID]; !ok {
		return apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	if s.statuses[assessmentID] == nil {
		s.statuses[assessmentID] = make(map[string]models.CategoryStatus)
	}
	s.statuses[assessmentID][groupID] = status

	if status == models.CategoryCompleted {
		if s.steps[assessmentID] == nil {
			s.steps[assessmentID] = make(map[int]bool)
		}
		s.steps[assessmentID][step] = true
	}
	return nil
}

func (s *MemoryStore) GetCategoryStatuses(_ context.Context, assessmentID string) (map[string]models.CategoryStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.assessments[assessmentID]; !ok {
		return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	out := make(map[string]models.CategoryStatus, len(s.statuses[assessmentID]))
	for k, v := range s.statuses[assessmentID] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) GetCompletedSteps(_ context.Context, assessmentID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.assessments[assessmentID]; !ok {
		return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	var out []int
	for step := range s.steps[assessmentID] {
		out = append(out, step)
	}
	sort.Ints(out)
	return out, nil
}

func (s *MemoryStore) CompleteAssessment(_ context.Context, assessmentID string) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assessments[assessmentID]
	if !ok {
		return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
	}
	if a.Status == models.StatusCompleted {
		return nil, apperrors.NewAssessmentCompletedError(assessmentID)
	}
	now := s.now()
	a.Status = models.StatusCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	return cloneAssessment(a), nil
}

// --- users ---

func (s *MemoryStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, apperrors.NewInvalidCredentialsError()
	}
	cp := *u
	return &cp, nil
}

func cloneAssessment(a *models.Assessment) *models.Assessment {
	cp := *a
	cp.Responses = a.Responses.Clone()
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
