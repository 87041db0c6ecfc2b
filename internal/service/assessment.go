// internal/service/assessment.go
package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/common/metrics"
	"assessment-service/internal/models"
	"assessment-service/internal/questionnaire"
	"assessment-service/internal/store"
)

// NowFunc supplies timestamps. Overridable in tests.
type NowFunc func() time.Time

func defaultNow() time.Time { return time.Now().UTC() }

// Indexer pushes assessments into the search index. Optional collaborator.
type Indexer interface {
	IndexAssessment(ctx context.Context, a *models.Assessment) error
}

// Notifier announces completed assessments. Optional collaborator.
type Notifier interface {
	NotifyCompleted(ctx context.Context, company *models.Company, a *models.Assessment) error
}

// AssessmentService manages the assessment lifecycle and response writes.
// Indexing and notification failures never fail the triggering operation.
type AssessmentService struct {
	store    store.Store
	registry *questionnaire.Registry
	indexer  Indexer
	notifier Notifier
	log      logger.Logger
	now      NowFunc
}

// AssessmentOption configures optional collaborators.
type AssessmentOption func(*AssessmentService)

func WithIndexer(i Indexer) AssessmentOption {
	return func(s *AssessmentService) { s.indexer = i }
}

func WithNotifier(n Notifier) AssessmentOption {
	return func(s *AssessmentService) { s.notifier = n }
}

func WithRegistry(r *questionnaire.Registry) AssessmentOption {
	return func(s *AssessmentService) { s.registry = r }
}

func NewAssessmentService(st store.Store, log logger.Logger, opts ...AssessmentOption) *AssessmentService {
	s := &AssessmentService{store: st, log: log, now: defaultNow}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Questionnaire resolves the questionnaire for an assessment type, preferring
// registry overrides over the built-in definitions.
func (s *AssessmentService) Questionnaire(t models.AssessmentType) *questionnaire.Questionnaire {
	if s.registry != nil {
		if q := s.registry.Lookup(t); q != nil {
			return q
		}
	}
	return questionnaire.ForType(t)
}

// CreateAssessmentInput carries the caller-supplied fields for a new
// assessment.
type CreateAssessmentInput struct {
	CompanyID string                `json:"companyId"`
	Name      string                `json:"name"`
	Type      models.AssessmentType `json:"type"`
}

func (s *AssessmentService) CreateAssessment(ctx context.Context, in CreateAssessmentInput) (*models.Assessment, error) {
	if in.Type != models.TypeExploratory && in.Type != models.TypeMigration {
		return nil, apperrors.NewValidationFailedError("type must be EXPLORATORY or MIGRATION")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("assessment name is required")
	}
	if _, err := s.store.GetCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	now := s.now()
	a := &models.Assessment{
		ID:          uuid.NewString(),
		Name:        name,
		CompanyID:   in.CompanyID,
		Type:        in.Type,
		Status:      models.StatusDraft,
		CurrentStep: 1,
		TotalSteps:  s.Questionnaire(in.Type).TotalSteps(),
		Responses:   models.ResponseSet{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info("assessment created", map[string]interface{}{
		"assessmentId": a.ID,
		"companyId":    a.CompanyID,
		"type":         string(a.Type),
		"totalSteps":   a.TotalSteps,
	})
	s.index(ctx, a)
	return a, nil
}

func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	return s.store.GetAssessment(ctx, id)
}

func (s *AssessmentService) ListAssessments(ctx context.Context) ([]*models.Assessment, error) {
	return s.store.ListAssessments(ctx)
}

func (s *AssessmentService) ListAssessmentsByCompany(ctx context.Context, companyID string) ([]*models.Assessment, error) {
	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.store.ListAssessmentsByCompany(ctx, companyID)
}

func (s *AssessmentService) RenameAssessment(ctx context.Context, id, name string) (*models.Assessment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("assessment name is required")
	}
	a, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Name = name
	if err := s.store.UpdateAssessment(ctx, a); err != nil {
		return nil, err
	}
	s.index(ctx, a)
	return a, nil
}

func (s *AssessmentService) DeleteAssessment(ctx context.Context, id string) error {
	return s.store.DeleteAssessment(ctx, id)
}

// UpdateCategoryResponses persists one group's responses, derives its
// completion status and records it alongside. Returns the updated assessment.
func (s *AssessmentService) UpdateCategoryResponses(ctx context.Context, assessmentID, groupID string, responses models.GroupResponses, currentStep int) (*models.Assessment, error) {
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	q := s.Questionnaire(a.Type)
	group := q.Group(groupID)
	if group == nil {
		return nil, apperrors.NewGroupNotFoundError(groupID)
	}
	if currentStep < 1 || currentStep > q.TotalSteps() {
		currentStep = group.Step
	}

	updated, err := s.store.SaveResponses(ctx, assessmentID, groupID, responses, currentStep)
	if err != nil {
		return nil, err
	}

	completion := questionnaire.CalculateCompletion(group.Questions, responses)
	status := questionnaire.RequiredAwareStatus(completion)
	if err := s.store.SaveCategoryStatus(ctx, assessmentID, groupID, status, group.Step); err != nil {
		s.log.WithError(err).Warn("category status write failed", map[string]interface{}{
			"assessmentId": assessmentID,
			"groupId":      groupID,
		})
	}

	s.index(ctx, updated)
	return updated, nil
}

// UpdateCategoryStatus records an externally derived status without touching
// responses.
func (s *AssessmentService) UpdateCategoryStatus(ctx context.Context, assessmentID, groupID string, status models.CategoryStatus) error {
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return err
	}
	group := s.Questionnaire(a.Type).Group(groupID)
	if group == nil {
		return apperrors.NewGroupNotFoundError(groupID)
	}
	return s.store.SaveCategoryStatus(ctx, assessmentID, groupID, status, group.Step)
}

// CompleteAssessment re-validates every required question globally before the
// terminal transition. Unanswered required questions block completion with
// their ids in the error details.
func (s *AssessmentService) CompleteAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error) {
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == models.StatusCompleted {
		return nil, apperrors.NewAssessmentCompletedError(assessmentID)
	}

	if missing := s.Questionnaire(a.Type).RequiredUnanswered(a.Responses); len(missing) > 0 {
		return nil, apperrors.NewIncompleteRequiredError(missing)
	}

	completed, err := s.store.CompleteAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	metrics.AssessmentsCompleted.Inc()
	s.log.Info("assessment completed", map[string]interface{}{
		"assessmentId": completed.ID,
		"companyId":    completed.CompanyID,
	})

	s.index(ctx, completed)
	s.notify(ctx, completed)
	return completed, nil
}

// GroupReview is one group of the review page: questions zipped with the
// recorded answers plus the derived completion counters.
type GroupReview struct {
	Group      questionnaire.Group      `json:"group"`
	Responses  models.GroupResponses    `json:"responses"`
	Completion questionnaire.Completion `json:"completion"`
	Status     models.CategoryStatus    `json:"status"`
}

// AssessmentReview is the full read model for the review step.
type AssessmentReview struct {
	Assessment      *models.Assessment `json:"assessment"`
	Groups          []GroupReview      `json:"groups"`
	CompletedSteps  []int              `json:"completedSteps"`
	OverallProgress int                `json:"overallProgress"`
	MissingRequired []string           `json:"missingRequired,omitempty"`
}

// GetAssessmentForReview assembles the review read model.
func (s *AssessmentService) GetAssessmentForReview(ctx context.Context, assessmentID string) (*AssessmentReview, error) {
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	q := s.Questionnaire(a.Type)

	steps, err := s.store.GetCompletedSteps(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	review := &AssessmentReview{
		Assessment:      a,
		Groups:          make([]GroupReview, 0, len(q.Groups)),
		CompletedSteps:  steps,
		OverallProgress: questionnaire.ProgressPercentage(steps, q.TotalSteps()),
		MissingRequired: q.RequiredUnanswered(a.Responses),
	}
	for _, g := range q.Groups {
		responses := a.Responses[g.ID]
		completion := questionnaire.CalculateCompletion(g.Questions, responses)
		review.Groups = append(review.Groups, GroupReview{
			Group:      g,
			Responses:  responses,
			Completion: completion,
			Status:     questionnaire.RequiredAwareStatus(completion),
		})
	}
	return review, nil
}

// GetAssessmentStatistics aggregates counts across all assessments.
func (s *AssessmentService) GetAssessmentStatistics(ctx context.Context) (*models.AssessmentStatistics, error) {
	assessments, err := s.store.ListAssessments(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.AssessmentStatistics{
		Total:    len(assessments),
		ByStatus: make(map[models.AssessmentStatus]int),
		ByType:   make(map[models.AssessmentType]int),
	}
	if len(assessments) == 0 {
		return stats, nil
	}

	sum := 0.0
	for _, a := range assessments {
		stats.ByStatus[a.Status]++
		stats.ByType[a.Type]++

		q := s.Questionnaire(a.Type)
		answered, total := 0, q.TotalQuestions()
		for _, g := range q.Groups {
			answered += questionnaire.CalculateCompletion(g.Questions, a.Responses[g.ID]).Answered
		}
		if total > 0 {
			sum += float64(answered) / float64(total) * 100
		}
	}
	stats.AverageCompletion = int(math.Round(sum / float64(len(assessments))))
	return stats, nil
}

func (s *AssessmentService) index(ctx context.Context, a *models.Assessment) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexAssessment(ctx, a); err != nil {
		s.log.WithError(err).Warn("assessment indexing failed", map[string]interface{}{
			"assessmentId": a.ID,
		})
	}
}

func (s *AssessmentService) notify(ctx context.Context, a *models.Assessment) {
	if s.notifier == nil {
		return
	}
	company, err := s.store.GetCompany(ctx, a.CompanyID)
	if err != nil {
		s.log.WithError(err).Warn("completion notification skipped", map[string]interface{}{
			"assessmentId": a.ID,
		})
		return
	}
	if err := s.notifier.NotifyCompleted(ctx, company, a); err != nil {
		s.log.WithError(err).Warn("completion notification failed", map[string]interface{}{
			"assessmentId": a.ID,
		})
	}
}
