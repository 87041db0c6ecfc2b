// internal/service/assessment_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/models"
	"assessment-service/internal/store"
)

type recordingIndexer struct {
	indexed []string
	err     error
}

func (r *recordingIndexer) IndexAssessment(_ context.Context, a *models.Assessment) error {
	if r.err != nil {
		return r.err
	}
	r.indexed = append(r.indexed, a.ID)
	return nil
}

type recordingNotifier struct {
	notified []string
}

func (r *recordingNotifier) NotifyCompleted(_ context.Context, _ *models.Company, a *models.Assessment) error {
	r.notified = append(r.notified, a.ID)
	return nil
}

func setup(t *testing.T, opts ...AssessmentOption) (*AssessmentService, *CompanyService, string) {
	t.Helper()
	st := store.NewMemoryStore()
	log := logger.NewTestLogger(t)
	companies := NewCompanyService(st, log)
	assessments := NewAssessmentService(st, log, opts...)

	company, err := companies.CreateCompany(context.Background(), CreateCompanyInput{Name: "Acme"})
	require.NoError(t, err)
	return assessments, companies, company.ID
}

func answerEverything(t *testing.T, svc *AssessmentService, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.UpdateCategoryResponses(ctx, id, "step-1", models.GroupResponses{
		"industry":       models.StringAnswer("retail"),
		"employee-count": models.NumberAnswer(500),
	}, 1)
	require.NoError(t, err)
	_, err = svc.UpdateCategoryResponses(ctx, id, "step-2", models.GroupResponses{
		"usage-maturity": models.StringAnswer("production"),
		"blockers":       models.StringAnswer("legacy systems"),
	}, 2)
	require.NoError(t, err)
	_, err = svc.UpdateCategoryResponses(ctx, id, "step-3", models.GroupResponses{
		"primary-goal": models.StringAnswer("quality"),
	}, 3)
	require.NoError(t, err)
}

func TestCreateAssessmentDerivesTotalSteps(t *testing.T) {
	svc, _, companyID := setup(t)
	ctx := context.Background()

	a, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Exploratory", Type: models.TypeExploratory,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, a.TotalSteps)
	assert.Equal(t, models.StatusDraft, a.Status)
	assert.Equal(t, 1, a.CurrentStep)

	m, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Migration", Type: models.TypeMigration,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, m.TotalSteps)
}

func TestCreateAssessmentRejectsBadInput(t *testing.T) {
	svc, _, companyID := setup(t)
	ctx := context.Background()

	_, err := svc.CreateAssessment(ctx, CreateAssessmentInput{CompanyID: companyID, Name: "x", Type: "OTHER"})
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))

	_, err = svc.CreateAssessment(ctx, CreateAssessmentInput{CompanyID: companyID, Name: "  ", Type: models.TypeExploratory})
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))

	_, err = svc.CreateAssessment(ctx, CreateAssessmentInput{CompanyID: "missing", Name: "x", Type: models.TypeExploratory})
	assert.Equal(t, apperrors.ErrCodeCompanyNotFound, apperrors.CodeOf(err))
}

func TestUpdateCategoryResponsesDerivesStatus(t *testing.T) {
	svc, _, companyID := setup(t)
	ctx := context.Background()

	a, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCategoryResponses(ctx, a.ID, "step-1", models.GroupResponses{
		"industry": models.StringAnswer("retail"),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	statuses, err := svc.store.GetCategoryStatuses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryPartial, statuses["step-1"])

	// Answering both required questions completes the group.
	_, err = svc.UpdateCategoryResponses(ctx, a.ID, "step-1", models.GroupResponses{
		"industry":       models.StringAnswer("retail"),
		"employee-count": models.NumberAnswer(500),
	}, 1)
	require.NoError(t, err)

	statuses, err = svc.store.GetCategoryStatuses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCompleted, statuses["step-1"])

	steps, err := svc.GetCompletedSteps(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, steps)
}

func TestUpdateCategoryResponsesUnknownGroup(t *testing.T) {
	svc, _, companyID := setup(t)
	ctx := context.Background()
	a, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	_, err = svc.UpdateCategoryResponses(ctx, a.ID, "nope", models.GroupResponses{}, 1)
	assert.Equal(t, apperrors.ErrCodeGroupNotFound, apperrors.CodeOf(err))
}

func TestCompleteAssessmentGate(t *testing.T) {
	indexer := &recordingIndexer{}
	notifier := &recordingNotifier{}
	svc, _, companyID := setup(t, WithIndexer(indexer), WithNotifier(notifier))
	ctx := context.Background()

	a, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	_, err = svc.CompleteAssessment(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIncompleteRequired, apperrors.CodeOf(err))
	assert.Empty(t, notifier.notified)

	answerEverything(t, svc, a.ID)

	completed, err := svc.CompleteAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, []string{a.ID}, notifier.notified)
	assert.Contains(t, indexer.indexed, a.ID)

	_, err = svc.CompleteAssessment(ctx, a.ID)
	assert.Equal(t, apperrors.ErrCodeAssessmentCompleted, apperrors.CodeOf(err))
}

func TestIndexerFailureDoesNotFailOperation(t *testing.T) {
	indexer := &recordingIndexer{err: errors.New("es down")}
	svc, _, companyID := setup(t, WithIndexer(indexer))

	_, err := svc.CreateAssessment(context.Background(), CreateAssessmentInput{
		CompanyID: companyID, Name: "Review", Type: models.TypeExploratory,
	})
	assert.NoError(t, err)
}

func TestGetAssessmentForReview(t *testing.T) {
	svc, _, companyID := setup(t)
	ctx := context.Background()

	a, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	_, err = svc.UpdateCategoryResponses(ctx, a.ID, "step-1", models.GroupResponses{
		"industry":       models.StringAnswer("retail"),
		"employee-count": models.NumberAnswer(500),
	}, 1)
	require.NoError(t, err)

	review, err := svc.GetAssessmentForReview(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, review.Groups, 3)
	assert.Equal(t, models.CategoryCompleted, review.Groups[0].Status)
	assert.Equal(t, models.CategoryNotStarted, review.Groups[1].Status)
	assert.Equal(t, 33, review.OverallProgress)
	assert.ElementsMatch(t, []string{"usage-maturity", "blockers", "primary-goal"}, review.MissingRequired)
}

func TestGetAssessmentStatistics(t *testing.T) {
	svc, _, companyID := setup(t)
	ctx := context.Background()

	a1, err := svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "One", Type: models.TypeExploratory,
	})
	require.NoError(t, err)
	_, err = svc.CreateAssessment(ctx, CreateAssessmentInput{
		CompanyID: companyID, Name: "Two", Type: models.TypeMigration,
	})
	require.NoError(t, err)

	answerEverything(t, svc, a1.ID)
	_, err = svc.CompleteAssessment(ctx, a1.ID)
	require.NoError(t, err)

	stats, err := svc.GetAssessmentStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.StatusCompleted])
	assert.Equal(t, 1, stats.ByStatus[models.StatusDraft])
	assert.Equal(t, 1, stats.ByType[models.TypeExploratory])
	assert.Equal(t, 1, stats.ByType[models.TypeMigration])
	// One assessment at 5/9 answered, one untouched: average rounds to 28.
	assert.Equal(t, 28, stats.AverageCompletion)
}

func TestCompanyServiceValidation(t *testing.T) {
	_, companies, _ := setup(t)
	_, err := companies.CreateCompany(context.Background(), CreateCompanyInput{Name: "   "})
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))
}
