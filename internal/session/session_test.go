// internal/session/session_test.go
package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-service/internal/autosave"
	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/mirror"
	"assessment-service/internal/models"
	"assessment-service/internal/questionnaire"
)

// fakeRemote is an in-memory Remote with togglable failures.
type fakeRemote struct {
	mu         sync.Mutex
	assessment *models.Assessment
	steps      []int
	saves      []autosave.SaveRequest
	fetchErr   error
	saveErr    error
	completed  bool
}

func newFakeRemote(t models.AssessmentType) *fakeRemote {
	q := questionnaire.ForType(t)
	return &fakeRemote{
		assessment: &models.Assessment{
			ID:          "a-1",
			CompanyID:   "c-1",
			Type:        t,
			Status:      models.StatusDraft,
			CurrentStep: 1,
			TotalSteps:  q.TotalSteps(),
			Responses:   models.ResponseSet{},
		},
	}
}

func (f *fakeRemote) GetAssessment(_ context.Context, _ string) (*models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	cp := *f.assessment
	cp.Responses = f.assessment.Responses.Clone()
	return &cp, nil
}

func (f *fakeRemote) GetCompletedSteps(_ context.Context, _ string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.steps...), nil
}

func (f *fakeRemote) SaveResponses(_ context.Context, req autosave.SaveRequest) (*models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saves = append(f.saves, req)
	f.assessment.Responses[req.GroupID] = req.Responses
	f.assessment.CurrentStep = req.CurrentStep
	if f.assessment.Status == models.StatusDraft {
		f.assessment.Status = models.StatusInProgress
	}
	cp := *f.assessment
	cp.Responses = f.assessment.Responses.Clone()
	return &cp, nil
}

func (f *fakeRemote) CompleteAssessment(_ context.Context, id string) (*models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		return nil, apperrors.NewAssessmentCompletedError(id)
	}
	f.completed = true
	now := time.Now().UTC()
	f.assessment.Status = models.StatusCompleted
	f.assessment.CompletedAt = &now
	cp := *f.assessment
	return &cp, nil
}

func (f *fakeRemote) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func testSession(t *testing.T, remote Remote, m mirror.Mirror) *Session {
	t.Helper()
	s, err := New(context.Background(), Config{
		AssessmentID: "a-1",
		FallbackType: models.TypeExploratory,
		Autosave:     autosave.Config{Debounce: time.Hour, MaxRetries: 0, RetryDelay: time.Millisecond},
	}, remote, m, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// answerStepOne fills every question of the first exploratory step with valid
// answers.
func answerStepOne(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SetAnswer(ctx, "step-1", "industry", models.StringAnswer("retail")))
	require.NoError(t, s.SetAnswer(ctx, "step-1", "employee-count", models.NumberAnswer(120)))
	require.NoError(t, s.SetAnswer(ctx, "step-1", "description", models.StringAnswer("regional grocer")))
}

func TestSessionHydratesFromRemote(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	remote.assessment.Responses = models.ResponseSet{
		"step-1": {"industry": models.StringAnswer("finance")},
	}
	remote.assessment.CurrentStep = 2
	remote.steps = []int{1}

	s := testSession(t, remote, seededMirror(t))
	assert.False(t, s.Restored())
	assert.Equal(t, 2, s.Step())
	assert.Equal(t, models.StringAnswer("finance"), s.Responses()["step-1"]["industry"])
	assert.Equal(t, 33, s.Progress())
}

// seededMirror seeds a mirror with stale state that must lose to
// the remote copy.
func seededMirror(t *testing.T) mirror.Mirror {
	t.Helper()
	m := mirror.NewMemoryMirror()
	err := m.Write(context.Background(), "a-1", mirror.Snapshot{
		Responses: models.ResponseSet{"step-1": {"industry": models.StringAnswer("stale")}},
		LastSaved: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	return m
}

func TestSessionRemoteWinsOverMirror(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	remote.assessment.Responses = models.ResponseSet{
		"step-1": {"industry": models.StringAnswer("healthcare")},
	}
	s := testSession(t, remote, seededMirror(t))
	assert.Equal(t, models.StringAnswer("healthcare"), s.Responses()["step-1"]["industry"])
}

func TestSessionRestoresFromMirrorWhenRemoteDown(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	remote.fetchErr = errors.New("store down")

	m := mirror.NewMemoryMirror()
	require.NoError(t, m.Write(context.Background(), "a-1", mirror.Snapshot{
		Responses:      models.ResponseSet{"step-1": {"industry": models.StringAnswer("retail")}},
		CompletedSteps: []int{1},
		LastSaved:      time.Now(),
	}))

	s := testSession(t, remote, m)
	assert.True(t, s.Restored())
	assert.Equal(t, models.StringAnswer("retail"), s.Responses()["step-1"]["industry"])
	assert.Equal(t, 33, s.Progress())
}

func TestSessionFailsWhenRemoteAndMirrorEmpty(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	remote.fetchErr = errors.New("store down")

	_, err := New(context.Background(), Config{
		AssessmentID: "a-1",
		FallbackType: models.TypeExploratory,
	}, remote, mirror.NewMemoryMirror(), nil, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.EqualError(t, err, "store down")
}

func TestSetAnswerMirrorsAndSchedules(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	m := mirror.NewMemoryMirror()
	s := testSession(t, remote, m)

	require.NoError(t, s.SetAnswer(context.Background(), "step-1", "industry", models.StringAnswer("retail")))
	assert.Equal(t, autosave.StatusPending, s.SaveStatus())
	assert.True(t, s.HasUnsavedChanges())

	snap, err := m.Read(context.Background(), "a-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, models.StringAnswer("retail"), snap.Responses["step-1"]["industry"])

	// Nothing hits the remote until the debounce fires or a flush is forced.
	assert.Zero(t, remote.saveCount())

	res := s.SaveNow(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, remote.saveCount())
}

func TestSetAnswerRejectsUnknownIDs(t *testing.T) {
	s := testSession(t, newFakeRemote(models.TypeExploratory), mirror.NewMemoryMirror())
	ctx := context.Background()

	err := s.SetAnswer(ctx, "no-such-group", "industry", models.StringAnswer("x"))
	require.Error(t, err)
	err = s.SetAnswer(ctx, "step-1", "no-such-question", models.StringAnswer("x"))
	require.Error(t, err)
	assert.Zero(t, s.Progress())
}

func TestSetAnswerSurvivesMirrorFailure(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	s := testSession(t, remote, failingMirror{})

	require.NoError(t, s.SetAnswer(context.Background(), "step-1", "industry", models.StringAnswer("retail")))
	res := s.SaveNow(context.Background())
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, remote.saveCount())
}

type failingMirror struct{}

func (failingMirror) Write(context.Context, string, mirror.Snapshot) error {
	return errors.New("mirror down")
}
func (failingMirror) Read(context.Context, string) (*mirror.Snapshot, error) {
	return nil, errors.New("mirror down")
}
func (failingMirror) Clear(context.Context, string) error { return errors.New("mirror down") }

func TestNextValidatesBeforeAdvancing(t *testing.T) {
	s := testSession(t, newFakeRemote(models.TypeExploratory), mirror.NewMemoryMirror())
	ctx := context.Background()

	verrs := s.Next(ctx)
	require.NotEmpty(t, verrs, "required questions unanswered")
	assert.Equal(t, 1, s.Step())

	answerStepOne(t, s)
	verrs = s.Next(ctx)
	assert.Empty(t, verrs)
	assert.Equal(t, 2, s.Step())
	assert.Equal(t, 33, s.Progress())
}

func TestNextFlushesPendingSave(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	s := testSession(t, remote, mirror.NewMemoryMirror())

	answerStepOne(t, s)
	assert.Zero(t, remote.saveCount())

	verrs := s.Next(context.Background())
	assert.Empty(t, verrs)
	assert.Equal(t, 1, remote.saveCount(), "next must flush the debounced payload")
	assert.False(t, s.HasUnsavedChanges())
}

func TestNextAdvancesDespiteSaveFailure(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	m := mirror.NewMemoryMirror()
	s := testSession(t, remote, m)
	ctx := context.Background()

	answerStepOne(t, s)
	remote.saveErr = errors.New("store down")

	verrs := s.Next(ctx)
	assert.Empty(t, verrs)
	assert.Equal(t, 2, s.Step(), "a failed flush never pins the cursor")

	// The failure stays visible instead of blocking.
	assert.Equal(t, autosave.StatusError, s.SaveStatus())
	assert.True(t, s.HasUnsavedChanges())

	// The mirror keeps the unconfirmed answers and the step progress.
	snap, err := m.Read(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, models.StringAnswer("retail"), snap.Responses["step-1"]["industry"])
	assert.Contains(t, snap.CompletedSteps, 1)

	// Editing continues while the save is failed, and the next flush
	// recovers once the store is back.
	require.NoError(t, s.SetAnswer(ctx, "step-2", "usage-maturity", models.StringAnswer("production")))
	remote.saveErr = nil
	res := s.SaveNow(ctx)
	require.NoError(t, res.Err)
	assert.False(t, s.HasUnsavedChanges())
}

func TestPreviousIsUngated(t *testing.T) {
	s := testSession(t, newFakeRemote(models.TypeExploratory), mirror.NewMemoryMirror())
	ctx := context.Background()

	answerStepOne(t, s)
	require.Empty(t, s.Next(ctx))
	require.Equal(t, 2, s.Step())

	// Invalid answer on step two does not block going back.
	require.NoError(t, s.SetAnswer(ctx, "step-2", "blockers", models.StringAnswer("")))
	s.Previous()
	assert.Equal(t, 1, s.Step())

	s.Previous()
	assert.Equal(t, 1, s.Step(), "previous at step one is a no-op")

	// The step-two draft answer survives the back navigation.
	assert.Contains(t, s.Responses(), "step-2")
}

func TestNavigationReachesReview(t *testing.T) {
	s := testSession(t, newFakeRemote(models.TypeExploratory), mirror.NewMemoryMirror())
	ctx := context.Background()

	answerStepOne(t, s)
	require.Empty(t, s.Next(ctx))

	require.NoError(t, s.SetAnswer(ctx, "step-2", "usage-maturity", models.StringAnswer("experimenting")))
	require.NoError(t, s.SetAnswer(ctx, "step-2", "blockers", models.StringAnswer("budget")))
	require.Empty(t, s.Next(ctx))

	require.NoError(t, s.SetAnswer(ctx, "step-3", "primary-goal", models.StringAnswer("cost")))
	require.NoError(t, s.SetAnswer(ctx, "step-3", "budget-allocated", models.ListAnswer("yes")))
	require.Empty(t, s.Next(ctx))

	assert.True(t, s.OnReview())
	assert.Nil(t, s.CurrentGroup())
	assert.Equal(t, 100, s.Progress())

	s.Previous()
	assert.False(t, s.OnReview())
	assert.Equal(t, 3, s.Step())
}

func TestCompleteGatedOnRequiredAnswers(t *testing.T) {
	s := testSession(t, newFakeRemote(models.TypeExploratory), mirror.NewMemoryMirror())

	_, err := s.Complete(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIncompleteRequired, apperrors.CodeOf(err))
}

func TestCompleteClearsMirror(t *testing.T) {
	remote := newFakeRemote(models.TypeExploratory)
	m := mirror.NewMemoryMirror()
	s := testSession(t, remote, m)
	ctx := context.Background()

	answerStepOne(t, s)
	require.NoError(t, s.SetAnswer(ctx, "step-2", "usage-maturity", models.StringAnswer("production")))
	require.NoError(t, s.SetAnswer(ctx, "step-2", "blockers", models.StringAnswer("skills")))
	require.NoError(t, s.SetAnswer(ctx, "step-3", "primary-goal", models.StringAnswer("revenue")))

	a, err := s.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, a.Status)

	snap, err := m.Read(ctx, "a-1")
	require.NoError(t, err)
	assert.Nil(t, snap, "mirror cleared after completion")

	_, err = s.Complete(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAssessmentCompleted, apperrors.CodeOf(err))
}

func TestJumpTo(t *testing.T) {
	s := testSession(t, newFakeRemote(models.TypeExploratory), mirror.NewMemoryMirror())
	ctx := context.Background()

	assert.False(t, s.JumpTo(3), "unvisited steps are unreachable")
	assert.False(t, s.JumpTo(0))

	answerStepOne(t, s)
	require.Empty(t, s.Next(ctx))

	assert.True(t, s.JumpTo(1))
	assert.Equal(t, 1, s.Step())
	assert.True(t, s.JumpTo(2))
}
