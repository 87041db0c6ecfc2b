// internal/session/session.go

// Package session drives one user's pass through a questionnaire: it holds
// the working response set, debounces persistence through the autosave
// client, shadow-writes a backup mirror and exposes the step cursor with its
// validation gates.
package session

import (
	"context"
	"sync"
	"time"

	"assessment-service/internal/autosave"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/mirror"
	"assessment-service/internal/models"
	"assessment-service/internal/questionnaire"
)

// Remote is the authoritative backend of a session. Implemented by the HTTP
// API client and, for in-process use, by the assessment service.
type Remote interface {
	GetAssessment(ctx context.Context, id string) (*models.Assessment, error)
	GetCompletedSteps(ctx context.Context, id string) ([]int, error)
	SaveResponses(ctx context.Context, req autosave.SaveRequest) (*models.Assessment, error)
	CompleteAssessment(ctx context.Context, id string) (*models.Assessment, error)
}

// Config configures a session.
type Config struct {
	AssessmentID string
	// FallbackType picks the questionnaire when the remote fetch fails and
	// the session is rebuilt from the mirror alone.
	FallbackType models.AssessmentType
	Autosave     autosave.Config
}

// Session is a single-assessment editing session. Safe for concurrent use.
type Session struct {
	cfg    Config
	q      *questionnaire.Questionnaire
	remote Remote
	mirror mirror.Mirror
	client *autosave.Client
	log    logger.Logger
	now    func() time.Time

	mu             sync.Mutex
	responses      models.ResponseSet
	completedSteps map[int]bool
	step           int
	onReview       bool
	status         models.AssessmentStatus
	restored       bool
}

// New hydrates a session. The remote store wins: its responses replace
// whatever the mirror holds. Only when the remote fetch fails does the
// mirror snapshot restore the session, flagged through Restored. Both
// failing is a hard error.
func New(ctx context.Context, cfg Config, remote Remote, m mirror.Mirror, resolve func(models.AssessmentType) *questionnaire.Questionnaire, log logger.Logger) (*Session, error) {
	if resolve == nil {
		resolve = questionnaire.ForType
	}

	s := &Session{
		cfg:            cfg,
		remote:         remote,
		mirror:         m,
		log:            log.WithFields(map[string]interface{}{"assessmentId": cfg.AssessmentID}),
		now:            func() time.Time { return time.Now().UTC() },
		completedSteps: make(map[int]bool),
		step:           1,
		status:         models.StatusDraft,
	}

	a, err := remote.GetAssessment(ctx, cfg.AssessmentID)
	if err == nil {
		s.q = resolve(a.Type)
		s.responses = a.Responses.Clone()
		s.status = a.Status
		if a.CurrentStep >= 1 && a.CurrentStep <= s.q.TotalSteps() {
			s.step = a.CurrentStep
		}
		if steps, err := remote.GetCompletedSteps(ctx, cfg.AssessmentID); err == nil {
			for _, n := range steps {
				s.completedSteps[n] = true
			}
		}
	} else {
		snap, mErr := s.readMirror(ctx)
		if mErr != nil || snap == nil {
			return nil, err
		}
		s.log.Warn("remote fetch failed, restoring from mirror", map[string]interface{}{
			"error":     err.Error(),
			"lastSaved": snap.LastSaved,
		})
		s.q = resolve(cfg.FallbackType)
		s.responses = snap.Responses.Clone()
		for _, n := range snap.CompletedSteps {
			s.completedSteps[n] = true
		}
		s.restored = true
	}
	if s.responses == nil {
		s.responses = models.ResponseSet{}
	}

	s.client = autosave.NewClient(cfg.AssessmentID, remote, cfg.Autosave, log,
		autosave.WithOnSaved(s.onSaved),
	)
	return s, nil
}

// Restored reports whether the session was rebuilt from the mirror because
// the remote fetch failed.
func (s *Session) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// CurrentGroup returns the group under the cursor, or nil on the review step.
func (s *Session) CurrentGroup() *questionnaire.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onReview {
		return nil
	}
	return &s.q.Groups[s.step-1]
}

// Step returns the 1-based cursor position.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// OnReview reports whether the cursor sits past the last group.
func (s *Session) OnReview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onReview
}

// SaveStatus exposes the autosave client's state for UI display.
func (s *Session) SaveStatus() autosave.Status { return s.client.Status() }

// HasUnsavedChanges reports edits not yet confirmed by the remote store.
func (s *Session) HasUnsavedChanges() bool { return s.client.HasUnsavedChanges() }

// Responses returns a copy of the working response set.
func (s *Session) Responses() models.ResponseSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses.Clone()
}

// Progress returns the overall completed-step percentage.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return questionnaire.ProgressPercentage(s.completedStepsLocked(), s.q.TotalSteps())
}

// GroupCompletion recomputes the completion counters for one group.
func (s *Session) GroupCompletion(groupID string) (questionnaire.Completion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.q.Group(groupID)
	if g == nil {
		return questionnaire.Completion{}, false
	}
	return questionnaire.CalculateCompletion(g.Questions, s.responses[g.ID]), true
}

// SetAnswer records an answer, mirrors the new state and schedules a
// debounced save carrying the group's full response map. Unknown group or
// question ids are rejected; answer content is not validated here, the
// navigation gate does that.
func (s *Session) SetAnswer(ctx context.Context, groupID, questionID string, value models.AnswerValue) error {
	s.mu.Lock()
	g := s.q.Group(groupID)
	if g == nil {
		s.mu.Unlock()
		return &questionnaire.ValidationError{QuestionID: questionID, Message: "unknown question group", Code: "UNKNOWN_GROUP"}
	}
	known := false
	for _, q := range g.Questions {
		if q.ID == questionID {
			known = true
			break
		}
	}
	if !known {
		s.mu.Unlock()
		return &questionnaire.ValidationError{QuestionID: questionID, Message: "unknown question", Code: "UNKNOWN_QUESTION"}
	}

	s.responses.Set(groupID, questionID, value)
	group := cloneGroupResponses(s.responses[groupID])
	step := g.Step
	completion := questionnaire.CalculateCompletion(g.Questions, group)
	status := questionnaire.RequiredAwareStatus(completion)
	s.mu.Unlock()

	s.writeMirror(ctx)
	s.client.ScheduleSaveWithStatus(groupID, group, step, &status)
	return nil
}

// ClearAnswer removes an answer. Scheduling and mirroring behave like
// SetAnswer.
func (s *Session) ClearAnswer(ctx context.Context, groupID, questionID string) error {
	s.mu.Lock()
	g := s.q.Group(groupID)
	if g == nil {
		s.mu.Unlock()
		return &questionnaire.ValidationError{QuestionID: questionID, Message: "unknown question group", Code: "UNKNOWN_GROUP"}
	}
	if group, ok := s.responses[groupID]; ok {
		delete(group, questionID)
	}
	group := cloneGroupResponses(s.responses[groupID])
	step := g.Step
	completion := questionnaire.CalculateCompletion(g.Questions, group)
	status := questionnaire.RequiredAwareStatus(completion)
	s.mu.Unlock()

	s.writeMirror(ctx)
	s.client.ScheduleSaveWithStatus(groupID, group, step, &status)
	return nil
}

// SaveNow flushes any pending payload immediately.
func (s *Session) SaveNow(ctx context.Context) autosave.Result {
	return s.client.SaveNow(ctx)
}

// Close stops the autosave timer and drops unsent payloads. The mirror keeps
// its snapshot so an interrupted session can still be restored.
func (s *Session) Close() { s.client.Close() }

// onSaved folds the authoritative state returned by a successful save back
// into the session.
func (s *Session) onSaved(a *models.Assessment) {
	if a == nil {
		return
	}
	s.mu.Lock()
	s.status = a.Status
	s.mu.Unlock()
}

func (s *Session) completedStepsLocked() []int {
	out := make([]int, 0, len(s.completedSteps))
	for n := range s.completedSteps {
		out = append(out, n)
	}
	return out
}

func (s *Session) writeMirror(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	s.mu.Lock()
	snap := mirror.Snapshot{
		Responses:      s.responses.Clone(),
		CompletedSteps: s.completedStepsLocked(),
		LastSaved:      s.now(),
	}
	s.mu.Unlock()

	if err := s.mirror.Write(ctx, s.cfg.AssessmentID, snap); err != nil {
		s.log.WithError(err).Warn("mirror write failed", nil)
	}
}

func (s *Session) readMirror(ctx context.Context) (*mirror.Snapshot, error) {
	if s.mirror == nil {
		return nil, nil
	}
	snap, err := s.mirror.Read(ctx, s.cfg.AssessmentID)
	if err != nil {
		s.log.WithError(err).Warn("mirror read failed", nil)
		return nil, err
	}
	return snap, nil
}

func (s *Session) clearMirror(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Clear(ctx, s.cfg.AssessmentID); err != nil {
		s.log.WithError(err).Warn("mirror clear failed", nil)
	}
}

func cloneGroupResponses(in models.GroupResponses) models.GroupResponses {
	out := make(models.GroupResponses, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
