// internal/session/navigation.go
package session

import (
	"context"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/models"
	"assessment-service/internal/questionnaire"
)

// Next advances the cursor by one step. Only validation gates the move: on a
// validation failure the cursor stays put and the failures come back for
// display. The pending payload is flushed on the way, but a failed flush
// never pins the cursor; the failure stays visible through SaveStatus and
// HasUnsavedChanges while the user keeps answering, and the mirror retains
// the edits. Past the last group the cursor lands on the review step.
func (s *Session) Next(ctx context.Context) []questionnaire.ValidationError {
	s.mu.Lock()
	if s.onReview {
		s.mu.Unlock()
		return nil
	}
	g := s.q.Groups[s.step-1]
	verrs := questionnaire.ValidateGroup(g.Questions, s.responses[g.ID])
	s.mu.Unlock()

	if len(verrs) > 0 {
		return verrs
	}

	if res := s.client.SaveNow(ctx); res.Err != nil {
		s.log.WithError(res.Err).Warn("flush failed, advancing anyway", map[string]interface{}{
			"step":     g.Step,
			"attempts": res.Attempts,
		})
	}

	s.mu.Lock()
	s.completedSteps[g.Step] = true
	if s.step < s.q.TotalSteps() {
		s.step++
	} else {
		s.onReview = true
	}
	s.mu.Unlock()

	s.writeMirror(ctx)
	return nil
}

// Previous moves the cursor back one step. Never gated: answers on the
// current step stay in the working set and in the mirror regardless of their
// validity. At step one it is a no-op.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onReview {
		s.onReview = false
		return
	}
	if s.step > 1 {
		s.step--
	}
}

// JumpTo moves the cursor directly to a visited step. Only steps at or before
// the furthest completed step plus one are reachable.
func (s *Session) JumpTo(step int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < 1 || step > s.q.TotalSteps() {
		return false
	}
	max := 1
	for n := range s.completedSteps {
		if n+1 > max {
			max = n + 1
		}
	}
	if step > max {
		return false
	}
	s.step = step
	s.onReview = false
	return true
}

// Complete flushes outstanding edits, re-validates every required question
// across the whole questionnaire and performs the terminal transition. On
// success the mirror is cleared and the autosave client shut down; the
// session is read-only afterwards.
func (s *Session) Complete(ctx context.Context) (*models.Assessment, error) {
	if res := s.client.SaveNow(ctx); res.Err != nil {
		return nil, res.Err
	}

	s.mu.Lock()
	if s.status == models.StatusCompleted {
		s.mu.Unlock()
		return nil, apperrors.NewAssessmentCompletedError(s.cfg.AssessmentID)
	}
	missing := s.q.RequiredUnanswered(s.responses)
	s.mu.Unlock()

	if len(missing) > 0 {
		return nil, apperrors.NewIncompleteRequiredError(missing)
	}

	a, err := s.remote.CompleteAssessment(ctx, s.cfg.AssessmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.status = models.StatusCompleted
	s.mu.Unlock()

	s.clearMirror(ctx)
	s.client.Close()
	return a, nil
}
