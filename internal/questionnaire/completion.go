// internal/questionnaire/completion.go
package questionnaire

import (
	"math"

	"assessment-service/internal/models"
)

// Completion carries the derived counters for one group of questions.
type Completion struct {
	Answered         int
	Required         int
	AnsweredRequired int
	Total            int
	Percentage       int
	Status           models.CategoryStatus
}

// CalculateCompletion computes answered/required counters, a half-up rounded
// percentage and the tri-state status for a group. Pure function: no side
// effects, idempotent, independent of question order.
func CalculateCompletion(questions []models.Question, responses models.GroupResponses) Completion {
	c := Completion{Total: len(questions)}

	for _, q := range questions {
		if q.Required {
			c.Required++
		}
		v, ok := responses[q.ID]
		if !ok || !v.IsAnswered() {
			continue
		}
		c.Answered++
		if q.Required {
			c.AnsweredRequired++
		}
	}

	if c.Total > 0 {
		c.Percentage = int(math.Round(float64(c.Answered) / float64(c.Total) * 100))
	}

	switch {
	case c.Answered == 0:
		c.Status = models.CategoryNotStarted
	case c.Answered == c.Total:
		c.Status = models.CategoryCompleted
	default:
		c.Status = models.CategoryPartial
	}

	return c
}

// RequiredAwareStatus derives the status counting only required questions:
// a group with every required question answered reads as completed even when
// optional questions are still open.
func RequiredAwareStatus(c Completion) models.CategoryStatus {
	switch {
	case c.Answered == 0:
		return models.CategoryNotStarted
	case c.Required > 0 && c.AnsweredRequired == c.Required:
		return models.CategoryCompleted
	case c.Answered == c.Total:
		return models.CategoryCompleted
	default:
		return models.CategoryPartial
	}
}

// ProgressPercentage derives the overall step progress from the set of
// completed step numbers. Duplicates and out-of-range entries are ignored.
func ProgressPercentage(completedSteps []int, totalSteps int) int {
	if totalSteps <= 0 {
		return 0
	}
	seen := make(map[int]bool, len(completedSteps))
	count := 0
	for _, s := range completedSteps {
		if s < 1 || s > totalSteps || seen[s] {
			continue
		}
		seen[s] = true
		count++
	}
	return int(math.Round(float64(count) / float64(totalSteps) * 100))
}
