// internal/service/remote.go
package service

import (
	"context"

	"assessment-service/internal/autosave"
	"assessment-service/internal/models"
)

// GetCompletedSteps returns the distinct completed step numbers.
func (s *AssessmentService) GetCompletedSteps(ctx context.Context, assessmentID string) ([]int, error) {
	return s.store.GetCompletedSteps(ctx, assessmentID)
}

// SaveResponses adapts the autosave payload onto UpdateCategoryResponses so
// the service can back a session directly, without the HTTP client in
// between.
func (s *AssessmentService) SaveResponses(ctx context.Context, req autosave.SaveRequest) (*models.Assessment, error) {
	return s.UpdateCategoryResponses(ctx, req.AssessmentID, req.GroupID, req.Responses, req.CurrentStep)
}
