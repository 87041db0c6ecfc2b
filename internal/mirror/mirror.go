// internal/mirror/mirror.go

// Package mirror shadow-writes in-progress responses so a session can be
// rehydrated when the authoritative store is unreachable. The mirror is
// best-effort: it is never the source of truth when the remote fetch
// succeeds, and every failure here is swallowed by callers.
package mirror

import (
	"context"
	"fmt"
	"time"

	"assessment-service/internal/models"
)

// Snapshot is the mirrored state for one assessment.
type Snapshot struct {
	Responses      models.ResponseSet `json:"responses"`
	CompletedSteps []int              `json:"completedSteps"`
	LastSaved      time.Time          `json:"lastSaved"`
}

// Key returns the storage key for an assessment's snapshot.
func Key(assessmentID string) string {
	return fmt.Sprintf("assessment_%s_responses", assessmentID)
}

// Mirror stores and retrieves snapshots.
type Mirror interface {
	// Write replaces the snapshot for an assessment.
	Write(ctx context.Context, assessmentID string, snap Snapshot) error
	// Read returns the snapshot, or (nil, nil) when none exists.
	Read(ctx context.Context, assessmentID string) (*Snapshot, error)
	// Clear removes the snapshot. Clearing an absent key is not an error.
	Clear(ctx context.Context, assessmentID string) error
}
