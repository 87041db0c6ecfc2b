// internal/models/assessment.go
package models

import "time"

// AssessmentType fixes the questionnaire structure and total step count.
type AssessmentType string

const (
	TypeExploratory AssessmentType = "EXPLORATORY"
	TypeMigration   AssessmentType = "MIGRATION"
)

// AssessmentStatus is the lifecycle state of an assessment.
type AssessmentStatus string

const (
	StatusDraft      AssessmentStatus = "DRAFT"
	StatusInProgress AssessmentStatus = "IN_PROGRESS"
	StatusCompleted  AssessmentStatus = "COMPLETED"
)

// CategoryStatus is the derived tri-state completion status of a group.
type CategoryStatus string

const (
	CategoryNotStarted CategoryStatus = "not_started"
	CategoryPartial    CategoryStatus = "partial"
	CategoryCompleted  CategoryStatus = "completed"
)

// Assessment is one questionnaire instance owned by a company.
//
// Invariants: CurrentStep <= TotalSteps; CompletedAt is set iff Status is
// COMPLETED; UpdatedAt >= CreatedAt.
type Assessment struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	CompanyID   string           `json:"companyId"`
	Type        AssessmentType   `json:"type"`
	Status      AssessmentStatus `json:"status"`
	CurrentStep int              `json:"currentStep"`
	TotalSteps  int              `json:"totalSteps"`
	Responses   ResponseSet      `json:"responses,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// CategoryCompletion is the derived completion state of a single group. It is
// recomputed from responses against the group's question list, never stored
// authoritatively on the client side.
type CategoryCompletion struct {
	GroupID          string         `json:"groupId"`
	Status           CategoryStatus `json:"status"`
	Percentage       int            `json:"percentage"`
	Answered         int            `json:"answered"`
	Required         int            `json:"required"`
	AnsweredRequired int            `json:"answeredRequired"`
	Total            int            `json:"total"`
	LastModified     time.Time      `json:"lastModified"`
}

// Company owns zero or more assessments.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	AssessmentCount int       `json:"assessmentCount"`
}

// AssessmentStatistics aggregates counts for dashboards.
type AssessmentStatistics struct {
	Total             int                      `json:"total"`
	ByStatus          map[AssessmentStatus]int `json:"byStatus"`
	ByType            map[AssessmentType]int   `json:"byType"`
	AverageCompletion int                      `json:"averageCompletion"`
}
