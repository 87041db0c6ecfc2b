// Package errors provides standardized error handling for the assessment
// service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCompanyNotFound    ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeAssessmentNotFound ErrorCode = "ASSESSMENT_NOT_FOUND"
	ErrCodeGroupNotFound      ErrorCode = "GROUP_NOT_FOUND"

	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeAssessmentCompleted ErrorCode = "ASSESSMENT_ALREADY_COMPLETED"
	ErrCodeIncompleteRequired  ErrorCode = "REQUIRED_QUESTIONS_UNANSWERED"

	ErrCodeResponseSaveFailed       ErrorCode = "RESPONSE_SAVE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeMirrorUnavailable ErrorCode = "MIRROR_UNAVAILABLE"

	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return se.Code == e.Code
	}
	return false
}

// CodeOf extracts the error code, or empty when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNotFound reports whether err is one of the not-found codes.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodeCompanyNotFound, ErrCodeAssessmentNotFound, ErrCodeGroupNotFound:
		return true
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCompanyNotFoundError creates a non-retryable not-found error.
func NewCompanyNotFoundError(companyID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompanyNotFound,
		Message:   "Company not found",
		Details:   fmt.Sprintf("companyId: %s", companyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssessmentNotFoundError creates a non-retryable not-found error.
func NewAssessmentNotFoundError(assessmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssessmentNotFound,
		Message:   "Assessment not found",
		Details:   fmt.Sprintf("assessmentId: %s", assessmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGroupNotFoundError creates a non-retryable not-found error for an
// unknown step/category id.
func NewGroupNotFoundError(groupID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGroupNotFound,
		Message:   "Question group not found",
		Details:   fmt.Sprintf("groupId: %s", groupID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Answer validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssessmentCompletedError flags writes against a completed assessment.
func NewAssessmentCompletedError(assessmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssessmentCompleted,
		Message:   "Assessment is already completed",
		Details:   fmt.Sprintf("assessmentId: %s", assessmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIncompleteRequiredError flags completion attempts with unanswered
// required questions.
func NewIncompleteRequiredError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncompleteRequired,
		Message:   "Required questions are unanswered",
		Details:   fmt.Sprintf("questionIds: %v", missing),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseSaveFailedError creates a retryable persistence error.
func NewResponseSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseSaveFailed,
		Message:   "Failed to persist responses",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMirrorUnavailableError flags a backup mirror failure. Mirror errors are
// always swallowed by callers; the error exists for logging and metrics.
func NewMirrorUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMirrorUnavailable,
		Message:   "Backup mirror unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Assessment search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable indexing error.
func NewIndexingFailedError(assessmentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Assessment indexing failed",
		Details:   fmt.Sprintf("assessmentId: %s, error: %s", assessmentID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Completion notification failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable auth error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Unauthorized",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError creates a non-retryable credential error.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid email or password",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
