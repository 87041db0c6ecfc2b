// internal/common/errors/handler.go
package errors

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error to the HTTP status code the API should answer
// with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	var se *StandardError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}

	switch se.Code {
	case ErrCodeCompanyNotFound, ErrCodeAssessmentNotFound, ErrCodeGroupNotFound:
		return http.StatusNotFound
	case ErrCodeValidationFailed, ErrCodeIncompleteRequired:
		return http.StatusBadRequest
	case ErrCodeAssessmentCompleted:
		return http.StatusConflict
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeResponseSaveFailed, ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed, ErrCodeSearchQueryFailed,
		ErrCodeIndexingFailed, ErrCodeNotificationSendFailed,
		ErrCodeMirrorUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HTTPBody is the JSON error envelope returned by the API.
type HTTPBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// ToHTTPBody converts an error to the wire envelope.
func ToHTTPBody(err error) HTTPBody {
	var se *StandardError
	if errors.As(err, &se) {
		return HTTPBody{Code: se.Code, Message: se.Message, Details: se.Details}
	}
	return HTTPBody{Code: "INTERNAL_ERROR", Message: err.Error()}
}
