// internal/questionnaire/validate.go
package questionnaire

import (
	"fmt"
	"regexp"

	"assessment-service/internal/models"
)

// ValidationError describes one failed constraint on one question. These are
// user-correctable and never propagate past the navigation layer.
type ValidationError struct {
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Message)
}

// ValidateAnswer checks one answer against its question definition. Returns
// nil when the answer passes.
func ValidateAnswer(q models.Question, v models.AnswerValue) *ValidationError {
	if !v.IsAnswered() {
		if q.Required {
			return &ValidationError{QuestionID: q.ID, Message: "answer is required", Code: "REQUIRED"}
		}
		return nil
	}

	switch q.Type {
	case models.QuestionText, models.QuestionTextarea:
		if v.Kind != models.AnswerString {
			return typeError(q, "string")
		}
		return validateText(q, v.Str)
	case models.QuestionNumber:
		if v.Kind != models.AnswerNumber {
			return typeError(q, "number")
		}
		return validateNumber(q, v.Num)
	case models.QuestionSelect, models.QuestionRadio:
		if v.Kind != models.AnswerString {
			return typeError(q, "string")
		}
		if !optionAllowed(q, v.Str) {
			return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("value %q is not an allowed option", v.Str), Code: "INVALID_OPTION"}
		}
	case models.QuestionMultiselect, models.QuestionCheckbox:
		if v.Kind != models.AnswerStringList {
			return typeError(q, "string list")
		}
		for _, item := range v.List {
			if !optionAllowed(q, item) {
				return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("value %q is not an allowed option", item), Code: "INVALID_OPTION"}
			}
		}
	}

	return nil
}

// ValidateGroup validates every question in a group and collects failures.
func ValidateGroup(questions []models.Question, responses models.GroupResponses) []ValidationError {
	var errs []ValidationError
	for _, q := range questions {
		if err := ValidateAnswer(q, responses[q.ID]); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func validateText(q models.Question, s string) *ValidationError {
	rule := q.Validation
	if rule == nil {
		return nil
	}
	if rule.MinLength != nil && len(s) < *rule.MinLength {
		return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("must be at least %d characters", *rule.MinLength), Code: "MIN_LENGTH"}
	}
	if rule.MaxLength != nil && len(s) > *rule.MaxLength {
		return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("must be at most %d characters", *rule.MaxLength), Code: "MAX_LENGTH"}
	}
	if rule.Pattern != nil {
		re, err := regexp.Compile(*rule.Pattern)
		if err != nil {
			return &ValidationError{QuestionID: q.ID, Message: "invalid pattern in question definition", Code: "BAD_PATTERN"}
		}
		if !re.MatchString(s) {
			return &ValidationError{QuestionID: q.ID, Message: "does not match the expected format", Code: "PATTERN"}
		}
	}
	return nil
}

func validateNumber(q models.Question, n float64) *ValidationError {
	rule := q.Validation
	if rule == nil {
		return nil
	}
	if rule.Min != nil && n < *rule.Min {
		return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("must be at least %g", *rule.Min), Code: "MIN"}
	}
	if rule.Max != nil && n > *rule.Max {
		return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("must be at most %g", *rule.Max), Code: "MAX"}
	}
	return nil
}

func optionAllowed(q models.Question, value string) bool {
	// Definitions without options accept any value.
	if len(q.Options) == 0 {
		return true
	}
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func typeError(q models.Question, want string) *ValidationError {
	return &ValidationError{
		QuestionID: q.ID,
		Message:    fmt.Sprintf("expected a %s value for question type %s", want, q.Type),
		Code:       "WRONG_TYPE",
	}
}
