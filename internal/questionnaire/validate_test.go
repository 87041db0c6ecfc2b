// internal/questionnaire/validate_test.go
package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-service/internal/models"
)

func TestValidateAnswer(t *testing.T) {
	minLen, maxLen := 3, 10
	minNum, maxNum := 1.0, 100.0
	pattern := "^[a-z-]+$"

	tests := []struct {
		name     string
		question models.Question
		answer   models.AnswerValue
		code     string
	}{
		{
			name:     "required unanswered",
			question: models.Question{ID: "q", Type: models.QuestionText, Required: true},
			answer:   models.AnswerValue{},
			code:     "REQUIRED",
		},
		{
			name:     "optional unanswered passes",
			question: models.Question{ID: "q", Type: models.QuestionText},
			answer:   models.AnswerValue{},
		},
		{
			name:     "text too short",
			question: models.Question{ID: "q", Type: models.QuestionText, Validation: &models.ValidationRule{MinLength: &minLen}},
			answer:   models.StringAnswer("ab"),
			code:     "MIN_LENGTH",
		},
		{
			name:     "text too long",
			question: models.Question{ID: "q", Type: models.QuestionTextarea, Validation: &models.ValidationRule{MaxLength: &maxLen}},
			answer:   models.StringAnswer("this is far too long"),
			code:     "MAX_LENGTH",
		},
		{
			name:     "pattern mismatch",
			question: models.Question{ID: "q", Type: models.QuestionText, Validation: &models.ValidationRule{Pattern: &pattern}},
			answer:   models.StringAnswer("Not Matching"),
			code:     "PATTERN",
		},
		{
			name:     "number below min",
			question: models.Question{ID: "q", Type: models.QuestionNumber, Validation: &models.ValidationRule{Min: &minNum}},
			answer:   models.NumberAnswer(0),
			code:     "MIN",
		},
		{
			name:     "number above max",
			question: models.Question{ID: "q", Type: models.QuestionNumber, Validation: &models.ValidationRule{Max: &maxNum}},
			answer:   models.NumberAnswer(101),
			code:     "MAX",
		},
		{
			name:     "number in range",
			question: models.Question{ID: "q", Type: models.QuestionNumber, Validation: &models.ValidationRule{Min: &minNum, Max: &maxNum}},
			answer:   models.NumberAnswer(50),
		},
		{
			name:     "wrong type for number question",
			question: models.Question{ID: "q", Type: models.QuestionNumber},
			answer:   models.StringAnswer("fifty"),
			code:     "WRONG_TYPE",
		},
		{
			name: "select value outside options",
			question: models.Question{ID: "q", Type: models.QuestionSelect, Options: []models.QuestionOption{
				{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"},
			}},
			answer: models.StringAnswer("maybe"),
			code:   "INVALID_OPTION",
		},
		{
			name: "multiselect with one bad item",
			question: models.Question{ID: "q", Type: models.QuestionMultiselect, Options: []models.QuestionOption{
				{Value: "a", Label: "A"}, {Value: "b", Label: "B"},
			}},
			answer: models.ListAnswer("a", "z"),
			code:   "INVALID_OPTION",
		},
		{
			name: "multiselect all valid",
			question: models.Question{ID: "q", Type: models.QuestionMultiselect, Options: []models.QuestionOption{
				{Value: "a", Label: "A"}, {Value: "b", Label: "B"},
			}},
			answer: models.ListAnswer("a", "b"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnswer(tt.question, tt.answer)
			if tt.code == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, "q", err.QuestionID)
		})
	}
}

func TestValidateGroupCollectsAllFailures(t *testing.T) {
	questions := []models.Question{
		{ID: "a", Type: models.QuestionText, Required: true},
		{ID: "b", Type: models.QuestionNumber, Required: true},
		{ID: "c", Type: models.QuestionText},
	}
	errs := ValidateGroup(questions, models.GroupResponses{
		"b": models.StringAnswer("not a number"),
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "a", errs[0].QuestionID)
	assert.Equal(t, "b", errs[1].QuestionID)
}
