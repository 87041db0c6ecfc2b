// internal/models/question.go
package models

// QuestionType enumerates the supported input types.
type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionTextarea    QuestionType = "textarea"
	QuestionSelect      QuestionType = "select"
	QuestionMultiselect QuestionType = "multiselect"
	QuestionRadio       QuestionType = "radio"
	QuestionCheckbox    QuestionType = "checkbox"
	QuestionNumber      QuestionType = "number"
)

// RequiresOptions reports whether the type needs an enumerated option list.
func (t QuestionType) RequiresOptions() bool {
	switch t {
	case QuestionSelect, QuestionMultiselect, QuestionRadio, QuestionCheckbox:
		return true
	}
	return false
}

// QuestionOption is one selectable choice.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ValidationRule holds the optional per-question constraints. Nil pointers
// mean the constraint is absent.
type ValidationRule struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   *string  `json:"pattern,omitempty"`
}

// Question is a single item in a questionnaire.
type Question struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Type       QuestionType     `json:"type"`
	Required   bool             `json:"required"`
	Validation *ValidationRule  `json:"validation,omitempty"`
	Options    []QuestionOption `json:"options,omitempty"`
}

// QuestionSection is a legacy flat step (steps 1..N).
type QuestionSection struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Step      int        `json:"step"`
	Questions []Question `json:"questions"`
}

// RAPIDSubcategory groups questions beneath a RAPID category.
type RAPIDSubcategory struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Questions []Question `json:"questions"`
}

// RAPIDCategory is a top-level RAPID category containing ordered
// subcategories.
type RAPIDCategory struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Order         int                `json:"order"`
	Subcategories []RAPIDSubcategory `json:"subcategories"`
}
