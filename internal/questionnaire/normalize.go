// internal/questionnaire/normalize.go
package questionnaire

import (
	"sort"

	"assessment-service/internal/models"
)

// Group is the normalized unit of navigation: an ordered list of questions
// with enough naming context to render either a legacy step or a RAPID
// subcategory. Downstream logic (completion, navigation, review) only ever
// sees this shape.
type Group struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	CategoryID   string            `json:"categoryId,omitempty"`
	CategoryName string            `json:"categoryName,omitempty"`
	Step         int               `json:"step"`
	Questions    []models.Question `json:"questions"`
}

// Questionnaire is the normalized category/subcategory/question tree flattened
// into an ordered group list. Step numbers are contiguous starting at 1.
type Questionnaire struct {
	Groups []Group `json:"groups"`
}

// FromSections adapts the legacy flat-step shape.
func FromSections(sections []models.QuestionSection) *Questionnaire {
	sorted := append([]models.QuestionSection(nil), sections...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Step < sorted[j].Step })

	q := &Questionnaire{Groups: make([]Group, 0, len(sorted))}
	for i, s := range sorted {
		q.Groups = append(q.Groups, Group{
			ID:        s.ID,
			Title:     s.Title,
			Step:      i + 1,
			Questions: s.Questions,
		})
	}
	return q
}

// FromRAPID adapts the RAPID category tree: one group per subcategory,
// ordered by category order then subcategory order.
func FromRAPID(categories []models.RAPIDCategory) *Questionnaire {
	sorted := append([]models.RAPIDCategory(nil), categories...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	q := &Questionnaire{}
	step := 0
	for _, cat := range sorted {
		subs := append([]models.RAPIDSubcategory(nil), cat.Subcategories...)
		sort.Slice(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
		for _, sub := range subs {
			step++
			q.Groups = append(q.Groups, Group{
				ID:           sub.ID,
				Title:        sub.Name,
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				Step:         step,
				Questions:    sub.Questions,
			})
		}
	}
	return q
}

// Group returns the group with the given id, or nil.
func (q *Questionnaire) Group(id string) *Group {
	for i := range q.Groups {
		if q.Groups[i].ID == id {
			return &q.Groups[i]
		}
	}
	return nil
}

// TotalSteps is the number of groups.
func (q *Questionnaire) TotalSteps() int { return len(q.Groups) }

// TotalQuestions counts questions across all groups.
func (q *Questionnaire) TotalQuestions() int {
	n := 0
	for _, g := range q.Groups {
		n += len(g.Questions)
	}
	return n
}

// RequiredUnanswered returns the ids of required questions across all groups
// that have no valid answer yet. Used by the global completion gate.
func (q *Questionnaire) RequiredUnanswered(responses models.ResponseSet) []string {
	var missing []string
	for _, g := range q.Groups {
		group := responses[g.ID]
		for _, question := range g.Questions {
			if !question.Required {
				continue
			}
			if v, ok := group[question.ID]; !ok || !v.IsAnswered() {
				missing = append(missing, question.ID)
			}
		}
	}
	return missing
}
