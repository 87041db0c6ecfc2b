// internal/questionnaire/normalize_test.go
package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-service/internal/models"
)

func TestFromSectionsOrdersAndRenumbers(t *testing.T) {
	sections := []models.QuestionSection{
		{ID: "s-goals", Title: "Goals", Step: 7, Questions: []models.Question{q("g1", true)}},
		{ID: "s-profile", Title: "Profile", Step: 2, Questions: []models.Question{q("p1", true)}},
	}
	nq := FromSections(sections)

	require.Len(t, nq.Groups, 2)
	assert.Equal(t, "s-profile", nq.Groups[0].ID)
	assert.Equal(t, 1, nq.Groups[0].Step)
	assert.Equal(t, "s-goals", nq.Groups[1].ID)
	assert.Equal(t, 2, nq.Groups[1].Step, "steps are renumbered contiguously")
}

func TestFromRAPIDFlattensSubcategories(t *testing.T) {
	categories := []models.RAPIDCategory{
		{ID: "people", Name: "People", Order: 3, Subcategories: []models.RAPIDSubcategory{
			{ID: "people-skills", Name: "Skills", Order: 1, Questions: []models.Question{q("sk1", true)}},
		}},
		{ID: "readiness", Name: "Readiness", Order: 1, Subcategories: []models.RAPIDSubcategory{
			{ID: "readiness-risk", Name: "Risk", Order: 2, Questions: []models.Question{q("r2", false)}},
			{ID: "readiness-strategy", Name: "Strategy", Order: 1, Questions: []models.Question{q("r1", true)}},
		}},
	}
	nq := FromRAPID(categories)

	require.Len(t, nq.Groups, 3)
	assert.Equal(t, []string{"readiness-strategy", "readiness-risk", "people-skills"}, []string{
		nq.Groups[0].ID, nq.Groups[1].ID, nq.Groups[2].ID,
	})
	assert.Equal(t, 1, nq.Groups[0].Step)
	assert.Equal(t, 3, nq.Groups[2].Step)
	assert.Equal(t, "Readiness", nq.Groups[0].CategoryName)
	assert.Equal(t, "people", nq.Groups[2].CategoryID)
}

func TestGroupLookup(t *testing.T) {
	nq := ForType(models.TypeExploratory)
	require.NotNil(t, nq.Group("step-1"))
	assert.Nil(t, nq.Group("nope"))
	assert.Equal(t, 3, nq.TotalSteps())
}

func TestRequiredUnanswered(t *testing.T) {
	nq := FromSections([]models.QuestionSection{
		{ID: "s1", Title: "One", Step: 1, Questions: []models.Question{q("a", true), q("b", false)}},
		{ID: "s2", Title: "Two", Step: 2, Questions: []models.Question{q("c", true)}},
	})

	missing := nq.RequiredUnanswered(models.ResponseSet{})
	assert.Equal(t, []string{"a", "c"}, missing)

	responses := models.ResponseSet{
		"s1": {"a": models.StringAnswer("x")},
		"s2": {"c": models.StringAnswer("")},
	}
	assert.Equal(t, []string{"c"}, nq.RequiredUnanswered(responses), "empty string is not an answer")

	responses["s2"]["c"] = models.StringAnswer("done")
	assert.Empty(t, nq.RequiredUnanswered(responses))
}

func TestBuiltInDefinitions(t *testing.T) {
	exploratory := ForType(models.TypeExploratory)
	assert.Equal(t, 3, exploratory.TotalSteps())

	migration := ForType(models.TypeMigration)
	assert.Equal(t, 6, migration.TotalSteps())
	for _, g := range migration.Groups {
		assert.NotEmpty(t, g.CategoryID)
		assert.NotEmpty(t, g.Questions)
	}
}
