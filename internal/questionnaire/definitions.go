// internal/questionnaire/definitions.go
package questionnaire

import "assessment-service/internal/models"

// ForType returns the built-in questionnaire for an assessment type.
// Definitions are hardcoded here; deployments that need custom questionnaires
// load them through a Registry instead.
func ForType(t models.AssessmentType) *Questionnaire {
	switch t {
	case models.TypeMigration:
		return FromRAPID(defaultRAPIDCategories())
	default:
		return FromSections(defaultExploratorySections())
	}
}

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

// defaultExploratorySections is the legacy flat-step questionnaire used by
// exploratory assessments.
func defaultExploratorySections() []models.QuestionSection {
	return []models.QuestionSection{
		{
			ID:    "step-1",
			Title: "Company Profile",
			Step:  1,
			Questions: []models.Question{
				{ID: "industry", Text: "Which industry does the company operate in?", Type: models.QuestionSelect, Required: true, Options: []models.QuestionOption{
					{Value: "finance", Label: "Financial Services"},
					{Value: "healthcare", Label: "Healthcare"},
					{Value: "retail", Label: "Retail"},
					{Value: "manufacturing", Label: "Manufacturing"},
					{Value: "other", Label: "Other"},
				}},
				{ID: "employee-count", Text: "How many employees does the company have?", Type: models.QuestionNumber, Required: true, Validation: &models.ValidationRule{Min: floatPtr(1), Max: floatPtr(1000000)}},
				{ID: "description", Text: "Briefly describe the company's core business.", Type: models.QuestionTextarea, Required: false, Validation: &models.ValidationRule{MaxLength: intPtr(2000)}},
			},
		},
		{
			ID:    "step-2",
			Title: "Current AI Usage",
			Step:  2,
			Questions: []models.Question{
				{ID: "ai-tools", Text: "Which AI tools are currently in use?", Type: models.QuestionMultiselect, Required: false, Options: []models.QuestionOption{
					{Value: "chatbots", Label: "Chatbots / assistants"},
					{Value: "code-gen", Label: "Code generation"},
					{Value: "analytics", Label: "Predictive analytics"},
					{Value: "vision", Label: "Computer vision"},
					{Value: "none", Label: "None"},
				}},
				{ID: "usage-maturity", Text: "How would you rate the organisation's AI maturity?", Type: models.QuestionRadio, Required: true, Options: []models.QuestionOption{
					{Value: "none", Label: "No usage"},
					{Value: "experimenting", Label: "Experimenting"},
					{Value: "production", Label: "In production"},
					{Value: "strategic", Label: "Strategic capability"},
				}},
				{ID: "blockers", Text: "What is the single biggest blocker to wider adoption?", Type: models.QuestionText, Required: true, Validation: &models.ValidationRule{MinLength: intPtr(1), MaxLength: intPtr(500)}},
			},
		},
		{
			ID:    "step-3",
			Title: "Goals",
			Step:  3,
			Questions: []models.Question{
				{ID: "primary-goal", Text: "What is the primary goal for the next twelve months?", Type: models.QuestionSelect, Required: true, Options: []models.QuestionOption{
					{Value: "cost", Label: "Reduce cost"},
					{Value: "revenue", Label: "Grow revenue"},
					{Value: "quality", Label: "Improve quality"},
					{Value: "speed", Label: "Ship faster"},
				}},
				{ID: "budget-allocated", Text: "Is there a dedicated budget for AI initiatives?", Type: models.QuestionCheckbox, Required: false, Options: []models.QuestionOption{
					{Value: "yes", Label: "Yes"},
				}},
				{ID: "success-criteria", Text: "How will success be measured?", Type: models.QuestionTextarea, Required: false},
			},
		},
	}
}

// defaultRAPIDCategories is the RAPID questionnaire used by migration
// assessments: Readiness, Architecture, People, Infrastructure, Data.
func defaultRAPIDCategories() []models.RAPIDCategory {
	return []models.RAPIDCategory{
		{
			ID: "readiness", Name: "Readiness", Order: 1,
			Subcategories: []models.RAPIDSubcategory{
				{ID: "readiness-strategy", Name: "Strategy", Order: 1, Questions: []models.Question{
					{ID: "exec-sponsor", Text: "Is there an executive sponsor for the migration?", Type: models.QuestionRadio, Required: true, Options: yesNoOptions()},
					{ID: "timeline", Text: "What is the target migration timeline in months?", Type: models.QuestionNumber, Required: true, Validation: &models.ValidationRule{Min: floatPtr(1), Max: floatPtr(60)}},
				}},
				{ID: "readiness-risk", Name: "Risk Appetite", Order: 2, Questions: []models.Question{
					{ID: "risk-tolerance", Text: "How much downtime is tolerable during cutover?", Type: models.QuestionSelect, Required: true, Options: []models.QuestionOption{
						{Value: "zero", Label: "None"},
						{Value: "minutes", Label: "Minutes"},
						{Value: "hours", Label: "Hours"},
						{Value: "days", Label: "Days"},
					}},
				}},
			},
		},
		{
			ID: "architecture", Name: "Architecture", Order: 2,
			Subcategories: []models.RAPIDSubcategory{
				{ID: "architecture-landscape", Name: "Landscape", Order: 1, Questions: []models.Question{
					{ID: "workload-types", Text: "Which workload types are in scope?", Type: models.QuestionMultiselect, Required: true, Options: []models.QuestionOption{
						{Value: "web", Label: "Web applications"},
						{Value: "batch", Label: "Batch processing"},
						{Value: "ml", Label: "ML pipelines"},
						{Value: "db", Label: "Databases"},
					}},
					{ID: "legacy-systems", Text: "Describe any legacy systems that must keep running.", Type: models.QuestionTextarea, Required: false, Validation: &models.ValidationRule{MaxLength: intPtr(4000)}},
				}},
			},
		},
		{
			ID: "people", Name: "People", Order: 3,
			Subcategories: []models.RAPIDSubcategory{
				{ID: "people-skills", Name: "Skills", Order: 1, Questions: []models.Question{
					{ID: "team-size", Text: "How many engineers will work on the migration?", Type: models.QuestionNumber, Required: true, Validation: &models.ValidationRule{Min: floatPtr(1)}},
					{ID: "training-needed", Text: "Is upskilling/training required before starting?", Type: models.QuestionRadio, Required: true, Options: yesNoOptions()},
				}},
			},
		},
		{
			ID: "infrastructure", Name: "Infrastructure", Order: 4,
			Subcategories: []models.RAPIDSubcategory{
				{ID: "infrastructure-current", Name: "Current State", Order: 1, Questions: []models.Question{
					{ID: "hosting", Text: "Where do workloads run today?", Type: models.QuestionSelect, Required: true, Options: []models.QuestionOption{
						{Value: "onprem", Label: "On premises"},
						{Value: "cloud", Label: "Public cloud"},
						{Value: "hybrid", Label: "Hybrid"},
					}},
					{ID: "iac", Text: "Is infrastructure managed as code?", Type: models.QuestionRadio, Required: false, Options: yesNoOptions()},
				}},
			},
		},
		{
			ID: "data", Name: "Data", Order: 5,
			Subcategories: []models.RAPIDSubcategory{
				{ID: "data-estate", Name: "Data Estate", Order: 1, Questions: []models.Question{
					{ID: "data-volume", Text: "What is the total data volume to migrate, in TB?", Type: models.QuestionNumber, Required: true, Validation: &models.ValidationRule{Min: floatPtr(0)}},
					{ID: "data-sensitivity", Text: "Which sensitivity classes are present?", Type: models.QuestionMultiselect, Required: true, Options: []models.QuestionOption{
						{Value: "public", Label: "Public"},
						{Value: "internal", Label: "Internal"},
						{Value: "pii", Label: "PII"},
						{Value: "regulated", Label: "Regulated"},
					}},
				}},
			},
		},
	}
}

func yesNoOptions() []models.QuestionOption {
	return []models.QuestionOption{
		{Value: "yes", Label: "Yes"},
		{Value: "no", Label: "No"},
	}
}
