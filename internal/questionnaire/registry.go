// internal/questionnaire/registry.go
package questionnaire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"assessment-service/internal/models"
)

// definitionSchema validates questionnaire definition documents before they
// replace the built-in defaults. A document carries either a legacy section
// list or a RAPID category tree, never both.
var definitionSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"type"},
	"properties": map[string]interface{}{
		"type": map[string]interface{}{
			"type": "string",
			"enum": []string{"EXPLORATORY", "MIGRATION"},
		},
		"sections": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "title", "step", "questions"},
				"properties": map[string]interface{}{
					"id":        map[string]interface{}{"type": "string", "minLength": 1},
					"title":     map[string]interface{}{"type": "string", "minLength": 1},
					"step":      map[string]interface{}{"type": "integer", "minimum": 1},
					"questions": questionArraySchema,
				},
			},
		},
		"categories": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "name", "order", "subcategories"},
				"properties": map[string]interface{}{
					"id":    map[string]interface{}{"type": "string", "minLength": 1},
					"name":  map[string]interface{}{"type": "string", "minLength": 1},
					"order": map[string]interface{}{"type": "integer", "minimum": 1},
					"subcategories": map[string]interface{}{
						"type":     "array",
						"minItems": 1,
						"items": map[string]interface{}{
							"type":     "object",
							"required": []string{"id", "name", "order", "questions"},
							"properties": map[string]interface{}{
								"id":        map[string]interface{}{"type": "string", "minLength": 1},
								"name":      map[string]interface{}{"type": "string", "minLength": 1},
								"order":     map[string]interface{}{"type": "integer", "minimum": 1},
								"questions": questionArraySchema,
							},
						},
					},
				},
			},
		},
	},
	"oneOf": []interface{}{
		map[string]interface{}{"required": []string{"sections"}},
		map[string]interface{}{"required": []string{"categories"}},
	},
}

var questionArraySchema = map[string]interface{}{
	"type":     "array",
	"minItems": 1,
	"items": map[string]interface{}{
		"type":     "object",
		"required": []string{"id", "text", "type"},
		"properties": map[string]interface{}{
			"id":   map[string]interface{}{"type": "string", "minLength": 1},
			"text": map[string]interface{}{"type": "string", "minLength": 1},
			"type": map[string]interface{}{
				"type": "string",
				"enum": []string{"text", "textarea", "select", "multiselect", "radio", "checkbox", "number"},
			},
			"required": map[string]interface{}{"type": "boolean"},
		},
	},
}

// definitionDoc is the on-disk shape of a questionnaire override.
type definitionDoc struct {
	Type       models.AssessmentType    `json:"type"`
	Sections   []models.QuestionSection `json:"sections,omitempty"`
	Categories []models.RAPIDCategory   `json:"categories,omitempty"`
}

// Registry holds questionnaire overrides loaded from JSON files. Lookup
// returns nil for types without an override so callers can fall back to the
// built-in definitions.
type Registry struct {
	mu     sync.RWMutex
	byType map[models.AssessmentType]*Questionnaire
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[models.AssessmentType]*Questionnaire)}
}

// Lookup returns the registered questionnaire for a type, or nil.
func (r *Registry) Lookup(t models.AssessmentType) *Questionnaire {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t]
}

// Register validates and installs a definition document.
func (r *Registry) Register(raw []byte) (models.AssessmentType, error) {
	if err := ValidateDefinition(raw); err != nil {
		return "", err
	}

	var doc definitionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decoding questionnaire definition: %w", err)
	}

	var q *Questionnaire
	if len(doc.Categories) > 0 {
		q = FromRAPID(doc.Categories)
	} else {
		q = FromSections(doc.Sections)
	}
	if err := checkUniqueGroupIDs(q); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.byType[doc.Type] = q
	r.mu.Unlock()
	return doc.Type, nil
}

// LoadFile registers a single definition file.
func (r *Registry) LoadFile(path string) (models.AssessmentType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := r.Register(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadDir registers every .json file in a directory.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading questionnaire dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDefinition checks a raw definition document against the schema.
func ValidateDefinition(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(definitionSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid questionnaire definition: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func checkUniqueGroupIDs(q *Questionnaire) error {
	seen := make(map[string]bool, len(q.Groups))
	for _, g := range q.Groups {
		if seen[g.ID] {
			return fmt.Errorf("duplicate group id %q", g.ID)
		}
		seen[g.ID] = true
	}
	return nil
}
