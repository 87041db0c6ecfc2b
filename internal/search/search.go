// internal/search/search.go

// Package search maintains the assessment search index and serves queries
// against it. Indexing is best-effort; the authoritative store never waits
// for Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/models"
)

// Document is the indexed projection of an assessment.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CompanyID   string    `json:"companyId"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	CurrentStep int       `json:"currentStep"`
	TotalSteps  int       `json:"totalSteps"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Query narrows a search. Zero values mean "no filter".
type Query struct {
	Text      string
	CompanyID string
	Type      models.AssessmentType
	Status    models.AssessmentStatus
	Size      int
}

// Service indexes and searches assessments.
type Service struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewService(es *elasticsearch.Client, index string, log logger.Logger) *Service {
	if index == "" {
		index = "assessments"
	}
	return &Service{es: es, index: index, log: log}
}

// IndexAssessment upserts the assessment's search document.
func (s *Service) IndexAssessment(ctx context.Context, a *models.Assessment) error {
	doc := Document{
		ID:          a.ID,
		Name:        a.Name,
		CompanyID:   a.CompanyID,
		Type:        string(a.Type),
		Status:      string(a.Status),
		CurrentStep: a.CurrentStep,
		TotalSteps:  a.TotalSteps,
		UpdatedAt:   a.UpdatedAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewIndexingFailedError(a.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: a.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return apperrors.NewIndexingFailedError(a.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewIndexingFailedError(a.ID, fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

// DeleteAssessment removes the document. A missing document is not an error.
func (s *Service) DeleteAssessment(ctx context.Context, assessmentID string) error {
	req := esapi.DeleteRequest{Index: s.index, DocumentID: assessmentID}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return apperrors.NewIndexingFailedError(assessmentID, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return apperrors.NewIndexingFailedError(assessmentID, fmt.Errorf("delete response: %s", res.Status()))
	}
	return nil
}

// SearchAssessments runs a full-text query over assessment names combined
// with exact filters.
func (s *Service) SearchAssessments(ctx context.Context, q Query) ([]Document, error) {
	must := []map[string]interface{}{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"name": map[string]interface{}{"query": q.Text, "fuzziness": "AUTO"},
			},
		})
	}
	filter := []map[string]interface{}{}
	if q.CompanyID != "" {
		filter = append(filter, termFilter("companyId", q.CompanyID))
	}
	if q.Type != "" {
		filter = append(filter, termFilter("type", string(q.Type)))
	}
	if q.Status != "" {
		filter = append(filter, termFilter("status", string(q.Status)))
	}

	size := q.Size
	if size <= 0 {
		size = 25
	}
	body, err := json.Marshal(map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []map[string]interface{}{
			{"updatedAt": map[string]interface{}{"order": "desc"}},
		},
	})
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("search response: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}

	out := make([]Document, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func termFilter(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}
