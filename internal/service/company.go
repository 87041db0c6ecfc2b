// internal/service/company.go

// Package service implements the application logic on top of the store:
// company and assessment lifecycle, response persistence, the completion
// gate, review assembly and statistics.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/models"
	"assessment-service/internal/store"
)

// CompanyService manages companies.
type CompanyService struct {
	store store.CompanyStore
	log   logger.Logger
	now   NowFunc
}

func NewCompanyService(s store.CompanyStore, log logger.Logger) *CompanyService {
	return &CompanyService{store: s, log: log, now: defaultNow}
}

// CreateCompanyInput carries the caller-supplied fields for a new company.
type CreateCompanyInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *CompanyService) CreateCompany(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("company name is required")
	}

	company := &models.Company{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateCompany(ctx, company); err != nil {
		return nil, err
	}

	s.log.Info("company created", map[string]interface{}{
		"companyId": company.ID,
		"name":      company.Name,
	})
	return company, nil
}

func (s *CompanyService) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	return s.store.GetCompany(ctx, id)
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	return s.store.ListCompanies(ctx)
}

func (s *CompanyService) UpdateCompany(ctx context.Context, id string, in CreateCompanyInput) (*models.Company, error) {
	company, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		company.Name = name
	}
	company.Description = strings.TrimSpace(in.Description)
	if err := s.store.UpdateCompany(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) DeleteCompany(ctx context.Context, id string) error {
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.log.Info("company deleted", map[string]interface{}{"companyId": id})
	return nil
}
