package service

import (
	"context"
	"regexp"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Company DTOs ---

type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	Industry    *string `json:"industry"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// --- Interface ---

type CompanyService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (*model.Company, error)
	UpdateCompany(ctx context.Context, id string, req UpdateCompanyRequest) (*model.Company, error)
	DeleteCompany(ctx context.Context, id string) error
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (*model.Company, error)
	ListCompanies(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL-safe slug from a display name
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *companyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*model.Company, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if slug == "" {
		return nil, apperror.BadRequest("could not derive a slug from the company name")
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, apperror.BadRequestf("slug %q is already taken", slug)
	}

	company := &model.Company{
		Name:        req.Name,
		Slug:        slug,
		Website:     req.Website,
		Industry:    req.Industry,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, id string, req UpdateCompanyRequest) (*model.Company, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}

	company, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("company")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.BadRequest("name cannot be empty")
		}
		company.Name = *req.Name
	}
	if req.Website != nil {
		company.Website = *req.Website
	}
	if req.Industry != nil {
		company.Industry = *req.Industry
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

func (s *companyService) DeleteCompany(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid company id")
	}
	if _, err := s.repo.FindByID(ctx, uid); err != nil {
		return apperror.NotFound("company")
	}
	return s.repo.Delete(ctx, uid)
}

func (s *companyService) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}
	company, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("company")
	}
	return company, nil
}

func (s *companyService) GetCompanyBySlug(ctx context.Context, slug string) (*model.Company, error) {
	company, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.NotFound("company")
	}
	return company, nil
}

func (s *companyService) ListCompanies(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error) {
	return s.repo.List(ctx, search, page, limit)
}
