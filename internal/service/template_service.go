package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Template DTOs ---

type CreateTemplateRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	EntityType  string      `json:"entity_type" binding:"required,oneof=blog_post social_post"`
	Steps       []StepInput `json:"steps" binding:"required,min=1"`
	IsDefault   bool        `json:"is_default"`
}

type UpdateTemplateRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Steps       *[]StepInput `json:"steps"`
	IsDefault   *bool        `json:"is_default"`
}

// --- Interface ---

type TemplateService interface {
	CreateTemplate(ctx context.Context, companyID, callerID string, req CreateTemplateRequest) (*model.ApprovalTemplate, error)
	UpdateTemplate(ctx context.Context, id, companyID, callerID string, req UpdateTemplateRequest) (*model.ApprovalTemplate, error)
	DeleteTemplate(ctx context.Context, id, companyID, callerID string) error
	GetTemplate(ctx context.Context, id, companyID string) (*model.ApprovalTemplate, error)
	ListTemplates(ctx context.Context, companyID, entityType string, page, limit int) ([]model.ApprovalTemplate, int64, error)
}

type templateService struct {
	repo      repository.TemplateRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
}

func NewTemplateService(repo repository.TemplateRepository, audit repository.AuditRepository, txManager repository.TransactionManager) TemplateService {
	return &templateService{repo: repo, audit: audit, txManager: txManager}
}

func (s *templateService) logAction(ctx context.Context, callerID, action, entityID, entityName string) {
	callerUID, err := uuid.Parse(callerID)
	if err != nil {
		return
	}
	_ = s.audit.Create(ctx, &model.AuditLog{
		UserID:     &callerUID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	})
}

func (s *templateService) CreateTemplate(ctx context.Context, companyID, callerID string, req CreateTemplateRequest) (*model.ApprovalTemplate, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}

	template := &model.ApprovalTemplate{
		CompanyID:   companyUID,
		Name:        req.Name,
		Description: req.Description,
		EntityType:  req.EntityType,
		Steps:       toStepConfigs(req.Steps),
		IsDefault:   req.IsDefault,
	}

	// Only one template per (company, entityType) may be the default, so the
	// demotion of the old default and the insert run in one transaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.IsDefault {
			if err := s.repo.ClearDefault(txCtx, companyUID, req.EntityType); err != nil {
				return err
			}
		}
		return s.repo.Create(txCtx, template)
	})
	if err != nil {
		return nil, err
	}

	s.logAction(ctx, callerID, model.ActionCreateTemplate, template.ID.String(), template.Name)
	return template, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, id, companyID, callerID string, req UpdateTemplateRequest) (*model.ApprovalTemplate, error) {
	template, err := s.GetTemplate(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.BadRequest("name cannot be empty")
		}
		template.Name = *req.Name
	}
	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.Steps != nil {
		if len(*req.Steps) == 0 {
			return nil, apperror.BadRequest("a template needs at least one step")
		}
		template.Steps = toStepConfigs(*req.Steps)
	}
	promoting := req.IsDefault != nil && *req.IsDefault && !template.IsDefault
	if req.IsDefault != nil {
		template.IsDefault = *req.IsDefault
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if promoting {
			if err := s.repo.ClearDefault(txCtx, template.CompanyID, template.EntityType); err != nil {
				return err
			}
		}
		return s.repo.Update(txCtx, template)
	})
	if err != nil {
		return nil, err
	}

	s.logAction(ctx, callerID, model.ActionUpdateTemplate, template.ID.String(), template.Name)
	return template, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id, companyID, callerID string) error {
	template, err := s.GetTemplate(ctx, id, companyID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, template.ID); err != nil {
		return err
	}
	s.logAction(ctx, callerID, model.ActionDeleteTemplate, template.ID.String(), template.Name)
	return nil
}

func (s *templateService) GetTemplate(ctx context.Context, id, companyID string) (*model.ApprovalTemplate, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid template id")
	}
	template, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("approval template")
	}
	if template.CompanyID.String() != companyID {
		return nil, apperror.NotFound("approval template")
	}
	return template, nil
}

func (s *templateService) ListTemplates(ctx context.Context, companyID, entityType string, page, limit int) ([]model.ApprovalTemplate, int64, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, apperror.BadRequest("invalid company id")
	}
	return s.repo.List(ctx, companyUID, entityType, page, limit)
}
