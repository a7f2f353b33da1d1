package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *model.ApprovalTemplate) error
	Update(ctx context.Context, template *model.ApprovalTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalTemplate, error)
	List(ctx context.Context, companyID uuid.UUID, entityType string, page, limit int) ([]model.ApprovalTemplate, int64, error)
	IncrementTimesUsed(ctx context.Context, id uuid.UUID) error
	ClearDefault(ctx context.Context, companyID uuid.UUID, entityType string) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.ApprovalTemplate) error {
	return GetDB(ctx, r.db).Create(template).Error
}

func (r *templateRepository) Update(ctx context.Context, template *model.ApprovalTemplate) error {
	return GetDB(ctx, r.db).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ApprovalTemplate{}).Error
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalTemplate, error) {
	var template model.ApprovalTemplate
	if err := GetDB(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) List(ctx context.Context, companyID uuid.UUID, entityType string, page, limit int) ([]model.ApprovalTemplate, int64, error) {
	var templates []model.ApprovalTemplate
	var total int64

	query := GetDB(ctx, r.db).Model(&model.ApprovalTemplate{}).Where("company_id = ?", companyID)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("times_used DESC, created_at DESC").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// IncrementTimesUsed bumps the usage counter atomically
func (r *templateRepository) IncrementTimesUsed(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.ApprovalTemplate{}).
		Where("id = ?", id).
		Update("times_used", gorm.Expr("times_used + 1")).Error
}

// ClearDefault drops the default flag on all templates for the scope so a
// newly flagged template becomes the single default
func (r *templateRepository) ClearDefault(ctx context.Context, companyID uuid.UUID, entityType string) error {
	return GetDB(ctx, r.db).Model(&model.ApprovalTemplate{}).
		Where("company_id = ? AND entity_type = ? AND is_default = ?", companyID, entityType, true).
		Update("is_default", false).Error
}
