package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *model.ApprovalRule) error
	Update(ctx context.Context, rule *model.ApprovalRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRule, error)
	List(ctx context.Context, companyID uuid.UUID, entityType string, activeOnly bool, page, limit int) ([]model.ApprovalRule, int64, error)
	ListActive(ctx context.Context, companyID uuid.UUID, entityType string) ([]model.ApprovalRule, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.ApprovalRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.ApprovalRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ApprovalRule{}).Error
}

func (r *ruleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRule, error) {
	var rule model.ApprovalRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context, companyID uuid.UUID, entityType string, activeOnly bool, page, limit int) ([]model.ApprovalRule, int64, error) {
	var rules []model.ApprovalRule
	var total int64

	query := GetDB(ctx, r.db).Model(&model.ApprovalRule{}).Where("company_id = ?", companyID)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("priority DESC, updated_at DESC").Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

// ListActive returns the active rules for the company and entity type in
// selection order: highest priority first, ties broken on most recently
// updated. Condition evaluation happens in the service.
func (r *ruleRepository) ListActive(ctx context.Context, companyID uuid.UUID, entityType string) ([]model.ApprovalRule, error) {
	var rules []model.ApprovalRule
	err := GetDB(ctx, r.db).
		Where("company_id = ? AND entity_type = ? AND is_active = ?", companyID, entityType, true).
		Order("priority DESC, updated_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
