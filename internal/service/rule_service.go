package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Rule DTOs ---

type ConditionInput struct {
	Field    string `json:"field" binding:"required"`
	Operator string `json:"operator" binding:"required,oneof=equals not_equals contains"`
	Value    string `json:"value" binding:"required"`
}

type CreateRuleRequest struct {
	Name       string           `json:"name" binding:"required"`
	EntityType string           `json:"entity_type" binding:"required,oneof=blog_post social_post"`
	Conditions []ConditionInput `json:"conditions"`
	Steps      []StepInput      `json:"steps" binding:"required,min=1"`
	Priority   int              `json:"priority"`
	IsActive   *bool            `json:"is_active"`
}

type UpdateRuleRequest struct {
	Name       *string           `json:"name"`
	Conditions *[]ConditionInput `json:"conditions"`
	Steps      *[]StepInput      `json:"steps"`
	Priority   *int              `json:"priority"`
	IsActive   *bool             `json:"is_active"`
}

// --- Interface ---

type RuleService interface {
	CreateRule(ctx context.Context, companyID, callerID string, req CreateRuleRequest) (*model.ApprovalRule, error)
	UpdateRule(ctx context.Context, id, companyID, callerID string, req UpdateRuleRequest) (*model.ApprovalRule, error)
	DeleteRule(ctx context.Context, id, companyID, callerID string) error
	GetRule(ctx context.Context, id, companyID string) (*model.ApprovalRule, error)
	ListRules(ctx context.Context, companyID, entityType string, activeOnly bool, page, limit int) ([]model.ApprovalRule, int64, error)
}

type ruleService struct {
	repo  repository.RuleRepository
	audit repository.AuditRepository
}

func NewRuleService(repo repository.RuleRepository, audit repository.AuditRepository) RuleService {
	return &ruleService{repo: repo, audit: audit}
}

func toStepConfigs(inputs []StepInput) []model.StepConfig {
	configs := make([]model.StepConfig, 0, len(inputs))
	for _, in := range inputs {
		configs = append(configs, model.StepConfig{
			Name:                 in.Name,
			AssignmentType:       in.AssignmentType,
			ReviewerIDs:          in.ReviewerIDs,
			Role:                 in.Role,
			RequiresAllReviewers: in.RequiresAllReviewers,
			AllowParallelReview:  in.AllowParallelReview,
		})
	}
	return configs
}

func toRuleConditions(inputs []ConditionInput) []model.RuleCondition {
	conditions := make([]model.RuleCondition, 0, len(inputs))
	for _, in := range inputs {
		conditions = append(conditions, model.RuleCondition{
			Field:    in.Field,
			Operator: in.Operator,
			Value:    in.Value,
		})
	}
	return conditions
}

func (s *ruleService) logAction(ctx context.Context, callerID, action, entityID, entityName string) {
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

func (s *ruleService) CreateRule(ctx context.Context, companyID, callerID string, req CreateRuleRequest) (*model.ApprovalRule, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	rule := &model.ApprovalRule{
		CompanyID:  companyUID,
		Name:       req.Name,
		EntityType: req.EntityType,
		Conditions: toRuleConditions(req.Conditions),
		Steps:      toStepConfigs(req.Steps),
		Priority:   req.Priority,
		IsActive:   active,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.logAction(ctx, callerID, model.ActionCreateRule, rule.ID.String(), rule.Name)
	return rule, nil
}

func (s *ruleService) UpdateRule(ctx context.Context, id, companyID, callerID string, req UpdateRuleRequest) (*model.ApprovalRule, error) {
	rule, err := s.GetRule(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.BadRequest("name cannot be empty")
		}
		rule.Name = *req.Name
	}
	if req.Conditions != nil {
		rule.Conditions = toRuleConditions(*req.Conditions)
	}
	if req.Steps != nil {
		if len(*req.Steps) == 0 {
			return nil, apperror.BadRequest("a rule needs at least one step")
		}
		rule.Steps = toStepConfigs(*req.Steps)
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.logAction(ctx, callerID, model.ActionUpdateRule, rule.ID.String(), rule.Name)
	return rule, nil
}

func (s *ruleService) DeleteRule(ctx context.Context, id, companyID, callerID string) error {
	rule, err := s.GetRule(ctx, id, companyID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, rule.ID); err != nil {
		return err
	}
	s.logAction(ctx, callerID, model.ActionDeleteRule, rule.ID.String(), rule.Name)
	return nil
}

func (s *ruleService) GetRule(ctx context.Context, id, companyID string) (*model.ApprovalRule, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid rule id")
	}
	rule, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("approval rule")
	}
	if rule.CompanyID.String() != companyID {
		return nil, apperror.NotFound("approval rule")
	}
	return rule, nil
}

func (s *ruleService) ListRules(ctx context.Context, companyID, entityType string, activeOnly bool, page, limit int) ([]model.ApprovalRule, int64, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, apperror.BadRequest("invalid company id")
	}
	return s.repo.List(ctx, companyUID, entityType, activeOnly, page, limit)
}
