package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRuleService(db *gorm.DB) RuleService {
	return NewRuleService(repository.NewRuleRepository(db), repository.NewAuditRepository(db))
}

func TestRuleCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := newTestRuleService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)

	rule, err := svc.CreateRule(ctx, company.ID.String(), admin.ID.String(), CreateRuleRequest{
		Name:       "Urgent escalation",
		EntityType: model.EntityTypeBlogPost,
		Conditions: []ConditionInput{{Field: "priority", Operator: "equals", Value: model.PriorityUrgent}},
		Steps:      []StepInput{editorStep("Escalated review")},
		Priority:   10,
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	require.Len(t, rule.Conditions, 1)
	assert.Equal(t, "priority", rule.Conditions[0].Field)

	newPriority := 20
	inactive := false
	updated, err := svc.UpdateRule(ctx, rule.ID.String(), company.ID.String(), admin.ID.String(), UpdateRuleRequest{
		Priority: &newPriority,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Priority)
	assert.False(t, updated.IsActive)

	// Inactive rules are hidden from the active-only listing
	active, _, err := svc.ListRules(ctx, company.ID.String(), model.EntityTypeBlogPost, true, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, total, err := svc.ListRules(ctx, company.ID.String(), model.EntityTypeBlogPost, false, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, all, 1)

	require.NoError(t, svc.DeleteRule(ctx, rule.ID.String(), company.ID.String(), admin.ID.String()))
	_, err = svc.GetRule(ctx, rule.ID.String(), company.ID.String())
	require.Error(t, err)
}

func TestRule_CompanyScoping(t *testing.T) {
	db := newTestDB(t)
	svc := newTestRuleService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)

	rival := &model.Company{Name: "Rival", Slug: "rival-rules", IsActive: true}
	require.NoError(t, db.Create(rival).Error)

	rule, err := svc.CreateRule(ctx, company.ID.String(), admin.ID.String(), CreateRuleRequest{
		Name:       "House style",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []StepInput{editorStep("Style check")},
	})
	require.NoError(t, err)

	_, err = svc.GetRule(ctx, rule.ID.String(), rival.ID.String())
	require.Error(t, err)
}

func TestRule_AuditTrail(t *testing.T) {
	db := newTestDB(t)
	svc := newTestRuleService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)

	rule, err := svc.CreateRule(ctx, company.ID.String(), admin.ID.String(), CreateRuleRequest{
		Name:       "Audited rule",
		EntityType: model.EntityTypeSocialPost,
		Steps:      []StepInput{editorStep("Review")},
	})
	require.NoError(t, err)

	var logs []model.AuditLog
	require.NoError(t, db.Where("entity_id = ?", rule.ID.String()).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionCreateRule, logs[0].Action)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, admin.ID, *logs[0].UserID)
}
