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

func newTestTemplateService(db *gorm.DB) TemplateService {
	return NewTemplateService(
		repository.NewTemplateRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)
}

func editorStep(name string) StepInput {
	return StepInput{Name: name, AssignmentType: model.AssignRoleBased, Role: model.RoleEditor}
}

func TestCreateTemplate_SingleDefaultPerEntityType(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTemplateService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)

	first, err := svc.CreateTemplate(ctx, company.ID.String(), admin.ID.String(), CreateTemplateRequest{
		Name:       "Blog default",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []StepInput{editorStep("Review")},
		IsDefault:  true,
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	// A new default for the same entity type demotes the old one
	second, err := svc.CreateTemplate(ctx, company.ID.String(), admin.ID.String(), CreateTemplateRequest{
		Name:       "Stricter blog default",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []StepInput{editorStep("Review"), editorStep("Sign-off")},
		IsDefault:  true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	var reloaded model.ApprovalTemplate
	require.NoError(t, db.First(&reloaded, "id = ?", first.ID).Error)
	assert.False(t, reloaded.IsDefault)

	// A default for another entity type is unaffected
	social, err := svc.CreateTemplate(ctx, company.ID.String(), admin.ID.String(), CreateTemplateRequest{
		Name:       "Social default",
		EntityType: model.EntityTypeSocialPost,
		Steps:      []StepInput{editorStep("Review")},
		IsDefault:  true,
	})
	require.NoError(t, err)

	var blogDefault, socialDefault int64
	db.Model(&model.ApprovalTemplate{}).
		Where("company_id = ? AND entity_type = ? AND is_default = ?", company.ID, model.EntityTypeBlogPost, true).
		Count(&blogDefault)
	db.Model(&model.ApprovalTemplate{}).
		Where("company_id = ? AND entity_type = ? AND is_default = ?", company.ID, model.EntityTypeSocialPost, true).
		Count(&socialDefault)
	assert.Equal(t, int64(1), blogDefault)
	assert.Equal(t, int64(1), socialDefault)
	assert.True(t, social.IsDefault)
}

func TestUpdateTemplate_PromoteToDefault(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTemplateService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)

	incumbent, err := svc.CreateTemplate(ctx, company.ID.String(), admin.ID.String(), CreateTemplateRequest{
		Name:       "Incumbent",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []StepInput{editorStep("Review")},
		IsDefault:  true,
	})
	require.NoError(t, err)

	challenger, err := svc.CreateTemplate(ctx, company.ID.String(), admin.ID.String(), CreateTemplateRequest{
		Name:       "Challenger",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []StepInput{editorStep("Review")},
	})
	require.NoError(t, err)

	promote := true
	updated, err := svc.UpdateTemplate(ctx, challenger.ID.String(), company.ID.String(), admin.ID.String(), UpdateTemplateRequest{IsDefault: &promote})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	var demoted model.ApprovalTemplate
	require.NoError(t, db.First(&demoted, "id = ?", incumbent.ID).Error)
	assert.False(t, demoted.IsDefault)
}

func TestTemplate_CompanyScoping(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTemplateService(db)
	ctx := context.Background()

	companyA := seedCompany(t, db)
	adminA := seedUser(t, db, companyA.ID.String(), model.RoleAdmin)

	companyB := &model.Company{Name: "Rival Media", Slug: "rival-media", IsActive: true}
	require.NoError(t, db.Create(companyB).Error)

	template, err := svc.CreateTemplate(ctx, companyA.ID.String(), adminA.ID.String(), CreateTemplateRequest{
		Name:       "Private flow",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []StepInput{editorStep("Review")},
	})
	require.NoError(t, err)

	_, err = svc.GetTemplate(ctx, template.ID.String(), companyB.ID.String())
	require.Error(t, err)

	got, err := svc.GetTemplate(ctx, template.ID.String(), companyA.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Private flow", got.Name)
}
