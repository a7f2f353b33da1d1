package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewConnection(database.DriverSQLite, dsn)
	require.NoError(t, err)
	return db
}

func newTestWorkflowService(db *gorm.DB) WorkflowService {
	return NewWorkflowService(
		db,
		repository.NewUserRepository(db),
		repository.NewRuleRepository(db),
		repository.NewTemplateRepository(db),
		repository.NewCompanyRepository(db),
		nil,
	)
}

func seedCompany(t *testing.T, db *gorm.DB) *model.Company {
	t.Helper()
	company := &model.Company{Name: "Acme Media", Slug: fmt.Sprintf("acme-%s", t.Name()), IsActive: true}
	require.NoError(t, db.Create(company).Error)
	return company
}

var seedSeq atomic.Int64

func seedUser(t *testing.T, db *gorm.DB, companyID, role string) *model.User {
	t.Helper()
	n := seedSeq.Add(1)
	user := &model.User{
		CompanyID: uuid.MustParse(companyID),
		Username:  fmt.Sprintf("%s-%d", role, n),
		Email:     fmt.Sprintf("%s-%d@example.com", role, n),
		Password:  "hashed",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBlogPost(t *testing.T, db *gorm.DB, companyID, authorID string, tags ...string) *model.BlogPost {
	t.Helper()
	post := &model.BlogPost{
		CompanyID: uuid.MustParse(companyID),
		AuthorID:  uuid.MustParse(authorID),
		Title:     "Quarterly launch recap",
		Slug:      "quarterly-launch-recap",
		Content:   "Launch went well.",
		Tags:      tags,
		Status:    model.ContentStatusDraft,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}


// createCustomWorkflow builds a draft workflow with explicit per-step reviewers
func createCustomWorkflow(t *testing.T, svc WorkflowService, company *model.Company, author *model.User, post *model.BlogPost, stepReviewers ...[]string) *model.ApprovalWorkflow {
	t.Helper()
	steps := make([]StepInput, 0, len(stepReviewers))
	for i, reviewers := range stepReviewers {
		steps = append(steps, StepInput{
			Name:           fmt.Sprintf("Stage %d", i+1),
			AssignmentType: model.AssignSpecificUsers,
			ReviewerIDs:    reviewers,
		})
	}
	workflow, err := svc.CreateWorkflow(context.Background(), company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType:  model.EntityTypeBlogPost,
		EntityID:    post.ID.String(),
		CustomSteps: steps,
	})
	require.NoError(t, err)
	return workflow
}

func TestWorkflowLifecycle_ApproveThenReject(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer1 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	reviewer2 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post,
		[]string{reviewer1.ID.String()},
		[]string{reviewer2.ID.String()},
	)
	assert.Equal(t, model.WorkflowStatusDraft, workflow.Status)
	assert.Equal(t, 1, workflow.CurrentStage)
	assert.Equal(t, 2, workflow.TotalStages)
	require.Len(t, workflow.Steps, 2)
	assert.Equal(t, model.StepStatusPending, workflow.Steps[0].Status)

	// Submit: step 1 activates and its reviewer is notified
	workflow, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowStatusPendingReview, workflow.Status)
	assert.NotNil(t, workflow.SubmittedAt)
	assert.Equal(t, model.StepStatusInProgress, workflow.Steps[0].Status)
	assert.NotNil(t, workflow.Steps[0].StartedAt)

	var post1 model.BlogPost
	require.NoError(t, db.First(&post1, "id = ?", post.ID).Error)
	assert.Equal(t, model.ContentStatusInReview, post1.Status)

	var reviewNotifs int64
	db.Model(&model.Notification{}).Where("user_id = ? AND type = ?", reviewer1.ID, model.NotificationReviewRequested).Count(&reviewNotifs)
	assert.Equal(t, int64(1), reviewNotifs)

	// Stage 1 approval advances to stage 2
	workflow, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer1.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowStatusInReview, workflow.Status)
	assert.Equal(t, 2, workflow.CurrentStage)
	assert.Equal(t, model.StepStatusApproved, workflow.Steps[0].Status)
	assert.Equal(t, model.StepStatusInProgress, workflow.Steps[1].Status)

	// Stage 2 rejection terminates the workflow
	workflow, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer2.ID.String(), DecisionRequest{
		Decision: model.DecisionRejected,
		Comment:  "Needs a rewrite",
	})
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowStatusRejected, workflow.Status)
	assert.NotNil(t, workflow.CompletedAt)
	assert.Equal(t, model.StepStatusRejected, workflow.Steps[1].Status)
	assert.Equal(t, model.StepStatusRejected, workflow.Steps[1].FinalDecision)

	var post2 model.BlogPost
	require.NoError(t, db.First(&post2, "id = ?", post.ID).Error)
	assert.Equal(t, model.ContentStatusRejected, post2.Status)

	var rejectedNotifs int64
	db.Model(&model.Notification{}).Where("user_id = ? AND type = ?", author.ID, model.NotificationWorkflowRejected).Count(&rejectedNotifs)
	assert.Equal(t, int64(1), rejectedNotifs)
}

func TestWorkflowLifecycle_FullApproval(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})

	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	workflow, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowStatusApproved, workflow.Status)
	assert.NotNil(t, workflow.CompletedAt)

	var updated model.BlogPost
	require.NoError(t, db.First(&updated, "id = ?", post.ID).Error)
	assert.Equal(t, model.ContentStatusApproved, updated.Status)

	var approvedNotifs int64
	db.Model(&model.Notification{}).Where("user_id = ? AND type = ?", author.ID, model.NotificationWorkflowApproved).Count(&approvedNotifs)
	assert.Equal(t, int64(1), approvedNotifs)
}

func TestCreateWorkflow_RulePriorityWins(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	lowRule := &model.ApprovalRule{
		CompanyID:  company.ID,
		Name:       "Single review",
		EntityType: model.EntityTypeBlogPost,
		Steps:      []model.StepConfig{{Name: "Quick look", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor}},
		Priority:   1,
		IsActive:   true,
	}
	highRule := &model.ApprovalRule{
		CompanyID:  company.ID,
		Name:       "Double review",
		EntityType: model.EntityTypeBlogPost,
		Steps: []model.StepConfig{
			{Name: "First pass", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
			{Name: "Second pass", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
		},
		Priority: 10,
		IsActive: true,
	}
	require.NoError(t, db.Create(lowRule).Error)
	require.NoError(t, db.Create(highRule).Error)

	workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, workflow.TotalStages)
	assert.Equal(t, "First pass", workflow.Steps[0].Name)
}

func TestCreateWorkflow_RuleConditionsFilter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	urgentRule := &model.ApprovalRule{
		CompanyID:  company.ID,
		Name:       "Urgent escalation",
		EntityType: model.EntityTypeBlogPost,
		Conditions: []model.RuleCondition{{Field: "priority", Operator: "equals", Value: model.PriorityUrgent}},
		Steps: []model.StepConfig{
			{Name: "Editor pass", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
			{Name: "Editor re-check", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
			{Name: "Final sign-off", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
		},
		Priority: 100,
		IsActive: true,
	}
	require.NoError(t, db.Create(urgentRule).Error)

	// Medium priority does not match the urgent rule, so the fallback applies
	workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, workflow.TotalStages)
	assert.Equal(t, "Editorial review", workflow.Steps[0].Name)

	// Urgent priority matches
	post2 := seedBlogPost(t, db, company.ID.String(), author.ID.String())
	workflow2, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post2.ID.String(),
		Priority:   model.PriorityUrgent,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, workflow2.TotalStages)
}

func TestCreateWorkflow_TagCondition(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String(), "legal", "finance")

	legalRule := &model.ApprovalRule{
		CompanyID:  company.ID,
		Name:       "Legal review",
		EntityType: model.EntityTypeBlogPost,
		Conditions: []model.RuleCondition{{Field: "tag", Operator: "contains", Value: "legal"}},
		Steps: []model.StepConfig{
			{Name: "Legal check", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
			{Name: "Editorial check", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
		},
		Priority: 50,
		IsActive: true,
	}
	require.NoError(t, db.Create(legalRule).Error)

	workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Legal check", workflow.Steps[0].Name)
}

func TestCreateWorkflow_TemplateResolution(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	template := &model.ApprovalTemplate{
		CompanyID:  company.ID,
		Name:       "Standard blog review",
		EntityType: model.EntityTypeBlogPost,
		Steps: []model.StepConfig{
			{Name: "Copy edit", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
			{Name: "Final approval", AssignmentType: model.AssignRoleBased, Role: model.RoleEditor},
		},
	}
	require.NoError(t, db.Create(template).Error)

	workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
		TemplateID: template.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, workflow.TotalStages)
	assert.Equal(t, "Copy edit", workflow.Steps[0].Name)

	var reloaded model.ApprovalTemplate
	require.NoError(t, db.First(&reloaded, "id = ?", template.ID).Error)
	assert.Equal(t, 1, reloaded.TimesUsed)
}

func TestCreateWorkflow_ReviewerFallbackPool(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	editor := seedUser(t, db, company.ID.String(), model.RoleEditor)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, workflow.Steps, 1)
	assert.ElementsMatch(t,
		[]string{editor.ID.String(), admin.ID.String()},
		workflow.Steps[0].AssignedReviewers)
}

func TestCreateWorkflow_NoEligibleReviewers(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	_, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no eligible reviewers")
}

func TestSubmitWorkflow_Preconditions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})

	// Only the author may submit
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), reviewer.ID.String())
	require.Error(t, err)

	_, err = svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	// A second submit fails: no longer draft
	_, err = svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending_review")
}

func TestRecordDecision_DuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer1 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	reviewer2 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post,
		[]string{reviewer1.ID.String(), reviewer2.ID.String()})
	// Force a quorum step so the first approval does not resolve it
	require.NoError(t, db.Model(&model.ApprovalStep{}).
		Where("workflow_id = ?", workflow.ID).
		Update("requires_all_reviewers", true).Error)

	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer1.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer1.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already decided")
}

func TestRecordDecision_NotAssigned(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	outsider := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, workflow.ID.String(), outsider.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not assigned")
}

func TestRecordDecision_RequiresAllReviewers(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer1 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	reviewer2 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post,
		[]string{reviewer1.ID.String(), reviewer2.ID.String()})
	require.NoError(t, db.Model(&model.ApprovalStep{}).
		Where("workflow_id = ?", workflow.ID).
		Update("requires_all_reviewers", true).Error)

	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	// First approval: step stays open waiting for the second reviewer
	workflow, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer1.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, model.StepStatusInProgress, workflow.Steps[0].Status)
	assert.False(t, workflow.IsTerminal())

	// Second approval resolves the step and completes the workflow
	workflow, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer2.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, model.StepStatusApproved, workflow.Steps[0].Status)
	assert.Equal(t, model.WorkflowStatusApproved, workflow.Status)
}

func TestRecordDecision_ChangesRequested(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	workflow, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer.ID.String(), DecisionRequest{
		Decision: model.DecisionChangesRequested,
		Comment:  "Tighten the intro",
	})
	require.NoError(t, err)

	// Step remains open and the workflow is not terminal
	assert.Equal(t, model.StepStatusInProgress, workflow.Steps[0].Status)
	assert.False(t, workflow.IsTerminal())
	require.Len(t, workflow.Steps[0].Decisions, 1)
	assert.Equal(t, model.DecisionChangesRequested, workflow.Steps[0].Decisions[0].Decision)

	var notifs int64
	db.Model(&model.Notification{}).Where("user_id = ? AND type = ?", author.ID, model.NotificationChangesRequested).Count(&notifs)
	assert.Equal(t, int64(1), notifs)
}

func TestBulkApprove_SkipsIneligible(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	other := seedUser(t, db, company.ID.String(), model.RoleEditor)

	post1 := seedBlogPost(t, db, company.ID.String(), author.ID.String())
	post2 := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	eligible := createCustomWorkflow(t, svc, company, author, post1, []string{reviewer.ID.String()})
	ineligible := createCustomWorkflow(t, svc, company, author, post2, []string{other.ID.String()})

	_, err := svc.SubmitWorkflow(ctx, eligible.ID.String(), author.ID.String())
	require.NoError(t, err)
	_, err = svc.SubmitWorkflow(ctx, ineligible.ID.String(), author.ID.String())
	require.NoError(t, err)

	result, err := svc.BulkApprove(ctx, reviewer.ID.String(), BulkApprovalRequest{
		WorkflowIDs: []string{eligible.ID.String(), ineligible.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{eligible.ID.String()}, result.Processed)
	assert.Equal(t, []string{ineligible.ID.String()}, result.Skipped)
}

func TestDeleteWorkflow_DraftOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	err = svc.DeleteWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.Error(t, err)

	// A fresh draft deletes cleanly along with its steps
	post2 := seedBlogPost(t, db, company.ID.String(), author.ID.String())
	draft := createCustomWorkflow(t, svc, company, author, post2, []string{reviewer.ID.String()})
	require.NoError(t, svc.DeleteWorkflow(ctx, draft.ID.String(), author.ID.String()))

	var stepCount int64
	db.Model(&model.ApprovalStep{}).Where("workflow_id = ?", draft.ID).Count(&stepCount)
	assert.Equal(t, int64(0), stepCount)
}

func TestGetTimeline_Ordering(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer1 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	reviewer2 := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post,
		[]string{reviewer1.ID.String()},
		[]string{reviewer2.ID.String()},
	)
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer1.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer2.ID.String(), DecisionRequest{Decision: model.DecisionRejected})
	require.NoError(t, err)

	events, err := svc.GetTimeline(ctx, workflow.ID.String(), company.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "created", events[0].Event)
	assert.Equal(t, "submitted", events[1].Event)
	assert.Equal(t, model.DecisionApproved, events[2].Event)
	assert.Equal(t, 1, events[2].StepNumber)
	assert.Equal(t, model.DecisionRejected, events[3].Event)
	assert.Equal(t, 2, events[3].StepNumber)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}
}

func TestListWorkflows_FiltersAndCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	other := seedUser(t, db, company.ID.String(), model.RoleEditor)

	post1 := seedBlogPost(t, db, company.ID.String(), author.ID.String())
	post2 := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	assigned := createCustomWorkflow(t, svc, company, author, post1, []string{reviewer.ID.String()})
	createCustomWorkflow(t, svc, company, author, post2, []string{other.ID.String()})

	result, err := svc.ListWorkflows(ctx, company.ID.String(), reviewer.ID.String(), WorkflowFilter{AssignedToMe: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, assigned.ID, result.Workflows[0].ID)

	all, err := svc.ListWorkflows(ctx, company.ID.String(), reviewer.ID.String(), WorkflowFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, int64(2), all.Counts.ByStatus[model.WorkflowStatusDraft])
}

func TestGetDashboardStats(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, workflow.ID.String(), reviewer.ID.String(), DecisionRequest{Decision: model.DecisionApproved})
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats(ctx, company.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ApprovedToday)
	assert.Equal(t, int64(0), stats.RejectedToday)
	require.Len(t, stats.Trend, 7)

	today := time.Now().Format("2006-01-02")
	assert.Equal(t, today, stats.Trend[6].Date)
	assert.Equal(t, int64(1), stats.Trend[6].Approved)
}

func TestUpdateWorkflow_DraftOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})

	high := model.PriorityHigh
	updated, err := svc.UpdateWorkflow(ctx, workflow.ID.String(), author.ID.String(), UpdateWorkflowRequest{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, updated.Priority)

	_, err = svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	low := model.PriorityLow
	_, err = svc.UpdateWorkflow(ctx, workflow.ID.String(), author.ID.String(), UpdateWorkflowRequest{Priority: &low})
	require.Error(t, err)
}

func TestListWorkflows_DueDateCountsAndFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)

	makeWorkflow := func(due time.Time, submit bool) *model.ApprovalWorkflow {
		post := seedBlogPost(t, db, company.ID.String(), author.ID.String())
		workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
			EntityType: model.EntityTypeBlogPost,
			EntityID:   post.ID.String(),
			CustomSteps: []StepInput{{
				Name:           "Review",
				AssignmentType: model.AssignSpecificUsers,
				ReviewerIDs:    []string{reviewer.ID.String()},
			}},
			DueDate: &due,
		})
		require.NoError(t, err)
		if submit {
			_, err = svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
			require.NoError(t, err)
		}
		return workflow
	}

	overdue := makeWorkflow(time.Now().Add(-48*time.Hour), true)
	makeWorkflow(time.Now().Add(12*time.Hour), true) // due within the next day
	farOut := makeWorkflow(time.Now().Add(72*time.Hour), true)
	makeWorkflow(time.Now().Add(-48*time.Hour), false) // stale draft: past due but never submitted

	all, err := svc.ListWorkflows(ctx, company.ID.String(), reviewer.ID.String(), WorkflowFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	// Only workflows still under review count: the stale draft is excluded
	assert.Equal(t, int64(1), all.Counts.Overdue)
	assert.Equal(t, int64(1), all.Counts.DueSoon)

	// due_before matches on the date alone, regardless of status
	now := time.Now()
	before, err := svc.ListWorkflows(ctx, company.ID.String(), reviewer.ID.String(), WorkflowFilter{DueBefore: &now})
	require.NoError(t, err)
	assert.Equal(t, int64(2), before.Total)
	ids := make([]string, 0, len(before.Workflows))
	for _, w := range before.Workflows {
		ids = append(ids, w.ID.String())
	}
	assert.Contains(t, ids, overdue.ID.String())

	cutoff := time.Now().Add(24 * time.Hour)
	after, err := svc.ListWorkflows(ctx, company.ID.String(), reviewer.ID.String(), WorkflowFilter{DueAfter: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.Total)
	require.Len(t, after.Workflows, 1)
	assert.Equal(t, farOut.ID, after.Workflows[0].ID)
}

func TestDecisionUniqueIndex_TranslatesDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	reviewer := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	workflow := createCustomWorkflow(t, svc, company, author, post, []string{reviewer.ID.String()})
	_, err := svc.SubmitWorkflow(ctx, workflow.ID.String(), author.ID.String())
	require.NoError(t, err)

	decision := model.ApprovalDecision{
		WorkflowID: workflow.ID,
		StepID:     workflow.Steps[0].ID,
		ReviewerID: reviewer.ID,
		Decision:   model.DecisionApproved,
		DecidedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&decision).Error)

	// A second row for the same (step, reviewer) must surface as the
	// portable duplicate-key error the decision path branches on
	dup := model.ApprovalDecision{
		WorkflowID: workflow.ID,
		StepID:     workflow.Steps[0].ID,
		ReviewerID: reviewer.ID,
		Decision:   model.DecisionRejected,
		DecidedAt:  time.Now(),
	}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateWorkflow_SocialTitleKeepsRunesIntact(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWorkflowService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	seedUser(t, db, company.ID.String(), model.RoleEditor)

	post := &model.SocialMediaPost{
		CompanyID: company.ID,
		AuthorID:  author.ID,
		Platform:  model.PlatformTwitter,
		Content:   strings.Repeat("发布公告", 30), // 120 runes, 3 bytes each
		Status:    model.ContentStatusDraft,
	}
	require.NoError(t, db.Create(post).Error)

	workflow, err := svc.CreateWorkflow(ctx, company.ID.String(), author.ID.String(), CreateWorkflowRequest{
		EntityType: model.EntityTypeSocialPost,
		EntityID:   post.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(workflow.EntityTitle))
	assert.Equal(t, 80, len([]rune(workflow.EntityTitle)))
}
