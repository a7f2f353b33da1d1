package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventPublisher pushes realtime events to connected clients. Implemented by
// the websocket hub; nil disables publishing.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

// --- DTOs ---

type StepInput struct {
	Name                 string   `json:"name"`
	AssignmentType       string   `json:"assignment_type" binding:"omitempty,oneof=specific_users role_based"`
	ReviewerIDs          []string `json:"reviewer_ids"`
	Role                 string   `json:"role"`
	RequiresAllReviewers bool     `json:"requires_all_reviewers"`
	AllowParallelReview  bool     `json:"allow_parallel_review"`
}

type CreateWorkflowRequest struct {
	EntityType  string      `json:"entity_type" binding:"required"`
	EntityID    string      `json:"entity_id" binding:"required"`
	TemplateID  string      `json:"template_id"`
	CustomSteps []StepInput `json:"custom_steps"`
	Reviewers   []string    `json:"reviewers"` // pre-assigned; overrides step-level assignment
	Priority    string      `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time  `json:"due_date"`
}

type UpdateWorkflowRequest struct {
	EntityTitle *string    `json:"entity_title"`
	Priority    *string    `json:"priority" binding:"omitempty"`
	DueDate     *time.Time `json:"due_date"`
	Reviewers   *[]string  `json:"reviewers"` // replaces reviewers on all not-yet-started steps
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected changes_requested"`
	Comment  string `json:"comment"`
}

type BulkApprovalRequest struct {
	WorkflowIDs []string `json:"workflow_ids" binding:"required,min=1"`
	Comment     string   `json:"comment"`
}

type BulkApprovalResult struct {
	Processed []string `json:"processed"`
	Skipped   []string `json:"skipped"`
}

type WorkflowFilter struct {
	Status       string
	EntityType   string
	Priority     string
	AssignedToMe bool
	AuthoredByMe bool
	DueBefore    *time.Time
	DueAfter     *time.Time
	Page         int
	Limit        int
}

type WorkflowCounts struct {
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	Overdue    int64            `json:"overdue"`
	DueSoon    int64            `json:"due_soon"` // due within the next 24 hours
}

type WorkflowListResult struct {
	Workflows []model.ApprovalWorkflow `json:"workflows"`
	Total     int64                    `json:"total"`
	Counts    WorkflowCounts           `json:"counts"`
}

type TrendPoint struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Approved int64  `json:"approved"`
	Rejected int64  `json:"rejected"`
}

type DashboardStats struct {
	Counts        WorkflowCounts `json:"counts"`
	ApprovedToday int64          `json:"approved_today"`
	RejectedToday int64          `json:"rejected_today"`
	Trend         []TrendPoint   `json:"trend"` // last 7 days, oldest first
}

type TimelineEvent struct {
	Event      string    `json:"event"` // created, submitted, approved, rejected, changes_requested
	Timestamp  time.Time `json:"timestamp"`
	ActorID    string    `json:"actor_id"`
	StepNumber int       `json:"step_number,omitempty"`
	Comment    string    `json:"comment,omitempty"`
}

// --- Interface ---

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, companyID, authorID string, req CreateWorkflowRequest) (*model.ApprovalWorkflow, error)
	UpdateWorkflow(ctx context.Context, id, callerID string, req UpdateWorkflowRequest) (*model.ApprovalWorkflow, error)
	SubmitWorkflow(ctx context.Context, id, callerID string) (*model.ApprovalWorkflow, error)
	RecordDecision(ctx context.Context, id, reviewerID string, req DecisionRequest) (*model.ApprovalWorkflow, error)
	BulkApprove(ctx context.Context, reviewerID string, req BulkApprovalRequest) (BulkApprovalResult, error)
	ListWorkflows(ctx context.Context, companyID, callerID string, filter WorkflowFilter) (WorkflowListResult, error)
	GetDashboardStats(ctx context.Context, companyID string) (DashboardStats, error)
	GetWorkflow(ctx context.Context, id, companyID string) (*model.ApprovalWorkflow, error)
	DeleteWorkflow(ctx context.Context, id, callerID string) error
	GetTimeline(ctx context.Context, id, companyID string) ([]TimelineEvent, error)
}

type workflowService struct {
	db        *gorm.DB
	users     repository.UserRepository
	rules     repository.RuleRepository
	templates repository.TemplateRepository
	companies repository.CompanyRepository
	hub       EventPublisher
}

func NewWorkflowService(
	db *gorm.DB,
	users repository.UserRepository,
	rules repository.RuleRepository,
	templates repository.TemplateRepository,
	companies repository.CompanyRepository,
	hub EventPublisher,
) WorkflowService {
	return &workflowService{
		db:        db,
		users:     users,
		rules:     rules,
		templates: templates,
		companies: companies,
		hub:       hub,
	}
}

// activeStatuses are workflow states still awaiting review
var activeStatuses = []string{model.WorkflowStatusPendingReview, model.WorkflowStatusInReview}

// --- Creation ---

func (s *workflowService) CreateWorkflow(ctx context.Context, companyID, authorID string, req CreateWorkflowRequest) (*model.ApprovalWorkflow, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}
	if _, err := uuid.Parse(authorID); err != nil {
		return nil, apperror.BadRequest("invalid author id")
	}
	entityUID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return nil, apperror.BadRequest("invalid entity id")
	}

	if _, err := s.companies.FindByID(ctx, companyUID); err != nil {
		return nil, apperror.NotFound("company")
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, apperror.NotFound("author")
	}

	entity, err := s.loadEntity(ctx, s.db, req.EntityType, entityUID)
	if err != nil {
		return nil, err
	}

	configs, usedTemplate, err := s.resolveStepConfigs(ctx, companyUID, req, entity)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	workflow := &model.ApprovalWorkflow{
		CompanyID:                  companyUID,
		EntityType:                 req.EntityType,
		EntityID:                   entityUID,
		EntityTitle:                entity.Title,
		Status:                     model.WorkflowStatusDraft,
		CurrentStage:               1,
		TotalStages:                len(configs),
		AuthorID:                   author.ID,
		RequiresSequentialApproval: true,
		MinimumApprovals:           1,
		Priority:                   priority,
		DueDate:                    req.DueDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := make([]model.ApprovalStep, 0, len(configs))
		reviewerSet := make(map[string]bool)

		for i, cfg := range configs {
			reviewers, resolveErr := s.resolveStepReviewers(ctx, companyUID, cfg, req.Reviewers)
			if resolveErr != nil {
				return resolveErr
			}
			for _, r := range reviewers {
				reviewerSet[r] = true
			}
			steps = append(steps, model.ApprovalStep{
				StepNumber:           i + 1,
				Name:                 cfg.Name,
				AssignedReviewers:    reviewers,
				RequiresAllReviewers: cfg.RequiresAllReviewers,
				AllowParallelReview:  cfg.AllowParallelReview,
				Status:               model.StepStatusPending,
			})
		}

		for r := range reviewerSet {
			workflow.AssignedReviewers = append(workflow.AssignedReviewers, r)
		}
		sort.Strings(workflow.AssignedReviewers)
		workflow.Steps = steps

		if createErr := tx.Create(workflow).Error; createErr != nil {
			return fmt.Errorf("failed to create workflow: %w", createErr)
		}

		if usedTemplate != nil {
			if incErr := tx.Model(&model.ApprovalTemplate{}).
				Where("id = ?", usedTemplate.ID).
				Update("times_used", gorm.Expr("times_used + 1")).Error; incErr != nil {
				return fmt.Errorf("failed to increment template usage: %w", incErr)
			}
		}

		return s.writeAudit(tx, &author.ID, model.ActionCreateWorkflow, workflow.ID.String(), workflow.EntityTitle, map[string]interface{}{
			"entity_type":  workflow.EntityType,
			"entity_id":    workflow.EntityID.String(),
			"total_stages": workflow.TotalStages,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, workflow.ID)
}

// resolveStepConfigs picks the workflow shape: explicit template → explicit
// custom steps → best active rule → single editorial review fallback
func (s *workflowService) resolveStepConfigs(ctx context.Context, companyID uuid.UUID, req CreateWorkflowRequest, entity *entityInfo) ([]model.StepConfig, *model.ApprovalTemplate, error) {
	if req.TemplateID != "" {
		templateUID, err := uuid.Parse(req.TemplateID)
		if err != nil {
			return nil, nil, apperror.BadRequest("invalid template id")
		}
		template, err := s.templates.FindByID(ctx, templateUID)
		if err != nil {
			return nil, nil, apperror.NotFound("template")
		}
		if template.CompanyID != companyID {
			return nil, nil, apperror.NotFound("template")
		}
		if len(template.Steps) == 0 {
			return nil, nil, apperror.BadRequest("template has no steps")
		}
		return template.Steps, template, nil
	}

	if len(req.CustomSteps) > 0 {
		configs := make([]model.StepConfig, 0, len(req.CustomSteps))
		for _, in := range req.CustomSteps {
			configs = append(configs, model.StepConfig{
				Name:                 in.Name,
				AssignmentType:       in.AssignmentType,
				ReviewerIDs:          in.ReviewerIDs,
				Role:                 in.Role,
				RequiresAllReviewers: in.RequiresAllReviewers,
				AllowParallelReview:  in.AllowParallelReview,
			})
		}
		return configs, nil, nil
	}

	rules, err := s.rules.ListActive(ctx, companyID, req.EntityType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load approval rules: %w", err)
	}
	for _, rule := range rules {
		if len(rule.Steps) == 0 {
			continue
		}
		if matchesConditions(rule.Conditions, req, entity) {
			return rule.Steps, nil, nil
		}
	}

	// Hard-coded fallback: one stage reviewed by the company's editors/admins
	return []model.StepConfig{{
		Name:                "Editorial review",
		AssignmentType:      model.AssignRoleBased,
		AllowParallelReview: true,
	}}, nil, nil
}

// matchesConditions evaluates a rule's condition list against the request
// and the content entity. An empty list always matches; unknown fields or
// operators never do.
func matchesConditions(conditions []model.RuleCondition, req CreateWorkflowRequest, entity *entityInfo) bool {
	for _, cond := range conditions {
		switch cond.Field {
		case "tag":
			if !matchList(entity.Tags, cond.Operator, cond.Value) {
				return false
			}
		case "priority":
			priority := req.Priority
			if priority == "" {
				priority = model.PriorityMedium
			}
			if !matchValue(priority, cond.Operator, cond.Value) {
				return false
			}
		case "platform":
			if !matchValue(entity.Platform, cond.Operator, cond.Value) {
				return false
			}
		case "entity_type":
			if !matchValue(req.EntityType, cond.Operator, cond.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchValue(actual, operator, expected string) bool {
	switch operator {
	case "equals":
		return actual == expected
	case "not_equals":
		return actual != expected
	}
	return false
}

func matchList(actual []string, operator, expected string) bool {
	found := false
	for _, v := range actual {
		if v == expected {
			found = true
			break
		}
	}
	switch operator {
	case "contains", "equals":
		return found
	case "not_equals":
		return !found
	}
	return false
}

// resolveStepReviewers resolves the reviewer list for one step: explicit
// pre-assignment → step assignment config → all active editors/admins
func (s *workflowService) resolveStepReviewers(ctx context.Context, companyID uuid.UUID, cfg model.StepConfig, preAssigned []string) ([]string, error) {
	if len(preAssigned) > 0 {
		users, err := s.users.GetByIDs(ctx, preAssigned)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reviewers: %w", err)
		}
		reviewers := activeMemberIDs(users, companyID)
		if len(reviewers) == 0 {
			return nil, apperror.BadRequest("none of the pre-assigned reviewers are active members of the company")
		}
		return reviewers, nil
	}

	switch cfg.AssignmentType {
	case model.AssignSpecificUsers:
		if len(cfg.ReviewerIDs) > 0 {
			users, err := s.users.GetByIDs(ctx, cfg.ReviewerIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve reviewers: %w", err)
			}
			if reviewers := activeMemberIDs(users, companyID); len(reviewers) > 0 {
				return reviewers, nil
			}
		}
	case model.AssignRoleBased:
		if cfg.Role != "" {
			users, err := s.users.ListByRole(ctx, companyID, cfg.Role)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve reviewers: %w", err)
			}
			if len(users) > 0 {
				return userIDs(users), nil
			}
		}
	}

	// Fallback: every active editor and admin in the company
	pool, err := s.users.ListReviewers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reviewer pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, apperror.BadRequest("no eligible reviewers found for the company")
	}
	return userIDs(pool), nil
}

func activeMemberIDs(users []model.User, companyID uuid.UUID) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.IsActive && u.CompanyID == companyID {
			ids = append(ids, u.ID.String())
		}
	}
	return ids
}

func userIDs(users []model.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID.String())
	}
	return ids
}

// --- Update ---

func (s *workflowService) UpdateWorkflow(ctx context.Context, id, callerID string, req UpdateWorkflowRequest) (*model.ApprovalWorkflow, error) {
	workflowUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid workflow id")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflow model.ApprovalWorkflow
		if findErr := tx.Preload("Steps").First(&workflow, "id = ?", workflowUID).Error; findErr != nil {
			return apperror.NotFound("workflow")
		}
		if workflow.AuthorID.String() != callerID {
			return apperror.Forbidden("only the author may update the workflow")
		}
		if workflow.Status != model.WorkflowStatusDraft {
			return apperror.BadRequestf("cannot update a workflow in %s status", workflow.Status)
		}

		if req.EntityTitle != nil {
			workflow.EntityTitle = *req.EntityTitle
		}
		if req.Priority != nil {
			if !validPriority(*req.Priority) {
				return apperror.BadRequest("priority must be one of: low, medium, high, urgent")
			}
			workflow.Priority = *req.Priority
		}
		if req.DueDate != nil {
			workflow.DueDate = req.DueDate
		}

		if req.Reviewers != nil {
			users, resolveErr := s.users.GetByIDs(ctx, *req.Reviewers)
			if resolveErr != nil {
				return fmt.Errorf("failed to resolve reviewers: %w", resolveErr)
			}
			reviewers := activeMemberIDs(users, workflow.CompanyID)
			if len(reviewers) == 0 {
				return apperror.BadRequest("none of the reviewers are active members of the company")
			}
			for i := range workflow.Steps {
				if workflow.Steps[i].Status == model.StepStatusPending {
					workflow.Steps[i].AssignedReviewers = reviewers
					if saveErr := tx.Save(&workflow.Steps[i]).Error; saveErr != nil {
						return fmt.Errorf("failed to update step reviewers: %w", saveErr)
					}
				}
			}
			workflow.AssignedReviewers = reviewers
		}

		if saveErr := tx.Omit("Steps").Save(&workflow).Error; saveErr != nil {
			return fmt.Errorf("failed to update workflow: %w", saveErr)
		}

		callerUID, _ := uuid.Parse(callerID)
		return s.writeAudit(tx, &callerUID, model.ActionUpdateWorkflow, workflow.ID.String(), workflow.EntityTitle, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, workflowUID)
}

func validPriority(p string) bool {
	switch p {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent:
		return true
	}
	return false
}

// --- Submission ---

func (s *workflowService) SubmitWorkflow(ctx context.Context, id, callerID string) (*model.ApprovalWorkflow, error) {
	workflowUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid workflow id")
	}

	var notified []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflow model.ApprovalWorkflow
		if findErr := tx.Preload("Steps", stepOrder).First(&workflow, "id = ?", workflowUID).Error; findErr != nil {
			return apperror.NotFound("workflow")
		}
		if workflow.AuthorID.String() != callerID {
			return apperror.Forbidden("only the author may submit the workflow")
		}
		if workflow.Status != model.WorkflowStatusDraft {
			return apperror.BadRequestf("cannot submit a workflow in %s status", workflow.Status)
		}
		if len(workflow.Steps) == 0 {
			return apperror.BadRequest("workflow has no steps")
		}

		now := time.Now()
		workflow.Status = model.WorkflowStatusPendingReview
		workflow.SubmittedAt = &now
		if saveErr := tx.Omit("Steps").Save(&workflow).Error; saveErr != nil {
			return fmt.Errorf("failed to submit workflow: %w", saveErr)
		}

		firstStep := &workflow.Steps[0]
		firstStep.Status = model.StepStatusInProgress
		firstStep.StartedAt = &now
		if saveErr := tx.Save(firstStep).Error; saveErr != nil {
			return fmt.Errorf("failed to activate first step: %w", saveErr)
		}

		if syncErr := s.setEntityStatus(tx, workflow.EntityType, workflow.EntityID, model.ContentStatusInReview); syncErr != nil {
			return syncErr
		}

		if notifyErr := s.notifyReviewers(tx, &workflow, firstStep); notifyErr != nil {
			return notifyErr
		}
		notified = firstStep.AssignedReviewers

		callerUID, _ := uuid.Parse(callerID)
		return s.writeAudit(tx, &callerUID, model.ActionSubmitWorkflow, workflow.ID.String(), workflow.EntityTitle, map[string]interface{}{
			"reviewers": firstStep.AssignedReviewers,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish("workflow.submitted", map[string]interface{}{
		"workflow_id": id,
		"reviewers":   notified,
	})

	return s.reload(ctx, workflowUID)
}

// --- Decision recording (state machine core) ---

func (s *workflowService) RecordDecision(ctx context.Context, id, reviewerID string, req DecisionRequest) (*model.ApprovalWorkflow, error) {
	workflowUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid workflow id")
	}
	reviewerUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return nil, apperror.BadRequest("invalid reviewer id")
	}

	var event string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflow model.ApprovalWorkflow
		if findErr := tx.Preload("Steps", stepOrder).First(&workflow, "id = ?", workflowUID).Error; findErr != nil {
			return apperror.NotFound("workflow")
		}
		if workflow.Status != model.WorkflowStatusPendingReview && workflow.Status != model.WorkflowStatusInReview {
			return apperror.BadRequestf("workflow is not under review (status: %s)", workflow.Status)
		}

		step := activeStep(&workflow)
		if step == nil || step.Status != model.StepStatusInProgress {
			return apperror.BadRequest("workflow has no active review step")
		}
		if !step.HasReviewer(reviewerID) {
			return apperror.Forbidden("you are not assigned to the current review step")
		}

		var existing int64
		if countErr := tx.Model(&model.ApprovalDecision{}).
			Where("step_id = ? AND reviewer_id = ?", step.ID, reviewerUID).
			Count(&existing).Error; countErr != nil {
			return fmt.Errorf("failed to check existing decisions: %w", countErr)
		}
		if existing > 0 {
			return apperror.BadRequest("you have already decided on this step")
		}

		entity, loadErr := s.loadEntity(ctx, tx, workflow.EntityType, workflow.EntityID)
		if loadErr != nil {
			return loadErr
		}

		now := time.Now()
		decision := model.ApprovalDecision{
			WorkflowID:      workflow.ID,
			StepID:          step.ID,
			ReviewerID:      reviewerUID,
			Decision:        req.Decision,
			Comment:         req.Comment,
			OriginalContent: entity.Snapshot,
			DecidedAt:       now,
		}
		// The unique index on (step_id, reviewer_id) backstops the check
		// above against concurrent duplicate submissions.
		if createErr := tx.Create(&decision).Error; createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return apperror.Wrap(createErr, apperror.BadRequest("decision already recorded for this step"))
			}
			return fmt.Errorf("failed to record decision: %w", createErr)
		}

		switch req.Decision {
		case model.DecisionRejected:
			if resolveErr := s.resolveStep(tx, step, model.StepStatusRejected, now); resolveErr != nil {
				return resolveErr
			}
		case model.DecisionApproved:
			workflow.CurrentApprovals++
			approved := true
			if step.RequiresAllReviewers {
				var approvals int64
				if countErr := tx.Model(&model.ApprovalDecision{}).
					Where("step_id = ? AND decision = ?", step.ID, model.DecisionApproved).
					Count(&approvals).Error; countErr != nil {
					return fmt.Errorf("failed to count approvals: %w", countErr)
				}
				approved = approvals >= int64(len(step.AssignedReviewers))
			}
			if approved {
				if resolveErr := s.resolveStep(tx, step, model.StepStatusApproved, now); resolveErr != nil {
					return resolveErr
				}
			}
		case model.DecisionChangesRequested:
			// Recorded but does not resolve the step; the author is alerted
			// and the step stays open for a revised verdict cycle.
			if notifyErr := s.notifyAuthor(tx, &workflow, model.NotificationChangesRequested,
				"Changes requested", fmt.Sprintf("A reviewer requested changes on %q", workflow.EntityTitle)); notifyErr != nil {
				return notifyErr
			}
		}

		if advanceErr := s.advanceWorkflow(tx, &workflow, step, now); advanceErr != nil {
			return advanceErr
		}

		if saveErr := tx.Omit("Steps").Save(&workflow).Error; saveErr != nil {
			return fmt.Errorf("failed to update workflow: %w", saveErr)
		}

		event = "workflow." + req.Decision
		return s.writeAudit(tx, &reviewerUID, model.ActionRecordDecision, workflow.ID.String(), workflow.EntityTitle, map[string]interface{}{
			"decision":    req.Decision,
			"step_number": step.StepNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(event, map[string]interface{}{"workflow_id": id, "reviewer_id": reviewerID})

	return s.reload(ctx, workflowUID)
}

// activeStep returns the step matching the workflow's current stage
func activeStep(workflow *model.ApprovalWorkflow) *model.ApprovalStep {
	for i := range workflow.Steps {
		if workflow.Steps[i].StepNumber == workflow.CurrentStage {
			return &workflow.Steps[i]
		}
	}
	return nil
}

// resolveStep finalizes a step with the given terminal status
func (s *workflowService) resolveStep(tx *gorm.DB, step *model.ApprovalStep, status string, now time.Time) error {
	step.Status = status
	step.FinalDecision = status
	step.CompletedAt = &now
	if err := tx.Save(step).Error; err != nil {
		return fmt.Errorf("failed to resolve step: %w", err)
	}
	return nil
}

// advanceWorkflow applies the workflow advancement rule after a decision:
// approved steps either activate the next stage or complete the workflow;
// a rejected step terminates the workflow regardless of stage.
func (s *workflowService) advanceWorkflow(tx *gorm.DB, workflow *model.ApprovalWorkflow, step *model.ApprovalStep, now time.Time) error {
	switch step.Status {
	case model.StepStatusApproved:
		if workflow.CurrentStage < workflow.TotalStages {
			workflow.CurrentStage++
			workflow.Status = model.WorkflowStatusInReview
			next := activeStep(workflow)
			if next == nil {
				return fmt.Errorf("workflow %s has no step %d", workflow.ID, workflow.CurrentStage)
			}
			next.Status = model.StepStatusInProgress
			next.StartedAt = &now
			if err := tx.Save(next).Error; err != nil {
				return fmt.Errorf("failed to activate next step: %w", err)
			}
			return s.notifyReviewers(tx, workflow, next)
		}

		workflow.Status = model.WorkflowStatusApproved
		workflow.CompletedAt = &now
		if err := s.setEntityStatus(tx, workflow.EntityType, workflow.EntityID, model.ContentStatusApproved); err != nil {
			return err
		}
		return s.notifyAuthor(tx, workflow, model.NotificationWorkflowApproved,
			"Content approved", fmt.Sprintf("%q passed all review stages", workflow.EntityTitle))

	case model.StepStatusRejected:
		workflow.Status = model.WorkflowStatusRejected
		workflow.CompletedAt = &now
		for i := range workflow.Steps {
			if workflow.Steps[i].Status == model.StepStatusPending {
				workflow.Steps[i].Status = model.StepStatusSkipped
				if err := tx.Save(&workflow.Steps[i]).Error; err != nil {
					return fmt.Errorf("failed to skip remaining step: %w", err)
				}
			}
		}
		if err := s.setEntityStatus(tx, workflow.EntityType, workflow.EntityID, model.ContentStatusRejected); err != nil {
			return err
		}
		return s.notifyAuthor(tx, workflow, model.NotificationWorkflowRejected,
			"Content rejected", fmt.Sprintf("%q was rejected during review", workflow.EntityTitle))
	}

	// Step still in progress (requires_all_reviewers quorum not yet met,
	// or a changes_requested decision): nothing to advance.
	return nil
}

// --- Bulk approval ---

// BulkApprove applies an approving decision to every workflow where the
// caller is eligible on the active step; ineligible ids are skipped silently.
func (s *workflowService) BulkApprove(ctx context.Context, reviewerID string, req BulkApprovalRequest) (BulkApprovalResult, error) {
	result := BulkApprovalResult{Processed: []string{}, Skipped: []string{}}

	for _, id := range req.WorkflowIDs {
		_, err := s.RecordDecision(ctx, id, reviewerID, DecisionRequest{
			Decision: model.DecisionApproved,
			Comment:  req.Comment,
		})
		if err != nil {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Processed = append(result.Processed, id)
	}

	reviewerUID, err := uuid.Parse(reviewerID)
	if err == nil && len(result.Processed) > 0 {
		_ = s.writeAudit(s.db.WithContext(ctx), &reviewerUID, model.ActionBulkApproval, "", "", map[string]interface{}{
			"processed": result.Processed,
			"skipped":   result.Skipped,
		})
	}

	return result, nil
}

// --- Query / dashboard ---

func (s *workflowService) ListWorkflows(ctx context.Context, companyID, callerID string, filter WorkflowFilter) (WorkflowListResult, error) {
	result := WorkflowListResult{Workflows: []model.ApprovalWorkflow{}}

	query := s.filteredQuery(ctx, companyID, callerID, filter)
	if err := query.Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("failed to count workflows: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	fetch := s.filteredQuery(ctx, companyID, callerID, filter).
		Preload("Steps", stepOrder).
		Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit)
	if err := fetch.Find(&result.Workflows).Error; err != nil {
		return result, fmt.Errorf("failed to fetch workflows: %w", err)
	}

	counts, err := s.aggregateCounts(ctx, companyID)
	if err != nil {
		return result, err
	}
	result.Counts = counts

	return result, nil
}

func (s *workflowService) filteredQuery(ctx context.Context, companyID, callerID string, filter WorkflowFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).Where("company_id = ?", companyID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AuthoredByMe {
		query = query.Where("author_id = ?", callerID)
	}
	if filter.AssignedToMe {
		// AssignedReviewers is a JSON array column; match the quoted id
		query = query.Where("assigned_reviewers LIKE ?", "%\""+callerID+"\"%")
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date <= ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date >= ?", *filter.DueAfter)
	}

	return query
}

func (s *workflowService) aggregateCounts(ctx context.Context, companyID string) (WorkflowCounts, error) {
	counts := WorkflowCounts{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).
		Select("status as key, COUNT(*) as count").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return counts, fmt.Errorf("failed to aggregate status counts: %w", err)
	}
	for _, b := range byStatus {
		counts.ByStatus[b.Key] = b.Count
	}

	var byPriority []bucket
	if err := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).
		Select("priority as key, COUNT(*) as count").
		Where("company_id = ?", companyID).
		Group("priority").
		Scan(&byPriority).Error; err != nil {
		return counts, fmt.Errorf("failed to aggregate priority counts: %w", err)
	}
	for _, b := range byPriority {
		counts.ByPriority[b.Key] = b.Count
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).
		Where("company_id = ? AND status IN ? AND due_date IS NOT NULL AND due_date < ?", companyID, activeStatuses, now).
		Count(&counts.Overdue).Error; err != nil {
		return counts, fmt.Errorf("failed to count overdue workflows: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).
		Where("company_id = ? AND status IN ? AND due_date >= ? AND due_date <= ?", companyID, activeStatuses, now, now.Add(24*time.Hour)).
		Count(&counts.DueSoon).Error; err != nil {
		return counts, fmt.Errorf("failed to count due-soon workflows: %w", err)
	}

	return counts, nil
}

func (s *workflowService) GetDashboardStats(ctx context.Context, companyID string) (DashboardStats, error) {
	stats := DashboardStats{Trend: []TrendPoint{}}

	counts, err := s.aggregateCounts(ctx, companyID)
	if err != nil {
		return stats, err
	}
	stats.Counts = counts

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).
		Where("company_id = ? AND status = ? AND completed_at >= ?", companyID, model.WorkflowStatusApproved, startOfDay).
		Count(&stats.ApprovedToday).Error; err != nil {
		return stats, fmt.Errorf("failed to count today's approvals: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.ApprovalWorkflow{}).
		Where("company_id = ? AND status = ? AND completed_at >= ?", companyID, model.WorkflowStatusRejected, startOfDay).
		Count(&stats.RejectedToday).Error; err != nil {
		return stats, fmt.Errorf("failed to count today's rejections: %w", err)
	}

	// 7-day trend bucketed in Go so the query stays driver-agnostic
	trendStart := startOfDay.AddDate(0, 0, -6)
	var completed []model.ApprovalWorkflow
	if err := s.db.WithContext(ctx).
		Select("status, completed_at").
		Where("company_id = ? AND status IN ? AND completed_at >= ?", companyID,
			[]string{model.WorkflowStatusApproved, model.WorkflowStatusRejected}, trendStart).
		Find(&completed).Error; err != nil {
		return stats, fmt.Errorf("failed to load trend data: %w", err)
	}

	buckets := make(map[string]*TrendPoint, 7)
	for d := 0; d < 7; d++ {
		day := trendStart.AddDate(0, 0, d).Format("2006-01-02")
		point := &TrendPoint{Date: day}
		buckets[day] = point
		stats.Trend = append(stats.Trend, *point)
	}
	for _, w := range completed {
		if w.CompletedAt == nil {
			continue
		}
		day := w.CompletedAt.Format("2006-01-02")
		point, ok := buckets[day]
		if !ok {
			continue
		}
		if w.Status == model.WorkflowStatusApproved {
			point.Approved++
		} else {
			point.Rejected++
		}
	}
	for i := range stats.Trend {
		stats.Trend[i] = *buckets[stats.Trend[i].Date]
	}

	return stats, nil
}

// --- Read / delete / timeline ---

func (s *workflowService) GetWorkflow(ctx context.Context, id, companyID string) (*model.ApprovalWorkflow, error) {
	workflowUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid workflow id")
	}

	workflow, err := s.reload(ctx, workflowUID)
	if err != nil {
		return nil, err
	}
	if workflow.CompanyID.String() != companyID {
		return nil, apperror.NotFound("workflow")
	}
	return workflow, nil
}

func (s *workflowService) DeleteWorkflow(ctx context.Context, id, callerID string) error {
	workflowUID, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid workflow id")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflow model.ApprovalWorkflow
		if findErr := tx.First(&workflow, "id = ?", workflowUID).Error; findErr != nil {
			return apperror.NotFound("workflow")
		}
		if workflow.AuthorID.String() != callerID {
			return apperror.Forbidden("only the author may delete the workflow")
		}
		if workflow.Status != model.WorkflowStatusDraft {
			return apperror.BadRequestf("cannot delete a workflow in %s status", workflow.Status)
		}

		if delErr := tx.Where("workflow_id = ?", workflowUID).Delete(&model.ApprovalDecision{}).Error; delErr != nil {
			return fmt.Errorf("failed to delete decisions: %w", delErr)
		}
		if delErr := tx.Where("workflow_id = ?", workflowUID).Delete(&model.ApprovalStep{}).Error; delErr != nil {
			return fmt.Errorf("failed to delete steps: %w", delErr)
		}
		if delErr := tx.Delete(&workflow).Error; delErr != nil {
			return fmt.Errorf("failed to delete workflow: %w", delErr)
		}

		callerUID, _ := uuid.Parse(callerID)
		return s.writeAudit(tx, &callerUID, model.ActionDeleteWorkflow, workflow.ID.String(), workflow.EntityTitle, nil)
	})
}

// GetTimeline rebuilds the chronological event list for a workflow: a
// derived read view, never persisted
func (s *workflowService) GetTimeline(ctx context.Context, id, companyID string) ([]TimelineEvent, error) {
	workflow, err := s.GetWorkflow(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	events := []TimelineEvent{{
		Event:     "created",
		Timestamp: workflow.CreatedAt,
		ActorID:   workflow.AuthorID.String(),
	}}
	if workflow.SubmittedAt != nil {
		events = append(events, TimelineEvent{
			Event:     "submitted",
			Timestamp: *workflow.SubmittedAt,
			ActorID:   workflow.AuthorID.String(),
		})
	}
	for _, step := range workflow.Steps {
		for _, d := range step.Decisions {
			events = append(events, TimelineEvent{
				Event:      d.Decision,
				Timestamp:  d.DecidedAt,
				ActorID:    d.ReviewerID.String(),
				StepNumber: step.StepNumber,
				Comment:    d.Comment,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events, nil
}

// --- Shared helpers ---

// titleSnippet shortens free-form content to a display title, cutting on
// rune boundaries so multi-byte text stays valid
func titleSnippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// stepOrder keeps preloaded steps in stage order
func stepOrder(db *gorm.DB) *gorm.DB {
	return db.Order("step_number ASC")
}

func (s *workflowService) reload(ctx context.Context, id uuid.UUID) (*model.ApprovalWorkflow, error) {
	var workflow model.ApprovalWorkflow
	err := s.db.WithContext(ctx).
		Preload("Steps", stepOrder).
		Preload("Steps.Decisions").
		Preload("Author").
		First(&workflow, "id = ?", id).Error
	if err != nil {
		return nil, apperror.NotFound("workflow")
	}
	return &workflow, nil
}

// entityInfo carries the content entity facts the engine needs: a display
// title, a JSON snapshot for decision records, and the attributes rule
// conditions can match on
type entityInfo struct {
	Title    string
	Snapshot string
	Platform string
	Tags     []string
}

// loadEntity verifies the content entity exists and extracts its facts
func (s *workflowService) loadEntity(ctx context.Context, db *gorm.DB, entityType string, entityID uuid.UUID) (*entityInfo, error) {
	switch entityType {
	case model.EntityTypeBlogPost:
		var post model.BlogPost
		if err := db.WithContext(ctx).First(&post, "id = ?", entityID).Error; err != nil {
			return nil, apperror.NotFound("blog post")
		}
		snapshot, _ := json.Marshal(map[string]interface{}{
			"title":   post.Title,
			"content": post.Content,
			"excerpt": post.Excerpt,
			"tags":    post.Tags,
		})
		return &entityInfo{Title: post.Title, Snapshot: string(snapshot), Tags: post.Tags}, nil

	case model.EntityTypeSocialPost:
		var post model.SocialMediaPost
		if err := db.WithContext(ctx).First(&post, "id = ?", entityID).Error; err != nil {
			return nil, apperror.NotFound("social media post")
		}
		snapshot, _ := json.Marshal(map[string]interface{}{
			"platform":  post.Platform,
			"content":   post.Content,
			"media_url": post.MediaURL,
		})
		return &entityInfo{Title: titleSnippet(post.Content, 80), Snapshot: string(snapshot), Platform: post.Platform}, nil

	default:
		return nil, apperror.BadRequestf("unsupported entity type: %s", entityType)
	}
}

// setEntityStatus keeps the content entity's status in sync with the workflow
func (s *workflowService) setEntityStatus(tx *gorm.DB, entityType string, entityID uuid.UUID, status string) error {
	switch entityType {
	case model.EntityTypeBlogPost:
		return tx.Model(&model.BlogPost{}).Where("id = ?", entityID).Update("status", status).Error
	case model.EntityTypeSocialPost:
		return tx.Model(&model.SocialMediaPost{}).Where("id = ?", entityID).Update("status", status).Error
	default:
		return apperror.BadRequestf("unsupported entity type: %s", entityType)
	}
}

// notifyReviewers creates a review notification for every reviewer on a step
func (s *workflowService) notifyReviewers(tx *gorm.DB, workflow *model.ApprovalWorkflow, step *model.ApprovalStep) error {
	notifications := make([]model.Notification, 0, len(step.AssignedReviewers))
	for _, reviewer := range step.AssignedReviewers {
		reviewerUID, err := uuid.Parse(reviewer)
		if err != nil {
			continue
		}
		notifications = append(notifications, model.Notification{
			UserID:  reviewerUID,
			Type:    model.NotificationReviewRequested,
			Title:   "Review requested",
			Message: fmt.Sprintf("%q is waiting for your review (stage %d of %d)", workflow.EntityTitle, step.StepNumber, workflow.TotalStages),
			Link:    "/approval-workflows/" + workflow.ID.String(),
		})
	}
	if len(notifications) == 0 {
		return nil
	}
	if err := tx.Create(&notifications).Error; err != nil {
		return fmt.Errorf("failed to create reviewer notifications: %w", err)
	}
	return nil
}

// notifyAuthor creates a notification for the workflow author
func (s *workflowService) notifyAuthor(tx *gorm.DB, workflow *model.ApprovalWorkflow, notifType, title, message string) error {
	notification := model.Notification{
		UserID:  workflow.AuthorID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    "/approval-workflows/" + workflow.ID.String(),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create author notification: %w", err)
	}
	return nil
}

// writeAudit appends an audit log row inside the current transaction
func (s *workflowService) writeAudit(tx *gorm.DB, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *workflowService) publish(eventType string, payload interface{}) {
	if s.hub != nil {
		s.hub.Publish(eventType, payload)
	}
}
