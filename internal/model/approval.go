package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowEntityType enum constants — content entities a workflow can review
const (
	EntityTypeBlogPost   = "blog_post"
	EntityTypeSocialPost = "social_post"
)

// WorkflowStatus enum constants
const (
	WorkflowStatusDraft         = "draft"
	WorkflowStatusPendingReview = "pending_review"
	WorkflowStatusInReview      = "in_review"
	WorkflowStatusApproved      = "approved"
	WorkflowStatusRejected      = "rejected"
)

// StepStatus enum constants
const (
	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusApproved   = "approved"
	StepStatusRejected   = "rejected"
	StepStatusSkipped    = "skipped"
)

// Decision enum constants
const (
	DecisionApproved         = "approved"
	DecisionRejected         = "rejected"
	DecisionChangesRequested = "changes_requested"
)

// Priority enum constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// AssignmentType enum constants for step templates
const (
	AssignSpecificUsers = "specific_users"
	AssignRoleBased     = "role_based"
)

// StepConfig is one entry of a rule's or template's ordered step list,
// stored as a JSON column. It describes how a concrete ApprovalStep is built.
type StepConfig struct {
	Name                 string   `json:"name"`
	AssignmentType       string   `json:"assignment_type"` // specific_users, role_based
	ReviewerIDs          []string `json:"reviewer_ids,omitempty"`
	Role                 string   `json:"role,omitempty"`
	RequiresAllReviewers bool     `json:"requires_all_reviewers"`
	AllowParallelReview  bool     `json:"allow_parallel_review"`
}

// RuleCondition is a single predicate a rule may attach, stored as JSON.
// Field names the engine understands: priority, platform, tag.
type RuleCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"` // equals, not_equals, contains
	Value    string `json:"value"`
}

// ApprovalRule auto-selects the step structure for new workflows of a given
// entity type. The highest-priority active matching rule wins; ties break on
// most recently updated.
type ApprovalRule struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	EntityType string          `gorm:"type:varchar(30);not null;index" json:"entity_type"`
	Conditions []RuleCondition `gorm:"serializer:json" json:"conditions"`
	Steps      []StepConfig    `gorm:"serializer:json" json:"steps"`
	Priority   int             `gorm:"not null;default:0" json:"priority"`
	IsActive   bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (r *ApprovalRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ApprovalTemplate is a named, reusable step structure an author can select
// explicitly when creating a workflow
type ApprovalTemplate struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"company_id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	EntityType  string       `gorm:"type:varchar(30);not null;index" json:"entity_type"`
	Steps       []StepConfig `gorm:"serializer:json" json:"steps"`
	IsDefault   bool         `gorm:"default:false" json:"is_default"`
	TimesUsed   int          `gorm:"default:0" json:"times_used"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t *ApprovalTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ApprovalWorkflow is one approval process instance for one content entity.
// Invariants: 1 <= CurrentStage <= TotalStages; TotalStages == len(Steps).
type ApprovalWorkflow struct {
	ID                         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID                  uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	EntityType                 string         `gorm:"type:varchar(30);not null;index" json:"entity_type"`
	EntityID                   uuid.UUID      `gorm:"type:uuid;not null;index" json:"entity_id"`
	EntityTitle                string         `gorm:"type:varchar(255)" json:"entity_title"`
	Status                     string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CurrentStage               int            `gorm:"not null;default:1" json:"current_stage"`
	TotalStages                int            `gorm:"not null" json:"total_stages"`
	AuthorID                   uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author                     *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AssignedReviewers          []string       `gorm:"serializer:json" json:"assigned_reviewers"` // union of reviewers across steps
	RequiresSequentialApproval bool           `gorm:"default:true" json:"requires_sequential_approval"`
	MinimumApprovals           int            `gorm:"default:1" json:"minimum_approvals"`
	CurrentApprovals           int            `gorm:"default:0" json:"current_approvals"`
	Priority                   string         `gorm:"type:varchar(10);not null;default:'medium';index" json:"priority"`
	SubmittedAt                *time.Time     `json:"submitted_at"`
	DueDate                    *time.Time     `gorm:"index" json:"due_date"`
	CompletedAt                *time.Time     `json:"completed_at"`
	Steps                      []ApprovalStep `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
}

func (w *ApprovalWorkflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the workflow already completed
func (w *ApprovalWorkflow) IsTerminal() bool {
	return w.Status == WorkflowStatusApproved || w.Status == WorkflowStatusRejected
}

// ApprovalStep is one ordered review stage of a workflow. StepNumber is
// unique within a workflow and forms the total order of the stages.
type ApprovalStep struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	WorkflowID           uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_step_workflow_number" json:"workflow_id"`
	StepNumber           int                `gorm:"not null;uniqueIndex:idx_step_workflow_number" json:"step_number"`
	Name                 string             `gorm:"type:varchar(255)" json:"name"`
	AssignedReviewers    []string           `gorm:"serializer:json" json:"assigned_reviewers"`
	RequiresAllReviewers bool               `gorm:"default:false" json:"requires_all_reviewers"`
	AllowParallelReview  bool               `gorm:"default:true" json:"allow_parallel_review"`
	Status               string             `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	StartedAt            *time.Time         `json:"started_at"`
	CompletedAt          *time.Time         `json:"completed_at"`
	FinalDecision        string             `gorm:"type:varchar(20)" json:"final_decision,omitempty"`
	Decisions            []ApprovalDecision `gorm:"foreignKey:StepID;constraint:OnDelete:CASCADE" json:"decisions,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func (s *ApprovalStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HasReviewer reports whether the given user is assigned to this step
func (s *ApprovalStep) HasReviewer(userID string) bool {
	for _, r := range s.AssignedReviewers {
		if r == userID {
			return true
		}
	}
	return false
}

// ApprovalDecision is one reviewer's immutable verdict on a step. The
// composite unique index on (step_id, reviewer_id) is what guarantees at
// most one decision per reviewer per step under concurrent requests.
type ApprovalDecision struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkflowID      uuid.UUID `gorm:"type:uuid;not null;index" json:"workflow_id"`
	StepID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_decision_step_reviewer" json:"step_id"`
	ReviewerID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_decision_step_reviewer" json:"reviewer_id"`
	Reviewer        *User     `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Decision        string    `gorm:"type:varchar(20);not null" json:"decision"` // approved, rejected, changes_requested
	Comment         string    `gorm:"type:text" json:"comment"`
	OriginalContent string    `gorm:"type:text" json:"original_content"` // JSON snapshot of the entity at decision time
	DecidedAt       time.Time `gorm:"not null" json:"decided_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (d *ApprovalDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
