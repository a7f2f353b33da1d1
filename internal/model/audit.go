package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateWorkflow = "CREATE_WORKFLOW"
	ActionUpdateWorkflow = "UPDATE_WORKFLOW"
	ActionSubmitWorkflow = "SUBMIT_WORKFLOW"
	ActionDeleteWorkflow = "DELETE_WORKFLOW"
	ActionRecordDecision = "RECORD_DECISION"
	ActionBulkApproval   = "BULK_APPROVAL"
	ActionCreateRule     = "CREATE_APPROVAL_RULE"
	ActionUpdateRule     = "UPDATE_APPROVAL_RULE"
	ActionDeleteRule     = "DELETE_APPROVAL_RULE"
	ActionCreateTemplate = "CREATE_APPROVAL_TEMPLATE"
	ActionUpdateTemplate = "UPDATE_APPROVAL_TEMPLATE"
	ActionDeleteTemplate = "DELETE_APPROVAL_TEMPLATE"
	ActionPublishContent = "PUBLISH_CONTENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
