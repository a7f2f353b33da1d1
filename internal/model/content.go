package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentStatus enum constants shared by blog and social posts.
// The workflow engine drives the draft → in_review → approved/rejected part;
// publishing is an explicit operation afterwards.
const (
	ContentStatusDraft     = "draft"
	ContentStatusInReview  = "in_review"
	ContentStatusApproved  = "approved"
	ContentStatusRejected  = "rejected"
	ContentStatusPublished = "published"
)

// TopicStatus enum constants
const (
	TopicStatusSuggested = "suggested"
	TopicStatusPlanned   = "planned"
	TopicStatusDrafted   = "drafted"
	TopicStatusPublished = "published"
)

// SocialPlatform enum constants
const (
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

// ContentTopic is a planned subject for future content
type ContentTopic struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"type:varchar(100)" json:"category"`
	Keywords    []string       `gorm:"serializer:json" json:"keywords"`
	Status      string         `gorm:"type:varchar(20);not null;default:'suggested';index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *ContentTopic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BlogPost is a long-form content entity routed through the approval workflow
type BlogPost struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	AuthorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	TopicID     *uuid.UUID     `gorm:"type:uuid;index" json:"topic_id"`
	Topic       *ContentTopic  `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string         `gorm:"type:varchar(255);index" json:"slug"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Excerpt     string         `gorm:"type:text" json:"excerpt"`
	Tags        []string       `gorm:"serializer:json" json:"tags"`
	Status      string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	PublishedAt *time.Time     `json:"published_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// SocialMediaPost is a short-form content entity routed through the approval workflow
type SocialMediaPost struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author       *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Platform     string         `gorm:"type:varchar(20);not null;index" json:"platform"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	MediaURL     string         `gorm:"type:varchar(512)" json:"media_url"`
	Status       string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ScheduledFor *time.Time     `json:"scheduled_for"`
	PublishedAt  *time.Time     `json:"published_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *SocialMediaPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Comment is a flat discussion entry attached to a content entity
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	EntityType string    `gorm:"type:varchar(30);not null;index:idx_comment_entity" json:"entity_type"` // blog_post, social_post
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_entity" json:"entity_id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
