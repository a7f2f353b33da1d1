package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Social post DTOs ---

type CreateSocialPostRequest struct {
	Platform     string     `json:"platform" binding:"required,oneof=twitter linkedin facebook instagram"`
	Content      string     `json:"content" binding:"required"`
	MediaURL     string     `json:"media_url"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

type UpdateSocialPostRequest struct {
	Platform     *string    `json:"platform" binding:"omitempty,oneof=twitter linkedin facebook instagram"`
	Content      *string    `json:"content"`
	MediaURL     *string    `json:"media_url"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// --- Interface ---

type SocialService interface {
	CreatePost(ctx context.Context, companyID, authorID string, req CreateSocialPostRequest) (*model.SocialMediaPost, error)
	UpdatePost(ctx context.Context, id, callerID string, req UpdateSocialPostRequest) (*model.SocialMediaPost, error)
	DeletePost(ctx context.Context, id, callerID string) error
	GetPost(ctx context.Context, id, companyID string) (*model.SocialMediaPost, error)
	ListPosts(ctx context.Context, filter repository.ContentFilter) ([]model.SocialMediaPost, int64, error)
	PublishPost(ctx context.Context, id, companyID string) (*model.SocialMediaPost, error)
}

type socialService struct {
	repo  repository.SocialPostRepository
	audit repository.AuditRepository
}

func NewSocialService(repo repository.SocialPostRepository, audit repository.AuditRepository) SocialService {
	return &socialService{repo: repo, audit: audit}
}

func (s *socialService) CreatePost(ctx context.Context, companyID, authorID string, req CreateSocialPostRequest) (*model.SocialMediaPost, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}
	authorUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid author id")
	}

	post := &model.SocialMediaPost{
		CompanyID:    companyUID,
		AuthorID:     authorUID,
		Platform:     req.Platform,
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		Status:       model.ContentStatusDraft,
		ScheduledFor: req.ScheduledFor,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *socialService) UpdatePost(ctx context.Context, id, callerID string, req UpdateSocialPostRequest) (*model.SocialMediaPost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid post id")
	}

	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("social media post")
	}
	if post.AuthorID.String() != callerID {
		return nil, apperror.Forbidden("only the author may edit the post")
	}
	if !editableStatuses[post.Status] {
		return nil, apperror.BadRequestf("cannot edit a post in %s status", post.Status)
	}

	if req.Platform != nil {
		post.Platform = *req.Platform
	}
	if req.Content != nil {
		if *req.Content == "" {
			return nil, apperror.BadRequest("content cannot be empty")
		}
		post.Content = *req.Content
	}
	if req.MediaURL != nil {
		post.MediaURL = *req.MediaURL
	}
	if req.ScheduledFor != nil {
		post.ScheduledFor = req.ScheduledFor
	}

	post.Status = model.ContentStatusDraft

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *socialService) DeletePost(ctx context.Context, id, callerID string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid post id")
	}

	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return apperror.NotFound("social media post")
	}
	if post.AuthorID.String() != callerID {
		return apperror.Forbidden("only the author may delete the post")
	}
	if post.Status == model.ContentStatusInReview {
		return apperror.BadRequest("cannot delete a post while it is under review")
	}

	return s.repo.Delete(ctx, uid)
}

func (s *socialService) GetPost(ctx context.Context, id, companyID string) (*model.SocialMediaPost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid post id")
	}
	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("social media post")
	}
	if post.CompanyID.String() != companyID {
		return nil, apperror.NotFound("social media post")
	}
	return post, nil
}

func (s *socialService) ListPosts(ctx context.Context, filter repository.ContentFilter) ([]model.SocialMediaPost, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *socialService) PublishPost(ctx context.Context, id, companyID string) (*model.SocialMediaPost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid post id")
	}

	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("social media post")
	}
	if post.CompanyID.String() != companyID {
		return nil, apperror.NotFound("social media post")
	}
	if post.Status != model.ContentStatusApproved {
		return nil, apperror.BadRequestf("only approved posts can be published (status: %s)", post.Status)
	}

	now := time.Now()
	post.Status = model.ContentStatusPublished
	post.PublishedAt = &now
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	_ = s.audit.Create(ctx, &model.AuditLog{
		Action:     model.ActionPublishContent,
		EntityID:   post.ID.String(),
		EntityName: titleSnippet(post.Content, 80),
	})

	return post, nil
}
