package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Comment DTOs ---

type CreateCommentRequest struct {
	EntityType string `json:"entity_type" binding:"required,oneof=blog_post social_post"`
	EntityID   string `json:"entity_id" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// --- Interface ---

type CommentService interface {
	CreateComment(ctx context.Context, companyID, authorID string, req CreateCommentRequest) (*model.Comment, error)
	DeleteComment(ctx context.Context, id, callerID, callerRole string) error
	ListComments(ctx context.Context, entityType, entityID string, page, limit int) ([]model.Comment, int64, error)
}

type commentService struct {
	repo          repository.CommentRepository
	blogPosts     repository.BlogPostRepository
	socialPosts   repository.SocialPostRepository
	notifications repository.NotificationRepository
	hub           EventPublisher
}

func NewCommentService(
	repo repository.CommentRepository,
	blogPosts repository.BlogPostRepository,
	socialPosts repository.SocialPostRepository,
	notifications repository.NotificationRepository,
	hub EventPublisher,
) CommentService {
	return &commentService{
		repo:          repo,
		blogPosts:     blogPosts,
		socialPosts:   socialPosts,
		notifications: notifications,
		hub:           hub,
	}
}

// entityAuthor resolves the content entity's author and display title for
// the comment notification
func (s *commentService) entityAuthor(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID) (uuid.UUID, string, error) {
	switch entityType {
	case model.EntityTypeBlogPost:
		post, err := s.blogPosts.FindByID(ctx, entityID)
		if err != nil || post.CompanyID != companyID {
			return uuid.Nil, "", apperror.NotFound("blog post")
		}
		return post.AuthorID, post.Title, nil
	case model.EntityTypeSocialPost:
		post, err := s.socialPosts.FindByID(ctx, entityID)
		if err != nil || post.CompanyID != companyID {
			return uuid.Nil, "", apperror.NotFound("social media post")
		}
		return post.AuthorID, titleSnippet(post.Content, 80), nil
	}
	return uuid.Nil, "", apperror.BadRequestf("unsupported entity type: %s", entityType)
}

func (s *commentService) CreateComment(ctx context.Context, companyID, authorID string, req CreateCommentRequest) (*model.Comment, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}
	authorUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid author id")
	}
	entityUID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return nil, apperror.BadRequest("invalid entity id")
	}

	contentAuthor, entityTitle, err := s.entityAuthor(ctx, companyUID, req.EntityType, entityUID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		CompanyID:  companyUID,
		EntityType: req.EntityType,
		EntityID:   entityUID,
		AuthorID:   authorUID,
		Body:       req.Body,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// The content author hears about comments from anyone but themselves
	if contentAuthor != authorUID {
		_ = s.notifications.Create(ctx, &model.Notification{
			UserID:  contentAuthor,
			Type:    model.NotificationCommentAdded,
			Title:   "New comment",
			Message: fmt.Sprintf("Someone commented on %q", entityTitle),
		})
	}

	if s.hub != nil {
		s.hub.Publish("comment.added", map[string]interface{}{
			"entity_type": req.EntityType,
			"entity_id":   req.EntityID,
			"comment_id":  comment.ID.String(),
		})
	}

	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, id, callerID, callerRole string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid comment id")
	}

	comment, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return apperror.NotFound("comment")
	}
	if comment.AuthorID.String() != callerID && callerRole != model.RoleAdmin {
		return apperror.Forbidden("only the comment author or an admin may delete it")
	}

	return s.repo.Delete(ctx, uid)
}

func (s *commentService) ListComments(ctx context.Context, entityType, entityID string, page, limit int) ([]model.Comment, int64, error) {
	entityUID, err := uuid.Parse(entityID)
	if err != nil {
		return nil, 0, apperror.BadRequest("invalid entity id")
	}
	return s.repo.ListByEntity(ctx, entityType, entityUID, page, limit)
}
