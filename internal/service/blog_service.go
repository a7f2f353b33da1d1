package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Blog post DTOs ---

type CreateBlogPostRequest struct {
	TopicID string   `json:"topic_id"`
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Excerpt string   `json:"excerpt"`
	Tags    []string `json:"tags"`
}

type UpdateBlogPostRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Excerpt *string   `json:"excerpt"`
	Tags    *[]string `json:"tags"`
	TopicID *string   `json:"topic_id"`
}

// --- Interface ---

type BlogService interface {
	CreatePost(ctx context.Context, companyID, authorID string, req CreateBlogPostRequest) (*model.BlogPost, error)
	UpdatePost(ctx context.Context, id, callerID string, req UpdateBlogPostRequest) (*model.BlogPost, error)
	DeletePost(ctx context.Context, id, callerID string) error
	GetPost(ctx context.Context, id, companyID string) (*model.BlogPost, error)
	ListPosts(ctx context.Context, filter repository.ContentFilter) ([]model.BlogPost, int64, error)
	PublishPost(ctx context.Context, id, companyID string) (*model.BlogPost, error)
}

type blogService struct {
	repo   repository.BlogPostRepository
	topics repository.TopicRepository
	audit  repository.AuditRepository
}

func NewBlogService(repo repository.BlogPostRepository, topics repository.TopicRepository, audit repository.AuditRepository) BlogService {
	return &blogService{repo: repo, topics: topics, audit: audit}
}

// editableStatuses are content states where the author may still change text
var editableStatuses = map[string]bool{
	model.ContentStatusDraft:    true,
	model.ContentStatusRejected: true,
}

func (s *blogService) CreatePost(ctx context.Context, companyID, authorID string, req CreateBlogPostRequest) (*model.BlogPost, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}
	authorUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid author id")
	}

	post := &model.BlogPost{
		CompanyID: companyUID,
		AuthorID:  authorUID,
		Title:     req.Title,
		Slug:      slugify(req.Title),
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Tags:      req.Tags,
		Status:    model.ContentStatusDraft,
	}

	if req.TopicID != "" {
		topicUID, parseErr := uuid.Parse(req.TopicID)
		if parseErr != nil {
			return nil, apperror.BadRequest("invalid topic id")
		}
		topic, findErr := s.topics.FindByID(ctx, topicUID)
		if findErr != nil || topic.CompanyID != companyUID {
			return nil, apperror.NotFoundf("topic %s not found", req.TopicID)
		}
		post.TopicID = &topic.ID
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *blogService) UpdatePost(ctx context.Context, id, callerID string, req UpdateBlogPostRequest) (*model.BlogPost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid post id")
	}

	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("blog post")
	}
	if post.AuthorID.String() != callerID {
		return nil, apperror.Forbidden("only the author may edit the post")
	}
	if !editableStatuses[post.Status] {
		return nil, apperror.BadRequestf("cannot edit a post in %s status", post.Status)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, apperror.BadRequest("title cannot be empty")
		}
		post.Title = *req.Title
		post.Slug = slugify(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.TopicID != nil {
		if *req.TopicID == "" {
			post.TopicID = nil
		} else {
			topicUID, parseErr := uuid.Parse(*req.TopicID)
			if parseErr != nil {
				return nil, apperror.BadRequest("invalid topic id")
			}
			topic, findErr := s.topics.FindByID(ctx, topicUID)
			if findErr != nil || topic.CompanyID != post.CompanyID {
				return nil, apperror.NotFoundf("topic %s not found", *req.TopicID)
			}
			post.TopicID = &topic.ID
		}
	}

	// Editing a rejected post resets it for a fresh review cycle
	post.Status = model.ContentStatusDraft

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *blogService) DeletePost(ctx context.Context, id, callerID string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid post id")
	}

	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return apperror.NotFound("blog post")
	}
	if post.AuthorID.String() != callerID {
		return apperror.Forbidden("only the author may delete the post")
	}
	if post.Status == model.ContentStatusInReview {
		return apperror.BadRequest("cannot delete a post while it is under review")
	}

	return s.repo.Delete(ctx, uid)
}

func (s *blogService) GetPost(ctx context.Context, id, companyID string) (*model.BlogPost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid post id")
	}
	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("blog post")
	}
	if post.CompanyID.String() != companyID {
		return nil, apperror.NotFound("blog post")
	}
	return post, nil
}

func (s *blogService) ListPosts(ctx context.Context, filter repository.ContentFilter) ([]model.BlogPost, int64, error) {
	return s.repo.List(ctx, filter)
}

// PublishPost marks an approved post as published and stamps publishedAt
func (s *blogService) PublishPost(ctx context.Context, id, companyID string) (*model.BlogPost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid post id")
	}

	post, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("blog post")
	}
	if post.CompanyID.String() != companyID {
		return nil, apperror.NotFound("blog post")
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
		EntityName: post.Title,
	})

	return post, nil
}
