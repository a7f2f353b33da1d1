package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- Topic DTOs ---

type CreateTopicRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
}

type UpdateTopicRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Keywords    *[]string `json:"keywords"`
	Status      *string   `json:"status" binding:"omitempty,oneof=suggested planned drafted published"`
}

// --- Interface ---

type TopicService interface {
	CreateTopic(ctx context.Context, companyID string, req CreateTopicRequest) (*model.ContentTopic, error)
	UpdateTopic(ctx context.Context, id, companyID string, req UpdateTopicRequest) (*model.ContentTopic, error)
	DeleteTopic(ctx context.Context, id, companyID string) error
	GetTopic(ctx context.Context, id, companyID string) (*model.ContentTopic, error)
	ListTopics(ctx context.Context, companyID, status, search string, page, limit int) ([]model.ContentTopic, int64, error)
}

type topicService struct {
	repo repository.TopicRepository
}

func NewTopicService(repo repository.TopicRepository) TopicService {
	return &topicService{repo: repo}
}

func (s *topicService) CreateTopic(ctx context.Context, companyID string, req CreateTopicRequest) (*model.ContentTopic, error) {
	companyUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.BadRequest("invalid company id")
	}

	topic := &model.ContentTopic{
		CompanyID:   companyUID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Keywords:    req.Keywords,
		Status:      model.TopicStatusSuggested,
	}
	if err := s.repo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) UpdateTopic(ctx context.Context, id, companyID string, req UpdateTopicRequest) (*model.ContentTopic, error) {
	topic, err := s.GetTopic(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, apperror.BadRequest("title cannot be empty")
		}
		topic.Title = *req.Title
	}
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.Category != nil {
		topic.Category = *req.Category
	}
	if req.Keywords != nil {
		topic.Keywords = *req.Keywords
	}
	if req.Status != nil {
		topic.Status = *req.Status
	}

	if err := s.repo.Update(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) DeleteTopic(ctx context.Context, id, companyID string) error {
	topic, err := s.GetTopic(ctx, id, companyID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, topic.ID)
}

func (s *topicService) GetTopic(ctx context.Context, id, companyID string) (*model.ContentTopic, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid topic id")
	}
	topic, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperror.NotFound("topic")
	}
	if topic.CompanyID.String() != companyID {
		return nil, apperror.NotFound("topic")
	}
	return topic, nil
}

func (s *topicService) ListTopics(ctx context.Context, companyID, status, search string, page, limit int) ([]model.ContentTopic, int64, error) {
	return s.repo.List(ctx, companyID, status, search, page, limit)
}
