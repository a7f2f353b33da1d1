package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicRepository interface {
	Create(ctx context.Context, topic *model.ContentTopic) error
	Update(ctx context.Context, topic *model.ContentTopic) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContentTopic, error)
	List(ctx context.Context, companyID, status, search string, page, limit int) ([]model.ContentTopic, int64, error)
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *model.ContentTopic) error {
	return GetDB(ctx, r.db).Create(topic).Error
}

func (r *topicRepository) Update(ctx context.Context, topic *model.ContentTopic) error {
	return GetDB(ctx, r.db).Save(topic).Error
}

func (r *topicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ContentTopic{}).Error
}

func (r *topicRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ContentTopic, error) {
	var topic model.ContentTopic
	if err := GetDB(ctx, r.db).First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) List(ctx context.Context, companyID, status, search string, page, limit int) ([]model.ContentTopic, int64, error) {
	var topics []model.ContentTopic
	var total int64

	query := GetDB(ctx, r.db).Model(&model.ContentTopic{})
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&topics).Error; err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}
