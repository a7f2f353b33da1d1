package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentFilter narrows blog/social post listings
type ContentFilter struct {
	CompanyID string
	AuthorID  string
	Status    string
	Platform  string // social posts only
	Search    string
	Page      int
	Limit     int
}

// BlogPostRepository defines data access for blog posts
type BlogPostRepository interface {
	Create(ctx context.Context, post *model.BlogPost) error
	Update(ctx context.Context, post *model.BlogPost) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error)
	List(ctx context.Context, filter ContentFilter) ([]model.BlogPost, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type blogPostRepository struct {
	db *gorm.DB
}

func NewBlogPostRepository(db *gorm.DB) BlogPostRepository {
	return &blogPostRepository{db: db}
}

func (r *blogPostRepository) Create(ctx context.Context, post *model.BlogPost) error {
	return GetDB(ctx, r.db).Create(post).Error
}

func (r *blogPostRepository) Update(ctx context.Context, post *model.BlogPost) error {
	return GetDB(ctx, r.db).Save(post).Error
}

func (r *blogPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.BlogPost{}).Error
}

func (r *blogPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := GetDB(ctx, r.db).Preload("Author").Preload("Topic").First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *blogPostRepository) List(ctx context.Context, filter ContentFilter) ([]model.BlogPost, int64, error) {
	var posts []model.BlogPost
	var total int64

	query := GetDB(ctx, r.db).Model(&model.BlogPost{})
	query = applyContentFilter(query, filter, "title")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Author").Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *blogPostRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.BlogPost{}).Where("id = ?", id).Update("status", status).Error
}

// SocialPostRepository defines data access for social media posts
type SocialPostRepository interface {
	Create(ctx context.Context, post *model.SocialMediaPost) error
	Update(ctx context.Context, post *model.SocialMediaPost) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SocialMediaPost, error)
	List(ctx context.Context, filter ContentFilter) ([]model.SocialMediaPost, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type socialPostRepository struct {
	db *gorm.DB
}

func NewSocialPostRepository(db *gorm.DB) SocialPostRepository {
	return &socialPostRepository{db: db}
}

func (r *socialPostRepository) Create(ctx context.Context, post *model.SocialMediaPost) error {
	return GetDB(ctx, r.db).Create(post).Error
}

func (r *socialPostRepository) Update(ctx context.Context, post *model.SocialMediaPost) error {
	return GetDB(ctx, r.db).Save(post).Error
}

func (r *socialPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SocialMediaPost{}).Error
}

func (r *socialPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SocialMediaPost, error) {
	var post model.SocialMediaPost
	if err := GetDB(ctx, r.db).Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *socialPostRepository) List(ctx context.Context, filter ContentFilter) ([]model.SocialMediaPost, int64, error) {
	var posts []model.SocialMediaPost
	var total int64

	query := GetDB(ctx, r.db).Model(&model.SocialMediaPost{})
	query = applyContentFilter(query, filter, "content")
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Author").Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *socialPostRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.SocialMediaPost{}).Where("id = ?", id).Update("status", status).Error
}

// applyContentFilter applies the filters shared by both content repositories
func applyContentFilter(query *gorm.DB, filter ContentFilter, searchColumn string) *gorm.DB {
	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("LOWER("+searchColumn+") LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	return query
}
