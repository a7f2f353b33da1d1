package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestBlogService(db *gorm.DB) BlogService {
	return NewBlogService(
		repository.NewBlogPostRepository(db),
		repository.NewTopicRepository(db),
		repository.NewAuditRepository(db),
	)
}

func TestBlogPost_EditResetsRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBlogService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)

	post, err := svc.CreatePost(ctx, company.ID.String(), author.ID.String(), CreateBlogPostRequest{
		Title:   "Launch recap",
		Content: "First draft.",
		Tags:    []string{"launch"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusDraft, post.Status)

	// Simulate a rejected review round
	require.NoError(t, db.Model(&model.BlogPost{}).Where("id = ?", post.ID).
		Update("status", model.ContentStatusRejected).Error)

	newContent := "Second draft."
	updated, err := svc.UpdatePost(ctx, post.ID.String(), author.ID.String(), UpdateBlogPostRequest{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusDraft, updated.Status)
	assert.Equal(t, "Second draft.", updated.Content)
}

func TestBlogPost_LockedWhileInReview(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBlogService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)

	post, err := svc.CreatePost(ctx, company.ID.String(), author.ID.String(), CreateBlogPostRequest{
		Title:   "Locked piece",
		Content: "Under review.",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.BlogPost{}).Where("id = ?", post.ID).
		Update("status", model.ContentStatusInReview).Error)

	title := "Sneaky edit"
	_, err = svc.UpdatePost(ctx, post.ID.String(), author.ID.String(), UpdateBlogPostRequest{Title: &title})
	require.Error(t, err)

	err = svc.DeletePost(ctx, post.ID.String(), author.ID.String())
	require.Error(t, err)
}

func TestBlogPost_OnlyAuthorEdits(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBlogService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	other := seedUser(t, db, company.ID.String(), model.RoleWriter)

	post, err := svc.CreatePost(ctx, company.ID.String(), author.ID.String(), CreateBlogPostRequest{
		Title:   "Mine",
		Content: "Hands off.",
	})
	require.NoError(t, err)

	title := "Yours now"
	_, err = svc.UpdatePost(ctx, post.ID.String(), other.ID.String(), UpdateBlogPostRequest{Title: &title})
	require.Error(t, err)
}

func TestBlogPost_PublishRequiresApproval(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBlogService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)

	post, err := svc.CreatePost(ctx, company.ID.String(), author.ID.String(), CreateBlogPostRequest{
		Title:   "Ready or not",
		Content: "Body.",
	})
	require.NoError(t, err)

	_, err = svc.PublishPost(ctx, post.ID.String(), company.ID.String())
	require.Error(t, err)

	require.NoError(t, db.Model(&model.BlogPost{}).Where("id = ?", post.ID).
		Update("status", model.ContentStatusApproved).Error)

	published, err := svc.PublishPost(ctx, post.ID.String(), company.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)
}

func TestBlogPost_TopicMustBelongToCompany(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBlogService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)

	rival := &model.Company{Name: "Rival", Slug: "rival", IsActive: true}
	require.NoError(t, db.Create(rival).Error)
	foreignTopic := &model.ContentTopic{CompanyID: rival.ID, Title: "Their roadmap", Status: model.TopicStatusSuggested}
	require.NoError(t, db.Create(foreignTopic).Error)

	_, err := svc.CreatePost(ctx, company.ID.String(), author.ID.String(), CreateBlogPostRequest{
		TopicID: foreignTopic.ID.String(),
		Title:   "Cross-tenant",
		Content: "Should fail.",
	})
	require.Error(t, err)
}
