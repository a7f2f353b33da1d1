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

func newTestCommentService(db *gorm.DB) CommentService {
	return NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewBlogPostRepository(db),
		repository.NewSocialPostRepository(db),
		repository.NewNotificationRepository(db),
		nil,
	)
}

func TestCreateComment_NotifiesAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCommentService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	commenter := seedUser(t, db, company.ID.String(), model.RoleEditor)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	comment, err := svc.CreateComment(ctx, company.ID.String(), commenter.ID.String(), CreateCommentRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
		Body:       "Great opener.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Great opener.", comment.Body)

	var notifs int64
	db.Model(&model.Notification{}).Where("user_id = ? AND type = ?", author.ID, model.NotificationCommentAdded).Count(&notifs)
	assert.Equal(t, int64(1), notifs)
}

func TestCreateComment_SelfCommentSkipsNotification(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCommentService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	_, err := svc.CreateComment(ctx, company.ID.String(), author.ID.String(), CreateCommentRequest{
		EntityType: model.EntityTypeBlogPost,
		EntityID:   post.ID.String(),
		Body:       "Note to self.",
	})
	require.NoError(t, err)

	var notifs int64
	db.Model(&model.Notification{}).Where("user_id = ?", author.ID).Count(&notifs)
	assert.Equal(t, int64(0), notifs)
}

func TestDeleteComment_AuthorOrAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCommentService(db)
	ctx := context.Background()

	company := seedCompany(t, db)
	author := seedUser(t, db, company.ID.String(), model.RoleWriter)
	commenter := seedUser(t, db, company.ID.String(), model.RoleEditor)
	bystander := seedUser(t, db, company.ID.String(), model.RoleEditor)
	admin := seedUser(t, db, company.ID.String(), model.RoleAdmin)
	post := seedBlogPost(t, db, company.ID.String(), author.ID.String())

	makeComment := func(body string) *model.Comment {
		c, err := svc.CreateComment(ctx, company.ID.String(), commenter.ID.String(), CreateCommentRequest{
			EntityType: model.EntityTypeBlogPost,
			EntityID:   post.ID.String(),
			Body:       body,
		})
		require.NoError(t, err)
		return c
	}

	first := makeComment("first")
	err := svc.DeleteComment(ctx, first.ID.String(), bystander.ID.String(), model.RoleEditor)
	require.Error(t, err)

	require.NoError(t, svc.DeleteComment(ctx, first.ID.String(), commenter.ID.String(), model.RoleEditor))

	second := makeComment("second")
	require.NoError(t, svc.DeleteComment(ctx, second.ID.String(), admin.ID.String(), model.RoleAdmin))
}

func TestNotificationReadFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db))
	ctx := context.Background()

	company := seedCompany(t, db)
	user := seedUser(t, db, company.ID.String(), model.RoleWriter)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&model.Notification{
			UserID:  user.ID,
			Type:    model.NotificationReviewRequested,
			Title:   "Review requested",
			Message: "A post is waiting for you",
		}).Error)
	}

	unread, err := svc.CountUnread(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	list, total, err := svc.ListNotifications(ctx, user.ID.String(), true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.NotEmpty(t, list)

	require.NoError(t, svc.MarkRead(ctx, list[0].ID.String(), user.ID.String()))
	unread, err = svc.CountUnread(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkAllRead(ctx, user.ID.String()))
	unread, err = svc.CountUnread(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
