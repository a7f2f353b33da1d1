package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, apperror.BadRequest("invalid user id")
	}
	return s.repo.ListByUser(ctx, uid, unreadOnly, page, limit)
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, apperror.BadRequest("invalid user id")
	}
	return s.repo.CountUnread(ctx, uid)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	notifUID, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid notification id")
	}
	userUID, err := uuid.Parse(userID)
	if err != nil {
		return apperror.BadRequest("invalid user id")
	}
	if err := s.repo.MarkRead(ctx, notifUID, userUID); err != nil {
		return apperror.NotFound("notification")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperror.BadRequest("invalid user id")
	}
	return s.repo.MarkAllRead(ctx, uid)
}
