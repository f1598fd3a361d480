package service

import (
	"context"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"

	"github.com/google/uuid"
)

type NotificationService interface {
	// Dispatch 由 worker 呼叫，將隊列中的通知寫入資料庫
	Dispatch(ctx context.Context, notification *model.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*model.Notification, error)
}

type NotificationServiceImpl struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &NotificationServiceImpl{repo: repo}
}

func (s *NotificationServiceImpl) Dispatch(ctx context.Context, notification *model.Notification) error {
	_, err := s.repo.Create(ctx, notification)
	return err
}

func (s *NotificationServiceImpl) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*model.Notification, error) {
	return s.repo.MarkRead(ctx, userID, notificationID)
}
