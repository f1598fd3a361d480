package services

import (
	"context"

	"go-gin-meetup/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type NotificationServiceMock struct {
	mock.Mock
}

func NewNotificationServiceMock() *NotificationServiceMock {
	return &NotificationServiceMock{}
}

func (m *NotificationServiceMock) Dispatch(ctx context.Context, notification *model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *NotificationServiceMock) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Notification), args.Error(1)
}

func (m *NotificationServiceMock) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, userID, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}
