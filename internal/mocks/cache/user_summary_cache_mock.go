package cache

import (
	"context"

	"go-gin-meetup/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserSummaryCacheMock struct {
	mock.Mock
}

func NewUserSummaryCacheMock() *UserSummaryCacheMock {
	return &UserSummaryCacheMock{}
}

func (m *UserSummaryCacheMock) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserSummary, []uuid.UUID, error) {
	args := m.Called(ctx, ids)
	var found map[uuid.UUID]model.UserSummary
	if args.Get(0) != nil {
		found = args.Get(0).(map[uuid.UUID]model.UserSummary)
	}
	var misses []uuid.UUID
	if args.Get(1) != nil {
		misses = args.Get(1).([]uuid.UUID)
	}
	return found, misses, args.Error(2)
}

func (m *UserSummaryCacheMock) SetMany(ctx context.Context, summaries []model.UserSummary) error {
	args := m.Called(ctx, summaries)
	return args.Error(0)
}

func (m *UserSummaryCacheMock) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
