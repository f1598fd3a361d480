package services

import (
	"context"

	"go-gin-meetup/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type EventServiceMock struct {
	mock.Mock
}

func NewEventServiceMock() *EventServiceMock {
	return &EventServiceMock{}
}

func (m *EventServiceMock) CreateEvent(ctx context.Context, callerID uuid.UUID, params model.CreateEventParams) (*model.Event, error) {
	args := m.Called(ctx, callerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.EventDetail, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventDetail), args.Error(1)
}

func (m *EventServiceMock) GetEventByID(ctx context.Context, eventID uuid.UUID) (*model.EventDetail, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventDetail), args.Error(1)
}

func (m *EventServiceMock) RequestToJoin(ctx context.Context, callerID, eventID uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, callerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) ListIncomingRequests(ctx context.Context, callerID uuid.UUID) ([]*model.EventDetail, error) {
	args := m.Called(ctx, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventDetail), args.Error(1)
}

func (m *EventServiceMock) DecideJoinRequest(ctx context.Context, callerID, eventID, targetUserID uuid.UUID, decision model.JoinDecision) (*model.EventDetail, error) {
	args := m.Called(ctx, callerID, eventID, targetUserID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventDetail), args.Error(1)
}

func (m *EventServiceMock) LeaveEvent(ctx context.Context, callerID, eventID uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, callerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) UpdateEvent(ctx context.Context, callerID, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, callerID, eventID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) DeleteEvent(ctx context.Context, callerID, eventID uuid.UUID) error {
	args := m.Called(ctx, callerID, eventID)
	return args.Error(0)
}

func (m *EventServiceMock) GetMyEvents(ctx context.Context, callerID uuid.UUID) (*model.MyEvents, error) {
	args := m.Called(ctx, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MyEvents), args.Error(1)
}
