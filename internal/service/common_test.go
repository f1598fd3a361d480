package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	queuemocks "go-gin-meetup/internal/mocks/queue"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"
	"go-gin-meetup/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var eventDay = time.Date(2026, 7, 1, 19, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      service.EventService
	events   *repository.MemoryEventRepository
	users    *repository.MemoryUserRepository
	notifier *queuemocks.NotificationQueueMock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	events := repository.NewMemoryEventRepository()
	users := repository.NewMemoryUserRepository()
	notifier := queuemocks.NewNotificationQueueMock()
	notifier.On("PublishNotification", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &testEnv{
		svc:      service.NewEventService(events, service.NewUserDirectory(users, nil), notifier),
		events:   events,
		users:    users,
		notifier: notifier,
	}
}

func (e *testEnv) createUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	user, err := e.users.Create(context.Background(), &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		City:         "Taipei",
	})
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) createEvent(t *testing.T, hostID uuid.UUID, limit int, date time.Time, tags ...string) *model.Event {
	t.Helper()
	event, err := e.svc.CreateEvent(context.Background(), hostID, model.CreateEventParams{
		Title:            "Board games night",
		Description:      "Bring your favourite game",
		Category:         "hangout",
		City:             "Taipei",
		Date:             date.Format(time.RFC3339),
		ParticipantLimit: limit,
		Tags:             tags,
	})
	require.NoError(t, err)
	return event
}

func (e *testEnv) reload(t *testing.T, eventID uuid.UUID) *model.Event {
	t.Helper()
	event, err := e.events.FindByID(context.Background(), eventID)
	require.NoError(t, err)
	return event
}

// published 取出已發送的通知
func (e *testEnv) published() []*model.Notification {
	out := make([]*model.Notification, 0)
	for _, call := range e.notifier.Calls {
		if call.Method == "PublishNotification" {
			out = append(out, call.Arguments.Get(1).(*model.Notification))
		}
	}
	return out
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
