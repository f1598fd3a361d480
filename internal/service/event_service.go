package service

import (
	"context"
	"errors"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/repository"
	apperrors "go-gin-meetup/pkg/app_errors"
	"go-gin-meetup/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUpdateAttempts 版本衝突時最多重讀重試的次數
const maxUpdateAttempts = 5

type EventService interface {
	CreateEvent(ctx context.Context, callerID uuid.UUID, params model.CreateEventParams) (*model.Event, error)
	ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.EventDetail, error)
	GetEventByID(ctx context.Context, eventID uuid.UUID) (*model.EventDetail, error)
	RequestToJoin(ctx context.Context, callerID, eventID uuid.UUID) (*model.Event, error)
	// ListIncomingRequests 呼叫者主辦且有待審申請的活動
	ListIncomingRequests(ctx context.Context, callerID uuid.UUID) ([]*model.EventDetail, error)
	DecideJoinRequest(ctx context.Context, callerID, eventID, targetUserID uuid.UUID, decision model.JoinDecision) (*model.EventDetail, error)
	LeaveEvent(ctx context.Context, callerID, eventID uuid.UUID) (*model.Event, error)
	UpdateEvent(ctx context.Context, callerID, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	DeleteEvent(ctx context.Context, callerID, eventID uuid.UUID) error
	GetMyEvents(ctx context.Context, callerID uuid.UUID) (*model.MyEvents, error)
}

type EventServiceImpl struct {
	repo      repository.EventRepository
	directory UserDirectory
	notifier  queue.NotificationQueue
}

// NewEventService notifier 可為 nil，此時不發送通知
func NewEventService(repo repository.EventRepository, directory UserDirectory, notifier queue.NotificationQueue) EventService {
	return &EventServiceImpl{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
	}
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, callerID uuid.UUID, params model.CreateEventParams) (*model.Event, error) {
	event, err := model.NewEvent(callerID, params)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.EventDetail, error) {
	events, err := s.repo.List(ctx, model.EventQuery{EventFilter: filter})
	if err != nil {
		return nil, err
	}

	hostIDs := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		hostIDs = append(hostIDs, e.HostID)
	}
	summaries, err := s.directory.Summaries(ctx, hostIDs)
	if err != nil {
		return nil, err
	}

	details := make([]*model.EventDetail, 0, len(events))
	for _, e := range events {
		details = append(details, &model.EventDetail{Event: e, Host: hostSummary(summaries, e.HostID)})
	}
	return details, nil
}

func (s *EventServiceImpl) GetEventByID(ctx context.Context, eventID uuid.UUID) (*model.EventDetail, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, event)
}

func (s *EventServiceImpl) RequestToJoin(ctx context.Context, callerID, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.mutate(ctx, eventID, func(e *model.Event) error {
		return e.RequestToJoin(callerID)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, event, event.HostID, callerID, model.NotificationJoinRequested)
	return event, nil
}

func (s *EventServiceImpl) ListIncomingRequests(ctx context.Context, callerID uuid.UUID) ([]*model.EventDetail, error) {
	events, err := s.repo.List(ctx, model.EventQuery{HostID: &callerID, WithJoinRequests: true})
	if err != nil {
		return nil, err
	}

	requesterIDs := make([]uuid.UUID, 0)
	for _, e := range events {
		requesterIDs = append(requesterIDs, e.JoinRequests...)
	}
	summaries, err := s.directory.Summaries(ctx, requesterIDs)
	if err != nil {
		return nil, err
	}

	details := make([]*model.EventDetail, 0, len(events))
	for _, e := range events {
		details = append(details, &model.EventDetail{
			Event:            e,
			JoinRequestUsers: pick(summaries, e.JoinRequests),
		})
	}
	return details, nil
}

func (s *EventServiceImpl) DecideJoinRequest(ctx context.Context, callerID, eventID, targetUserID uuid.UUID, decision model.JoinDecision) (*model.EventDetail, error) {
	event, err := s.mutate(ctx, eventID, func(e *model.Event) error {
		if !e.IsHost(callerID) {
			return apperrors.ErrForbidden
		}
		return e.Decide(targetUserID, decision)
	})
	if err != nil {
		return nil, err
	}

	kind := model.NotificationRequestDeclined
	if decision == model.JoinDecisionAccept {
		kind = model.NotificationRequestAccepted
	}
	s.notify(ctx, event, targetUserID, callerID, kind)

	// 決定已寫入；查不到使用者摘要時仍回傳成功，避免呼叫端重試撞上 NoSuchRequest
	detail, err := s.detail(ctx, event)
	if err != nil {
		logger.WithComponent("service").Warn("Load user summaries after decision failed",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return &model.EventDetail{Event: event}, nil
	}
	return detail, nil
}

func (s *EventServiceImpl) LeaveEvent(ctx context.Context, callerID, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.mutate(ctx, eventID, func(e *model.Event) error {
		return e.Leave(callerID)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, event, event.HostID, callerID, model.NotificationParticipantLeft)
	return event, nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, callerID, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	return s.mutate(ctx, eventID, func(e *model.Event) error {
		if !e.IsHost(callerID) {
			return apperrors.ErrForbidden
		}
		return e.ApplyUpdate(params)
	})
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, callerID, eventID uuid.UUID) error {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.IsHost(callerID) {
		return apperrors.ErrForbidden
	}
	return s.repo.Delete(ctx, eventID)
}

func (s *EventServiceImpl) GetMyEvents(ctx context.Context, callerID uuid.UUID) (*model.MyEvents, error) {
	hosted, err := s.repo.List(ctx, model.EventQuery{HostID: &callerID})
	if err != nil {
		return nil, err
	}
	participating, err := s.repo.List(ctx, model.EventQuery{ParticipantID: &callerID})
	if err != nil {
		return nil, err
	}
	return &model.MyEvents{Hosted: hosted, Participating: participating}, nil
}

// mutate 讀取 → 檢查 → 條件寫入。寫入時版本已被其他請求更新就重讀重試，
// 每次重試都重新檢查規則，所以名額等限制以最新狀態為準
func (s *EventServiceImpl) mutate(ctx context.Context, eventID uuid.UUID, apply func(e *model.Event) error) (*model.Event, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		event, err := s.repo.FindByID(ctx, eventID)
		if err != nil {
			return nil, err
		}

		if err := apply(event); err != nil {
			return nil, err
		}

		updated, err := s.repo.UpdateIfUnchanged(ctx, event)
		if errors.Is(err, apperrors.ErrVersionConflict) {
			logger.WithComponent("service").Debug("event version conflict, retrying",
				zap.String("event_id", eventID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, apperrors.ErrConcurrentUpdate
}

func (s *EventServiceImpl) detail(ctx context.Context, event *model.Event) (*model.EventDetail, error) {
	ids := make([]uuid.UUID, 0, 1+len(event.Participants)+len(event.JoinRequests))
	ids = append(ids, event.HostID)
	ids = append(ids, event.Participants...)
	ids = append(ids, event.JoinRequests...)

	summaries, err := s.directory.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &model.EventDetail{
		Event:            event,
		Host:             hostSummary(summaries, event.HostID),
		ParticipantUsers: pick(summaries, event.Participants),
		JoinRequestUsers: pick(summaries, event.JoinRequests),
	}, nil
}

// notify 在寫入成功後發送；失敗只記錄，不影響已完成的操作
func (s *EventServiceImpl) notify(ctx context.Context, event *model.Event, recipient, actor uuid.UUID, kind model.NotificationKind) {
	if s.notifier == nil || recipient == actor {
		return
	}

	notification := &model.Notification{
		ID:         uuid.New(),
		UserID:     recipient,
		Kind:       kind,
		EventID:    event.ID,
		EventTitle: event.Title,
		ActorID:    actor,
	}
	if err := s.notifier.PublishNotification(ctx, notification); err != nil {
		logger.WithComponent("service").Error("failed to publish notification",
			zap.String("event_id", event.ID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func hostSummary(summaries map[uuid.UUID]model.UserSummary, hostID uuid.UUID) *model.UserSummary {
	s, ok := summaries[hostID]
	if !ok {
		return nil
	}
	return &s
}
