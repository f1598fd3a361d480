package repository

import (
	"context"
	"sync"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
)

// MemoryEventRepository 記憶體版 EventRepository，供 STORAGE_DRIVER=memory 與測試使用
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*model.Event
	now    func() time.Time
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[uuid.UUID]*model.Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryEventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := event.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Version == 0 {
		stored.Version = 1
	}
	now := r.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.events[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event.Clone(), nil
}

func (r *MemoryEventRepository) List(ctx context.Context, query model.EventQuery) ([]*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.Event, 0)
	for _, event := range r.events {
		if query.Matches(event) {
			events = append(events, event.Clone())
		}
	}
	model.SortEvents(events)
	return events, nil
}

func (r *MemoryEventRepository) UpdateIfUnchanged(ctx context.Context, event *model.Event) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.events[event.ID]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	if current.Version != event.Version {
		return nil, apperrors.ErrVersionConflict
	}

	stored := event.Clone()
	stored.HostID = current.HostID
	stored.CreatedAt = current.CreatedAt
	stored.Version = current.Version + 1
	stored.UpdatedAt = r.now()
	r.events[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}
