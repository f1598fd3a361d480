package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
)

type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*model.Notification
	seq           map[uuid.UUID]int
	next          int
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{
		notifications: make(map[uuid.UUID]*model.Notification),
		seq:           make(map[uuid.UUID]int),
	}
}

func cloneNotification(n *model.Notification) *model.Notification {
	c := *n
	if n.ReadAt != nil {
		readAt := *n.ReadAt
		c.ReadAt = &readAt
	}
	return &c
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID != uuid.Nil {
		if existing, ok := r.notifications[n.ID]; ok {
			return cloneNotification(existing), nil
		}
	}

	stored := cloneNotification(n)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.ReadAt = nil
	stored.CreatedAt = time.Now().UTC()
	r.notifications[stored.ID] = stored
	r.next++
	r.seq[stored.ID] = r.next
	return cloneNotification(stored), nil
}

func (r *MemoryNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Notification, 0)
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead()) {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	// 時間相同時以寫入順序決定
	slices.SortFunc(out, func(a, b *model.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(r.seq[b.ID], r.seq[a.ID])
	})
	return out, nil
}

func (r *MemoryNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return nil, apperrors.ErrNotificationNotFound
	}
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
	return cloneNotification(n), nil
}
