package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
)

// MemoryUserRepository 記憶體版 UserRepository
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*model.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[uuid.UUID]*model.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Hobbies = slices.Clone(u.Hobbies)
	return &c
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, taken := r.byEmail[email]; taken {
		return nil, apperrors.ErrEmailTaken
	}

	stored := cloneUser(user)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Hobbies == nil {
		stored.Hobbies = []string{}
	}
	stored.Email = email
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.users[stored.ID] = stored
	r.byEmail[email] = stored.ID
	return cloneUser(stored), nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *MemoryUserRepository) FindSummaries(ctx context.Context, ids []uuid.UUID) ([]model.UserSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			summaries = append(summaries, user.Summary())
		}
	}
	return summaries, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id uuid.UUID, params model.UpdateUserParams) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}

	user := cloneUser(current)
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.City != nil {
		user.City = *params.City
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Hobbies != nil {
		user.Hobbies = slices.Clone(*params.Hobbies)
		if user.Hobbies == nil {
			user.Hobbies = []string{}
		}
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return cloneUser(user), nil
}
