package service

import (
	"context"

	"go-gin-meetup/internal/cache"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"
	"go-gin-meetup/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserDirectory 將使用者 id 解析為對外的摘要
type UserDirectory interface {
	// Summaries 不存在的 id 不會出現在結果中
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserSummary, error)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type UserDirectoryImpl struct {
	users repository.UserRepository
	cache cache.UserSummaryCache
}

// NewUserDirectory summaryCache 可為 nil，此時每次都查 repository
func NewUserDirectory(users repository.UserRepository, summaryCache cache.UserSummaryCache) UserDirectory {
	return &UserDirectoryImpl{
		users: users,
		cache: summaryCache,
	}
}

func (d *UserDirectoryImpl) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserSummary, error) {
	ids = uniqueIDs(ids)
	result := make(map[uuid.UUID]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	misses := ids
	if d.cache != nil {
		found, cacheMisses, err := d.cache.GetMany(ctx, ids)
		if err != nil {
			// 快取失敗時退回資料庫
			logger.WithComponent("service").Warn("user summary cache read failed", zap.Error(err))
		} else {
			for id, s := range found {
				result[id] = s
			}
			misses = cacheMisses
		}
	}

	if len(misses) == 0 {
		return result, nil
	}

	summaries, err := d.users.FindSummaries(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		result[s.ID] = s
	}

	if d.cache != nil && len(summaries) > 0 {
		if err := d.cache.SetMany(ctx, summaries); err != nil {
			logger.WithComponent("service").Warn("user summary cache warm-up failed", zap.Error(err))
		}
	}

	return result, nil
}

func (d *UserDirectoryImpl) Invalidate(ctx context.Context, userID uuid.UUID) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Invalidate(ctx, userID); err != nil {
		logger.WithComponent("service").Warn("user summary cache invalidate failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// pick 依 ids 順序取出摘要，略過不存在的使用者
func pick(summaries map[uuid.UUID]model.UserSummary, ids []uuid.UUID) []model.UserSummary {
	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := summaries[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
