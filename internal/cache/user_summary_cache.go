package cache

import (
	"context"
	"fmt"
	"time"

	"go-gin-meetup/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultSummaryTTL = 10 * time.Minute

type UserSummaryCache interface {
	// GetMany 回傳命中的摘要與未命中的 id
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserSummary, []uuid.UUID, error)
	// SetMany 預熱：寫入摘要並設定 TTL
	SetMany(ctx context.Context, summaries []model.UserSummary) error
	// Invalidate 使用者資料變更時清除快取
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type RedisUserSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUserSummaryCache(client *redis.Client, ttl time.Duration) UserSummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &RedisUserSummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// 摘要 key
func (c *RedisUserSummaryCache) getSummaryKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:summary", userID)
}

func (c *RedisUserSummaryCache) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserSummary, []uuid.UUID, error) {
	found := make(map[uuid.UUID]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, c.getSummaryKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, ids, err
	}

	misses := make([]uuid.UUID, 0)
	for i, id := range ids {
		result, err := cmds[i].Result()
		// 檢查 key 是否存在
		if err != nil || len(result) == 0 {
			misses = append(misses, id)
			continue
		}
		found[id] = model.UserSummary{
			ID:    id,
			Name:  result["name"],
			Email: result["email"],
			City:  result["city"],
		}
	}

	return found, misses, nil
}

func (c *RedisUserSummaryCache) SetMany(ctx context.Context, summaries []model.UserSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range summaries {
			key := c.getSummaryKey(s.ID)
			pipe.HSet(ctx, key, map[string]interface{}{
				"name":  s.Name,
				"email": s.Email,
				"city":  s.City,
			})
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisUserSummaryCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, c.getSummaryKey(userID)).Err()
}
