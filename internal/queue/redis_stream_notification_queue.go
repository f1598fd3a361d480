package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "notifications:stream"
	ConsumerGroupName  = "notification-workers"
	ConsumerNamePrefix = "worker"

	notificationField = "notification"

	readBatchSize    = 10
	pendingScanLimit = 1000
)

var errMalformedMessage = errors.New("malformed notification message")

// RedisStreamQueueConfig 可注入的逾時與重試設定；nil 或零值時使用預設。
type RedisStreamQueueConfig struct {
	ClaimMinIdleTime   time.Duration // PEL 中超過此時間才被 XAUTOCLAIM 領取
	MaxRetryCount      int           // 超過此次數視為毒藥消息並丟棄
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
	MaxLen             int64         // stream 約略保留的最大筆數
}

func defaultRedisStreamConfig() RedisStreamQueueConfig {
	return RedisStreamQueueConfig{
		ClaimMinIdleTime:   5 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
		MaxLen:             100000,
	}
}

type RedisStreamNotificationQueueImpl struct {
	client       *redis.Client
	streamKey    string
	groupName    string
	consumerName string
	cfg          RedisStreamQueueConfig
}

// NewRedisStreamNotificationQueue 建立 Redis Stream 版 NotificationQueue。config 可為 nil，則使用預設逾時與重試次數。
func NewRedisStreamNotificationQueue(client *redis.Client, consumerID string, config *RedisStreamQueueConfig) (NotificationQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	cfg := defaultRedisStreamConfig()
	if config != nil {
		if config.ClaimMinIdleTime > 0 {
			cfg.ClaimMinIdleTime = config.ClaimMinIdleTime
		}
		if config.MaxRetryCount > 0 {
			cfg.MaxRetryCount = config.MaxRetryCount
		}
		if config.ReadGroupBlockTime > 0 {
			cfg.ReadGroupBlockTime = config.ReadGroupBlockTime
		}
		if config.MaxLen > 0 {
			cfg.MaxLen = config.MaxLen
		}
	}
	q := &RedisStreamNotificationQueueImpl{
		client:       client,
		streamKey:    StreamKey,
		groupName:    ConsumerGroupName,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg,
	}
	ctx := context.Background()
	if err := q.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamNotificationQueueImpl) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.streamKey, q.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (q *RedisStreamNotificationQueueImpl) PublishNotification(ctx context.Context, notification *model.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamKey,
		MaxLen: q.cfg.MaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{notificationField: string(payload)},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

// SubscribeNotifications 以單一 goroutine 消費：每輪先領回閒置過久的 pending，再阻塞讀新訊息。
func (q *RedisStreamNotificationQueueImpl) SubscribeNotifications(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		q.consume(ctx, out)
	}()
	return out, nil
}

func (q *RedisStreamNotificationQueueImpl) consume(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("mq").With(zap.String("consumer", q.consumerName))
	claimTicker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer claimTicker.Stop()
	claimCursor := "0-0"

	for ctx.Err() == nil {
		select {
		case <-claimTicker.C:
			var err error
			claimCursor, err = q.claimStale(ctx, out, claimCursor)
			if err != nil && ctx.Err() == nil {
				log.Error("Claim stale notifications failed", zap.Error(err))
			}
		default:
		}

		if err := q.readNew(ctx, out); err != nil && ctx.Err() == nil {
			log.Error("Read notifications failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// readNew 只讀 ">"；已投遞過的 pending 由 claimStale 在閒置逾時後重送
func (q *RedisStreamNotificationQueueImpl) readNew(ctx context.Context, out chan<- Delivery) error {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: q.consumerName,
		Streams:  []string{q.streamKey, ">"},
		Count:    readBatchSize,
		Block:    q.cfg.ReadGroupBlockTime,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("xreadgroup: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != q.streamKey {
			continue
		}
		for _, msg := range stream.Messages {
			if !q.deliver(ctx, out, msg, 1) {
				return nil
			}
		}
	}
	return nil
}

// claimStale 以 XAUTOCLAIM 領回 Nack(requeue) 或 consumer 掛掉留下的通知，回傳下一輪的游標
func (q *RedisStreamNotificationQueueImpl) claimStale(ctx context.Context, out chan<- Delivery, cursor string) (string, error) {
	claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.streamKey,
		Group:    q.groupName,
		Consumer: q.consumerName,
		MinIdle:  q.cfg.ClaimMinIdleTime,
		Count:    readBatchSize,
		Start:    cursor,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return cursor, fmt.Errorf("xautoclaim: %w", err)
	}
	if next == "" {
		next = "0-0"
	}
	if len(claimed) == 0 {
		return next, nil
	}

	counts, err := q.deliveryCounts(ctx, claimed[0].ID, claimed[len(claimed)-1].ID)
	if err != nil {
		logger.WithComponent("mq").Warn("Read delivery counts failed", zap.Error(err))
	}

	for _, msg := range claimed {
		attempt := 2
		if n, ok := counts[msg.ID]; ok {
			attempt = n
		}
		// 首次投遞不算重試
		if attempt-1 > q.cfg.MaxRetryCount {
			logger.WithComponent("mq").Warn("Notification exceeded max retries, discarding",
				zap.String("message_id", msg.ID),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", q.cfg.MaxRetryCount),
			)
			q.discard(ctx, msg.ID)
			continue
		}
		if !q.deliver(ctx, out, msg, attempt) {
			break
		}
	}
	return next, nil
}

// deliveryCounts 一次 XPENDING 取回 [from, to] 區間內本 consumer 各訊息的投遞次數
func (q *RedisStreamNotificationQueueImpl) deliveryCounts(ctx context.Context, from, to string) (map[string]int, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   q.streamKey,
		Group:    q.groupName,
		Start:    from,
		End:      to,
		Count:    pendingScanLimit,
		Consumer: q.consumerName,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	counts := make(map[string]int, len(pending))
	for _, p := range pending {
		counts[p.ID] = int(p.RetryCount)
	}
	return counts, nil
}

// deliver 解碼並送出；格式錯誤直接丟棄。回傳 false 表示 ctx 已結束
func (q *RedisStreamNotificationQueueImpl) deliver(ctx context.Context, out chan<- Delivery, msg redis.XMessage, attempt int) bool {
	notification, err := decodeNotification(msg)
	if err != nil {
		logger.WithComponent("mq").Warn("Discarding malformed notification",
			zap.String("message_id", msg.ID), zap.Error(err))
		q.discard(ctx, msg.ID)
		return true
	}

	select {
	case out <- q.newDelivery(ctx, msg.ID, notification, attempt):
		return true
	case <-ctx.Done():
		return false
	}
}

func decodeNotification(msg redis.XMessage) (*model.Notification, error) {
	payload, ok := msg.Values[notificationField].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q field", errMalformedMessage, notificationField)
	}
	var notification model.Notification
	if err := json.Unmarshal([]byte(payload), &notification); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedMessage, err)
	}
	if notification.ID == uuid.Nil || notification.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing id or recipient", errMalformedMessage)
	}
	return &notification, nil
}

func (q *RedisStreamNotificationQueueImpl) newDelivery(ctx context.Context, msgID string, notification *model.Notification, attempt int) Delivery {
	return Delivery{
		Data:    notification,
		Attempt: attempt,
		Ack: func() {
			if err := q.client.XAck(ctx, q.streamKey, q.groupName, msgID).Err(); err != nil {
				logger.WithComponent("mq").Error("XAck failed", zap.String("message_id", msgID), zap.Error(err))
			}
		},
		Nack: func(requeue bool) {
			if !requeue {
				q.discard(ctx, msgID)
				return
			}
			// 留在 PEL，閒置 ClaimMinIdleTime 後由 claimStale 重送
			logger.WithComponent("mq").Info("Notification nacked, awaiting redelivery",
				zap.String("message_id", msgID),
				zap.String("notification_id", notification.ID.String()),
				zap.Int("attempt", attempt),
			)
		},
	}
}

// discard 直接 ack，無法處理的訊息不再重試
func (q *RedisStreamNotificationQueueImpl) discard(ctx context.Context, msgID string) {
	if err := q.client.XAck(ctx, q.streamKey, q.groupName, msgID).Err(); err != nil {
		logger.WithComponent("mq").Error("XAck discard failed", zap.String("message_id", msgID), zap.Error(err))
	}
}
