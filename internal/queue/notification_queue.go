package queue

import (
	"context"
	"sync"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.Notification
	// 第幾次投遞，從 1 開始
	Attempt int
	Ack     func()
	Nack    func(requeue bool)
}

type NotificationQueue interface {
	// 發送通知到隊列
	PublishNotification(ctx context.Context, notification *model.Notification) error
	// 訂閱通知隊列
	SubscribeNotifications(ctx context.Context) (<-chan Delivery, error)
}

// MemoryQueueConfig 對應 RedisStreamQueueConfig 的重試語意；nil 或零值時使用預設。
type MemoryQueueConfig struct {
	MaxRetryCount int           // 超過此次數視為毒藥消息並丟棄
	RetryBackoff  time.Duration // 第 n 次重試延遲 n * RetryBackoff
}

func defaultMemoryQueueConfig() MemoryQueueConfig {
	return MemoryQueueConfig{
		MaxRetryCount: 5,
		RetryBackoff:  100 * time.Millisecond,
	}
}

type envelope struct {
	notification *model.Notification
	attempt      int
}

type NotificationQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch  chan envelope
	cfg MemoryQueueConfig
}

func NewNotificationQueue(bufferSize int, config *MemoryQueueConfig) NotificationQueue {
	cfg := defaultMemoryQueueConfig()
	if config != nil {
		if config.MaxRetryCount > 0 {
			cfg.MaxRetryCount = config.MaxRetryCount
		}
		if config.RetryBackoff > 0 {
			cfg.RetryBackoff = config.RetryBackoff
		}
	}
	return &NotificationQueueImpl{
		ch:  make(chan envelope, bufferSize),
		cfg: cfg,
	}
}

func (q *NotificationQueueImpl) PublishNotification(ctx context.Context, notification *model.Notification) error {
	select {
	case q.ch <- envelope{notification: notification, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *NotificationQueueImpl) SubscribeNotifications(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-q.ch:
				select {
				case out <- q.newDelivery(ctx, env):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (q *NotificationQueueImpl) newDelivery(ctx context.Context, env envelope) Delivery {
	var once sync.Once
	return Delivery{
		Data:    env.notification,
		Attempt: env.attempt,
		// Ack 之後的 Nack 不再生效
		Ack: func() { once.Do(func() {}) },
		Nack: func(requeue bool) {
			once.Do(func() {
				if requeue {
					q.retry(ctx, env)
				}
			})
		},
	}
}

// retry 延遲後重新入隊；超過 MaxRetryCount 或緩衝區滿時丟棄
func (q *NotificationQueueImpl) retry(ctx context.Context, env envelope) {
	log := logger.WithComponent("mq").With(
		zap.String("notification_id", env.notification.ID.String()),
		zap.Int("attempt", env.attempt),
	)
	if env.attempt > q.cfg.MaxRetryCount {
		log.Warn("Notification exceeded max retries, discarding")
		return
	}

	next := envelope{notification: env.notification, attempt: env.attempt + 1}
	time.AfterFunc(time.Duration(env.attempt)*q.cfg.RetryBackoff, func() {
		if ctx.Err() != nil {
			return
		}
		select {
		case q.ch <- next:
		default:
			log.Warn("Queue full, dropping requeued notification")
		}
	})
}
