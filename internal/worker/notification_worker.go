package worker

import (
	"context"

	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/service"
	"go-gin-meetup/pkg/logger"

	"go.uber.org/zap"
)

type NotificationWorker interface {
	// 訂閱通知隊列，ctx 結束時停止
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	service service.NotificationService
	queue   queue.NotificationQueue
}

func NewNotificationWorker(service service.NotificationService, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			if err := w.service.Dispatch(ctx, msg.Data); err != nil {
				// 資料庫暫時失敗，交給隊列重試
				log.Warn("dispatch notification failed, requeue",
					zap.String("notification_id", msg.Data.ID.String()),
					zap.Int("attempt", msg.Attempt),
					zap.Error(err),
				)
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
		log.Info("notification worker stopped")
	}()
	return nil
}
