package queue_test

import (
	"context"
	"testing"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationQueue_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewNotificationQueue(4, nil)
	n := newNotification(model.NotificationJoinRequested)
	require.NoError(t, q.PublishNotification(ctx, n))

	delCh, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	select {
	case d := <-delCh:
		assert.Equal(t, n, d.Data)
		d.Ack()
	case <-ctx.Done():
		t.Fatal("timeout 未收到訊息")
	}
}

func TestNotificationQueue_NackRequeue(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewNotificationQueue(4, nil)
	n := newNotification(model.NotificationRequestAccepted)
	require.NoError(t, q.PublishNotification(ctx, n))

	delCh, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	first := <-delCh
	first.Nack(true)

	select {
	case d := <-delCh:
		assert.Equal(t, n.ID, d.Data.ID, "重試應為同一筆")
	case <-ctx.Done():
		t.Fatal("timeout 未收到重試投遞")
	}
}

func TestNotificationQueue_PublishRespectsContext(t *testing.T) {
	q := queue.NewNotificationQueue(0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.PublishNotification(ctx, newNotification(model.NotificationParticipantLeft))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotificationQueue_Subscribe_ctxCancel_closesChannel(t *testing.T) {
	q := queue.NewNotificationQueue(1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	delCh, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-delCh:
		assert.False(t, ok, "context 取消後 channel 應關閉")
	case <-time.After(time.Second):
		t.Fatal("channel 未在時限內關閉")
	}
}

func TestNotificationQueue_DiscardsAfterMaxRetries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	q := queue.NewNotificationQueue(4, &queue.MemoryQueueConfig{
		MaxRetryCount: 2,
		RetryBackoff:  10 * time.Millisecond,
	})
	n := newNotification(model.NotificationJoinRequested)
	require.NoError(t, q.PublishNotification(ctx, n))

	delCh, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	// 首次投遞加兩次重試後即丟棄
	var attempts []int
	for i := 0; i < 3; i++ {
		select {
		case d := <-delCh:
			attempts = append(attempts, d.Attempt)
			d.Nack(true)
		case <-ctx.Done():
			t.Fatalf("第 %d 次投遞逾時", i+1)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, attempts)

	select {
	case d := <-delCh:
		t.Fatalf("超過重試上限仍被投遞: attempt=%d", d.Attempt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNotificationQueue_NackWithoutRequeueDrops(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewNotificationQueue(4, &queue.MemoryQueueConfig{RetryBackoff: 10 * time.Millisecond})
	require.NoError(t, q.PublishNotification(ctx, newNotification(model.NotificationParticipantLeft)))

	delCh, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	d := <-delCh
	d.Nack(false)

	select {
	case <-delCh:
		t.Fatal("Nack(false) 不應重新投遞")
	case <-time.After(100 * time.Millisecond):
	}
}
