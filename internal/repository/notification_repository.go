package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) (*model.Notification, error)
	// ListByUser 依建立時間由新到舊
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error)
}

type NotificationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &NotificationRepositoryImpl{
		pool: pool,
	}
}

const notificationColumns = `id, user_id, kind, event_id, event_title, actor_id, read_at, created_at`

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Kind,
		&n.EventID,
		&n.EventTitle,
		&n.ActorID,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	id := n.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	// 佇列可能重送，以 id 去重
	query := fmt.Sprintf(`
		INSERT INTO notifications (id, user_id, kind, event_id, event_title, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING %s
	`, notificationColumns)

	created, err := scanNotification(r.pool.QueryRow(ctx, query,
		id, n.UserID, n.Kind, n.EventID, n.EventTitle, n.ActorID,
	))
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return created, nil
}

func (r *NotificationRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	where := "WHERE user_id = $1"
	if unreadOnly {
		where += " AND read_at IS NULL"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		%s
		ORDER BY created_at DESC, id ASC
	`, notificationColumns, where)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE notifications
		SET read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND user_id = $3
		RETURNING %s
	`, notificationColumns)

	n, err := scanNotification(r.pool.QueryRow(ctx, query, time.Now().UTC(), id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}
