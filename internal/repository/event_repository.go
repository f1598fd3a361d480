package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context, query model.EventQuery) ([]*model.Event, error)
	// UpdateIfUnchanged 只有在資料庫中的 version 與 event.Version 相同時才寫入，並將 version 加一
	UpdateIfUnchanged(ctx context.Context, event *model.Event) (*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `id, title, description, category, city, date, participant_limit, tags,
		host_id, participants, join_requests, status, version, created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Category,
		&event.City,
		&event.Date,
		&event.ParticipantLimit,
		&event.Tags,
		&event.HostID,
		&event.Participants,
		&event.JoinRequests,
		&event.Status,
		&event.Version,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := fmt.Sprintf(`
		INSERT INTO events (
			id, title, description, category, city, date, participant_limit, tags,
			host_id, participants, join_requests, status, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s
	`, eventColumns)

	created, err := scanEvent(r.pool.QueryRow(ctx, query,
		event.ID, event.Title, event.Description, event.Category, event.City, event.Date,
		event.ParticipantLimit, nonNilStrings(event.Tags), event.HostID,
		nonNilIDs(event.Participants), nonNilIDs(event.JoinRequests), event.Status, event.Version,
	))
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
	`, eventColumns)

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, q model.EventQuery) ([]*model.Event, error) {
	conds := []string{}
	args := []interface{}{}
	argPos := 1

	if q.HostID != nil {
		conds = append(conds, fmt.Sprintf("host_id = $%d", argPos))
		args = append(args, *q.HostID)
		argPos++
	}

	if q.ParticipantID != nil {
		conds = append(conds, fmt.Sprintf("$%d = ANY(participants)", argPos))
		args = append(args, *q.ParticipantID)
		argPos++
	}

	if q.WithJoinRequests {
		conds = append(conds, "cardinality(join_requests) > 0")
	}

	if city := strings.TrimSpace(q.City); city != "" {
		conds = append(conds, fmt.Sprintf(`city ILIKE '%%' || $%d || '%%' ESCAPE '\'`, argPos))
		args = append(args, escapeLike(city))
		argPos++
	}

	if category := strings.TrimSpace(q.Category); category != "" {
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", argPos))
		args = append(args, category)
		argPos++
	}

	if tags := q.NormalizedTags(); len(tags) > 0 {
		// any: 交集不為空；all: 包含全部
		op := "@>"
		if q.MatchAnyTag() {
			op = "&&"
		}
		conds = append(conds, fmt.Sprintf("ARRAY(SELECT lower(t) FROM unnest(tags) AS t) %s $%d::text[]", op, argPos))
		args = append(args, tags)
		argPos++
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY date ASC, created_at DESC, id ASC
	`, eventColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) UpdateIfUnchanged(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events
		SET title = $1, description = $2, category = $3, city = $4, date = $5,
			participant_limit = $6, tags = $7, participants = $8, join_requests = $9,
			status = $10, version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13
		RETURNING %s
	`, eventColumns)

	updated, err := scanEvent(r.pool.QueryRow(ctx, query,
		event.Title, event.Description, event.Category, event.City, event.Date,
		event.ParticipantLimit, nonNilStrings(event.Tags), nonNilIDs(event.Participants),
		nonNilIDs(event.JoinRequests), event.Status, time.Now().UTC(),
		event.ID, event.Version,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// 沒有更新到任何資料：區分不存在與版本衝突
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, event.ID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrEventNotFound
	}
	return nil, apperrors.ErrVersionConflict
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
