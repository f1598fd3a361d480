package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseDate = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func newTestEvent(t *testing.T, hostID uuid.UUID, city string, category model.Category, date time.Time, tags ...string) *model.Event {
	t.Helper()
	event, err := model.NewEvent(hostID, model.CreateEventParams{
		Title:            "Event in " + city,
		Description:      "Come along",
		Category:         string(category),
		City:             city,
		Date:             date.Format(time.RFC3339),
		ParticipantLimit: 3,
		Tags:             tags,
	})
	require.NoError(t, err)
	return event
}

func TestEventRepository_CreateAndFind(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos repositories) {
		ctx := context.Background()
		host := uuid.New()

		created, err := repos.events.Create(ctx, newTestEvent(t, host, "Taipei", model.CategoryMusic, baseDate, "jazz", "Night"))
		require.NoError(t, err)
		assert.Equal(t, 1, created.Version)
		assert.NotZero(t, created.CreatedAt)

		found, err := repos.events.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Taipei", found.City)
		assert.Equal(t, model.CategoryMusic, found.Category)
		assert.True(t, baseDate.Equal(found.Date))
		assert.Equal(t, []string{"jazz", "Night"}, found.Tags)
		assert.Equal(t, []uuid.UUID{host}, found.Participants)
		assert.Empty(t, found.JoinRequests)
		assert.Equal(t, model.EventStatusOpen, found.Status)
	})
}

func TestEventRepository_FindByID_NotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos repositories) {
		_, err := repos.events.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestEventRepository_UpdateIfUnchanged(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos repositories) {
		ctx := context.Background()
		host, guest := uuid.New(), uuid.New()
		created, err := repos.events.Create(ctx, newTestEvent(t, host, "Taipei", model.CategoryStudy, baseDate))
		require.NoError(t, err)

		t.Run("Success bumps version", func(t *testing.T) {
			event := created.Clone()
			require.NoError(t, event.RequestToJoin(guest))

			updated, err := repos.events.UpdateIfUnchanged(ctx, event)
			require.NoError(t, err)
			assert.Equal(t, 2, updated.Version)
			assert.Equal(t, []uuid.UUID{guest}, updated.JoinRequests)
		})

		t.Run("Stale version conflicts", func(t *testing.T) {
			stale := created.Clone()
			stale.Title = "Stale write"

			_, err := repos.events.UpdateIfUnchanged(ctx, stale)
			assert.ErrorIs(t, err, apperrors.ErrVersionConflict)

			found, err := repos.events.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.NotEqual(t, "Stale write", found.Title)
		})

		t.Run("Missing event", func(t *testing.T) {
			missing := created.Clone()
			missing.ID = uuid.New()

			_, err := repos.events.UpdateIfUnchanged(ctx, missing)
			assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
		})

		t.Run("Host is not rewritten", func(t *testing.T) {
			current, err := repos.events.FindByID(ctx, created.ID)
			require.NoError(t, err)
			current.HostID = uuid.New()

			updated, err := repos.events.UpdateIfUnchanged(ctx, current)
			require.NoError(t, err)
			assert.Equal(t, host, updated.HostID)
		})
	})
}

func TestEventRepository_UpdateIfUnchanged_ConcurrentWriters(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos repositories) {
		ctx := context.Background()
		created, err := repos.events.Create(ctx, newTestEvent(t, uuid.New(), "Taipei", model.CategoryOther, baseDate))
		require.NoError(t, err)

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				event := created.Clone()
				event.JoinRequests = append(event.JoinRequests, uuid.New())
				_, err := repos.events.UpdateIfUnchanged(ctx, event)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else if assert.ErrorIs(t, err, apperrors.ErrVersionConflict) {
					conflicts++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, writers-1, conflicts)
	})
}

func TestEventRepository_List(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos repositories) {
		ctx := context.Background()
		alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

		later := newTestEvent(t, alice, "New Taipei City", model.CategoryMusic, baseDate.Add(48*time.Hour), "Music", "Outdoor")
		earlier := newTestEvent(t, bob, "Taichung", model.CategorySports, baseDate, "running", "outdoor")
		withRequest := newTestEvent(t, alice, "Taipei", model.CategoryArts, baseDate.Add(24*time.Hour), "painting")
		require.NoError(t, withRequest.RequestToJoin(carol))

		for _, e := range []*model.Event{later, earlier, withRequest} {
			_, err := repos.events.Create(ctx, e)
			require.NoError(t, err)
		}

		ids := func(events []*model.Event) []uuid.UUID {
			out := make([]uuid.UUID, 0, len(events))
			for _, e := range events {
				out = append(out, e.ID)
			}
			return out
		}

		cases := []struct {
			name  string
			query model.EventQuery
			want  []uuid.UUID
		}{
			{"no filter sorted by date", model.EventQuery{}, []uuid.UUID{earlier.ID, withRequest.ID, later.ID}},
			{"city substring", model.EventQuery{EventFilter: model.EventFilter{City: "taipei"}}, []uuid.UUID{withRequest.ID, later.ID}},
			{"city with like wildcard", model.EventQuery{EventFilter: model.EventFilter{City: "%"}}, []uuid.UUID{}},
			{"category ignores case", model.EventQuery{EventFilter: model.EventFilter{Category: "sports"}}, []uuid.UUID{earlier.ID}},
			{"all tags", model.EventQuery{EventFilter: model.EventFilter{Tags: []string{"outdoor", "music"}}}, []uuid.UUID{later.ID}},
			{"any tag", model.EventQuery{EventFilter: model.EventFilter{Tags: []string{"OUTDOOR", "painting"}, TagMode: "any"}}, []uuid.UUID{earlier.ID, withRequest.ID, later.ID}},
			{"upper-case ANY means all tags", model.EventQuery{EventFilter: model.EventFilter{Tags: []string{"OUTDOOR", "painting"}, TagMode: "ANY"}}, []uuid.UUID{}},
			{"hosted by", model.EventQuery{HostID: &alice}, []uuid.UUID{withRequest.ID, later.ID}},
			{"participant", model.EventQuery{ParticipantID: &bob}, []uuid.UUID{earlier.ID}},
			{"with join requests", model.EventQuery{HostID: &alice, WithJoinRequests: true}, []uuid.UUID{withRequest.ID}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				events, err := repos.events.List(ctx, tc.query)
				require.NoError(t, err)
				assert.Equal(t, tc.want, ids(events))
			})
		}
	})
}

func TestEventRepository_Delete(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos repositories) {
		ctx := context.Background()
		created, err := repos.events.Create(ctx, newTestEvent(t, uuid.New(), "Taipei", model.CategoryHangout, baseDate))
		require.NoError(t, err)

		require.NoError(t, repos.events.Delete(ctx, created.ID))

		_, err = repos.events.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
		assert.ErrorIs(t, repos.events.Delete(ctx, created.ID), apperrors.ErrEventNotFound)
	})
}
