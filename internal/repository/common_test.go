package repository_test

import (
	"context"
	"log"
	"os"
	"testing"

	"go-gin-meetup/internal/repository"
	"go-gin-meetup/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testDB 為 nil 時 postgres 版本的測試會 skip
var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, cleanup, err := testutil.SetupDatabase()
	if err != nil {
		log.Printf("Postgres unavailable, postgres repository tests will be skipped: %v", err)
	} else {
		testDB = pool
		log.Println("Test database connected successfully")
	}

	code := m.Run()
	if cleanup != nil {
		cleanup()
		log.Println("Test database closed")
	}

	os.Exit(code)
}

type repositories struct {
	events        repository.EventRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
}

// eachBackend 對記憶體與 postgres 兩種實作跑同一組測試
func eachBackend(t *testing.T, fn func(t *testing.T, repos repositories)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, repositories{
			events:        repository.NewMemoryEventRepository(),
			users:         repository.NewMemoryUserRepository(),
			notifications: repository.NewMemoryNotificationRepository(),
		})
	})

	t.Run("postgres", func(t *testing.T) {
		if testDB == nil {
			t.Skip("postgres test database is not reachable")
		}
		if err := testutil.TruncateAll(context.Background(), testDB); err != nil {
			t.Fatalf("Failed to truncate tables: %v", err)
		}
		fn(t, repositories{
			events:        repository.NewEventRepository(testDB),
			users:         repository.NewUserRepository(testDB),
			notifications: repository.NewNotificationRepository(testDB),
		})
	})
}
