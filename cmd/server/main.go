package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-gin-meetup/config"
	"go-gin-meetup/internal/auth"
	"go-gin-meetup/internal/cache"
	"go-gin-meetup/internal/database"
	"go-gin-meetup/internal/handler"
	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/repository"
	"go-gin-meetup/internal/service"
	"go-gin-meetup/internal/worker"
	"go-gin-meetup/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const memoryQueueSize = 1024

// storage 依 STORAGE_DRIVER 建立的儲存與佇列
type storage struct {
	events        repository.EventRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	summaryCache  cache.UserSummaryCache
	queue         queue.NotificationQueue
	close         func()
}

func main() {
	log := logger.WithComponent("main")
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.String("driver", cfg.Server.StorageDriver), zap.Error(err))
	}
	defer store.close()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	directory := service.NewUserDirectory(store.users, store.summaryCache)
	notificationService := service.NewNotificationService(store.notifications)

	if err := worker.NewNotificationWorker(notificationService, store.queue).Start(ctx); err != nil {
		log.Fatal("Failed to start notification worker", zap.Error(err))
	}

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Tokens:        tokens,
		Events:        service.NewEventService(store.events, directory, store.queue),
		Auth:          service.NewAuthService(store.users, directory, tokens),
		Notifications: notificationService,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Server.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Server.StorageDriver == config.StorageDriverMemory {
		return &storage{
			events:        repository.NewMemoryEventRepository(),
			users:         repository.NewMemoryUserRepository(),
			notifications: repository.NewMemoryNotificationRepository(),
			queue:         queue.NewNotificationQueue(memoryQueueSize, nil),
			close:         func() {},
		}, nil
	}

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}

	hostname, _ := os.Hostname()
	notificationQueue, err := queue.NewRedisStreamNotificationQueue(rdb, hostname, nil)
	if err != nil {
		rdb.Close()
		pool.Close()
		return nil, err
	}

	return &storage{
		events:        repository.NewEventRepository(pool),
		users:         repository.NewUserRepository(pool),
		notifications: repository.NewNotificationRepository(pool),
		summaryCache:  cache.NewRedisUserSummaryCache(rdb, cache.DefaultSummaryTTL),
		queue:         notificationQueue,
		close: func() {
			rdb.Close()
			pool.Close()
		},
	}, nil
}
