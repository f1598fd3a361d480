package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"go-gin-meetup/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func migrations() (fs.FS, error) {
	return fs.Sub(migrationFS, "migrations")
}

// Migrate 以 goose 套用尚未執行的 migration（版本記錄在 goose_db_version）
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	fsys, err := migrations()
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	// 關閉此 *sql.DB 不會關閉 pool
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log := logger.WithComponent("migrate")
	for _, r := range results {
		log.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("path", r.Source.Path),
			zap.Duration("duration", r.Duration),
		)
	}
	return nil
}
