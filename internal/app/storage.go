package app

import (
	"context"
	"fmt"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/config"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/memory"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/postgres"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/sqlite"
	"github.com/KarpovAlexandrGo/task-tracker/internal/usecase"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newTaskRepository builds the repository selected by storage.driver. The
// returned func releases its resources.
func newTaskRepository(ctx context.Context, cfg config.Config) (usecase.TaskRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Log.Warn("Using in-memory storage, tasks are lost on restart")
		return memory.NewTaskRepository(), func() {}, nil

	case config.DriverPostgres:
		dbPool, err := InitDB(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.MigrateOnStart {
			if err := postgres.Migrate(ctx, dbPool, postgres.MigrateUp); err != nil {
				dbPool.Close()
				return nil, nil, err
			}
		}
		return postgres.NewTaskRepository(dbPool), dbPool.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Log.WithField("path", cfg.SQLite.Path).Info("Opened sqlite database")
		closeDB := func() {
			if err := sqlite.Close(db); err != nil {
				logger.Log.WithError(err).Warn("Failed to close sqlite database")
			}
		}
		return sqlite.NewTaskRepository(db), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// InitDB opens and pings a pgx pool.
func InitDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbPool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Connected to database successfully")
	return dbPool, nil
}
