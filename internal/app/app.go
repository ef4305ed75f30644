package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/config"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/redis"
	"github.com/KarpovAlexandrGo/task-tracker/internal/usecase"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/sirupsen/logrus"
)

type App struct {
	Server      *http.Server
	cfg         config.Config
	wg          sync.WaitGroup
	closers     []func()
	taskUseCase usecase.TaskUseCase
}

func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}

	taskRepo, closeRepo, err := newTaskRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	var cacheRepo usecase.CacheRepository
	if cfg.CacheEnabled() {
		cache, err := initCache(ctx, cfg.Redis)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, running without task cache")
		} else {
			cacheRepo = cache
			a.closers = append(a.closers, func() { _ = cache.Close() })
		}
	}

	a.taskUseCase = usecase.NewTaskUseCase(taskRepo, cacheRepo, usecase.WithCacheTTL(cfg.Cache.TTL))

	a.Server = &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           setupRouter(cfg, a.taskUseCase),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Log.WithFields(logrus.Fields{
		"storage": cfg.Storage.Driver,
		"cache":   cacheRepo != nil,
	}).Info("Application initialized")
	return a, nil
}

func initCache(ctx context.Context, cfg config.RedisConfig) (*redis.CacheRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cache := redis.NewCacheRepository(cfg.Addr, cfg.Password, cfg.DB)
	if err := cache.Ping(ctx); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("addr", cfg.Addr).Info("Connected to Redis successfully")
	return cache, nil
}

// Close releases storage and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves HTTP until SIGINT/SIGTERM or ctx is cancelled, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		select {
		case <-ctx.Done():
		case <-serverCtx.Done():
			return
		}
		logger.Log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Log.Error("Graceful shutdown timed out")
			}
			logger.Log.WithError(err).Error("HTTP server shutdown failed")
		}
	}()

	logger.Log.Info("Starting server on " + a.Server.Addr)
	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		serverStopCtx()
		a.wg.Wait()
		return fmt.Errorf("server failed: %w", err)
	}

	a.wg.Wait()
	logger.Log.Info("Server stopped gracefully")
	return nil
}
