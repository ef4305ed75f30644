package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/KarpovAlexandrGo/task-tracker/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const tasksKey = "tasks:all"

// CacheRepository keeps the full task listing in a single Redis key.
type CacheRepository struct {
	client *redis.Client
	prefix string
}

func NewCacheRepository(addr, password string, db int) *CacheRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return NewCacheRepositoryFromClient(client, "task-service:")
}

// NewCacheRepositoryFromClient wraps an existing client. Keys are prefixed
// with prefix.
func NewCacheRepositoryFromClient(client *redis.Client, prefix string) *CacheRepository {
	return &CacheRepository{client: client, prefix: prefix}
}

func (c *CacheRepository) key() string {
	return c.prefix + tasksKey
}

func (c *CacheRepository) SetTasks(ctx context.Context, tasks []entity.Task, ttl time.Duration) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return c.client.Set(ctx, c.key(), data, ttl).Err()
}

// GetTasks returns the cached listing. found is false when nothing is cached.
func (c *CacheRepository) GetTasks(ctx context.Context) ([]entity.Task, bool, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	} else if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, err
	}

	var tasks []entity.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("failed to decode cached tasks: %w", err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return tasks, true, nil
}

func (c *CacheRepository) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key()).Err()
}

// Ping checks the connection to Redis.
func (c *CacheRepository) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheRepository) Close() error {
	return c.client.Close()
}
