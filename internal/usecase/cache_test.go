package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu          sync.Mutex
	tasks       []entity.Task
	found       bool
	ttl         time.Duration
	getErr      error
	sets        int
	invalidated int
}

func (c *fakeCache) SetTasks(_ context.Context, tasks []entity.Task, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks, c.found, c.ttl = tasks, true, ttl
	c.sets++
	return nil
}

func (c *fakeCache) GetTasks(context.Context) ([]entity.Task, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.tasks, c.found, nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks, c.found = nil, false
	c.invalidated++
	return nil
}

type countingRepo struct {
	*memory.TaskRepository
	mu    sync.Mutex
	lists int
}

func (r *countingRepo) ListAll(ctx context.Context) ([]entity.Task, error) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()
	return r.TaskRepository.ListAll(ctx)
}

func TestListTasks_UsesCache(t *testing.T) {
	repo := &countingRepo{TaskRepository: memory.NewTaskRepository()}
	cache := &fakeCache{}
	uc := NewTaskUseCase(repo, cache, WithCacheTTL(time.Minute))
	ctx := context.Background()

	_, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "cached"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	for i := 0; i < 3; i++ {
		views, err := uc.ListTasks(ctx, entity.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, views, 1)
	}
	assert.Equal(t, 1, repo.lists)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Minute, cache.ttl)
}

func TestWritesInvalidateCache(t *testing.T) {
	repo := memory.NewTaskRepository()
	cache := &fakeCache{}
	uc := NewTaskUseCase(repo, cache)
	ctx := context.Background()

	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "v1"})
	require.NoError(t, err)
	_, err = uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)

	require.NoError(t, uc.UpdateTask(ctx, id, entity.UpdateTaskInput{Title: "v2", Status: "Completed"}))
	views, err := uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "v2", views[0].Title)

	require.NoError(t, uc.DeleteTask(ctx, id))
	views, err = uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Equal(t, 3, cache.invalidated)
}

func TestFailedUpdateKeepsCache(t *testing.T) {
	repo := memory.NewTaskRepository()
	cache := &fakeCache{}
	uc := NewTaskUseCase(repo, cache)
	ctx := context.Background()

	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "v1"})
	require.NoError(t, err)

	require.Error(t, uc.UpdateTask(ctx, id, entity.UpdateTaskInput{Title: "v2", Status: "nope"}))
	assert.Equal(t, 1, cache.invalidated)
}

func TestListTasks_FallsBackWhenCacheFails(t *testing.T) {
	repo := &countingRepo{TaskRepository: memory.NewTaskRepository()}
	cache := &fakeCache{getErr: errors.New("redis down")}
	uc := NewTaskUseCase(repo, cache)
	ctx := context.Background()

	_, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	views, err := uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, 1, repo.lists)
}

// gatedRepo takes its ListAll snapshot, then holds it until release is
// closed or ctx ends.
type gatedRepo struct {
	*memory.TaskRepository
	entered chan struct{}
	release chan struct{}
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{
		TaskRepository: memory.NewTaskRepository(),
		entered:        make(chan struct{}, 1),
		release:        make(chan struct{}),
	}
}

func (r *gatedRepo) ListAll(ctx context.Context) ([]entity.Task, error) {
	tasks, err := r.TaskRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	select {
	case r.entered <- struct{}{}:
	default:
	}
	select {
	case <-r.release:
		return tasks, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestListTasks_SharedLoadSurvivesCallerCancel(t *testing.T) {
	repo := newGatedRepo()
	uc := NewTaskUseCase(repo, nil)
	_, err := uc.CreateTask(context.Background(), entity.CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := uc.ListTasks(ctxA, entity.TaskFilter{})
		errA <- err
	}()
	<-repo.entered

	type result struct {
		views []entity.TaskView
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		views, err := uc.ListTasks(context.Background(), entity.TaskFilter{})
		resB <- result{views, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(repo.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Len(t, b.views, 1)
}

func TestListTasks_StaleLoadDoesNotRefillCache(t *testing.T) {
	repo := newGatedRepo()
	cache := &fakeCache{}
	uc := NewTaskUseCase(repo, cache)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		views, err := uc.ListTasks(ctx, entity.TaskFilter{})
		assert.NoError(t, err)
		assert.Empty(t, views)
	}()
	<-repo.entered

	_, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "new"})
	require.NoError(t, err)
	close(repo.release)
	<-done

	cache.mu.Lock()
	assert.Equal(t, 0, cache.sets)
	cache.mu.Unlock()

	views, err := uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, 1, cache.sets)
}
