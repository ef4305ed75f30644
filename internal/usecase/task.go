package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheTTL = 5 * time.Minute
	// loadTimeout bounds a shared listing load, which outlives the request
	// that started it.
	loadTimeout = 10 * time.Second
	loadKey     = "tasks"
)

type TaskUseCase interface {
	ListTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.TaskView, error)
	GetTask(ctx context.Context, id uuid.UUID) (entity.TaskView, error)
	CreateTask(ctx context.Context, input entity.CreateTaskInput) (uuid.UUID, error)
	UpdateTask(ctx context.Context, id uuid.UUID, input entity.UpdateTaskInput) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type TaskUseCaseImpl struct {
	taskRepo  TaskRepository
	cacheRepo CacheRepository
	cacheTTL  time.Duration
	loads     singleflight.Group
	now       func() time.Time

	// cacheMu orders cache fills against invalidations. writes counts
	// invalidations so a load can tell its snapshot went stale.
	cacheMu sync.Mutex
	writes  uint64
	newID     func() uuid.UUID
}

type Option func(*TaskUseCaseImpl)

// WithCacheTTL sets how long a listing stays in the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *TaskUseCaseImpl) {
		if ttl > 0 {
			uc.cacheTTL = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *TaskUseCaseImpl) { uc.now = now }
}

// WithIDGenerator replaces uuid.New.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(uc *TaskUseCaseImpl) { uc.newID = newID }
}

// NewTaskUseCase builds the task service on top of taskRepo. cacheRepo may be
// nil, in which case every listing goes to the repository.
func NewTaskUseCase(taskRepo TaskRepository, cacheRepo CacheRepository, opts ...Option) *TaskUseCaseImpl {
	uc := &TaskUseCaseImpl{
		taskRepo:  taskRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  defaultCacheTTL,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *TaskUseCaseImpl) ListTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.TaskView, error) {
	logger.Log.WithFields(logrus.Fields{
		"status":     filter.Status,
		"due_date":   filter.DueDate,
		"start_date": filter.StartDate,
		"end_date":   filter.EndDate,
	}).Info("Listing tasks")

	tasks, err := uc.loadTasks(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list tasks from repository")
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	matched := filterTasks(tasks, filter)
	views := make([]entity.TaskView, 0, len(matched))
	for _, t := range matched {
		views = append(views, t.View())
	}

	logger.Log.WithField("count", len(views)).Info("Tasks listed successfully")
	return views, nil
}

// loadTasks returns every record, from the cache when it holds a listing.
// Concurrent misses share a single repository read. The shared read is
// detached from ctx, so one caller going away does not fail the others.
func (uc *TaskUseCaseImpl) loadTasks(ctx context.Context) ([]entity.Task, error) {
	if uc.cacheRepo != nil {
		tasks, found, err := uc.cacheRepo.GetTasks(ctx)
		switch {
		case err != nil:
			logger.Log.WithError(err).Warn("Failed to read tasks from cache")
		case found:
			logger.Log.Debug("Tasks retrieved from cache")
			return tasks, nil
		default:
			logger.Log.Debug("Cache miss, retrieving from repository")
		}
	}

	ch := uc.loads.DoChan(loadKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		uc.cacheMu.Lock()
		gen := uc.writes
		uc.cacheMu.Unlock()

		tasks, err := uc.taskRepo.ListAll(loadCtx)
		if err != nil {
			return nil, err
		}
		uc.fillCache(loadCtx, tasks, gen)
		return tasks, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]entity.Task), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fillCache stores tasks unless a write was invalidated since gen was read.
func (uc *TaskUseCaseImpl) fillCache(ctx context.Context, tasks []entity.Task, gen uint64) {
	if uc.cacheRepo == nil {
		return
	}
	uc.cacheMu.Lock()
	defer uc.cacheMu.Unlock()

	if uc.writes != gen {
		logger.Log.Debug("Listing changed during load, not caching it")
		return
	}
	if err := uc.cacheRepo.SetTasks(ctx, tasks, uc.cacheTTL); err != nil {
		logger.Log.WithError(err).Warn("Failed to set tasks in cache")
	}
}

func (uc *TaskUseCaseImpl) GetTask(ctx context.Context, id uuid.UUID) (entity.TaskView, error) {
	logger.Log.WithField("task_id", id.String()).Info("Getting task")

	task, err := uc.lookup(ctx, id)
	if err != nil {
		return entity.TaskView{}, err
	}
	return task.View(), nil
}

func (uc *TaskUseCaseImpl) CreateTask(ctx context.Context, input entity.CreateTaskInput) (uuid.UUID, error) {
	logger.Log.WithField("title", input.Title).Info("Starting task creation")

	now := uc.timestamp()
	task := entity.Task{
		ID:          uc.newID(),
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      entity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.taskRepo.Insert(ctx, task); err != nil {
		logger.Log.WithError(err).WithField("task_id", task.ID.String()).Error("Failed to create task")
		return uuid.Nil, fmt.Errorf("create task: %w", err)
	}
	uc.invalidate(ctx)

	logger.Log.WithField("task_id", task.ID.String()).Info("Task created successfully")
	return task.ID, nil
}

func (uc *TaskUseCaseImpl) UpdateTask(ctx context.Context, id uuid.UUID, input entity.UpdateTaskInput) error {
	log := logger.Log.WithField("task_id", id.String())
	log.Info("Starting task update")

	task, err := uc.lookup(ctx, id)
	if err != nil {
		return err
	}

	status, ok := entity.ParseStatus(input.Status)
	if !ok {
		log.WithField("status", input.Status).Warn("Rejected task update with invalid status")
		return fmt.Errorf("%w %q", ErrInvalidStatus, input.Status)
	}

	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = input.DueDate
	task.Status = status
	task.UpdatedAt = uc.timestamp()

	if err := uc.taskRepo.Replace(ctx, task); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			log.Warn("Task disappeared before update")
			return ErrTaskNotFound
		}
		log.WithError(err).Error("Failed to update task in repository")
		return fmt.Errorf("update task: %w", err)
	}
	uc.invalidate(ctx)

	log.WithField("status", status.String()).Info("Task updated successfully")
	return nil
}

func (uc *TaskUseCaseImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.Log.WithField("task_id", id.String())
	log.Info("Deleting task")

	if _, err := uc.lookup(ctx, id); err != nil {
		return err
	}

	if err := uc.taskRepo.Remove(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete task from repository")
		return fmt.Errorf("delete task: %w", err)
	}
	uc.invalidate(ctx)

	log.Info("Task deleted successfully")
	return nil
}

// lookup fetches a record and turns absence into ErrTaskNotFound.
func (uc *TaskUseCaseImpl) lookup(ctx context.Context, id uuid.UUID) (entity.Task, error) {
	task, found, err := uc.taskRepo.GetByID(ctx, id)
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.String()).Error("Failed to get task from repository")
		return entity.Task{}, fmt.Errorf("get task: %w", err)
	}
	if !found {
		logger.Log.WithField("task_id", id.String()).Warn("Task not found")
		return entity.Task{}, ErrTaskNotFound
	}
	return task, nil
}

// invalidate drops the cached listing after a write. Loads already in
// flight are forgotten so later callers read the new state.
func (uc *TaskUseCaseImpl) invalidate(ctx context.Context) {
	uc.loads.Forget(loadKey)
	if uc.cacheRepo == nil {
		return
	}
	uc.cacheMu.Lock()
	defer uc.cacheMu.Unlock()

	uc.writes++
	if err := uc.cacheRepo.Invalidate(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to invalidate cache")
	}
}

func (uc *TaskUseCaseImpl) timestamp() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

// TaskRepository persists task records. GetByID reports a missing record
// with found == false rather than an error. Insert fails with
// entity.ErrConflict on a duplicate id, Replace with entity.ErrNotFound on a
// missing one, and Remove of a missing id is a no-op.
type TaskRepository interface {
	ListAll(ctx context.Context) ([]entity.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (task entity.Task, found bool, err error)
	Insert(ctx context.Context, task entity.Task) error
	Replace(ctx context.Context, task entity.Task) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type CacheRepository interface {
	SetTasks(ctx context.Context, tasks []entity.Task, ttl time.Duration) error
	GetTasks(ctx context.Context) (tasks []entity.Task, found bool, err error)
	Invalidate(ctx context.Context) error
}
