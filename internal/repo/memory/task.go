// Package memory is an in-process task repository. It backs the default
// storage driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/google/uuid"
)

type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]entity.Task
	order []uuid.UUID
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: make(map[uuid.UUID]entity.Task),
	}
}

// ListAll returns a snapshot of every task in insertion order.
func (r *TaskRepository) ListAll(_ context.Context) ([]entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]entity.Task, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.tasks[id])
	}
	return result, nil
}

func (r *TaskRepository) GetByID(_ context.Context, id uuid.UUID) (entity.Task, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, found := r.tasks[id]
	return task, found, nil
}

func (r *TaskRepository) Insert(_ context.Context, task entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.tasks[task.ID]; found {
		return fmt.Errorf("insert task %s: %w", task.ID, entity.ErrConflict)
	}
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)
	return nil
}

func (r *TaskRepository) Replace(_ context.Context, task entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.tasks[task.ID]; !found {
		return fmt.Errorf("replace task %s: %w", task.ID, entity.ErrNotFound)
	}
	r.tasks[task.ID] = task
	return nil
}

// Remove deletes the task with id. Removing a missing id is not an error.
func (r *TaskRepository) Remove(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.tasks[id]; !found {
		return nil
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
