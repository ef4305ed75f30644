package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	queryTimeout    = 5 * time.Second
	uniqueViolation = "23505"
	taskColumns     = "id, title, description, due_date, status, created_at, updated_at"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *logrus.Logger
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger.Log,
	}
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]entity.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.WithField("method", "ListAll").WithError(err).Error("Failed to list tasks")
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logger.WithField("method", "ListAll").WithError(err).Error("Failed to scan task row")
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		r.logger.WithField("method", "ListAll").WithError(err).Error("Error after scanning rows")
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (entity.Task, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Task{}, false, nil
		}
		r.logger.WithFields(logrus.Fields{
			"method":  "GetByID",
			"task_id": id.String(),
		}).WithError(err).Error("Failed to get task")
		return entity.Task{}, false, fmt.Errorf("failed to get task: %w", err)
	}

	return task, true, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task entity.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Status.String(),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("task %s: %w", task.ID, entity.ErrConflict)
		}
		r.logger.WithFields(logrus.Fields{
			"method":  "Insert",
			"task_id": task.ID.String(),
			"title":   task.Title,
		}).WithError(err).Error("Failed to create task")
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

func (r *TaskRepository) Replace(ctx context.Context, task entity.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE tasks
		SET title = $2, description = $3, due_date = $4, status = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Status.String(),
		task.UpdatedAt,
	)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"method":  "Replace",
			"task_id": task.ID.String(),
		}).WithError(err).Error("Failed to update task")
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", task.ID, entity.ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		r.logger.WithFields(logrus.Fields{
			"method":  "Remove",
			"task_id": id.String(),
		}).WithError(err).Error("Failed to delete task")
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (entity.Task, error) {
	var (
		task   entity.Task
		status string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return entity.Task{}, err
	}

	st, ok := entity.ParseStatus(status)
	if !ok {
		return entity.Task{}, fmt.Errorf("unknown status %q stored for task %s", status, task.ID)
	}
	task.Status = st
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		task.DueDate = &due
	}
	return task, nil
}
