// Package sqlite stores tasks in an embedded SQLite database through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// taskModel is the gorm mapping of entity.Task.
type taskModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:100;not null"`
	Description *string
	DueDate     *time.Time `gorm:"index"`
	Status      string     `gorm:"size:16;not null"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false"`
}

func (taskModel) TableName() string {
	return "tasks"
}

type TaskRepository struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&taskModel{}); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	return sqlDB.Close()
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]entity.Task, error) {
	var models []taskModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]entity.Task, 0, len(models))
	for _, m := range models {
		task, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (entity.Task, bool, error) {
	var m taskModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Task{}, false, nil
		}
		return entity.Task{}, false, fmt.Errorf("failed to get task: %w", err)
	}

	task, err := m.toEntity()
	if err != nil {
		return entity.Task{}, false, err
	}
	return task, true, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task entity.Task) error {
	m := fromEntity(task)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&taskModel{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("task %s: %w", task.ID, entity.ErrConflict)
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) Replace(ctx context.Context, task entity.Task) error {
	m := fromEntity(task)
	result := r.db.WithContext(ctx).
		Model(&taskModel{}).
		Where("id = ?", m.ID).
		Select("title", "description", "due_date", "status", "updated_at").
		Updates(&m)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", task.ID, entity.ErrNotFound)
	}
	return nil
}

// Remove deletes the row; a missing id is not an error.
func (r *TaskRepository) Remove(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&taskModel{}, "id = ?", id.String()).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func fromEntity(t entity.Task) taskModel {
	return taskModel{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m taskModel) toEntity() (entity.Task, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return entity.Task{}, fmt.Errorf("invalid task id %q stored: %w", m.ID, err)
	}
	status, ok := entity.ParseStatus(m.Status)
	if !ok {
		return entity.Task{}, fmt.Errorf("unknown status %q stored for task %s", m.Status, m.ID)
	}

	task := entity.Task{
		ID:          id,
		Title:       m.Title,
		Description: m.Description,
		Status:      status,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		task.DueDate = &due
	}
	return task, nil
}
