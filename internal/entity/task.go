package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = [...]string{
	StatusPending:    "Pending",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
}

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// ParseStatus matches s against the known statuses, ignoring case.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses() {
		if strings.EqualFold(s, statusNames[st]) {
			return st, true
		}
	}
	return 0, false
}

func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusCompleted
}

// String returns the canonical name of the status.
func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	st, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("invalid status %q", string(text))
	}
	*s = st
	return nil
}

// Task is the persisted task record.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// View renders the record in its outward read shape.
func (t Task) View() TaskView {
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TaskView is what callers read. Status is the canonical status name.
type TaskView struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      string     `json:"status" example:"Pending"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTaskInput carries the client-supplied fields of a new task.
type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required,notblank,max=100" example:"Write report"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	DueDate     *time.Time `json:"dueDate,omitempty" validate:"omitempty,future"`
}

// UpdateTaskInput replaces every mutable field of a task.
type UpdateTaskInput struct {
	Title       string     `json:"title" validate:"required,notblank,max=100" example:"Write report v2"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      string     `json:"status" example:"Completed"`
}

// TaskFilter narrows a task listing. Zero-valued fields are inactive.
type TaskFilter struct {
	Status    string
	DueDate   *time.Time
	StartDate *time.Time
	EndDate   *time.Time
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
