package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestUseCase(t *testing.T) (*TaskUseCaseImpl, *memory.TaskRepository) {
	t.Helper()
	repo := memory.NewTaskRepository()
	uc := NewTaskUseCase(repo, nil, WithClock(func() time.Time { return fixedNow }))
	return uc, repo
}

func ptr[T any](v T) *T { return &v }

func day(offset int) *time.Time {
	d := fixedNow.AddDate(0, 0, offset)
	return &d
}

func TestCreateTask_DefaultsToPending(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()

	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{
		Title:       "Test Task",
		Description: ptr("Test Description"),
		DueDate:     day(1),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	stored, found, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Equal(t, "Test Task", stored.Title)
	assert.Equal(t, "Test Description", *stored.Description)
	assert.Equal(t, *day(1), *stored.DueDate)
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
}

func TestCreateTask_GeneratesUniqueIDs(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 20; i++ {
		id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "t"})
		require.NoError(t, err)
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
}

func TestCreateTask_PropagatesRepositoryFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	uc := NewTaskUseCase(&failingRepo{err: boom}, nil)

	_, err := uc.CreateTask(context.Background(), entity.CreateTaskInput{Title: "t"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindInfrastructure, KindOf(err))
}

func TestGetTask(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "Read me"})
	require.NoError(t, err)

	view, err := uc.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, "Read me", view.Title)
	assert.Equal(t, "Pending", view.Status)
	assert.Nil(t, view.Description)
	assert.Nil(t, view.DueDate)

	_, err = uc.GetTask(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateTask_ReplacesWholesale(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()

	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{
		Title:       "old",
		Description: ptr("old description"),
		DueDate:     day(3),
	})
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	uc.now = func() time.Time { return later }

	err = uc.UpdateTask(ctx, id, entity.UpdateTaskInput{
		Title:  "new",
		Status: "inprogress",
	})
	require.NoError(t, err)

	stored, _, _ := repo.GetByID(ctx, id)
	assert.Equal(t, "new", stored.Title)
	assert.Nil(t, stored.Description, "description must not be merged from the old record")
	assert.Nil(t, stored.DueDate, "due date must not be merged from the old record")
	assert.Equal(t, entity.StatusInProgress, stored.Status)
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Equal(t, later, stored.UpdatedAt)
}

func TestUpdateTask_StatusIsCaseInsensitive(t *testing.T) {
	for _, status := range []string{"Completed", "completed", "COMPLETED", " cOmPlEtEd "} {
		t.Run(status, func(t *testing.T) {
			uc, repo := newTestUseCase(t)
			ctx := context.Background()
			id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "t"})
			require.NoError(t, err)

			require.NoError(t, uc.UpdateTask(ctx, id, entity.UpdateTaskInput{Title: "t", Status: status}))
			stored, _, _ := repo.GetByID(ctx, id)
			assert.Equal(t, entity.StatusCompleted, stored.Status)
		})
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	_, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "untouched"})
	require.NoError(t, err)
	before, _ := repo.ListAll(ctx)

	// Lookup happens before status validation, so a bad status on a
	// missing id still reports not found.
	for _, status := range []string{"Completed", "bogus"} {
		err = uc.UpdateTask(ctx, uuid.New(), entity.UpdateTaskInput{Title: "x", Status: status})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	}

	after, _ := repo.ListAll(ctx)
	assert.Equal(t, before, after)
}

func TestUpdateTask_InvalidStatusLeavesRecordUnchanged(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "keep", DueDate: day(2)})
	require.NoError(t, err)
	before, _, _ := repo.GetByID(ctx, id)

	for _, status := range []string{"", "bogus", "Done", "In Progress", "1"} {
		err := uc.UpdateTask(ctx, id, entity.UpdateTaskInput{Title: "changed", Status: status})
		require.Error(t, err, status)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	}

	after, _, _ := repo.GetByID(ctx, id)
	assert.Equal(t, before, after)
}

func TestDeleteTask(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteTask(ctx, id))

	_, err = uc.GetTask(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = uc.DeleteTask(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTask_NotFound(t *testing.T) {
	uc, _ := newTestUseCase(t)
	err := uc.DeleteTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasks_DateRange(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	var inRange []uuid.UUID
	for i := 0; i < 4; i++ {
		id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "dated", DueDate: day(i)})
		require.NoError(t, err)
		if i <= 2 {
			inRange = append(inRange, id)
		}
	}
	_, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "undated"})
	require.NoError(t, err)

	views, err := uc.ListTasks(ctx, entity.TaskFilter{StartDate: day(0), EndDate: day(2)})
	require.NoError(t, err)
	assert.Equal(t, inRange, ids(views))
}

func TestListTasks_RangeBoundsCompareDatesOnly(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	lateOnStart := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	earlyOnEnd := time.Date(2026, 3, 12, 0, 1, 0, 0, time.UTC)
	a, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "a", DueDate: &lateOnStart})
	b, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "b", DueDate: &earlyOnEnd})

	start := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	end := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	views, err := uc.ListTasks(ctx, entity.TaskFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids(views))
}

func TestListTasks_UndatedExcludedByEitherBound(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	dated, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "dated", DueDate: day(1)})
	_, _ = uc.CreateTask(ctx, entity.CreateTaskInput{Title: "undated"})

	views, err := uc.ListTasks(ctx, entity.TaskFilter{StartDate: day(-10)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{dated}, ids(views))

	views, err = uc.ListTasks(ctx, entity.TaskFilter{EndDate: day(10)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{dated}, ids(views))

	views, err = uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListTasks_ExactDueDate(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	morning := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 11, 20, 0, 0, 0, time.UTC)
	a, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "a", DueDate: &morning})
	b, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "b", DueDate: &evening})
	_, _ = uc.CreateTask(ctx, entity.CreateTaskInput{Title: "c", DueDate: day(5)})
	_, _ = uc.CreateTask(ctx, entity.CreateTaskInput{Title: "d"})

	noon := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	views, err := uc.ListTasks(ctx, entity.TaskFilter{DueDate: &noon})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids(views))
}

func TestListTasks_StatusFilter(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	pending, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "p"})
	done, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "d"})
	require.NoError(t, uc.UpdateTask(ctx, done, entity.UpdateTaskInput{Title: "d", Status: "Completed"}))

	tests := []struct {
		name   string
		status string
		want   []uuid.UUID
	}{
		{"pending", "pending", []uuid.UUID{pending}},
		{"completed upper", "COMPLETED", []uuid.UUID{done}},
		{"in progress", "InProgress", []uuid.UUID{}},
		{"unknown status is ignored", "bogus", []uuid.UUID{pending, done}},
		{"empty", "", []uuid.UUID{pending, done}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := uc.ListTasks(ctx, entity.TaskFilter{Status: tt.status})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(views))
		})
	}
}

func TestListTasks_CombinedFiltersIntersect(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	pending, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "p", DueDate: day(1)})
	done, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "c", DueDate: day(1)})
	require.NoError(t, uc.UpdateTask(ctx, done, entity.UpdateTaskInput{Title: "c", DueDate: day(1), Status: "Completed"}))

	views, err := uc.ListTasks(ctx, entity.TaskFilter{Status: "Pending", StartDate: day(0), EndDate: day(2)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{pending}, ids(views))
}

func TestListTasks_RendersStatusNames(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	id, _ := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "t"})
	require.NoError(t, uc.UpdateTask(ctx, id, entity.UpdateTaskInput{Title: "t", Status: "inprogress"}))

	views, err := uc.ListTasks(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "InProgress", views[0].Status)
}

func TestListTasks_PropagatesRepositoryFailure(t *testing.T) {
	boom := errors.New("connection refused")
	uc := NewTaskUseCase(&failingRepo{err: boom}, nil)

	_, err := uc.ListTasks(context.Background(), entity.TaskFilter{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindInfrastructure, KindOf(err))
}

func TestTaskLifecycle(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "Write report", DueDate: day(1)})
	require.NoError(t, err)

	view, err := uc.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pending", view.Status)

	require.NoError(t, uc.UpdateTask(ctx, id, entity.UpdateTaskInput{
		Title:   "Write report v2",
		DueDate: day(1),
		Status:  "Completed",
	}))

	view, err = uc.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Write report v2", view.Title)
	assert.Equal(t, "Completed", view.Status)

	require.NoError(t, uc.DeleteTask(ctx, id))
	_, err = uc.GetTask(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTask_RecordRemovedConcurrently(t *testing.T) {
	repo := &vanishingRepo{TaskRepository: memory.NewTaskRepository()}
	uc := NewTaskUseCase(repo, nil)
	ctx := context.Background()
	id, err := uc.CreateTask(ctx, entity.CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	err = uc.UpdateTask(ctx, id, entity.UpdateTaskInput{Title: "t", Status: "Pending"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrTaskNotFound))
	assert.Equal(t, KindInvalidArgument, KindOf(ErrInvalidStatus))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("boom")))
	assert.Equal(t, KindInfrastructure, KindOf(context.DeadlineExceeded))
	assert.Equal(t, "not_found", KindNotFound.String())
}

func ids(views []entity.TaskView) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

type failingRepo struct {
	err error
}

func (r *failingRepo) ListAll(context.Context) ([]entity.Task, error) { return nil, r.err }
func (r *failingRepo) GetByID(context.Context, uuid.UUID) (entity.Task, bool, error) {
	return entity.Task{}, false, r.err
}
func (r *failingRepo) Insert(context.Context, entity.Task) error  { return r.err }
func (r *failingRepo) Replace(context.Context, entity.Task) error { return r.err }
func (r *failingRepo) Remove(context.Context, uuid.UUID) error    { return r.err }

// vanishingRepo drops the record between the lookup and the replace.
type vanishingRepo struct {
	*memory.TaskRepository
}

func (r *vanishingRepo) Replace(ctx context.Context, task entity.Task) error {
	_ = r.TaskRepository.Remove(ctx, task.ID)
	return r.TaskRepository.Replace(ctx, task)
}
