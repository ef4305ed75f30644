package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
	"github.com/KarpovAlexandrGo/task-tracker/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	taskUseCase usecase.TaskUseCase
	validate    *validator.Validate
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(taskUseCase usecase.TaskUseCase) *TaskHandler {
	return &TaskHandler{
		taskUseCase: taskUseCase,
		validate:    newValidator(func() time.Time { return now() }),
	}
}

// RegisterRoutes mounts the task routes on r.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTask)
			r.Put("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
		})
	})
}

// ListTasks returns tasks matching the optional filters.
// @Summary      List tasks
// @Description  Returns every task matching all supplied filters. An unknown status is ignored; startDate and endDate exclude tasks without a due date.
// @Tags         tasks
// @Produce      json
// @Param        status     query    string false "Pending, InProgress or Completed (case-insensitive)"
// @Param        dueDate    query    string false "Exact due date (YYYY-MM-DD or RFC3339)"
// @Param        startDate  query    string false "Earliest due date, inclusive"
// @Param        endDate    query    string false "Latest due date, inclusive"
// @Success      200  {array}   entity.TaskView
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	tasks, err := h.taskUseCase.ListTasks(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tasks)
}

// GetTask returns one task.
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string true "Task ID"
// @Success      200  {object}  entity.TaskView
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	task, err := h.taskUseCase.GetTask(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, task)
}

// CreateTask creates a task in the Pending status.
// @Summary      Create a task
// @Description  Creates a task and returns its location. The status is always Pending.
// @Tags         tasks
// @Accept       json
// @Param        task body  entity.CreateTaskInput true "Task data"
// @Success      201
// @Header       201  {string}  Location "URL of the new task"
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input entity.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(input); err != nil {
		respondError(w, r, validationError(err))
		return
	}

	id, err := h.taskUseCase.CreateTask(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Location", taskLocation(r, id))
	w.WriteHeader(http.StatusCreated)
}

// UpdateTask replaces every mutable field of a task.
// @Summary      Update a task
// @Description  Replaces title, description, due date and status. Fields left out are cleared.
// @Tags         tasks
// @Accept       json
// @Param        id   path  string                 true "Task ID"
// @Param        task body  entity.UpdateTaskInput true "New task data"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var input entity.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, r, badRequest("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(input); err != nil {
		respondError(w, r, validationError(err))
		return
	}

	if err := h.taskUseCase.UpdateTask(r.Context(), id, input); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask removes a task.
// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  string true "Task ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.taskUseCase.DeleteTask(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func taskID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("invalid task ID format: %q", raw)
	}
	return id, nil
}

func taskLocation(r *http.Request, id uuid.UUID) string {
	path := r.URL.Path
	if len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path + "/" + id.String()
}
