package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/auth"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/services"
)

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	SupertaskID *int64     `json:"supertask_id"`
}

// UpdateTaskRequest is the request body for patching a task. Absent
// fields are left unchanged; the clear flags reset the corresponding
// nullable field.
type UpdateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	DueAt          *time.Time `json:"due_at"`
	ClearDueAt     bool       `json:"clear_due_at"`
	IsDone         *bool      `json:"is_done"`
	SupertaskID    *int64     `json:"supertask_id"`
	ClearSupertask bool       `json:"clear_supertask"`
}

// RemoveDoneResponse reports how many tasks a done-sweep removed.
type RemoveDoneResponse struct {
	Removed int64 `json:"removed"`
}

// TasksHandler handles task endpoints. All routes are project-scoped.
type TasksHandler struct {
	service services.TaskService
	logger  *zap.Logger
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(service services.TaskService, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{service: service, logger: logger}
}

// RegisterRoutes registers the tasks handler's routes on the given mux.
func (h *TasksHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, projectMiddleware Middleware) {
	// POST /api/projects/{pid}/tasks - create a task
	mux.HandleFunc("POST /api/projects/{pid}/tasks", authMiddleware.RequireAuth(projectMiddleware(h.Create)))

	// GET /api/projects/{pid}/tasks - list the project's task tree
	mux.HandleFunc("GET /api/projects/{pid}/tasks", authMiddleware.RequireAuth(projectMiddleware(h.List)))

	// DELETE /api/projects/{pid}/tasks/done - remove all done tasks
	// (the literal segment takes precedence over {tid})
	mux.HandleFunc("DELETE /api/projects/{pid}/tasks/done", authMiddleware.RequireAuth(projectMiddleware(h.RemoveDone)))

	// GET /api/projects/{pid}/tasks/{tid} - get a task with subtasks
	mux.HandleFunc("GET /api/projects/{pid}/tasks/{tid}", authMiddleware.RequireAuth(projectMiddleware(h.Get)))

	// PATCH /api/projects/{pid}/tasks/{tid} - update a task
	mux.HandleFunc("PATCH /api/projects/{pid}/tasks/{tid}", authMiddleware.RequireAuth(projectMiddleware(h.Update)))

	// DELETE /api/projects/{pid}/tasks/{tid} - delete a task and subtasks
	mux.HandleFunc("DELETE /api/projects/{pid}/tasks/{tid}", authMiddleware.RequireAuth(projectMiddleware(h.Delete)))
}

// ids pulls the actor, project id and optional task id out of the request.
func (h *TasksHandler) ids(w http.ResponseWriter, r *http.Request, withTask bool) (actorID, projectID, taskID int64, ok bool) {
	actorID, authed := auth.GetUserID(r.Context())
	if !authed {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, 0, 0, false
	}

	projectID, err := pathID(r, "pid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, 0, 0, false
	}

	if withTask {
		taskID, err = pathID(r, "tid")
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_task_id", "Invalid task id"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return 0, 0, 0, false
		}
	}

	return actorID, projectID, taskID, true
}

// Create handles POST /api/projects/{pid}/tasks
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, _, ok := h.ids(w, r, false)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	task, err := h.service.Create(r.Context(), actorID, projectID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		SupertaskID: req.SupertaskID,
	})
	if err != nil {
		serviceError(w, h.logger, err, "Failed to create task")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, task); err != nil {
		h.logger.Error("Failed to encode task response", zap.Error(err))
	}
}

// List handles GET /api/projects/{pid}/tasks
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, _, ok := h.ids(w, r, false)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), actorID, projectID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	if err := WriteJSON(w, http.StatusOK, tasks); err != nil {
		h.logger.Error("Failed to encode tasks response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{pid}/tasks/{tid}
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, taskID, ok := h.ids(w, r, true)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), actorID, projectID, taskID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to get task")
		return
	}

	if err := WriteJSON(w, http.StatusOK, task); err != nil {
		h.logger.Error("Failed to encode task response", zap.Error(err))
	}
}

// Update handles PATCH /api/projects/{pid}/tasks/{tid}
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, taskID, ok := h.ids(w, r, true)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	task, err := h.service.Update(r.Context(), actorID, projectID, taskID, services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		DueAt:          req.DueAt,
		ClearDueAt:     req.ClearDueAt,
		IsDone:         req.IsDone,
		SupertaskID:    req.SupertaskID,
		ClearSupertask: req.ClearSupertask,
	})
	if err != nil {
		serviceError(w, h.logger, err, "Failed to update task")
		return
	}

	if err := WriteJSON(w, http.StatusOK, task); err != nil {
		h.logger.Error("Failed to encode task response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{pid}/tasks/{tid}
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, taskID, ok := h.ids(w, r, true)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actorID, projectID, taskID); err != nil {
		serviceError(w, h.logger, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveDone handles DELETE /api/projects/{pid}/tasks/done
func (h *TasksHandler) RemoveDone(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, _, ok := h.ids(w, r, false)
	if !ok {
		return
	}

	removed, err := h.service.RemoveDone(r.Context(), actorID, projectID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to remove done tasks")
		return
	}

	if err := WriteJSON(w, http.StatusOK, RemoveDoneResponse{Removed: removed}); err != nil {
		h.logger.Error("Failed to encode remove-done response", zap.Error(err))
	}
}
