package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/auth"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/services"
)

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Title              string              `json:"title"`
	DefaultAccessLevel *models.AccessLevel `json:"default_access_level"`
}

// UpdateProjectRequest is the request body for patching a project.
// Absent fields are left unchanged.
type UpdateProjectRequest struct {
	Title              *string             `json:"title"`
	DefaultAccessLevel *models.AccessLevel `json:"default_access_level"`
}

// ProjectsHandler handles project endpoints.
type ProjectsHandler struct {
	service services.ProjectService
	logger  *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(service services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{service: service, logger: logger}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
// Collection routes run on a global scope; routes addressing one project
// run on that project's tenant scope.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, globalMiddleware, projectMiddleware Middleware) {
	// POST /api/projects - create a project
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(globalMiddleware(h.Create)))

	// GET /api/projects - list the caller's projects
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(globalMiddleware(h.List)))

	// GET /api/projects/{pid} - get a project with tasks and team
	mux.HandleFunc("GET /api/projects/{pid}", authMiddleware.RequireAuth(projectMiddleware(h.Get)))

	// PATCH /api/projects/{pid} - update a project
	mux.HandleFunc("PATCH /api/projects/{pid}", authMiddleware.RequireAuth(projectMiddleware(h.Update)))

	// DELETE /api/projects/{pid} - delete a project
	mux.HandleFunc("DELETE /api/projects/{pid}", authMiddleware.RequireAuth(projectMiddleware(h.Delete)))
}

// Create handles POST /api/projects
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.service.Create(r.Context(), actorID, services.CreateProjectInput{
		Title:              req.Title,
		DefaultAccessLevel: req.DefaultAccessLevel,
	})
	if err != nil {
		serviceError(w, h.logger, err, "Failed to create project")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to encode project response", zap.Error(err))
	}
}

// List handles GET /api/projects
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	projects, err := h.service.List(r.Context(), actorID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []*models.ProjectWithAccess{}
	}

	if err := WriteJSON(w, http.StatusOK, projects); err != nil {
		h.logger.Error("Failed to encode projects response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{pid}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	projectID, err := pathID(r, "pid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	detail, err := h.service.Get(r.Context(), actorID, projectID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to get project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, detail); err != nil {
		h.logger.Error("Failed to encode project response", zap.Error(err))
	}
}

// Update handles PATCH /api/projects/{pid}
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	projectID, err := pathID(r, "pid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.service.Update(r.Context(), actorID, projectID, services.UpdateProjectInput{
		Title:              req.Title,
		DefaultAccessLevel: req.DefaultAccessLevel,
	})
	if err != nil {
		serviceError(w, h.logger, err, "Failed to update project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to encode project response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{pid}
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	projectID, err := pathID(r, "pid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.service.Delete(r.Context(), actorID, projectID); err != nil {
		serviceError(w, h.logger, err, "Failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
