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

// RegisterUserRequest is the request body for registering a user.
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the request body for patching a user. Absent
// fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ProjectSummary is a project as it appears in a user's project list.
type ProjectSummary struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	AccessLevel models.AccessLevel `json:"access_level"`
}

// UserResponse is a user as returned by the API. Users looking at
// themselves get the full view with email and projects; everyone else
// gets id and name only.
type UserResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email,omitempty"`
	Projects  []*ProjectSummary `json:"projects,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
}

// newUserResponse builds the response for a user. The full view adds
// email, creation time and, when given, the project list.
func newUserResponse(user *models.User, projects []*models.ProjectWithAccess, full bool) UserResponse {
	response := UserResponse{
		ID:   user.ID,
		Name: user.Name,
	}
	if !full {
		return response
	}

	response.Email = user.Email
	response.CreatedAt = &user.CreatedAt
	for _, p := range projects {
		response.Projects = append(response.Projects, &ProjectSummary{
			ID:          p.ID,
			Title:       p.Title,
			AccessLevel: p.AccessLevel,
		})
	}
	return response
}

// UsersHandler handles user account endpoints.
type UsersHandler struct {
	service services.UserService
	logger  *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(service services.UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{service: service, logger: logger}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, globalMiddleware Middleware) {
	// POST /api/users - register a new account (unauthenticated)
	mux.HandleFunc("POST /api/users", globalMiddleware(h.Register))

	// GET /api/users/{uid} - get a user
	mux.HandleFunc("GET /api/users/{uid}", authMiddleware.RequireAuth(globalMiddleware(h.Get)))

	// PATCH /api/users/{uid} - update own account
	mux.HandleFunc("PATCH /api/users/{uid}", authMiddleware.RequireAuth(globalMiddleware(h.Update)))

	// DELETE /api/users/{uid} - delete own account
	mux.HandleFunc("DELETE /api/users/{uid}", authMiddleware.RequireAuth(globalMiddleware(h.Delete)))
}

// Register handles POST /api/users
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		serviceError(w, h.logger, err, "Failed to register user")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, newUserResponse(user, nil, true)); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}

// Get handles GET /api/users/{uid}
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	userID, err := pathID(r, "uid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, projects, err := h.service.Get(r.Context(), actorID, userID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to get user")
		return
	}

	if err := WriteJSON(w, http.StatusOK, newUserResponse(user, projects, actorID == userID)); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}

// Update handles PATCH /api/users/{uid}
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	userID, err := pathID(r, "uid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, err := h.service.Update(r.Context(), actorID, userID, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		serviceError(w, h.logger, err, "Failed to update user")
		return
	}

	if err := WriteJSON(w, http.StatusOK, newUserResponse(user, nil, true)); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}

// Delete handles DELETE /api/users/{uid}
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	userID, err := pathID(r, "uid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.service.Delete(r.Context(), actorID, userID); err != nil {
		serviceError(w, h.logger, err, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
