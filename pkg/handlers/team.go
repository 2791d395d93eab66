package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/auth"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/services"
)

// InviteRequest is the request body for inviting a user to a project.
// When access_level is omitted the project's default applies.
type InviteRequest struct {
	Email       string              `json:"email"`
	AccessLevel *models.AccessLevel `json:"access_level"`
}

// KickRequest is the request body for removing a member.
type KickRequest struct {
	UserID int64 `json:"user_id"`
}

// SetAccessLevelRequest is the request body for changing a member's
// access level.
type SetAccessLevelRequest struct {
	AccessLevel models.AccessLevel `json:"access_level"`
}

// MembershipResponse is a membership as returned by the API.
type MembershipResponse struct {
	UserID      int64              `json:"user_id"`
	ProjectID   int64              `json:"project_id"`
	AccessLevel models.AccessLevel `json:"access_level"`
}

// TeamHandler handles team membership endpoints. All routes are
// project-scoped.
type TeamHandler struct {
	service services.MembershipService
	logger  *zap.Logger
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(service services.MembershipService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{service: service, logger: logger}
}

// RegisterRoutes registers the team handler's routes on the given mux.
func (h *TeamHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, projectMiddleware Middleware) {
	// POST /api/projects/{pid}/invite - add a user to the team
	mux.HandleFunc("POST /api/projects/{pid}/invite", authMiddleware.RequireAuth(projectMiddleware(h.Invite)))

	// POST /api/projects/{pid}/kick - remove a member
	mux.HandleFunc("POST /api/projects/{pid}/kick", authMiddleware.RequireAuth(projectMiddleware(h.Kick)))

	// GET /api/projects/{pid}/team - list the team
	mux.HandleFunc("GET /api/projects/{pid}/team", authMiddleware.RequireAuth(projectMiddleware(h.Team)))

	// PUT /api/projects/{pid}/team/{uid} - change a member's access level
	mux.HandleFunc("PUT /api/projects/{pid}/team/{uid}", authMiddleware.RequireAuth(projectMiddleware(h.SetAccessLevel)))
}

// Invite handles POST /api/projects/{pid}/invite
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
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

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Email == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_email", "Email is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	membership, err := h.service.Invite(r.Context(), actorID, projectID, req.Email, req.AccessLevel)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to invite user")
		return
	}

	response := MembershipResponse{
		UserID:      membership.UserID,
		ProjectID:   membership.ProjectID,
		AccessLevel: membership.AccessLevel,
	}
	if err := WriteJSON(w, http.StatusCreated, response); err != nil {
		h.logger.Error("Failed to encode membership response", zap.Error(err))
	}
}

// Kick handles POST /api/projects/{pid}/kick
func (h *TeamHandler) Kick(w http.ResponseWriter, r *http.Request) {
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

	var req KickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.UserID == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_user_id", "User id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.service.Kick(r.Context(), actorID, projectID, req.UserID); err != nil {
		serviceError(w, h.logger, err, "Failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Team handles GET /api/projects/{pid}/team
func (h *TeamHandler) Team(w http.ResponseWriter, r *http.Request) {
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

	team, err := h.service.Team(r.Context(), actorID, projectID)
	if err != nil {
		serviceError(w, h.logger, err, "Failed to list team")
		return
	}
	if team == nil {
		team = []*models.TeamMember{}
	}

	if err := WriteJSON(w, http.StatusOK, team); err != nil {
		h.logger.Error("Failed to encode team response", zap.Error(err))
	}
}

// SetAccessLevel handles PUT /api/projects/{pid}/team/{uid}
func (h *TeamHandler) SetAccessLevel(w http.ResponseWriter, r *http.Request) {
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

	userID, err := pathID(r, "uid")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req SetAccessLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.service.SetAccessLevel(r.Context(), actorID, projectID, userID, req.AccessLevel); err != nil {
		serviceError(w, h.logger, err, "Failed to change access level")
		return
	}

	response := MembershipResponse{
		UserID:      userID,
		ProjectID:   projectID,
		AccessLevel: req.AccessLevel,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode membership response", zap.Error(err))
	}
}
