package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/auth"
	"github.com/tasklane-io/tasklane-engine/pkg/services"
)

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. The token is also set
// in the session cookie; API clients may send it as a bearer token
// instead.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuthHandler handles login, logout and the current-user endpoint.
type AuthHandler struct {
	authService auth.AuthService
	userService services.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService auth.AuthService, userService services.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, globalMiddleware Middleware) {
	// POST /api/login - verify credentials, open session (DB scope, no auth)
	mux.HandleFunc("POST /api/login", globalMiddleware(h.Login))

	// POST /api/logout - end session (no DB scope needed)
	mux.HandleFunc("POST /api/logout", h.Logout)

	// GET /api/me - current user (auth + DB scope)
	mux.HandleFunc("GET /api/me", authMiddleware.RequireAuth(globalMiddleware(h.Me)))
}

// Login handles POST /api/login
// Verifies credentials, opens a session and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Email == "" || req.Password == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_credentials", "Email and password are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			if err := ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to log in", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "login_failed", "Failed to log in"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// GetSession returns a fresh session alongside the error when the
	// client's cookie no longer decodes (secret rotation, corruption).
	// Save it regardless so the stale cookie gets replaced.
	session, _ := auth.GetSession(r)
	session.Values[auth.SessionKeyToken] = token
	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to save session cookie", zap.Error(err))
	}

	response := LoginResponse{
		Token: token,
		User:  newUserResponse(user, nil, true),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode login response", zap.Error(err))
	}
}

// Logout handles POST /api/logout
// Ends the server-side session and expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)

	if err := h.authService.Logout(r.Context(), token); err != nil {
		h.logger.Error("Failed to delete session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "logout_failed", "Failed to log out"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Expire the cookie even when it no longer decodes; GetSession hands
	// back a usable session in that case.
	session, _ := auth.GetSession(r)
	session.Options.MaxAge = -1
	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to expire session cookie", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
// Returns the full representation of the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, projects, err := h.userService.Get(r.Context(), userID, userID)
	if err != nil {
		h.logger.Error("Failed to load current user",
			zap.Int64("user_id", userID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "me_failed", "Failed to load current user"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, newUserResponse(user, projects, true)); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}
