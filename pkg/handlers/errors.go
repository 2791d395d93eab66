package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
)

// serviceError translates a service error to an HTTP error response.
// Unrecognized errors become 500s and are logged with the given message.
func serviceError(w http.ResponseWriter, logger *zap.Logger, err error, logMessage string) {
	var writeErr error
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, apperrors.ErrInvalidAccessLevel):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "invalid_access_level", "Invalid access level")
	case errors.Is(err, apperrors.ErrTaskCycle):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "task_cycle", "A task cannot be its own ancestor")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		writeErr = ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, apperrors.ErrForbidden):
		writeErr = ErrorResponse(w, http.StatusForbidden, "forbidden", "Insufficient access level")
	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, apperrors.ErrLastManager):
		writeErr = ErrorResponse(w, http.StatusConflict, "last_manager", "A project must keep at least one manager")
	case errors.Is(err, apperrors.ErrConflict):
		writeErr = ErrorResponse(w, http.StatusConflict, "conflict", "Resource already exists")
	default:
		logger.Error(logMessage, zap.Error(err))
		writeErr = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
