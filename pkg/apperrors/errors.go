package apperrors

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccessLevel = errors.New("invalid access level")
	ErrLastManager        = errors.New("cannot remove last manager")
	ErrTaskCycle          = errors.New("task cannot be its own ancestor")
)
