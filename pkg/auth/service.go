package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/crypto"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/repositories"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
)

// AuthService defines the interface for authentication operations.
// This abstraction keeps HTTP handling separate from credential and
// session logic, making both easier to test.
type AuthService interface {
	// Login verifies the credentials, opens a session and returns the
	// user together with the session token. Unknown emails and wrong
	// passwords both yield apperrors.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*models.User, string, error)

	// Logout ends the session behind the token.
	Logout(ctx context.Context, token string) error

	// ValidateRequest resolves the session token carried by the request
	// to a user id. It checks for the token in:
	//   1. The signed session cookie (browser clients)
	//   2. Authorization header with "Bearer" scheme (API clients)
	ValidateRequest(r *http.Request) (int64, error)
}

// authService implements AuthService.
type authService struct {
	users    repositories.UserRepository
	sessions SessionStore
	hasher   *crypto.PasswordHasher
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, sessions SessionStore, hasher *crypto.PasswordHasher, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}
}

// Login verifies credentials and opens a session.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	// Transparently upgrade hashes created with older parameters.
	// A failed upgrade must not block the login.
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if updateErr := s.users.UpdatePasswordHash(ctx, user.ID, newHash); updateErr != nil {
				s.logger.Warn("Failed to upgrade password hash",
					zap.Int64("user_id", user.ID),
					zap.Error(updateErr))
			} else {
				user.PasswordHash = newHash
			}
		}
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, token, nil
}

// Logout ends the session behind the token.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// ValidateRequest resolves the request's session token to a user id.
func (s *authService) ValidateRequest(r *http.Request) (int64, error) {
	token := TokenFromRequest(r)

	if token == "" {
		// Fallback to Authorization header (API clients)
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return 0, ErrMissingAuthorization
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.logger.Debug("Invalid Authorization header format",
				zap.String("path", r.URL.Path))
			return 0, ErrInvalidAuthFormat
		}
		token = parts[1]
	}

	userID, err := s.sessions.Lookup(r.Context(), token)
	if err != nil {
		return 0, err
	}

	return userID, nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)
