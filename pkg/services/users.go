package services

import (
	"context"
	"fmt"
	"net/mail"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/crypto"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/repositories"
)

// RegisterUserInput is the input for registering a user.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput is the patch applied to a user. Nil fields are left
// unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserService defines the interface for user account operations.
type UserService interface {
	// Register creates a user account, hashing the cleartext password.
	Register(ctx context.Context, input RegisterUserInput) (*models.User, error)
	// Get returns the user and, when the actor is looking at themselves,
	// their project list. Other users only warrant the shallow view, so
	// projects come back nil.
	Get(ctx context.Context, actorID, userID int64) (*models.User, []*models.ProjectWithAccess, error)
	// Update patches the user's own account.
	Update(ctx context.Context, actorID, userID int64, input UpdateUserInput) (*models.User, error)
	// Delete removes the user's own account. Memberships cascade.
	Delete(ctx context.Context, actorID, userID int64) error
}

// userService implements UserService.
type userService struct {
	users    repositories.UserRepository
	projects repositories.ProjectRepository
	hasher   *crypto.PasswordHasher
	logger   *zap.Logger
}

// NewUserService creates a new user service with dependencies.
func NewUserService(users repositories.UserRepository, projects repositories.ProjectRepository, hasher *crypto.PasswordHasher, logger *zap.Logger) UserService {
	return &userService{
		users:    users,
		projects: projects,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a user account.
func (s *userService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required: %w", apperrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", apperrors.ErrValidation)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("password is required: %w", apperrors.ErrValidation)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Registered user", zap.Int64("user_id", user.ID))
	return user, nil
}

// Get returns the user, with the project list for self-lookups.
func (s *userService) Get(ctx context.Context, actorID, userID int64) (*models.User, []*models.ProjectWithAccess, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if actorID != userID {
		return user, nil, nil
	}

	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list user projects: %w", err)
	}

	return user, projects, nil
}

// Update patches the user's own account.
func (s *userService) Update(ctx context.Context, actorID, userID int64, input UpdateUserInput) (*models.User, error) {
	if actorID != userID {
		return nil, apperrors.ErrForbidden
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Validate the whole patch before writing anything: a rejected
	// request must leave the account untouched.
	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", apperrors.ErrValidation)
		}
		user.Name = *input.Name
	}
	if input.Email != nil {
		if _, err := mail.ParseAddress(*input.Email); err != nil {
			return nil, fmt.Errorf("invalid email address: %w", apperrors.ErrValidation)
		}
		user.Email = *input.Email
	}
	var newHash string
	if input.Password != nil {
		if *input.Password == "" {
			return nil, fmt.Errorf("password cannot be empty: %w", apperrors.ErrValidation)
		}
		newHash, err = s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if newHash != "" {
		if err := s.users.UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return nil, err
		}
		user.PasswordHash = newHash
	}

	return user, nil
}

// Delete removes the user's own account.
func (s *userService) Delete(ctx context.Context, actorID, userID int64) error {
	if actorID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Deleted user", zap.Int64("user_id", userID))
	return nil
}

// Ensure userService implements UserService at compile time.
var _ UserService = (*userService)(nil)
