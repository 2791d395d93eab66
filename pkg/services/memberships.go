package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/database"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/repositories"
)

// MembershipService defines the interface for team operations.
type MembershipService interface {
	// Invite adds the user with the given email to the project team.
	// When level is nil the project's default access level applies.
	// Requires manager access.
	Invite(ctx context.Context, actorID, projectID int64, email string, level *models.AccessLevel) (*models.Membership, error)
	// Kick removes a member from the team. The last manager cannot be
	// removed. Requires manager access.
	Kick(ctx context.Context, actorID, projectID, userID int64) error
	// SetAccessLevel changes a member's access level. The last manager
	// cannot be demoted. Requires manager access.
	SetAccessLevel(ctx context.Context, actorID, projectID, userID int64, level models.AccessLevel) error
	// Team lists the project's memberships. Requires reader access.
	Team(ctx context.Context, actorID, projectID int64) ([]*models.TeamMember, error)
}

// membershipService implements MembershipService.
type membershipService struct {
	memberships repositories.MembershipRepository
	projects    repositories.ProjectRepository
	users       repositories.UserRepository
	logger      *zap.Logger
}

// NewMembershipService creates a new membership service with dependencies.
func NewMembershipService(memberships repositories.MembershipRepository, projects repositories.ProjectRepository, users repositories.UserRepository, logger *zap.Logger) MembershipService {
	return &membershipService{
		memberships: memberships,
		projects:    projects,
		users:       users,
		logger:      logger,
	}
}

// Invite adds a user to the project team.
func (s *membershipService) Invite(ctx context.Context, actorID, projectID int64, email string, level *models.AccessLevel) (*models.Membership, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessManager); err != nil {
		return nil, err
	}

	accessLevel := project.DefaultAccessLevel
	if level != nil {
		if !level.Valid() {
			return nil, apperrors.ErrInvalidAccessLevel
		}
		accessLevel = *level
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	membership := &models.Membership{
		UserID:      user.ID,
		ProjectID:   projectID,
		AccessLevel: accessLevel,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.Info("Invited user to project",
		zap.Int64("project_id", projectID),
		zap.Int64("user_id", user.ID),
		zap.String("access_level", accessLevel.String()))
	return membership, nil
}

// Kick removes a member from the team.
// Returns ErrLastManager if attempting to remove the last manager.
func (s *membershipService) Kick(ctx context.Context, actorID, projectID, userID int64) error {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessManager); err != nil {
		return err
	}

	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	// Transaction for atomic check-and-delete: the manager count must
	// not change between the guard and the removal.
	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	membership, err := s.memberships.Get(ctx, projectID, userID)
	if err != nil {
		return err
	}

	if membership.AccessLevel == models.AccessManager {
		managerCount, countErr := s.memberships.CountManagers(ctx, projectID)
		if countErr != nil {
			err = fmt.Errorf("failed to count managers: %w", countErr)
			return err
		}
		if managerCount <= 1 {
			err = apperrors.ErrLastManager
			return err
		}
	}

	if err = s.memberships.Delete(ctx, projectID, userID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Removed user from project",
		zap.Int64("project_id", projectID),
		zap.Int64("user_id", userID))
	return nil
}

// SetAccessLevel changes a member's access level.
// Returns ErrLastManager if attempting to demote the last manager.
func (s *membershipService) SetAccessLevel(ctx context.Context, actorID, projectID, userID int64, level models.AccessLevel) error {
	if !level.Valid() {
		return apperrors.ErrInvalidAccessLevel
	}

	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessManager); err != nil {
		return err
	}

	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	// Transaction for atomic check-and-update, mirroring Kick.
	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	membership, err := s.memberships.Get(ctx, projectID, userID)
	if err != nil {
		return err
	}

	if membership.AccessLevel == models.AccessManager && level != models.AccessManager {
		managerCount, countErr := s.memberships.CountManagers(ctx, projectID)
		if countErr != nil {
			err = fmt.Errorf("failed to count managers: %w", countErr)
			return err
		}
		if managerCount <= 1 {
			err = apperrors.ErrLastManager
			return err
		}
	}

	if err = s.memberships.UpdateAccessLevel(ctx, projectID, userID, level); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Team lists the project's memberships.
func (s *membershipService) Team(ctx context.Context, actorID, projectID int64) ([]*models.TeamMember, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessReader); err != nil {
		return nil, err
	}

	return s.memberships.ListTeam(ctx, projectID)
}

// Ensure membershipService implements MembershipService at compile time.
var _ MembershipService = (*membershipService)(nil)
