package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/database"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
)

// MembershipRepository defines the interface for team membership data access.
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	Get(ctx context.Context, projectID, userID int64) (*models.Membership, error)
	ListTeam(ctx context.Context, projectID int64) ([]*models.TeamMember, error)
	UpdateAccessLevel(ctx context.Context, projectID, userID int64, level models.AccessLevel) error
	Delete(ctx context.Context, projectID, userID int64) error
	CountManagers(ctx context.Context, projectID int64) (int, error)
}

// membershipRepository implements MembershipRepository using PostgreSQL.
type membershipRepository struct{}

// NewMembershipRepository creates a new membership repository.
func NewMembershipRepository() MembershipRepository {
	return &membershipRepository{}
}

// Create inserts a new membership. A user already on the team yields
// ErrConflict via the (user_id, project_id) unique constraint.
func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	membership.CreatedAt = now
	membership.UpdatedAt = now

	query := `
		INSERT INTO engine_memberships (user_id, project_id, access_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		membership.UserID,
		membership.ProjectID,
		int(membership.AccessLevel),
		membership.CreatedAt,
		membership.UpdatedAt,
	).Scan(&membership.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// Get retrieves a user's membership in a project.
func (r *membershipRepository) Get(ctx context.Context, projectID, userID int64) (*models.Membership, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, user_id, project_id, access_level, created_at, updated_at
		FROM engine_memberships
		WHERE project_id = $1 AND user_id = $2`

	var m models.Membership
	var level int
	err := scope.Conn.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID,
		&m.UserID,
		&m.ProjectID,
		&level,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	m.AccessLevel = models.AccessLevel(level)

	return &m, nil
}

// ListTeam retrieves the project's memberships joined with each member's
// shallow user representation.
func (r *membershipRepository) ListTeam(ctx context.Context, projectID int64) ([]*models.TeamMember, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT u.id, u.name, m.access_level, m.created_at
		FROM engine_memberships m
		JOIN engine_users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.id`

	rows, err := scope.Conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	defer rows.Close()

	var team []*models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var level int
		if err := rows.Scan(&member.User.ID, &member.User.Name, &level, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		member.AccessLevel = models.AccessLevel(level)
		team = append(team, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read team: %w", err)
	}

	return team, nil
}

// UpdateAccessLevel changes a member's access level.
func (r *membershipRepository) UpdateAccessLevel(ctx context.Context, projectID, userID int64, level models.AccessLevel) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE engine_memberships
		SET access_level = $3, updated_at = $4
		WHERE project_id = $1 AND user_id = $2`

	result, err := scope.Conn.Exec(ctx, query, projectID, userID, int(level), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a user's membership from a project.
func (r *membershipRepository) Delete(ctx context.Context, projectID, userID int64) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `DELETE FROM engine_memberships WHERE project_id = $1 AND user_id = $2`

	result, err := scope.Conn.Exec(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// CountManagers returns the number of managers in the project's team.
func (r *membershipRepository) CountManagers(ctx context.Context, projectID int64) (int, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT COUNT(*)
		FROM engine_memberships
		WHERE project_id = $1 AND access_level = $2`

	var count int
	err := scope.Conn.QueryRow(ctx, query, projectID, int(models.AccessManager)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count managers: %w", err)
	}

	return count, nil
}

// Ensure membershipRepository implements MembershipRepository at compile time.
var _ MembershipRepository = (*membershipRepository)(nil)
