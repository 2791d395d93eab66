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

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id int64) (*models.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.ProjectWithAccess, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct{}

// NewProjectRepository creates a new project repository.
func NewProjectRepository() ProjectRepository {
	return &projectRepository{}
}

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.DefaultAccessLevel == 0 {
		project.DefaultAccessLevel = models.AccessReader
	}

	query := `
		INSERT INTO engine_projects (title, default_access_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		project.Title,
		int(project.DefaultAccessLevel),
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID.
func (r *projectRepository) Get(ctx context.Context, id int64) (*models.Project, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, title, default_access_level, created_at, updated_at
		FROM engine_projects
		WHERE id = $1`

	var project models.Project
	var level int
	err := scope.Conn.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Title,
		&level,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	project.DefaultAccessLevel = models.AccessLevel(level)

	return &project, nil
}

// ListByUser retrieves the projects the user is a member of, together
// with the access level held.
func (r *projectRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ProjectWithAccess, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT p.id, p.title, p.default_access_level, p.created_at, p.updated_at, m.access_level
		FROM engine_projects p
		JOIN engine_memberships m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.id`

	rows, err := scope.Conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.ProjectWithAccess
	for rows.Next() {
		var p models.ProjectWithAccess
		var defaultLevel, level int
		if err := rows.Scan(&p.ID, &p.Title, &defaultLevel, &p.CreatedAt, &p.UpdatedAt, &level); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.DefaultAccessLevel = models.AccessLevel(defaultLevel)
		p.AccessLevel = models.AccessLevel(level)
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}

	return projects, nil
}

// Update updates a project's title and default access level.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	project.UpdatedAt = time.Now()

	query := `
		UPDATE engine_projects
		SET title = $2, default_access_level = $3, updated_at = $4
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query,
		project.ID, project.Title, int(project.DefaultAccessLevel), project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a project by ID.
// Tasks and memberships are automatically deleted via CASCADE.
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM engine_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
