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

// CreateProjectInput is the input for creating a project.
type CreateProjectInput struct {
	Title              string
	DefaultAccessLevel *models.AccessLevel
}

// UpdateProjectInput is the patch applied to a project. Nil fields are
// left unchanged.
type UpdateProjectInput struct {
	Title              *string
	DefaultAccessLevel *models.AccessLevel
}

// ProjectDetail is the full representation of a project: the project
// itself, its task tree and its team.
type ProjectDetail struct {
	models.Project
	Tasks []*models.Task       `json:"tasks"`
	Team  []*models.TeamMember `json:"team"`
}

// ProjectService defines the interface for project operations.
type ProjectService interface {
	// Create creates a project and makes the creator its manager, in one
	// transaction.
	Create(ctx context.Context, actorID int64, input CreateProjectInput) (*models.Project, error)
	// List returns the actor's projects with the access level held.
	List(ctx context.Context, actorID int64) ([]*models.ProjectWithAccess, error)
	// Get returns the full project representation. Requires reader access.
	Get(ctx context.Context, actorID, projectID int64) (*ProjectDetail, error)
	// Update patches title and default access level. Requires manager access.
	Update(ctx context.Context, actorID, projectID int64, input UpdateProjectInput) (*models.Project, error)
	// Delete removes the project with its tasks and memberships.
	// Requires manager access.
	Delete(ctx context.Context, actorID, projectID int64) error
}

// projectService implements ProjectService.
type projectService struct {
	projects    repositories.ProjectRepository
	memberships repositories.MembershipRepository
	tasks       repositories.TaskRepository
	logger      *zap.Logger
}

// NewProjectService creates a new project service with dependencies.
func NewProjectService(projects repositories.ProjectRepository, memberships repositories.MembershipRepository, tasks repositories.TaskRepository, logger *zap.Logger) ProjectService {
	return &projectService{
		projects:    projects,
		memberships: memberships,
		tasks:       tasks,
		logger:      logger,
	}
}

// Create creates a project and the creator's manager membership.
func (s *projectService) Create(ctx context.Context, actorID int64, input CreateProjectInput) (*models.Project, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperrors.ErrValidation)
	}

	level := models.AccessReader
	if input.DefaultAccessLevel != nil {
		if !input.DefaultAccessLevel.Valid() {
			return nil, apperrors.ErrInvalidAccessLevel
		}
		level = *input.DefaultAccessLevel
	}

	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	// The project without a manager is unreachable, so the project row
	// and the creator's membership commit together.
	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	project := &models.Project{
		Title:              input.Title,
		DefaultAccessLevel: level,
	}
	if err = s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		UserID:      actorID,
		ProjectID:   project.ID,
		AccessLevel: models.AccessManager,
	}
	if err = s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Created project",
		zap.Int64("project_id", project.ID),
		zap.Int64("user_id", actorID))
	return project, nil
}

// List returns the actor's projects.
func (s *projectService) List(ctx context.Context, actorID int64) ([]*models.ProjectWithAccess, error) {
	return s.projects.ListByUser(ctx, actorID)
}

// Get returns the full project representation.
func (s *projectService) Get(ctx context.Context, actorID, projectID int64) (*ProjectDetail, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessReader); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	team, err := s.memberships.ListTeam(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{
		Project: *project,
		Tasks:   models.BuildTaskTree(tasks),
		Team:    team,
	}, nil
}

// Update patches the project.
func (s *projectService) Update(ctx context.Context, actorID, projectID int64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessManager); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", apperrors.ErrValidation)
		}
		project.Title = *input.Title
	}
	if input.DefaultAccessLevel != nil {
		if !input.DefaultAccessLevel.Valid() {
			return nil, apperrors.ErrInvalidAccessLevel
		}
		project.DefaultAccessLevel = *input.DefaultAccessLevel
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Delete removes the project.
func (s *projectService) Delete(ctx context.Context, actorID, projectID int64) error {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}

	if err := requireAccess(ctx, s.memberships, projectID, actorID, models.AccessManager); err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("Deleted project",
		zap.Int64("project_id", projectID),
		zap.Int64("user_id", actorID))
	return nil
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
