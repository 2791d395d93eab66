package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/repositories"
)

// CreateTaskInput is the input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueAt       *time.Time
	SupertaskID *int64
}

// UpdateTaskInput is the patch applied to a task. Nil fields are left
// unchanged; the Clear flags reset the corresponding nullable field.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	DueAt          *time.Time
	ClearDueAt     bool
	IsDone         *bool
	SupertaskID    *int64
	ClearSupertask bool
}

// TaskService defines the interface for task operations. Every method
// checks the actor's access level in the project; task lookups run on a
// tenant-scoped connection, so tasks of other projects are invisible.
type TaskService interface {
	// Create adds a task to the project. Requires editor access. The
	// supertask, when given, must be a task of the same project.
	Create(ctx context.Context, actorID, projectID int64, input CreateTaskInput) (*models.Task, error)
	// List returns the project's root tasks with nested subtasks.
	// Requires reader access.
	List(ctx context.Context, actorID, projectID int64) ([]*models.Task, error)
	// Get returns one task with its nested subtasks. Requires reader access.
	Get(ctx context.Context, actorID, projectID, taskID int64) (*models.Task, error)
	// Update patches a task. Requires editor access. Re-parenting
	// validates that the new supertask belongs to the same project and
	// is not in the task's own subtree.
	Update(ctx context.Context, actorID, projectID, taskID int64, input UpdateTaskInput) (*models.Task, error)
	// Delete removes a task and its subtasks. Requires editor access.
	Delete(ctx context.Context, actorID, projectID, taskID int64) error
	// RemoveDone removes all tasks marked done, along with their
	// subtasks, and returns how many done tasks were removed. Requires
	// editor access.
	RemoveDone(ctx context.Context, actorID, projectID int64) (int64, error)
}

// taskService implements TaskService.
type taskService struct {
	tasks       repositories.TaskRepository
	projects    repositories.ProjectRepository
	memberships repositories.MembershipRepository
	logger      *zap.Logger
}

// NewTaskService creates a new task service with dependencies.
func NewTaskService(tasks repositories.TaskRepository, projects repositories.ProjectRepository, memberships repositories.MembershipRepository, logger *zap.Logger) TaskService {
	return &taskService{
		tasks:       tasks,
		projects:    projects,
		memberships: memberships,
		logger:      logger,
	}
}

// authorize resolves 404-vs-403: unknown projects are ErrNotFound,
// existing projects without sufficient access are ErrForbidden.
func (s *taskService) authorize(ctx context.Context, actorID, projectID int64, required models.AccessLevel) error {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}
	return requireAccess(ctx, s.memberships, projectID, actorID, required)
}

// Create adds a task to the project.
func (s *taskService) Create(ctx context.Context, actorID, projectID int64, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperrors.ErrValidation)
	}

	if err := s.authorize(ctx, actorID, projectID, models.AccessEditor); err != nil {
		return nil, err
	}

	if input.SupertaskID != nil {
		// The tenant scope hides tasks of other projects, so a
		// cross-project supertask surfaces as not found here.
		if _, err := s.tasks.Get(ctx, *input.SupertaskID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("supertask %d: %w", *input.SupertaskID, apperrors.ErrNotFound)
			}
			return nil, err
		}
	}

	task := &models.Task{
		ProjectID:   projectID,
		SupertaskID: input.SupertaskID,
		Title:       input.Title,
		Description: input.Description,
		DueAt:       input.DueAt,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// List returns the project's task tree.
func (s *taskService) List(ctx context.Context, actorID, projectID int64) ([]*models.Task, error) {
	if err := s.authorize(ctx, actorID, projectID, models.AccessReader); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return models.BuildTaskTree(tasks), nil
}

// Get returns one task with its nested subtasks.
func (s *taskService) Get(ctx context.Context, actorID, projectID, taskID int64) (*models.Task, error) {
	if err := s.authorize(ctx, actorID, projectID, models.AccessReader); err != nil {
		return nil, err
	}

	// Build the whole tree and pick the node out of it, so the task
	// comes back with subtasks attached at every depth.
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	models.BuildTaskTree(tasks)

	for _, t := range tasks {
		if t.ID == taskID {
			return t, nil
		}
	}

	return nil, apperrors.ErrNotFound
}

// Update patches a task.
func (s *taskService) Update(ctx context.Context, actorID, projectID, taskID int64, input UpdateTaskInput) (*models.Task, error) {
	if err := s.authorize(ctx, actorID, projectID, models.AccessEditor); err != nil {
		return nil, err
	}

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", apperrors.ErrValidation)
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDueAt {
		task.DueAt = nil
	} else if input.DueAt != nil {
		task.DueAt = input.DueAt
	}
	if input.IsDone != nil {
		task.IsDone = *input.IsDone
	}

	if input.ClearSupertask {
		task.SupertaskID = nil
	} else if input.SupertaskID != nil {
		if err := s.validateSupertask(ctx, taskID, *input.SupertaskID); err != nil {
			return nil, err
		}
		task.SupertaskID = input.SupertaskID
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// validateSupertask checks that the new parent exists in the current
// project and does not sit in the task's own subtree.
func (s *taskService) validateSupertask(ctx context.Context, taskID, supertaskID int64) error {
	if _, err := s.tasks.Get(ctx, supertaskID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("supertask %d: %w", supertaskID, apperrors.ErrNotFound)
		}
		return err
	}

	// The subtree rooted at taskID includes taskID itself, so this also
	// rejects a task parenting itself.
	inSubtree, err := s.tasks.IsDescendant(ctx, taskID, supertaskID)
	if err != nil {
		return err
	}
	if inSubtree {
		return apperrors.ErrTaskCycle
	}

	return nil
}

// Delete removes a task and its subtasks.
func (s *taskService) Delete(ctx context.Context, actorID, projectID, taskID int64) error {
	if err := s.authorize(ctx, actorID, projectID, models.AccessEditor); err != nil {
		return err
	}

	return s.tasks.Delete(ctx, taskID)
}

// RemoveDone removes all tasks marked done.
func (s *taskService) RemoveDone(ctx context.Context, actorID, projectID int64) (int64, error) {
	if err := s.authorize(ctx, actorID, projectID, models.AccessEditor); err != nil {
		return 0, err
	}

	removed, err := s.tasks.DeleteDone(ctx, projectID)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Removed done tasks",
		zap.Int64("project_id", projectID),
		zap.Int64("removed", removed))
	return removed, nil
}

// Ensure taskService implements TaskService at compile time.
var _ TaskService = (*taskService)(nil)
