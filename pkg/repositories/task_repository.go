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

// TaskRepository defines the interface for task data access.
// All methods run against a tenant-scoped connection, so row-level
// security confines them to the current project.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id int64) (*models.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
	// DeleteDone removes every task in the project marked done,
	// returning the number of done tasks removed. Subtasks of a done
	// task go with it through the cascading foreign key and are not
	// included in the count.
	DeleteDone(ctx context.Context, projectID int64) (int64, error)
	// IsDescendant reports whether candidate is in the subtree rooted
	// at taskID (including taskID itself).
	IsDescendant(ctx context.Context, taskID, candidate int64) (bool, error)
}

// taskRepository implements TaskRepository using PostgreSQL.
type taskRepository struct{}

// NewTaskRepository creates a new task repository.
func NewTaskRepository() TaskRepository {
	return &taskRepository{}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.SupertaskID,
		&task.Title,
		&task.Description,
		&task.DueAt,
		&task.IsDone,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

const taskColumns = `id, project_id, supertask_id, title, description, due_at, is_done, created_at, updated_at`

// Create inserts a new task.
func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO engine_tasks (project_id, supertask_id, title, description, due_at, is_done, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		task.ProjectID,
		task.SupertaskID,
		task.Title,
		task.Description,
		task.DueAt,
		task.IsDone,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// Get retrieves a task by ID within the current project.
func (r *taskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `SELECT ` + taskColumns + ` FROM engine_tasks WHERE id = $1`

	task, err := scanTask(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListByProject retrieves all of the project's tasks, parents before
// their subtasks, so callers can assemble the tree in one pass.
func (r *taskRepository) ListByProject(ctx context.Context, projectID int64) ([]*models.Task, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + taskColumns + `
		FROM engine_tasks
		WHERE project_id = $1
		ORDER BY supertask_id NULLS FIRST, id`

	rows, err := scope.Conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	return tasks, nil
}

// Update rewrites the task's mutable fields.
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	task.UpdatedAt = time.Now()

	query := `
		UPDATE engine_tasks
		SET supertask_id = $2, title = $3, description = $4, due_at = $5, is_done = $6, updated_at = $7
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query,
		task.ID,
		task.SupertaskID,
		task.Title,
		task.Description,
		task.DueAt,
		task.IsDone,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a task by ID. Subtasks cascade via the self foreign key.
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM engine_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// DeleteDone removes all tasks in the project marked done.
func (r *taskRepository) DeleteDone(ctx context.Context, projectID int64) (int64, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no tenant scope in context")
	}

	query := `DELETE FROM engine_tasks WHERE project_id = $1 AND is_done`

	result, err := scope.Conn.Exec(ctx, query, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete done tasks: %w", err)
	}

	return result.RowsAffected(), nil
}

// IsDescendant walks the subtree rooted at taskID looking for candidate.
// Used to reject re-parenting a task under one of its own descendants.
func (r *taskRepository) IsDescendant(ctx context.Context, taskID, candidate int64) (bool, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return false, fmt.Errorf("no tenant scope in context")
	}

	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM engine_tasks WHERE id = $1
			UNION ALL
			SELECT t.id
			FROM engine_tasks t
			JOIN subtree s ON t.supertask_id = s.id
		)
		SELECT EXISTS (SELECT 1 FROM subtree WHERE id = $2)`

	var found bool
	if err := scope.Conn.QueryRow(ctx, query, taskID, candidate).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check task subtree: %w", err)
	}

	return found, nil
}

// Ensure taskRepository implements TaskRepository at compile time.
var _ TaskRepository = (*taskRepository)(nil)
