package models

import "time"

// Task is a single task entry in a project. Tasks form a tree within a
// project: SupertaskID, when set, names the parent task. A task always
// belongs to the same project as its supertask.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	SupertaskID *int64     `json:"supertask_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	IsDone      bool       `json:"is_done"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Subtasks is populated when the task is read as part of a tree.
	Subtasks []*Task `json:"subtasks,omitempty"`
}

// BuildTaskTree arranges a flat task slice into root tasks with nested
// subtasks. Tasks whose supertask is missing from the slice are treated
// as roots. Input order is preserved among siblings.
func BuildTaskTree(tasks []*Task) []*Task {
	byID := make(map[int64]*Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var roots []*Task
	for _, t := range tasks {
		if t.SupertaskID == nil {
			roots = append(roots, t)
			continue
		}
		parent, ok := byID[*t.SupertaskID]
		if !ok {
			roots = append(roots, t)
			continue
		}
		parent.Subtasks = append(parent.Subtasks, t)
	}
	return roots
}
