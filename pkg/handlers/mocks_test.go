package handlers

import (
	"context"
	"net/http"

	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/services"
)

// mockUserService is a configurable mock for handler tests.
type mockUserService struct {
	user     *models.User
	projects []*models.ProjectWithAccess
	err      error

	deletedID int64
}

func (m *mockUserService) Register(ctx context.Context, input services.RegisterUserInput) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user != nil {
		return m.user, nil
	}
	return &models.User{ID: 1, Name: input.Name, Email: input.Email}, nil
}

func (m *mockUserService) Get(ctx context.Context, actorID, userID int64) (*models.User, []*models.ProjectWithAccess, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	user := m.user
	if user == nil {
		user = &models.User{ID: userID, Name: "Test User", Email: "test@example.com"}
	}
	if actorID != userID {
		return user, nil, nil
	}
	return user, m.projects, nil
}

func (m *mockUserService) Update(ctx context.Context, actorID, userID int64, input services.UpdateUserInput) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user := &models.User{ID: userID, Name: "Test User", Email: "test@example.com"}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	return user, nil
}

func (m *mockUserService) Delete(ctx context.Context, actorID, userID int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = userID
	return nil
}

// mockProjectService is a configurable mock for handler tests.
type mockProjectService struct {
	project  *models.Project
	projects []*models.ProjectWithAccess
	detail   *services.ProjectDetail
	err      error

	deletedID int64
}

func (m *mockProjectService) Create(ctx context.Context, actorID int64, input services.CreateProjectInput) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.project != nil {
		return m.project, nil
	}
	project := &models.Project{ID: 1, Title: input.Title, DefaultAccessLevel: models.AccessReader}
	if input.DefaultAccessLevel != nil {
		project.DefaultAccessLevel = *input.DefaultAccessLevel
	}
	return project, nil
}

func (m *mockProjectService) List(ctx context.Context, actorID int64) ([]*models.ProjectWithAccess, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.projects, nil
}

func (m *mockProjectService) Get(ctx context.Context, actorID, projectID int64) (*services.ProjectDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.detail != nil {
		return m.detail, nil
	}
	return &services.ProjectDetail{
		Project: models.Project{ID: projectID, Title: "Test Project", DefaultAccessLevel: models.AccessReader},
		Tasks:   []*models.Task{},
		Team:    []*models.TeamMember{},
	}, nil
}

func (m *mockProjectService) Update(ctx context.Context, actorID, projectID int64, input services.UpdateProjectInput) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	project := &models.Project{ID: projectID, Title: "Test Project", DefaultAccessLevel: models.AccessReader}
	if input.Title != nil {
		project.Title = *input.Title
	}
	if input.DefaultAccessLevel != nil {
		project.DefaultAccessLevel = *input.DefaultAccessLevel
	}
	return project, nil
}

func (m *mockProjectService) Delete(ctx context.Context, actorID, projectID int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = projectID
	return nil
}

// mockTaskService is a configurable mock for handler tests.
type mockTaskService struct {
	task    *models.Task
	tasks   []*models.Task
	removed int64
	err     error

	deletedID int64
}

func (m *mockTaskService) Create(ctx context.Context, actorID, projectID int64, input services.CreateTaskInput) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.task != nil {
		return m.task, nil
	}
	return &models.Task{
		ID:          1,
		ProjectID:   projectID,
		SupertaskID: input.SupertaskID,
		Title:       input.Title,
		Description: input.Description,
		DueAt:       input.DueAt,
	}, nil
}

func (m *mockTaskService) List(ctx context.Context, actorID, projectID int64) ([]*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks, nil
}

func (m *mockTaskService) Get(ctx context.Context, actorID, projectID, taskID int64) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.task != nil {
		return m.task, nil
	}
	return &models.Task{ID: taskID, ProjectID: projectID, Title: "Test Task"}, nil
}

func (m *mockTaskService) Update(ctx context.Context, actorID, projectID, taskID int64, input services.UpdateTaskInput) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	task := &models.Task{ID: taskID, ProjectID: projectID, Title: "Test Task"}
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.IsDone != nil {
		task.IsDone = *input.IsDone
	}
	return task, nil
}

func (m *mockTaskService) Delete(ctx context.Context, actorID, projectID, taskID int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = taskID
	return nil
}

func (m *mockTaskService) RemoveDone(ctx context.Context, actorID, projectID int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.removed, nil
}

// mockMembershipService is a configurable mock for handler tests.
type mockMembershipService struct {
	membership *models.Membership
	team       []*models.TeamMember
	err        error

	kickedID int64
	setLevel models.AccessLevel
}

func (m *mockMembershipService) Invite(ctx context.Context, actorID, projectID int64, email string, level *models.AccessLevel) (*models.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.membership != nil {
		return m.membership, nil
	}
	accessLevel := models.AccessReader
	if level != nil {
		accessLevel = *level
	}
	return &models.Membership{UserID: 2, ProjectID: projectID, AccessLevel: accessLevel}, nil
}

func (m *mockMembershipService) Kick(ctx context.Context, actorID, projectID, userID int64) error {
	if m.err != nil {
		return m.err
	}
	m.kickedID = userID
	return nil
}

func (m *mockMembershipService) SetAccessLevel(ctx context.Context, actorID, projectID, userID int64, level models.AccessLevel) error {
	if m.err != nil {
		return m.err
	}
	m.setLevel = level
	return nil
}

func (m *mockMembershipService) Team(ctx context.Context, actorID, projectID int64) ([]*models.TeamMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.team, nil
}

// mockAuthService is a configurable mock AuthService for handler tests.
type mockAuthService struct {
	user   *models.User
	token  string
	userID int64
	err    error

	loggedOutToken string
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	user := m.user
	if user == nil {
		user = &models.User{ID: 1, Name: "Test User", Email: email}
	}
	return user, m.token, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.err != nil {
		return m.err
	}
	m.loggedOutToken = token
	return nil
}

func (m *mockAuthService) ValidateRequest(r *http.Request) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.userID, nil
}
