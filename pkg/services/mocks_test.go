package services

import (
	"context"
	"sort"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
)

// In-memory repository fakes shared by the service tests. They honor the
// same error contracts as the real repositories (ErrNotFound, ErrConflict)
// but keep everything in maps.

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64

	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) add(name, email string) *models.User {
	f.nextID++
	user := &models.User{ID: f.nextID, Name: name, Email: email, PasswordHash: "$argon2id$fixture"}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProjectRepo struct {
	projects    map[int64]*models.Project
	nextID      int64
	memberships *fakeMembershipRepo

	createErr error
	updateErr error
}

func newFakeProjectRepo(memberships *fakeMembershipRepo) *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[int64]*models.Project), memberships: memberships}
}

func (f *fakeProjectRepo) add(title string, level models.AccessLevel) *models.Project {
	f.nextID++
	project := &models.Project{ID: f.nextID, Title: title, DefaultAccessLevel: level}
	f.projects[project.ID] = project
	return project
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	project.ID = f.nextID
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeProjectRepo) Get(ctx context.Context, id int64) (*models.Project, error) {
	if project, ok := f.projects[id]; ok {
		copied := *project
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeProjectRepo) ListByUser(ctx context.Context, userID int64) ([]*models.ProjectWithAccess, error) {
	var list []*models.ProjectWithAccess
	for _, m := range f.memberships.ordered() {
		if m.UserID != userID {
			continue
		}
		project, ok := f.projects[m.ProjectID]
		if !ok {
			continue
		}
		list = append(list, &models.ProjectWithAccess{Project: *project, AccessLevel: m.AccessLevel})
	}
	return list, nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, project *models.Project) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.projects[project.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeMembershipRepo struct {
	items  map[int64]*models.Membership
	nextID int64
	users  *fakeUserRepo

	createErr error
	deleteErr error
}

func newFakeMembershipRepo(users *fakeUserRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{items: make(map[int64]*models.Membership), users: users}
}

func (f *fakeMembershipRepo) add(projectID, userID int64, level models.AccessLevel) *models.Membership {
	f.nextID++
	m := &models.Membership{ID: f.nextID, UserID: userID, ProjectID: projectID, AccessLevel: level}
	f.items[m.ID] = m
	return m
}

func (f *fakeMembershipRepo) ordered() []*models.Membership {
	list := make([]*models.Membership, 0, len(f.items))
	for _, m := range f.items {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (f *fakeMembershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, m := range f.items {
		if m.UserID == membership.UserID && m.ProjectID == membership.ProjectID {
			return apperrors.ErrConflict
		}
	}
	f.nextID++
	membership.ID = f.nextID
	copied := *membership
	f.items[membership.ID] = &copied
	return nil
}

func (f *fakeMembershipRepo) Get(ctx context.Context, projectID, userID int64) (*models.Membership, error) {
	for _, m := range f.items {
		if m.ProjectID == projectID && m.UserID == userID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeMembershipRepo) ListTeam(ctx context.Context, projectID int64) ([]*models.TeamMember, error) {
	var team []*models.TeamMember
	for _, m := range f.ordered() {
		if m.ProjectID != projectID {
			continue
		}
		member := &models.TeamMember{AccessLevel: m.AccessLevel, CreatedAt: m.CreatedAt}
		if user, ok := f.users.users[m.UserID]; ok {
			member.User = user.Ref()
		} else {
			member.User = models.UserRef{ID: m.UserID}
		}
		team = append(team, member)
	}
	return team, nil
}

func (f *fakeMembershipRepo) UpdateAccessLevel(ctx context.Context, projectID, userID int64, level models.AccessLevel) error {
	for _, m := range f.items {
		if m.ProjectID == projectID && m.UserID == userID {
			m.AccessLevel = level
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeMembershipRepo) Delete(ctx context.Context, projectID, userID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, m := range f.items {
		if m.ProjectID == projectID && m.UserID == userID {
			delete(f.items, id)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeMembershipRepo) CountManagers(ctx context.Context, projectID int64) (int, error) {
	count := 0
	for _, m := range f.items {
		if m.ProjectID == projectID && m.AccessLevel == models.AccessManager {
			count++
		}
	}
	return count, nil
}

type fakeTaskRepo struct {
	tasks  map[int64]*models.Task
	nextID int64

	createErr error
	updateErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*models.Task)}
}

func (f *fakeTaskRepo) add(projectID int64, title string, supertaskID *int64) *models.Task {
	f.nextID++
	task := &models.Task{ID: f.nextID, ProjectID: projectID, Title: title, SupertaskID: supertaskID}
	f.tasks[task.ID] = task
	return task
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	task.ID = f.nextID
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) Get(ctx context.Context, id int64) (*models.Task, error) {
	if task, ok := f.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTaskRepo) ListByProject(ctx context.Context, projectID int64) ([]*models.Task, error) {
	var list []*models.Task
	for _, task := range f.tasks {
		if task.ProjectID == projectID {
			copied := *task
			list = append(list, &copied)
		}
	}
	// Parents before subtasks, matching the SQL ordering.
	sort.Slice(list, func(i, j int) bool {
		iRoot, jRoot := list[i].SupertaskID == nil, list[j].SupertaskID == nil
		if iRoot != jRoot {
			return iRoot
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *task
	copied.Subtasks = nil
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return apperrors.ErrNotFound
	}
	f.removeSubtree(id)
	return nil
}

func (f *fakeTaskRepo) removeSubtree(id int64) {
	delete(f.tasks, id)
	for childID, task := range f.tasks {
		if task.SupertaskID != nil && *task.SupertaskID == id {
			f.removeSubtree(childID)
		}
	}
}

func (f *fakeTaskRepo) DeleteDone(ctx context.Context, projectID int64) (int64, error) {
	var done []int64
	for id, task := range f.tasks {
		if task.ProjectID == projectID && task.IsDone {
			done = append(done, id)
		}
	}
	for _, id := range done {
		f.removeSubtree(id)
	}
	return int64(len(done)), nil
}

func (f *fakeTaskRepo) IsDescendant(ctx context.Context, taskID, candidate int64) (bool, error) {
	for id := candidate; ; {
		if id == taskID {
			return true, nil
		}
		task, ok := f.tasks[id]
		if !ok || task.SupertaskID == nil {
			return false, nil
		}
		id = *task.SupertaskID
	}
}
