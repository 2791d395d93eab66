package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/crypto"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
)

func newUserServiceFixture() (*fakeUserRepo, *fakeProjectRepo, *fakeMembershipRepo, UserService) {
	users := newFakeUserRepo()
	memberships := newFakeMembershipRepo(users)
	projects := newFakeProjectRepo(memberships)
	svc := NewUserService(users, projects, crypto.NewPasswordHasher(), zap.NewNop())
	return users, projects, memberships, svc
}

func TestUserService_Register(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected assigned id")
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter2" {
		t.Error("expected password to be hashed")
	}
	if !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("expected argon2id hash, got %q", user.PasswordHash)
	}
	if _, ok := users.users[user.ID]; !ok {
		t.Error("expected user to be persisted")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	_, _, _, svc := newUserServiceFixture()

	tests := []struct {
		name  string
		input RegisterUserInput
	}{
		{"missing name", RegisterUserInput{Email: "a@example.com", Password: "pw"}},
		{"missing email", RegisterUserInput{Name: "A", Password: "pw"}},
		{"malformed email", RegisterUserInput{Name: "A", Email: "not-an-email", Password: "pw"}},
		{"missing password", RegisterUserInput{Name: "A", Email: "a@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	users.add("Alice", "alice@example.com")

	_, err := svc.Register(context.Background(), RegisterUserInput{
		Name:     "Impostor",
		Email:    "alice@example.com",
		Password: "pw",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestUserService_Get_SelfIncludesProjects(t *testing.T) {
	users, projects, memberships, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")
	project := projects.add("Home", models.AccessReader)
	memberships.add(project.ID, alice.ID, models.AccessManager)

	user, list, err := svc.Get(context.Background(), alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != alice.ID {
		t.Errorf("expected user %d, got %d", alice.ID, user.ID)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 project, got %d", len(list))
	}
	if list[0].ID != project.ID || list[0].AccessLevel != models.AccessManager {
		t.Errorf("unexpected project entry: %+v", list[0])
	}
}

func TestUserService_Get_OtherUserIsShallow(t *testing.T) {
	users, projects, memberships, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")
	bob := users.add("Bob", "bob@example.com")
	project := projects.add("Bob's place", models.AccessReader)
	memberships.add(project.ID, bob.ID, models.AccessManager)

	user, list, err := svc.Get(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != bob.ID {
		t.Errorf("expected user %d, got %d", bob.ID, user.ID)
	}
	if list != nil {
		t.Error("expected no project list for another user")
	}
}

func TestUserService_Get_Missing(t *testing.T) {
	_, _, _, svc := newUserServiceFixture()

	if _, _, err := svc.Get(context.Background(), 1, 999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")

	name := "Alicia"
	email := "alicia@example.com"
	user, err := svc.Update(context.Background(), alice.ID, alice.ID, UpdateUserInput{
		Name:  &name,
		Email: &email,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Alicia" || user.Email != "alicia@example.com" {
		t.Errorf("unexpected user after update: %+v", user)
	}
	if users.users[alice.ID].Name != "Alicia" {
		t.Error("expected update to be persisted")
	}
}

func TestUserService_Update_Password(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")
	oldHash := alice.PasswordHash

	password := "new-secret"
	if _, err := svc.Update(context.Background(), alice.ID, alice.ID, UpdateUserInput{Password: &password}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newHash := users.users[alice.ID].PasswordHash
	if newHash == oldHash {
		t.Error("expected password hash to change")
	}
	if newHash == "new-secret" {
		t.Error("expected password to be hashed")
	}
}

func TestUserService_Update_OtherUserForbidden(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	users.add("Alice", "alice@example.com")
	bob := users.add("Bob", "bob@example.com")

	name := "Hijacked"
	_, err := svc.Update(context.Background(), 1, bob.ID, UpdateUserInput{Name: &name})
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Update_Validation(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")

	empty := ""
	bad := "not-an-email"
	tests := []struct {
		name  string
		input UpdateUserInput
	}{
		{"empty name", UpdateUserInput{Name: &empty}},
		{"malformed email", UpdateUserInput{Email: &bad}},
		{"empty password", UpdateUserInput{Password: &empty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), alice.ID, alice.ID, tt.input)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUserService_Update_RejectedPatchLeavesUserUntouched(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")

	// A patch that changes the name but carries an invalid password must
	// be rejected as a whole, not applied halfway.
	name := "Mallory"
	empty := ""
	_, err := svc.Update(context.Background(), alice.ID, alice.ID, UpdateUserInput{
		Name:     &name,
		Password: &empty,
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	stored := users.users[alice.ID]
	if stored.Name != "Alice" {
		t.Errorf("expected name to stay 'Alice' after rejected patch, got %q", stored.Name)
	}
	if stored.PasswordHash != alice.PasswordHash {
		t.Error("expected password hash to stay unchanged after rejected patch")
	}
}

func TestUserService_Delete(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	alice := users.add("Alice", "alice@example.com")

	if err := svc.Delete(context.Background(), alice.ID, alice.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := users.users[alice.ID]; ok {
		t.Error("expected user to be removed")
	}
}

func TestUserService_Delete_OtherUserForbidden(t *testing.T) {
	users, _, _, svc := newUserServiceFixture()
	bob := users.add("Bob", "bob@example.com")

	if err := svc.Delete(context.Background(), bob.ID+1, bob.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, ok := users.users[bob.ID]; !ok {
		t.Error("expected user to survive")
	}
}
