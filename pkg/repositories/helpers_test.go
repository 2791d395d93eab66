//go:build integration

package repositories

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/tasklane-io/tasklane-engine/pkg/database"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/testhelpers"
)

var emailCounter atomic.Int64

// uniqueEmail returns an email address unused by other tests in the run.
func uniqueEmail() string {
	return fmt.Sprintf("user%d@example.com", emailCounter.Add(1))
}

// globalCtx returns a context carrying an unscoped database connection.
func globalCtx(t *testing.T) context.Context {
	t.Helper()

	db := testhelpers.GetTestDB(t)
	scope, err := db.DB.WithoutTenant(context.Background())
	if err != nil {
		t.Fatalf("failed to acquire connection: %v", err)
	}
	t.Cleanup(scope.Close)

	return database.SetTenantScope(context.Background(), scope)
}

// tenantCtx returns a context carrying a connection scoped to the project.
func tenantCtx(t *testing.T, projectID int64) context.Context {
	t.Helper()

	db := testhelpers.GetTestDB(t)
	scope, err := db.DB.WithTenant(context.Background(), projectID)
	if err != nil {
		t.Fatalf("failed to acquire tenant connection: %v", err)
	}
	t.Cleanup(scope.Close)

	return database.SetTenantScope(context.Background(), scope)
}

// createTestUser inserts a user with a unique email.
func createTestUser(t *testing.T, ctx context.Context) *models.User {
	t.Helper()

	user := &models.User{
		Name:         "Test User",
		Email:        uniqueEmail(),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
	}
	if err := NewUserRepository().Create(ctx, user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestProject inserts a project.
func createTestProject(t *testing.T, ctx context.Context, title string) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:              title,
		DefaultAccessLevel: models.AccessReader,
	}
	if err := NewProjectRepository().Create(ctx, project); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}
