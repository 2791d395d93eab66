//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestGetTestDB_MigratedSchema(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"engine_users", "engine_projects", "engine_memberships", "engine_tasks"} {
		var exists bool
		err := testDB.Pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist after migrations", table)
		}
	}
}

func TestGetTestDB_RowLevelSecurityOnTasks(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	var enabled bool
	err := testDB.Pool.QueryRow(ctx, `
		SELECT relrowsecurity FROM pg_class WHERE relname = 'engine_tasks'`).Scan(&enabled)
	if err != nil {
		t.Fatalf("failed to check row security: %v", err)
	}
	if !enabled {
		t.Error("expected row-level security to be enabled on engine_tasks")
	}
}

func TestGetTestRedis_Connection(t *testing.T) {
	testRedis := GetTestRedis(t)
	ctx := context.Background()

	if err := testRedis.Client.Set(ctx, "testhelpers:ping", "pong", 0).Err(); err != nil {
		t.Fatalf("failed to set key: %v", err)
	}
	value, err := testRedis.Client.Get(ctx, "testhelpers:ping").Result()
	if err != nil {
		t.Fatalf("failed to get key: %v", err)
	}
	if value != "pong" {
		t.Errorf("expected 'pong', got %q", value)
	}
}
