// Package testdb starts a throwaway Postgres for integration tests.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	database "github.com/sebuszqo/FinanceTracker/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const EnableEnv = "INTEGRATION_TESTS"

// Start runs a migrated Postgres container for the test and tears it down on cleanup.
// The test is skipped unless INTEGRATION_TESTS=1.
func Start(t *testing.T) *database.DBService {
	t.Helper()
	if os.Getenv(EnableEnv) != "1" {
		t.Skip("integration tests are disabled; set INTEGRATION_TESTS=1 to enable")
	}

	ctx := context.Background()
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("finance_tracker"),
		postgres.WithUsername("tracker"),
		postgres.WithPassword("tracker"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("could not terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("could not get connection string: %v", err)
	}

	db, err := database.NewDBService(connStr)
	if err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("could not migrate: %v", err)
	}
	return db
}

// CreateUser inserts a bare user row and returns its ID.
func CreateUser(t *testing.T, db *database.DBService, username string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.DB.Exec(
		`INSERT INTO users (id, username, email, password_hash, hash_token) VALUES ($1, $2, $3, 'x', 'x')`,
		id, username, username+"@example.com",
	)
	if err != nil {
		t.Fatalf("could not create user: %v", err)
	}
	return id
}
