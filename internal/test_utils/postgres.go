package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/klokku-calendar/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestWithDB starts a Postgres container, applies all migrations and returns a pool
// that is closed together with the container when the test ends. The test is skipped
// when Docker is not available.
func TestWithDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithDatabase("klokku"),
		postgres.WithUsername("test_klokku"),
		postgres.WithPassword("test_klokku"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to read connection string: %v", err)
	}
	log.Infof("Postgres container started at %s", databaseURL)

	if err := database.Migrate(databaseURL); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	pool, err := database.Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
