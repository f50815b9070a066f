// Package dbtest opens the integration test database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/nekogravitycat/party-booking-backend/internal/db"
)

// Open connects to TEST_DB_DSN, applies the schema and empties all tables.
// The test is skipped when TEST_DB_DSN is not set.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN environment variable is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("unable to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	Truncate(t, pool)

	return pool
}

// Truncate removes every row from the application tables.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), "TRUNCATE TABLE public.parties, public.users CASCADE"); err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
