package postgres

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testDatabaseURLEnv names a disposable database; tables are truncated per test.
const testDatabaseURLEnv = "PAYGATE_TEST_DATABASE_URL"

var testKey = bytes.Repeat([]byte{0x5a}, 32)

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set; skipping postgres integration test", testDatabaseURLEnv)
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := RunMigrations(pool); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE credential_accounts, legacy_credentials, operators`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return pool
}
