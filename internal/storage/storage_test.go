package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/paygate/internal/config"
	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:  config.DriverSQLite,
		DBPath:    filepath.Join(t.TempDir(), "paygate.db"),
		SecretKey: bytes.Repeat([]byte{0x11}, 32),
	}
	ctx := context.Background()

	stores, err := Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	require.NoError(t, stores.Ping(ctx))

	stored, err := stores.Credentials.UpsertScoped(ctx, model.CredentialAccount{
		Provider:    "stripe",
		ScopeType:   model.ScopePlatform,
		Environment: model.EnvironmentProduction,
		Payload:     map[string]string{"secret_key": "sk_live_abcdef"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)

	_, err = stores.Operators.GetOperatorByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
}

func TestOpen_SQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paygate.db")
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: path}
	ctx := context.Background()

	first, err := Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	_, err = first.Credentials.AddLegacy(ctx, model.LegacyCredential{ID: "l1", Provider: "asaas", MaskedCredential: "$aact_prod_abcdef", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Credentials.GetLegacyByID(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)

	// No key configured: account operations are refused.
	_, err = second.Credentials.ListScopedByProvider(ctx, "asaas")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestOpen_SQLiteBadKey(t *testing.T) {
	cfg := &config.Config{
		DBDriver:  config.DriverSQLite,
		DBPath:    filepath.Join(t.TempDir(), "paygate.db"),
		SecretKey: []byte("short"),
	}

	_, err := Open(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "mysql"}, discardLogger())
	assert.ErrorContains(t, err, "unsupported db driver")
}

func TestOpen_Postgres(t *testing.T) {
	url := os.Getenv("PAYGATE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PAYGATE_TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	ctx := context.Background()

	stores, err := Open(ctx, &config.Config{DBDriver: config.DriverPostgres, DatabaseURL: url}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	assert.NoError(t, stores.Ping(ctx))
}
