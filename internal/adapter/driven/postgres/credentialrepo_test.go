package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

func setupCredentialRepo(t *testing.T) *CredentialRepo {
	t.Helper()
	repo, err := NewCredentialRepo(setupTestPool(t), testKey)
	require.NoError(t, err)
	return repo
}

func stripePlatform(value string) model.CredentialAccount {
	return model.CredentialAccount{
		Provider:    "stripe",
		ScopeType:   model.ScopePlatform,
		Environment: model.EnvironmentProduction,
		Payload:     map[string]string{"secret_key": value},
	}
}

func TestCredentialRepo_UpsertKeepsID(t *testing.T) {
	repo := setupCredentialRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertScoped(ctx, stripePlatform("sk_live_first"))
	require.NoError(t, err)
	second, err := repo.UpsertScoped(ctx, stripePlatform("sk_live_second"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.GetScoped(ctx, "stripe", model.ScopePlatform, "", model.EnvironmentProduction)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sk_live_second", got.Payload["secret_key"])
	assert.Equal(t, model.AccountStatusActive, got.Status)
}

func TestCredentialRepo_ConcurrentUpsertsConverge(t *testing.T) {
	repo := setupCredentialRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpsertScoped(ctx, stripePlatform(fmt.Sprintf("sk_live_%02d", i)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	accounts, err := repo.ListScopedByProvider(ctx, "stripe")
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestCredentialRepo_ListNewestFirst(t *testing.T) {
	repo := setupCredentialRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	repo.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	ctx := context.Background()

	older, err := repo.UpsertScoped(ctx, model.CredentialAccount{
		Provider: "stripe", ScopeType: model.ScopeTenant, ScopeID: "t1",
		Environment: model.EnvironmentProduction, Payload: map[string]string{"secret_key": "sk_live_t1"},
	})
	require.NoError(t, err)
	newer, err := repo.UpsertScoped(ctx, stripePlatform("sk_live_platform"))
	require.NoError(t, err)

	accounts, err := repo.ListScopedByProvider(ctx, "stripe")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, newer.ID, accounts[0].ID)
	assert.Equal(t, older.ID, accounts[1].ID)
}

func TestCredentialRepo_InvalidAccountIsConflict(t *testing.T) {
	repo := setupCredentialRepo(t)

	_, err := repo.UpsertScoped(context.Background(), model.CredentialAccount{
		Provider: "stripe", ScopeType: model.ScopeTenant,
		Environment: model.EnvironmentProduction, Payload: map[string]string{"secret_key": "x"},
	})
	assert.ErrorIs(t, err, driven.ErrConflict)
}

func TestCredentialRepo_Legacy(t *testing.T) {
	repo := setupCredentialRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	older, err := repo.AddLegacy(ctx, model.LegacyCredential{Provider: "stripe", MaskedCredential: "sk_live_older_value", IsActive: true, CreatedAt: base})
	require.NoError(t, err)
	newer, err := repo.AddLegacy(ctx, model.LegacyCredential{Provider: "stripe", MaskedCredential: "sk_live_newer_value", IsActive: true, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = repo.AddLegacy(ctx, model.LegacyCredential{Provider: "stripe", MaskedCredential: "sk_live_inactive", IsActive: false, CreatedAt: base})
	require.NoError(t, err)

	creds, err := repo.ListActiveLegacyByProvider(ctx, "stripe")
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, newer.ID, creds[0].ID)
	assert.Equal(t, older.ID, creds[1].ID)
	assert.True(t, creds[0].CreatedAt.Equal(newer.CreatedAt))

	got, err := repo.GetLegacyByID(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sk_live_older_value", got.MaskedCredential)

	missing, err := repo.GetLegacyByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.AddLegacy(ctx, model.LegacyCredential{ID: older.ID, Provider: "stripe", MaskedCredential: "dup", IsActive: true})
	assert.ErrorIs(t, err, driven.ErrConflict)
}

func TestCredentialRepo_NoKey(t *testing.T) {
	repo, err := NewCredentialRepo(setupTestPool(t), nil)
	require.NoError(t, err)

	_, err = repo.ListScopedByProvider(context.Background(), "stripe")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}
