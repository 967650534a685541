// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/paygate/internal/domain/model"
)

// Sentinel errors returned by store implementations. Adapters wrap them with
// context; callers classify with errors.Is.
var (
	// ErrStoreUnavailable indicates the backing store could not be reached or
	// the operation failed for infrastructure reasons. Not retried by adapters.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrConflict indicates a write was rejected by validation or by a
	// constraint other than the account natural key.
	ErrConflict = errors.New("credential store conflict")

	// ErrEncryptionKeyNotSet is returned by account operations when
	// PAYGATE_SECRET_KEY has not been configured.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PAYGATE_SECRET_KEY")
)

// CredentialStore defines the driven port over scoped credential accounts and
// the legacy credential table. The adapter layer is responsible for payload
// encryption; this interface operates on plaintext payloads.
type CredentialStore interface {
	// ListScopedByProvider returns every scoped account for provider across
	// all scopes, newest-updated first. Returns an empty slice when none exist.
	ListScopedByProvider(ctx context.Context, provider string) ([]model.CredentialAccount, error)

	// ListActiveLegacyByProvider returns legacy rows for provider with IsActive set.
	ListActiveLegacyByProvider(ctx context.Context, provider string) ([]model.LegacyCredential, error)

	// GetScoped returns the account stored under the natural key, or (nil, nil).
	GetScoped(ctx context.Context, provider string, scopeType model.ScopeType, scopeID string, env model.Environment) (*model.CredentialAccount, error)

	// UpsertScoped inserts the account or updates the row holding the same
	// (provider, scope type, scope id, environment). Both paths leave the same
	// end state. Returns ErrConflict on validation or unrelated constraint failures.
	UpsertScoped(ctx context.Context, account model.CredentialAccount) (model.CredentialAccount, error)

	// GetLegacyByID returns the legacy row with the given id, or (nil, nil).
	GetLegacyByID(ctx context.Context, id string) (*model.LegacyCredential, error)
}

// LegacySeeder writes legacy rows. Only the admin tooling uses it; the
// resolution and promotion flows treat the legacy table as read-only.
type LegacySeeder interface {
	AddLegacy(ctx context.Context, cred model.LegacyCredential) (model.LegacyCredential, error)
}
