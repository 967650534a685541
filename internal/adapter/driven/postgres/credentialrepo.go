package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
	"github.com/ericfisherdev/paygate/internal/security/secretbox"
)

var (
	_ driven.CredentialStore = (*CredentialRepo)(nil)
	_ driven.LegacySeeder    = (*CredentialRepo)(nil)
)

// CredentialRepo is the PostgreSQL implementation of the CredentialStore port.
// Payloads are sealed the same way as the SQLite store, so keys are portable
// between the two backends.
type CredentialRepo struct {
	db  Querier
	box *secretbox.Box
	now func() time.Time
}

// NewCredentialRepo creates a CredentialRepo. A nil key disables account
// storage; account operations then return ErrEncryptionKeyNotSet.
func NewCredentialRepo(db Querier, key []byte) (*CredentialRepo, error) {
	repo := &CredentialRepo{db: db, now: time.Now}
	if key != nil {
		box, err := secretbox.New(key)
		if err != nil {
			return nil, fmt.Errorf("credential repo: %w", err)
		}
		repo.box = box
	}
	return repo, nil
}

const accountColumns = `id, provider, scope_type, scope_id, environment, payload, status, updated_at`

func (r *CredentialRepo) ListScopedByProvider(ctx context.Context, provider string) ([]model.CredentialAccount, error) {
	if r.box == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const q = `
SELECT ` + accountColumns + `
FROM credential_accounts
WHERE provider = $1
ORDER BY updated_at DESC, id;
`
	rows, err := r.db.Query(ctx, q, provider)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list accounts for %q", provider), err)
	}
	defer rows.Close()

	accounts := []model.CredentialAccount{}
	for rows.Next() {
		account, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate accounts", err)
	}
	return accounts, nil
}

func (r *CredentialRepo) GetScoped(ctx context.Context, provider string, scopeType model.ScopeType, scopeID string, env model.Environment) (*model.CredentialAccount, error) {
	if r.box == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const q = `
SELECT ` + accountColumns + `
FROM credential_accounts
WHERE provider = $1 AND scope_type = $2 AND scope_id = $3 AND environment = $4;
`
	account, err := r.scanAccount(r.db.QueryRow(ctx, q, provider, string(scopeType), scopeID, string(env)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpsertScoped writes account under its natural key in a single statement;
// concurrent writers for the same key converge on one row.
func (r *CredentialRepo) UpsertScoped(ctx context.Context, account model.CredentialAccount) (model.CredentialAccount, error) {
	if r.box == nil {
		return model.CredentialAccount{}, driven.ErrEncryptionKeyNotSet
	}
	if err := account.Validate(); err != nil {
		return model.CredentialAccount{}, fmt.Errorf("upsert account: %w: %w", driven.ErrConflict, err)
	}
	if account.Status == "" {
		account.Status = model.AccountStatusActive
	}

	sealed, err := r.box.SealPayload(account.Payload)
	if err != nil {
		return model.CredentialAccount{}, err
	}

	const q = `
INSERT INTO credential_accounts (id, provider, scope_type, scope_id, environment, payload, status, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (provider, scope_type, scope_id, environment) DO UPDATE SET
	payload    = EXCLUDED.payload,
	status     = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at
RETURNING id, updated_at;
`
	err = r.db.QueryRow(ctx, q,
		uuid.NewString(),
		account.Provider,
		string(account.ScopeType),
		account.ScopeID,
		string(account.Environment),
		sealed,
		string(account.Status),
		r.now().UTC(),
	).Scan(&account.ID, &account.UpdatedAt)
	if err != nil {
		return model.CredentialAccount{}, storeError(
			fmt.Sprintf("upsert account %s/%s/%s/%s", account.Provider, account.ScopeType, account.ScopeID, account.Environment), err)
	}
	account.UpdatedAt = account.UpdatedAt.UTC()

	return account, nil
}

func (r *CredentialRepo) ListActiveLegacyByProvider(ctx context.Context, provider string) ([]model.LegacyCredential, error) {
	const q = `
SELECT id, provider, masked_credential, is_active, created_at
FROM legacy_credentials
WHERE provider = $1 AND is_active
ORDER BY created_at DESC, id;
`
	rows, err := r.db.Query(ctx, q, provider)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list legacy credentials for %q", provider), err)
	}
	defer rows.Close()

	creds := []model.LegacyCredential{}
	for rows.Next() {
		cred, err := scanLegacy(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate legacy credentials", err)
	}
	return creds, nil
}

func (r *CredentialRepo) GetLegacyByID(ctx context.Context, id string) (*model.LegacyCredential, error) {
	const q = `
SELECT id, provider, masked_credential, is_active, created_at
FROM legacy_credentials
WHERE id = $1;
`
	cred, err := scanLegacy(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// AddLegacy inserts a legacy row, filling in a UUID and creation time when absent.
func (r *CredentialRepo) AddLegacy(ctx context.Context, cred model.LegacyCredential) (model.LegacyCredential, error) {
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = r.now()
	}
	// Postgres keeps microseconds.
	cred.CreatedAt = cred.CreatedAt.UTC().Truncate(time.Microsecond)

	const q = `
INSERT INTO legacy_credentials (id, provider, masked_credential, is_active, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := r.db.Exec(ctx, q, cred.ID, cred.Provider, cred.MaskedCredential, cred.IsActive, cred.CreatedAt); err != nil {
		return model.LegacyCredential{}, storeError(fmt.Sprintf("add legacy credential for %q", cred.Provider), err)
	}
	return cred, nil
}

func (r *CredentialRepo) scanAccount(row pgx.Row) (model.CredentialAccount, error) {
	var account model.CredentialAccount
	var scopeType, env, status, sealed string
	err := row.Scan(&account.ID, &account.Provider, &scopeType, &account.ScopeID, &env, &sealed, &status, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return account, err
	}
	if err != nil {
		return account, storeError("scan account", err)
	}

	account.ScopeType = model.ScopeType(scopeType)
	account.Environment = model.Environment(env)
	account.Status = model.AccountStatus(status)
	account.UpdatedAt = account.UpdatedAt.UTC()

	account.Payload, err = r.box.OpenPayload(sealed)
	if err != nil {
		return account, fmt.Errorf("decrypt account %q: %w", account.ID, err)
	}
	return account, nil
}

func scanLegacy(row pgx.Row) (model.LegacyCredential, error) {
	var cred model.LegacyCredential
	err := row.Scan(&cred.ID, &cred.Provider, &cred.MaskedCredential, &cred.IsActive, &cred.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return cred, err
	}
	if err != nil {
		return cred, storeError("scan legacy credential", err)
	}
	cred.CreatedAt = cred.CreatedAt.UTC()
	return cred, nil
}
