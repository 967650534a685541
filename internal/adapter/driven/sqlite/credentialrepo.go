package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
	"github.com/ericfisherdev/paygate/internal/security/secretbox"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CredentialStore = (*CredentialRepo)(nil)
	_ driven.LegacySeeder    = (*CredentialRepo)(nil)
)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Account payloads are sealed with AES-256-GCM before write and opened after
// read; legacy rows are stored as-is.
type CredentialRepo struct {
	db  *DB
	box *secretbox.Box // nil when no encryption key is configured.
	now func() time.Time
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes, or nil
// to disable account storage (account operations return ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) (*CredentialRepo, error) {
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

// ListScopedByProvider returns all accounts for provider, newest-updated first.
func (r *CredentialRepo) ListScopedByProvider(ctx context.Context, provider string) ([]model.CredentialAccount, error) {
	if r.box == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT ` + accountColumns + ` FROM credential_accounts
		WHERE provider = ?
		ORDER BY updated_at DESC, id`

	rows, err := r.db.Reader.QueryContext(ctx, query, provider)
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

// GetScoped returns the account stored under the natural key, or (nil, nil).
func (r *CredentialRepo) GetScoped(ctx context.Context, provider string, scopeType model.ScopeType, scopeID string, env model.Environment) (*model.CredentialAccount, error) {
	if r.box == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT ` + accountColumns + ` FROM credential_accounts
		WHERE provider = ? AND scope_type = ? AND scope_id = ? AND environment = ?`

	row := r.db.Reader.QueryRowContext(ctx, query, provider, string(scopeType), scopeID, string(env))
	account, err := r.scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// UpsertScoped inserts account or, when a row with the same natural key
// exists, replaces its payload and status. The existing row keeps its id.
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

	const query = `
		INSERT INTO credential_accounts (id, provider, scope_type, scope_id, environment, payload, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider, scope_type, scope_id, environment) DO UPDATE SET
			payload = excluded.payload,
			status = excluded.status,
			updated_at = excluded.updated_at
		RETURNING id, updated_at
	`

	var id, updatedAt string
	err = r.db.Writer.QueryRowContext(ctx, query,
		uuid.NewString(),
		account.Provider,
		string(account.ScopeType),
		account.ScopeID,
		string(account.Environment),
		sealed,
		string(account.Status),
		formatTime(r.now()),
	).Scan(&id, &updatedAt)
	if err != nil {
		return model.CredentialAccount{}, storeError(
			fmt.Sprintf("upsert account %s/%s/%s/%s", account.Provider, account.ScopeType, account.ScopeID, account.Environment), err)
	}

	account.ID = id
	account.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.CredentialAccount{}, fmt.Errorf("parse updated_at for account %q: %w", id, err)
	}

	return account, nil
}

// ListActiveLegacyByProvider returns active legacy rows, newest first.
func (r *CredentialRepo) ListActiveLegacyByProvider(ctx context.Context, provider string) ([]model.LegacyCredential, error) {
	const query = `SELECT id, provider, masked_credential, is_active, created_at
		FROM legacy_credentials
		WHERE provider = ? AND is_active = 1
		ORDER BY created_at DESC, id`

	rows, err := r.db.Reader.QueryContext(ctx, query, provider)
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

// GetLegacyByID returns the legacy row with id, or (nil, nil).
func (r *CredentialRepo) GetLegacyByID(ctx context.Context, id string) (*model.LegacyCredential, error) {
	const query = `SELECT id, provider, masked_credential, is_active, created_at
		FROM legacy_credentials WHERE id = ?`

	cred, err := scanLegacy(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cred, nil
}

// AddLegacy inserts a legacy row. An empty ID is replaced by a new UUID and a
// zero CreatedAt by the current time.
func (r *CredentialRepo) AddLegacy(ctx context.Context, cred model.LegacyCredential) (model.LegacyCredential, error) {
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = r.now()
	}
	cred.CreatedAt = cred.CreatedAt.UTC()

	const query = `INSERT INTO legacy_credentials (id, provider, masked_credential, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		cred.ID, cred.Provider, cred.MaskedCredential, cred.IsActive, formatTime(cred.CreatedAt))
	if err != nil {
		return model.LegacyCredential{}, storeError(fmt.Sprintf("add legacy credential for %q", cred.Provider), err)
	}

	return cred, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *CredentialRepo) scanAccount(row scanner) (model.CredentialAccount, error) {
	var account model.CredentialAccount
	var scopeType, env, status, sealed, updatedAt string
	err := row.Scan(&account.ID, &account.Provider, &scopeType, &account.ScopeID, &env, &sealed, &status, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account, err
	}
	if err != nil {
		return account, storeError("scan account", err)
	}

	account.ScopeType = model.ScopeType(scopeType)
	account.Environment = model.Environment(env)
	account.Status = model.AccountStatus(status)

	account.Payload, err = r.box.OpenPayload(sealed)
	if err != nil {
		return account, fmt.Errorf("decrypt account %q: %w", account.ID, err)
	}

	account.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return account, fmt.Errorf("parse updated_at for account %q: %w", account.ID, err)
	}

	return account, nil
}

func scanLegacy(row scanner) (model.LegacyCredential, error) {
	var (
		cred      model.LegacyCredential
		createdAt string
	)
	err := row.Scan(&cred.ID, &cred.Provider, &cred.MaskedCredential, &cred.IsActive, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cred, err
	}
	if err != nil {
		return cred, storeError("scan legacy credential", err)
	}

	cred.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return cred, fmt.Errorf("parse created_at for legacy credential %q: %w", cred.ID, err)
	}

	return cred, nil
}
