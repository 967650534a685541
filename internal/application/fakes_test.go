package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type naturalKey struct {
	provider string
	scope    model.ScopeType
	scopeID  string
	env      model.Environment
}

// fakeStore is an in-memory driven.CredentialStore that enforces the account
// natural key the same way the SQL adapters do.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[naturalKey]model.CredentialAccount
	legacy   []model.LegacyCredential
	nextID   int
	clock    time.Time

	listErr   error
	legacyErr error
	getErr    error
	upsertErr error

	upserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[naturalKey]model.CredentialAccount),
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) seedAccount(a model.CredentialAccount) model.CredentialAccount {
	stored, err := f.UpsertScoped(context.Background(), a)
	if err != nil {
		panic(err)
	}
	f.upserts--
	return stored
}

func (f *fakeStore) seedLegacy(l model.LegacyCredential) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.legacy = append(f.legacy, l)
}

func (f *fakeStore) ListScopedByProvider(_ context.Context, provider string) ([]model.CredentialAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := []model.CredentialAccount{}
	for _, a := range f.accounts {
		if a.Provider == provider {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) ListActiveLegacyByProvider(_ context.Context, provider string) ([]model.LegacyCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.legacyErr != nil {
		return nil, f.legacyErr
	}

	out := []model.LegacyCredential{}
	for _, l := range f.legacy {
		if l.Provider == provider && l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) GetScoped(_ context.Context, provider string, scopeType model.ScopeType, scopeID string, env model.Environment) (*model.CredentialAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}

	a, ok := f.accounts[naturalKey{provider, scopeType, scopeID, env}]
	if !ok {
		return nil, nil
	}
	cp := cloneAccount(a)
	return &cp, nil
}

func (f *fakeStore) UpsertScoped(_ context.Context, account model.CredentialAccount) (model.CredentialAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return model.CredentialAccount{}, f.upsertErr
	}
	if len(account.Payload) == 0 {
		return model.CredentialAccount{}, fmt.Errorf("empty payload: %w", driven.ErrConflict)
	}

	key := naturalKey{account.Provider, account.ScopeType, account.ScopeID, account.Environment}
	if existing, ok := f.accounts[key]; ok {
		account.ID = existing.ID
	} else {
		f.nextID++
		account.ID = fmt.Sprintf("acc-%d", f.nextID)
	}
	account.UpdatedAt = f.tick()
	account = cloneAccount(account)
	f.accounts[key] = account
	return cloneAccount(account), nil
}

func (f *fakeStore) GetLegacyByID(_ context.Context, id string) (*model.LegacyCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, l := range f.legacy {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) deleteLegacy(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.legacy {
		if l.ID == id {
			f.legacy = append(f.legacy[:i], f.legacy[i+1:]...)
			return
		}
	}
}

func cloneAccount(a model.CredentialAccount) model.CredentialAccount {
	payload := make(map[string]string, len(a.Payload))
	for k, v := range a.Payload {
		payload[k] = v
	}
	a.Payload = payload
	return a
}

// fakeAuthenticator accepts exactly one identity/secret pair.
type fakeAuthenticator struct {
	identity string
	secret   string
	err      error
	calls    int
}

func (f *fakeAuthenticator) Reauthenticate(_ context.Context, identity, secret string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return identity == f.identity && secret == f.secret, nil
}

type promotionObservation struct {
	provider, source, outcome string
}

type recordingMetrics struct {
	mu          sync.Mutex
	resolutions int
	promotions  []promotionObservation
}

func (m *recordingMetrics) ObserveResolution(string, bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolutions++
}

func (m *recordingMetrics) ObservePromotion(provider, source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions = append(m.promotions, promotionObservation{provider, source, outcome})
}
