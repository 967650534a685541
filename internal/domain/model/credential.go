package model

import (
	"slices"
	"time"
)

// CredentialAccount is a provider credential set stored at one scope of the
// platform -> partner -> tenant hierarchy. ScopeID is empty for platform rows.
// At most one account exists per (Provider, ScopeType, ScopeID, Environment).
type CredentialAccount struct {
	ID          string
	Provider    string
	ScopeType   ScopeType
	ScopeID     string
	Environment Environment
	Payload     map[string]string // e.g. {"api_key": "..."}; shape depends on Provider
	Status      AccountStatus
	UpdatedAt   time.Time
}

// PayloadKeys returns the payload keys without their values, for output that
// must not reveal secrets. Keys are sorted.
func (a CredentialAccount) PayloadKeys() []string {
	keys := make([]string, 0, len(a.Payload))
	for k := range a.Payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LegacyCredential is a row of the unscoped credential table that predates
// scoped accounts. It holds a single stored value per provider.
type LegacyCredential struct {
	ID               string
	Provider         string
	MaskedCredential string
	IsActive         bool
	CreatedAt        time.Time
}
