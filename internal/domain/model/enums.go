package model

// ScopeType is the level of the hierarchy a credential applies to.
type ScopeType string

const (
	ScopePlatform ScopeType = "platform"
	ScopePartner  ScopeType = "partner"
	ScopeTenant   ScopeType = "tenant"

	// ScopeLegacy marks candidates read from the unscoped legacy table. It is
	// never persisted on a CredentialAccount.
	ScopeLegacy ScopeType = "legacy"
)

// Valid reports whether s is a scope a CredentialAccount may be stored at.
func (s ScopeType) Valid() bool {
	switch s {
	case ScopePlatform, ScopePartner, ScopeTenant:
		return true
	}
	return false
}

// Environment distinguishes sandbox credentials from production ones.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	return e == EnvironmentSandbox || e == EnvironmentProduction
}

// AccountStatus is the lifecycle state of a scoped credential account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// CandidateSource identifies which table a Candidate was read from.
type CandidateSource string

const (
	SourceScoped CandidateSource = "scoped"
	SourceLegacy CandidateSource = "legacy"
)
