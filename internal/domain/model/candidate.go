package model

import "time"

// Candidate is a normalized view of one stored credential considered while
// resolving which credential is authoritative for a provider. ID is the id
// of the scoped account or legacy row it was built from.
type Candidate struct {
	ID                string
	Source            CandidateSource
	Provider          string
	ScopeType         ScopeType
	ScopeID           string
	Environment       Environment
	Status            AccountStatus
	UpdatedAt         time.Time
	HasRealCredential bool
}

// IsPlatform reports whether the candidate is a scoped platform account.
func (c Candidate) IsPlatform() bool {
	return c.Source == SourceScoped && c.ScopeType == ScopePlatform
}
