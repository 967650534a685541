package model

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the invariants a CredentialAccount must hold before it is
// written. Status may be empty and is then treated as active by the stores.
func (a CredentialAccount) Validate() error {
	if strings.TrimSpace(a.Provider) == "" {
		return errors.New("provider is required")
	}
	if !a.ScopeType.Valid() {
		return fmt.Errorf("invalid scope type %q", a.ScopeType)
	}
	if a.ScopeType == ScopePlatform && a.ScopeID != "" {
		return errors.New("platform accounts must not carry a scope id")
	}
	if a.ScopeType != ScopePlatform && strings.TrimSpace(a.ScopeID) == "" {
		return fmt.Errorf("%s accounts require a scope id", a.ScopeType)
	}
	if !a.Environment.Valid() {
		return fmt.Errorf("invalid environment %q", a.Environment)
	}
	switch a.Status {
	case "", AccountStatusActive, AccountStatusInactive:
	default:
		return fmt.Errorf("invalid status %q", a.Status)
	}
	if len(a.Payload) == 0 {
		return errors.New("credential payload is empty")
	}
	for k := range a.Payload {
		if strings.TrimSpace(k) == "" {
			return errors.New("credential payload has an empty key")
		}
	}
	return nil
}
