package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAccount() CredentialAccount {
	return CredentialAccount{
		Provider:    "stripe",
		ScopeType:   ScopeTenant,
		ScopeID:     "t1",
		Environment: EnvironmentProduction,
		Payload:     map[string]string{"secret_key": "sk_live_abc"},
	}
}

func TestCredentialAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CredentialAccount)
		wantErr string
	}{
		{name: "valid tenant", mutate: func(*CredentialAccount) {}},
		{name: "valid platform", mutate: func(a *CredentialAccount) { a.ScopeType = ScopePlatform; a.ScopeID = "" }},
		{name: "inactive status", mutate: func(a *CredentialAccount) { a.Status = AccountStatusInactive }},
		{name: "missing provider", mutate: func(a *CredentialAccount) { a.Provider = " " }, wantErr: "provider"},
		{name: "legacy scope", mutate: func(a *CredentialAccount) { a.ScopeType = ScopeLegacy }, wantErr: "scope type"},
		{name: "platform with scope id", mutate: func(a *CredentialAccount) { a.ScopeType = ScopePlatform }, wantErr: "scope id"},
		{name: "partner without scope id", mutate: func(a *CredentialAccount) { a.ScopeType = ScopePartner; a.ScopeID = "" }, wantErr: "scope id"},
		{name: "bad environment", mutate: func(a *CredentialAccount) { a.Environment = "staging" }, wantErr: "environment"},
		{name: "bad status", mutate: func(a *CredentialAccount) { a.Status = "paused" }, wantErr: "status"},
		{name: "empty payload", mutate: func(a *CredentialAccount) { a.Payload = nil }, wantErr: "empty"},
		{name: "empty payload key", mutate: func(a *CredentialAccount) { a.Payload = map[string]string{"": "x"} }, wantErr: "empty key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAccount()
			tt.mutate(&a)

			err := a.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
