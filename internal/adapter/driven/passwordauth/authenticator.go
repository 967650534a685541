// Package passwordauth re-verifies operators against argon2id password hashes
// held in an OperatorStore.
package passwordauth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
	"github.com/ericfisherdev/paygate/internal/security/password"
)

var _ driven.Authenticator = (*Authenticator)(nil)

// Authenticator implements driven.Authenticator with email + password.
type Authenticator struct {
	operators driven.OperatorStore
	params    password.Params
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// New creates an Authenticator hashing new passwords with params.
func New(operators driven.OperatorStore, params password.Params, logger *slog.Logger) *Authenticator {
	return &Authenticator{operators: operators, params: params, logger: logger}
}

// Reauthenticate reports whether secret is the password of the operator
// identified by email. Unknown operators yield (false, nil).
func (a *Authenticator) Reauthenticate(ctx context.Context, identity, secret string) (bool, error) {
	op, err := a.operators.GetOperatorByEmail(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("look up operator: %w", err)
	}

	if op == nil {
		// Unknown identities still pay for one hash.
		password.Verify(secret, a.dummy())
		a.logger.Debug("reauthentication for unknown operator", "identity", identity)
		return false, nil
	}

	return password.Verify(secret, op.PasswordHash), nil
}

// Enroll stores an operator with a freshly hashed password, replacing the hash
// of an existing operator with the same email.
func (a *Authenticator) Enroll(ctx context.Context, email, plain string) (model.Operator, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Operator{}, fmt.Errorf("enroll operator: email is required")
	}

	hash, err := password.Hash(a.params, plain)
	if err != nil {
		return model.Operator{}, fmt.Errorf("enroll operator %q: %w", email, err)
	}

	op, err := a.operators.AddOperator(ctx, model.Operator{Email: email, PasswordHash: hash})
	if err != nil {
		return model.Operator{}, fmt.Errorf("enroll operator %q: %w", email, err)
	}

	a.logger.Info("operator enrolled", "email", op.Email)
	return op, nil
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		h, err := password.Hash(a.params, "paygate-dummy-password")
		if err == nil {
			a.dummyHash = h
		}
	})
	return a.dummyHash
}
