package driven

import (
	"context"

	"github.com/ericfisherdev/paygate/internal/domain/model"
)

// OperatorStore persists platform operators and their password hashes.
type OperatorStore interface {
	// AddOperator creates the operator or replaces the password hash of an
	// existing operator with the same email.
	AddOperator(ctx context.Context, op model.Operator) (model.Operator, error)

	// GetOperatorByEmail returns the operator, or (nil, nil). Email matching
	// is case-insensitive.
	GetOperatorByEmail(ctx context.Context, email string) (*model.Operator, error)
}
