package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

var _ driven.OperatorStore = (*OperatorRepo)(nil)

// OperatorRepo is the PostgreSQL implementation of the OperatorStore port.
type OperatorRepo struct {
	db Querier
}

func NewOperatorRepo(db Querier) *OperatorRepo {
	return &OperatorRepo{db: db}
}

// AddOperator inserts the operator or replaces the password hash of the
// operator whose email matches case-insensitively.
func (r *OperatorRepo) AddOperator(ctx context.Context, op model.Operator) (model.Operator, error) {
	op.Email = strings.TrimSpace(op.Email)
	if op.Email == "" || op.PasswordHash == "" {
		return model.Operator{}, fmt.Errorf("add operator: %w: email and password hash are required", driven.ErrConflict)
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO operators (id, email, password_hash, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (lower(email)) DO UPDATE SET
	password_hash = EXCLUDED.password_hash
RETURNING id, email, created_at;
`
	err := r.db.QueryRow(ctx, q, op.ID, op.Email, op.PasswordHash, op.CreatedAt.UTC()).
		Scan(&op.ID, &op.Email, &op.CreatedAt)
	if err != nil {
		return model.Operator{}, storeError(fmt.Sprintf("add operator %q", op.Email), err)
	}
	op.CreatedAt = op.CreatedAt.UTC()
	return op, nil
}

func (r *OperatorRepo) GetOperatorByEmail(ctx context.Context, email string) (*model.Operator, error) {
	const q = `
SELECT id, email, password_hash, created_at
FROM operators
WHERE lower(email) = lower($1);
`
	var op model.Operator
	err := r.db.QueryRow(ctx, q, strings.TrimSpace(email)).
		Scan(&op.ID, &op.Email, &op.PasswordHash, &op.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(fmt.Sprintf("get operator %q", email), err)
	}
	op.CreatedAt = op.CreatedAt.UTC()
	return &op, nil
}
