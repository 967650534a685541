package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OperatorStore = (*OperatorRepo)(nil)

// OperatorRepo is the SQLite implementation of the OperatorStore port interface.
type OperatorRepo struct {
	db *DB
}

// NewOperatorRepo creates a new OperatorRepo backed by the given DB.
func NewOperatorRepo(db *DB) *OperatorRepo {
	return &OperatorRepo{db: db}
}

// AddOperator inserts the operator or replaces the password hash of the
// operator with the same email. The stored row is returned.
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

	const query = `
		INSERT INTO operators (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash
		RETURNING id, email, created_at
	`

	var createdAt string
	err := r.db.Writer.QueryRowContext(ctx, query, op.ID, op.Email, op.PasswordHash, formatTime(op.CreatedAt)).
		Scan(&op.ID, &op.Email, &createdAt)
	if err != nil {
		return model.Operator{}, storeError(fmt.Sprintf("add operator %q", op.Email), err)
	}

	op.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Operator{}, fmt.Errorf("parse created_at for operator %q: %w", op.Email, err)
	}

	return op, nil
}

// GetOperatorByEmail returns the operator with email (case-insensitive), or (nil, nil).
func (r *OperatorRepo) GetOperatorByEmail(ctx context.Context, email string) (*model.Operator, error) {
	const query = `SELECT id, email, password_hash, created_at FROM operators WHERE email = ?`

	var op model.Operator
	var createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query, strings.TrimSpace(email)).
		Scan(&op.ID, &op.Email, &op.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(fmt.Sprintf("get operator %q", email), err)
	}

	op.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for operator %q: %w", email, err)
	}

	return &op, nil
}
