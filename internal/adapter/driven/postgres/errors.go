package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

// integrityViolationClass is the SQLSTATE class for constraint violations
// (23505 unique, 23514 check, 23502 not null, 23503 foreign key).
const integrityViolationClass = "23"

// storeError attaches the port sentinel matching err: ErrConflict for
// integrity violations, ErrStoreUnavailable for everything else.
func storeError(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, driven.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %w", op, driven.ErrStoreUnavailable, err)
}

func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return len(pgErr.Code) == 5 && pgErr.Code[:2] == integrityViolationClass
}
