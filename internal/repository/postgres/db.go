package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"shg-service/pkg/apperror"
)

// uniqueViolation is the Postgres error code for a unique constraint clash
const uniqueViolation = "23505"

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can run
// inside or outside a transaction
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// wrapQueryErr turns driver errors into application errors where the caller
// can act on them
func wrapQueryErr(err error, entity, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(apperror.KindNotFound, err, "%s not found", entity)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperror.Wrap(apperror.KindConflict, err, "%s already exists", entity)
	}

	return fmt.Errorf("failed to %s %s: %w", action, entity, err)
}

// checkAffected reports NotFound when an update touched no rows
func checkAffected(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return apperror.NotFound("%s not found", entity)
	}

	return nil
}
