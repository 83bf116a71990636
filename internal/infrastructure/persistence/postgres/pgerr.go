package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// uniqueConstraint returns the violated constraint name when err is a
// Postgres unique violation, so callers can tell which column collided.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != uniqueViolationCode {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// isNoRows matches both the pgx-native and database/sql no-row sentinels;
// queries run through either path depending on the caller.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}
