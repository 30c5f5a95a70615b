package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally scoped to a constraint or column name. Both postgres drivers
// are recognized by SQLSTATE; anything else falls back to message sniffing
// so the sqlite test driver is classified the same way.
func IsUniqueViolation(err error, name string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolationCode && matchesName(pgxErr.ConstraintName+" "+pgxErr.Detail, name)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode && matchesName(pqErr.Constraint+" "+pqErr.Detail, name)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return matchesName(msg, name)
}

func matchesName(haystack, name string) bool {
	if name == "" {
		return true
	}
	return strings.Contains(haystack, name)
}
