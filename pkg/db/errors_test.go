package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := fmt.Errorf("create cart: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "carts_user_id_key",
	})
	if !IsUniqueViolation(err, "user_id") {
		t.Fatal("pgx unique violation not detected")
	}
	if IsUniqueViolation(err, "order_id") {
		t.Fatal("matched the wrong constraint")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	if !IsUniqueViolation(err, "email") {
		t.Fatal("pq unique violation not detected")
	}
}

func TestIsUniqueViolationSqliteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: carts.user_id")
	if !IsUniqueViolation(err, "user_id") {
		t.Fatal("sqlite unique violation not detected")
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error classified as violation")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error classified as violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation classified as unique")
	}
}
