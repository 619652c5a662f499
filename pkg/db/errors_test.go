package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgconn(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "idx_inventory_items_name"}
	wrapped := fmt.Errorf("create item: %w", err)

	if !IsUniqueViolation(wrapped, "idx_inventory_items_name") {
		t.Fatal("expected unique violation for matching constraint")
	}
	if IsUniqueViolation(wrapped, "idx_sites_site_name") {
		t.Fatal("expected no match for different constraint")
	}
	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected match with empty constraint name")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "idx_users_email"}
	if !IsUniqueViolation(err, "idx_users_email") {
		t.Fatal("expected unique violation")
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error should not match")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), "") {
		t.Fatal("sqlite message should match fallback")
	}
}
