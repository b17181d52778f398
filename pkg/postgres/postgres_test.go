package postgres

import (
	"context"
	"testing"
)

func TestEnabled(t *testing.T) {
	t.Parallel()

	if (&Config{}).Enabled() {
		t.Fatal("Enabled() = true for empty dsn")
	}
	if !(&Config{DSN: "postgres://u:p@localhost:5432/wholesale?sslmode=disable"}).Enabled() {
		t.Fatal("Enabled() = false for a dsn")
	}
}

func TestNewWithoutDSN(t *testing.T) {
	t.Parallel()

	if _, err := (&Config{DSN: "  "}).New(context.Background()); err == nil {
		t.Fatal("New() error = nil, want missing dsn error")
	}
}
