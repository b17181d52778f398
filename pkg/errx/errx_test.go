package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("create cart: %w", Conflict("insufficient stock for %s", "Polo"))

	if !errors.Is(err, ErrConflict) {
		t.Fatalf("errors.Is(err, ErrConflict) = false, want true")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As(err, *AppError) = false, want true")
	}
	if appErr.Message != "insufficient stock for Polo" {
		t.Fatalf("Message = %q", appErr.Message)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("bad"), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("missing"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("busy"), want: http.StatusConflict},
		{name: "bare sentinel", err: fmt.Errorf("wrap: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "upstream", err: Upstream(errors.New("timeout"), "model failed"), want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Status(tt.err); got != tt.want {
				t.Fatalf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	t.Parallel()

	if got := Message(errors.New("pq: relation does not exist")); got != SystemErrorMessage {
		t.Fatalf("Message() = %q, want %q", got, SystemErrorMessage)
	}
	if got := Message(NotFound("cart 9 not found")); got != "cart 9 not found" {
		t.Fatalf("Message() = %q", got)
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	if got := Kind(Upstream(errors.New("x"), "y")); got != "upstream_error" {
		t.Fatalf("Kind() = %q, want upstream_error", got)
	}
	if got := Kind(fmt.Errorf("load: %w", ErrCorruptSession)); got != "corrupt_session" {
		t.Fatalf("Kind() = %q, want corrupt_session", got)
	}
}
