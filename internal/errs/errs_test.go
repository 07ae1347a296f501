package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsMessageAndKind(t *testing.T) {
	err := New(InvalidInput, "item %d not in pool", 42)
	if err.Kind != InvalidInput {
		t.Fatalf("expected kind %q, got %q", InvalidInput, err.Kind)
	}
	want := "invalid_input: item 42 not in pool"
	if err.Error() != want {
		t.Fatalf("expected message %q, got %q", want, err.Error())
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(SnapshotMalformed, cause, "bad field %s", "theta_grid")

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Fatal("expected Unwrap to return the wrapped cause")
	}

	want := "snapshot_malformed: bad field theta_grid: underlying failure"
	if err.Error() != want {
		t.Fatalf("expected message %q, got %q", want, err.Error())
	}
}

func TestErrorsAsResolvesToScreeningError(t *testing.T) {
	var err error = New(InvalidInput, "negative rt_seconds")

	var se *ScreeningError
	if !errors.As(err, &se) {
		t.Fatal("expected errors.As to resolve a *ScreeningError")
	}
	if se.Kind != InvalidInput {
		t.Fatalf("expected kind %q, got %q", InvalidInput, se.Kind)
	}
}

func TestErrorsAsResolvesThroughFmtWrapping(t *testing.T) {
	inner := New(InvalidInput, "unknown module_id ran2")
	wrapped := fmt.Errorf("processing response: %w", inner)

	var se *ScreeningError
	if !errors.As(wrapped, &se) {
		t.Fatal("expected errors.As to unwrap through fmt.Errorf's %w chain")
	}
	if se.Kind != InvalidInput {
		t.Fatalf("expected kind %q, got %q", InvalidInput, se.Kind)
	}
}

func TestIsMatchesKindOnScreeningError(t *testing.T) {
	err := New(InvalidInput, "session already stopped")
	if !Is(err, InvalidInput) {
		t.Fatal("expected Is to match InvalidInput")
	}
	if Is(err, SnapshotMalformed) {
		t.Fatal("expected Is to reject a mismatched kind")
	}
}

func TestIsReturnsFalseForNonScreeningError(t *testing.T) {
	if Is(errors.New("plain error"), InvalidInput) {
		t.Fatal("expected Is to return false for a non-ScreeningError")
	}
}
