// Package errs defines the closed error taxonomy shared by the engine's
// core packages, mirroring the teacher repo's fmt.Errorf wrapping style
// but letting callers discriminate on error kind via errors.As.
package errs

import "fmt"

// Kind enumerates the error categories the engine can raise. Numerical
// recovery (posterior underflow) and empty-state risk computation are
// deliberately absent: per spec.md §7 those are design-valid outcomes,
// not errors.
type Kind string

const (
	// InvalidInput covers unknown module ids, items missing from the
	// pool, negative response times, and any call into a stopped
	// session.
	InvalidInput Kind = "invalid_input"
	// SnapshotMalformed covers a from_snapshot call given a missing or
	// ill-typed field.
	SnapshotMalformed Kind = "snapshot_malformed"
)

// ScreeningError is the single error type returned by the engine's
// public API for all InvalidInput/SnapshotMalformed conditions.
type ScreeningError struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *ScreeningError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes a wrapped cause, if any, for errors.Is/As chains.
func (e *ScreeningError) Unwrap() error {
	return e.err
}

// New builds a ScreeningError with no wrapped cause.
func New(kind Kind, msg string, args ...any) *ScreeningError {
	return &ScreeningError{Kind: kind, Msg: fmt.Sprintf(msg, args...)}
}

// Wrap builds a ScreeningError around an existing error, preserving it
// for errors.Unwrap while attaching a Kind a caller can match on.
func Wrap(kind Kind, cause error, msg string, args ...any) *ScreeningError {
	return &ScreeningError{Kind: kind, Msg: fmt.Sprintf(msg, args...), err: cause}
}

// Is reports whether err is a ScreeningError of the given Kind.
func Is(err error, kind Kind) bool {
	se, ok := err.(*ScreeningError)
	if !ok {
		return false
	}
	return se.Kind == kind
}
