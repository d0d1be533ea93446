// Package errs defines the explicit error-kind hierarchy surfaced by the
// external boundary (§7), replacing ad hoc string-matched HTTP statuses
// (the teacher's server.go uses bare http.Error calls) with typed errors
// distinguishable via errors.As/errors.Is.
package errs

import "fmt"

// Kind is a closed enumeration of the error categories in §7.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInfeasible Kind = "infeasible"
)

// Error is a kinded error carrying a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Validation reports a malformed request (unknown mode, unknown node id,
// malformed distribution, bad severity).
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing vehicle or incident id.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an operation that cannot proceed given current state
// (blocking an already-blocked edge, starting a continuous run that is
// already running, placing a random accident when no edge is occupied).
// A spawn with no feasible path is reported as Infeasible, and resolving an
// already-cleared accident as NotFound.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Infeasible reports that the graph is unreachable under current
// blockages/restrictions (from the Router).
func Infeasible(format string, args ...any) error {
	return &Error{Kind: KindInfeasible, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
