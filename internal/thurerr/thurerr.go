// Package thurerr defines the typed error taxonomy shared by every
// fallible boundary in Thurbox. Callers use errors.As to recover the
// Kind and branch on it; nothing in this codebase panics to signal a
// recoverable condition.
package thurerr

import "fmt"

// Kind identifies which category of failure occurred.
type Kind string

const (
	BackendUnavailable Kind = "backend_unavailable"
	BackendTimeout     Kind = "backend_timeout"
	BackendProtocol    Kind = "backend_protocol"
	SpawnFailed        Kind = "spawn_failed"
	ChildExitedNonZero Kind = "child_exited_nonzero"
	StoreConflict      Kind = "store_conflict"
	StoreUnavailable   Kind = "store_unavailable"
	ValidationFailed   Kind = "validation_failed"
	WorktreeConflict   Kind = "worktree_conflict"
	RebaseConflict     Kind = "rebase_conflict"
	NotFound           Kind = "not_found"
	Forbidden          Kind = "forbidden"
)

// Error is the concrete error type carried across every fallible
// boundary. Detail is a short human-readable string suitable for direct
// display in the status bar; Cause is the wrapped underlying error, if
// any.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error

	// Field-specific context, populated by helpers below.
	Field      string // ValidationFailed
	EntityKind string // NotFound
	EntityID   string // NotFound
	ExitCode   int    // ChildExitedNonZero
	Signal     int    // ChildExitedNonZero
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, &thurerr.Error{Kind: k}) match any *Error in
// the chain whose Kind is k; Detail, Cause and the other fields are not
// compared, and a target that is not an *Error never matches.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

func Validation(field, reason string) *Error {
	return &Error{Kind: ValidationFailed, Detail: reason, Field: field}
}

func NotFoundErr(entityKind, entityID string) *Error {
	return &Error{Kind: NotFound, Detail: fmt.Sprintf("%s %s not found", entityKind, entityID), EntityKind: entityKind, EntityID: entityID}
}

func ForbiddenErr(reason string) *Error {
	return &Error{Kind: Forbidden, Detail: reason}
}

func ExitedNonZero(code, signal int) *Error {
	return &Error{Kind: ChildExitedNonZero, Detail: fmt.Sprintf("exit code %d signal %d", code, signal), ExitCode: code, Signal: signal}
}
