// File path: internal/bench/errors.go
package bench

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input. It is surfaced to the
// caller before any side effect occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports an identifier collision or duplicate natural key.
type ConflictError struct {
	Resource string
	ID       int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d already exists", e.Resource, e.ID)
}

// UnauthorizedError reports a failed policy check. No state is mutated.
type UnauthorizedError struct {
	Username  string
	Operation string
}

func (e *UnauthorizedError) Error() string {
	name := e.Username
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("unauthorized: %s may not %s", name, e.Operation)
}

// NotFoundError reports a missing experiment.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("experiment %d not found", e.ID)
}

// PartialFailure records an auxiliary step (mirror write, file archival) that
// failed after the authoritative database commit succeeded. The operation it
// decorates still reports success; the database remains consistent.
type PartialFailure struct {
	Step string
	Err  error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s failed after commit: %v", e.Step, e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsUnauthorized reports whether err is (or wraps) an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var u *UnauthorizedError
	return errors.As(err, &u)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
