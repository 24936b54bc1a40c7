package portal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a missing student, fee, announcement or item.
var ErrNotFound = errors.New("not found")

// errNoChange aborts an Update that would rewrite identical state.
var errNoChange = errors.New("no change")

// AuthorizationError rejects a verb invoked without the required role.
// The check sits in the domain layer so no caller can bypass it.
type AuthorizationError struct {
	Verb string
	Role Role
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s requires admin rights (role %q)", e.Verb, e.Role)
}

// FieldError flags one invalid input field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError rejects malformed input before any state changes.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// FeeStateError rejects a fee transition that would skip backward or
// repeat a terminal state.
type FeeStateError struct {
	FeeID string
	From  FeeStatus
	To    FeeStatus
}

func (e *FeeStateError) Error() string {
	return fmt.Sprintf("fee %s cannot move from %s to %s", e.FeeID, e.From, e.To)
}
