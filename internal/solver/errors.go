package solver

import (
	"errors"
	"fmt"
)

// AuthorizationError reports that a combined access-control expression
// evaluated to a plain False, denying the operation outright rather than
// residually filtering rows. Its message names the denied operation and
// the entity, e.g. "access: update denied for Concert".
type AuthorizationError struct {
	Entity string
	Op     string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("access: %s denied for %s", e.Op, e.Entity)
}

// NewAuthorizationError returns a new AuthorizationError for the given
// entity and operation name.
func NewAuthorizationError(entity, op string) *AuthorizationError {
	return &AuthorizationError{Entity: entity, Op: op}
}

// IsAuthorizationError returns true if err is an AuthorizationError.
func IsAuthorizationError(err error) bool {
	if err == nil {
		return false
	}
	var e *AuthorizationError
	return errors.As(err, &e)
}

// Authorize turns a decided precheck result into an error: nil when the
// expression allowed the operation, *AuthorizationError when it resolved
// to a plain False. An undecided result (Residue set) is not an
// authorization decision by itself — its Residue predicate must still be
// enforced as part of the database query, so Authorize only ever looks at
// the Decided case.
func Authorize(entity, op string, result PrecheckResult) error {
	if !result.Decided || result.Allow {
		return nil
	}
	return NewAuthorizationError(entity, op)
}
