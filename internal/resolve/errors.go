package resolve

import (
	"errors"
	"fmt"
)

// UserDisplayError is a message a subsystem or interceptor raises
// deliberately for the caller to see (e.g. "cannot delete a venue with
// upcoming concerts"). Unlike DatabaseError, its text is passed through to
// the client verbatim.
type UserDisplayError struct {
	Msg string
}

func (e *UserDisplayError) Error() string { return e.Msg }

// NewUserDisplayError returns a new UserDisplayError with the given message.
func NewUserDisplayError(msg string) *UserDisplayError {
	return &UserDisplayError{Msg: msg}
}

// IsUserDisplayError returns true if err is a UserDisplayError.
func IsUserDisplayError(err error) bool {
	if err == nil {
		return false
	}
	var e *UserDisplayError
	return errors.As(err, &e)
}

// DatabaseError wraps a lower-level SQL failure surfaced by a subsystem
// resolver. Its Error() carries the real detail for server-side logging;
// UserMessage always returns a constant string, since database errors are
// never safe to show a caller verbatim.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("resolve: database: %v", e.Err) }
func (e *DatabaseError) Unwrap() error { return e.Err }

// UserMessage is the fixed, detail-free message shown to the caller.
func (e *DatabaseError) UserMessage() string { return "Operation failed" }

// NewDatabaseError returns a new DatabaseError wrapping err.
func NewDatabaseError(err error) *DatabaseError {
	return &DatabaseError{Err: err}
}

// IsDatabaseError returns true if err is a DatabaseError.
func IsDatabaseError(err error) bool {
	if err == nil {
		return false
	}
	var e *DatabaseError
	return errors.As(err, &e)
}

// AroundInterceptorReturnedNoResponseError reports that an around
// interceptor called proceed (or not) but returned a nil response without
// an error, breaking its contract with Dispatch. InterceptorID identifies
// which declared interceptor violated it, for the detailed server log the
// client response deliberately omits.
type AroundInterceptorReturnedNoResponseError struct {
	InterceptorID string
}

func (e *AroundInterceptorReturnedNoResponseError) Error() string {
	return fmt.Sprintf("resolve: around interceptor %s returned no response", e.InterceptorID)
}

// IsAroundInterceptorReturnedNoResponse returns true if err is an
// AroundInterceptorReturnedNoResponseError.
func IsAroundInterceptorReturnedNoResponse(err error) bool {
	if err == nil {
		return false
	}
	var e *AroundInterceptorReturnedNoResponseError
	return errors.As(err, &e)
}

// UserMessage extracts the text safe to return to an external caller. If
// err's chain contains a DatabaseError anywhere, its fixed UserMessage is
// returned instead of err's own text, so wrapped database detail never
// reaches the caller; otherwise err.Error() is returned as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DatabaseError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return err.Error()
}
