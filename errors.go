package exocore

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("exocore: entity not found")

	// ErrNonUniqueResult is returned when a query declared unique matches
	// more than one row.
	ErrNonUniqueResult = errors.New("exocore: query matched more than one row")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("exocore: cannot start a transaction within a transaction")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("exocore: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("exocore: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NonUniqueResultError represents spec's NonUniqueResult(n) kind: a query
// declared to return exactly one row matched more than one. The user-facing
// message is always opaque; Count is for server-side logging only.
type NonUniqueResultError struct {
	label string
	count int // Number of results returned (-1 if unknown)
}

// Error returns the error string.
func (e *NonUniqueResultError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("exocore: %s not unique (got %d results, expected 1)", e.label, e.count)
	}
	return fmt.Sprintf("exocore: %s not unique", e.label)
}

// Is reports whether the target error matches NonUniqueResultError.
// This allows errors.Is(nonUniqueErr, ErrNonUniqueResult) to return true.
func (e *NonUniqueResultError) Is(err error) bool {
	return err == ErrNonUniqueResult
}

// Label returns the entity label.
func (e *NonUniqueResultError) Label() string {
	return e.label
}

// Count returns the number of results, or -1 if unknown.
func (e *NonUniqueResultError) Count() int {
	return e.count
}

// NewNonUniqueResultError returns a new NonUniqueResultError for the given entity type.
func NewNonUniqueResultError(label string) *NonUniqueResultError {
	return &NonUniqueResultError{label: label, count: -1}
}

// NewNonUniqueResultErrorWithCount returns a new NonUniqueResultError with the result count.
func NewNonUniqueResultErrorWithCount(label string, count int) *NonUniqueResultError {
	return &NonUniqueResultError{label: label, count: count}
}

// IsNonUniqueResult returns true if the error is a NonUniqueResultError.
func IsNonUniqueResult(err error) bool {
	if err == nil {
		return false
	}
	var e *NonUniqueResultError
	return errors.As(err, &e) || errors.Is(err, ErrNonUniqueResult)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("exocore: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ValidationReferenceKind names the three things an operation document can
// reference that do not exist in the resolved system image.
type ValidationReferenceKind int

const (
	RefField ValidationReferenceKind = iota
	RefVariable
	RefFragment
)

func (k ValidationReferenceKind) String() string {
	switch k {
	case RefVariable:
		return "variable"
	case RefFragment:
		return "fragment"
	default:
		return "field"
	}
}

// ValidationError represents spec's ValidationError kind: an operation
// references an unknown field, variable, or fragment. Location, when
// non-empty, is the offending reference's position in the source document.
type ValidationError struct {
	Kind     ValidationReferenceKind
	Name     string
	Location string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("exocore: unknown %s %q at %s", e.Kind, e.Name, e.Location)
	}
	return fmt.Sprintf("exocore: unknown %s %q", e.Kind, e.Name)
}

// NewValidationError returns a new ValidationError for the given reference.
func NewValidationError(kind ValidationReferenceKind, name, location string) *ValidationError {
	return &ValidationError{Kind: kind, Name: name, Location: location}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("exocore: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "exocore: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("exocore: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Entity type being queried
	Op     string // Operation (e.g., "select", "count", "exist")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("exocore: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("exocore: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a mutation error with additional context.
type MutationError struct {
	Entity string // Entity type being mutated
	Op     string // Operation (e.g., "create", "update", "delete")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("exocore: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// PrivacyError represents a privacy policy violation.
type PrivacyError struct {
	Entity string // Entity type
	Op     string // Operation (query or mutation)
	Rule   string // Rule that denied the operation
}

// Error returns the error string.
func (e *PrivacyError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("exocore: privacy denied %s on %s (rule: %s)", e.Op, e.Entity, e.Rule)
	}
	return fmt.Sprintf("exocore: privacy denied %s on %s", e.Op, e.Entity)
}

// NewPrivacyError returns a new PrivacyError.
func NewPrivacyError(entity, op, rule string) *PrivacyError {
	return &PrivacyError{Entity: entity, Op: op, Rule: rule}
}

// IsPrivacyError returns true if the error is a PrivacyError.
func IsPrivacyError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrivacyError
	return errors.As(err, &e)
}

// ContextError attaches a message describing what the solver, builder, or
// resolver was doing to an inner cause, the way each of those layers
// reports failure: every layer states its own step without repeating the
// next layer's detail in its own Error() string.
type ContextError struct {
	Msg   string
	Cause error
}

// Error returns msg and the cause joined with ": ".
func (e *ContextError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps cause with msg, following the solver/builder/resolver
// convention of layering a step description over whatever failed beneath
// it, without needing the caller's own type to implement Unwrap.
func WithContext(msg string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ContextError{Msg: msg, Cause: cause}
}
