package exocore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := NewNotFoundErrorWithID("Concert", 7)
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Concert", err.Label())
	assert.Equal(t, 7, err.ID())
	assert.Contains(t, err.Error(), "id=7")
}

func TestNotFoundErrorWithoutID(t *testing.T) {
	err := NewNotFoundError("Venue")
	assert.NotContains(t, err.Error(), "id=")
}

func TestNonUniqueResultErrorMatchesSentinel(t *testing.T) {
	err := NewNonUniqueResultErrorWithCount("Concert", 3)
	assert.True(t, IsNonUniqueResult(err))
	assert.True(t, errors.Is(err, ErrNonUniqueResult))
	assert.Equal(t, 3, err.Count())
	assert.Contains(t, err.Error(), "got 3 results")
}

func TestNonUniqueResultErrorUnknownCount(t *testing.T) {
	err := NewNonUniqueResultError("Concert")
	assert.Equal(t, -1, err.Count())
	assert.NotContains(t, err.Error(), "got")
}

func TestConstraintErrorUnwraps(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewConstraintError("unique violation", cause)
	assert.True(t, IsConstraintError(err))
	assert.ErrorIs(t, err, cause)
}

func TestValidationErrorReportsKindAndLocation(t *testing.T) {
	err := NewValidationError(RefVariable, "$id", "3:12")
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "exocore: unknown variable \"$id\" at 3:12", err.Error())
}

func TestValidationErrorWithoutLocation(t *testing.T) {
	err := NewValidationError(RefFragment, "ConcertFields", "")
	assert.Equal(t, `exocore: unknown fragment "ConcertFields"`, err.Error())
}

func TestValidationErrorDefaultsToField(t *testing.T) {
	err := NewValidationError(RefField, "titel", "")
	assert.Contains(t, err.Error(), "unknown field")
}

func TestAggregateErrorCollapsesSingle(t *testing.T) {
	only := errors.New("boom")
	err := NewAggregateError(nil, only, nil)
	assert.Same(t, only, err)
}

func TestAggregateErrorNilWhenEmpty(t *testing.T) {
	assert.Nil(t, NewAggregateError(nil, nil))
}

func TestAggregateErrorJoinsMultiple(t *testing.T) {
	err := NewAggregateError(errors.New("a"), errors.New("b"))
	assert.Contains(t, err.Error(), "[1] a")
	assert.Contains(t, err.Error(), "[2] b")
}

func TestQueryErrorAndMutationErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	qerr := NewQueryError("Concert", "select", cause)
	assert.True(t, IsQueryError(qerr))
	assert.ErrorIs(t, qerr, cause)

	merr := NewMutationError("Concert", "create", cause)
	assert.True(t, IsMutationError(merr))
	assert.ErrorIs(t, merr, cause)
}

func TestPrivacyError(t *testing.T) {
	err := NewPrivacyError("Concert", "update", "ownerOnly")
	assert.True(t, IsPrivacyError(err))
	assert.Contains(t, err.Error(), "rule: ownerOnly")
}

func TestWithContextWrapsCause(t *testing.T) {
	cause := errors.New("column does not exist")
	err := WithContext("solving access expression", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "solving access expression: column does not exist", err.Error())
}

func TestWithContextNilCauseReturnsNil(t *testing.T) {
	assert.Nil(t, WithContext("no-op", nil))
}
