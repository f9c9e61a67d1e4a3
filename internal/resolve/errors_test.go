package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayErrorPassesThroughVerbatim(t *testing.T) {
	err := NewUserDisplayError("cannot delete a venue with upcoming concerts")
	assert.True(t, IsUserDisplayError(err))
	assert.Equal(t, "cannot delete a venue with upcoming concerts", UserMessage(err))
}

func TestDatabaseErrorRedactsDetailFromUserMessage(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := NewDatabaseError(cause)
	assert.True(t, IsDatabaseError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Operation failed", UserMessage(err))
	assert.Contains(t, err.Error(), cause.Error(), "server-side Error() still carries the real detail")
}

func TestUserMessageDefaultsToErrString(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, "boom", UserMessage(err))
}

func TestAroundInterceptorReturnedNoResponseError(t *testing.T) {
	err := &AroundInterceptorReturnedNoResponseError{InterceptorID: "subsystem 0 interceptor 1"}
	assert.True(t, IsAroundInterceptorReturnedNoResponse(err))
	assert.Contains(t, err.Error(), "subsystem 0 interceptor 1")
}
