package serrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := Conflict("TRANSFER_PENDING_EXISTS", "employee already has a pending transfer")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindConflict, kind)
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestKindOf_Wrapped(t *testing.T) {
	t.Parallel()

	inner := NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	wrapped := errors.Join(errors.New("query failed"), inner)
	assert.True(t, IsNotFound(wrapped))
}

func TestPersistence_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Persistence(cause)
	require.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PERSISTENCE_FAILURE")
}

func TestKindOf_PlainError(t *testing.T) {
	t.Parallel()

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
