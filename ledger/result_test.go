package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Success(t *testing.T) {
	r := Success(42)

	assert.True(t, r.IsSuccess())
	assert.False(t, r.IsFailure())
	assert.Equal(t, 42, r.Value())
	assert.NoError(t, r.Err())

	v, err := r.Unpack()
	assert.Equal(t, 42, v)
	assert.NoError(t, err)
}

func TestResult_Failure(t *testing.T) {
	cause := errors.New("store unreachable")
	r := Failure[int](cause)

	assert.True(t, r.IsFailure())
	assert.False(t, r.IsSuccess())
	assert.Zero(t, r.Value(), "failure carries the zero value")
	assert.ErrorIs(t, r.Err(), cause)
}

func TestResult_FailureKeepsCauseUnmodified(t *testing.T) {
	// The store's cause must travel through untouched so callers can
	// branch on it with errors.Is.
	r := Failure[Statement](ErrAccountNotFound)
	assert.True(t, IsNotFound(r.Err()))
}
