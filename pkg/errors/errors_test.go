package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	assert.True(t, IsTransient(Transient("op", "timeout", nil)))
	assert.True(t, IsValidation(Validation("op", "bad input", nil)))
	assert.True(t, IsNotFound(NotFound("op", "no rows", nil)))
	assert.True(t, IsConstraint(Constraint("op", "duplicate", nil)))

	assert.False(t, IsTransient(New("op", "boom", nil)))
	assert.False(t, IsTransient(fmt.Errorf("plain error")))
}

func TestTracePreservesKind(t *testing.T) {
	err := Transient("store.Get", "connection reset", nil)
	traced := Trace("logic.Load", err)

	assert.True(t, IsTransient(traced))
	assert.Contains(t, traced.Error(), "store.Get->logic.Load")
}

func TestTraceWrapsForeignError(t *testing.T) {
	cause := fmt.Errorf("io failure")
	traced := Trace("logic.Load", cause)

	assert.False(t, IsTransient(traced))
	assert.ErrorIs(t, traced, cause)
}

func TestRetryableOnlyForTransient(t *testing.T) {
	assert.True(t, Retryable(Transient("op", "deadlock", nil)))
	assert.False(t, Retryable(Constraint("op", "duplicate", nil)))
	assert.False(t, Retryable(Validation("op", "bad", nil)))
	assert.False(t, Retryable(NotFound("op", "missing", nil)))
	assert.False(t, Retryable(nil))
}

func TestMessageFallsBackToCause(t *testing.T) {
	cause := fmt.Errorf("underlying detail")
	err := New("op", "", cause)
	assert.Equal(t, "underlying detail", err.Message())

	err = New("op", "friendly", cause)
	assert.Equal(t, "friendly", err.Message())
}
