package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"postpilot/domain/apperror"
)

func TestKindOf(t *testing.T) {
	err := apperror.New(apperror.InvalidArgument, "operation must be %q or %q", "read", "write")
	assert.Equal(t, apperror.InvalidArgument, apperror.KindOf(err))
	assert.True(t, apperror.IsKind(err, apperror.InvalidArgument))
	assert.False(t, apperror.IsKind(err, apperror.Internal))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, apperror.Internal, apperror.KindOf(errors.New("boom")))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.Wrap(apperror.TransientStorageError, cause, "object store unreachable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperror.TransientStorageError, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "object store unreachable")
}

func TestKindOf_WrappedFurther(t *testing.T) {
	inner := apperror.New(apperror.ObjectNotFound, "no such object")
	outer := fmt.Errorf("resolving video: %w", inner)
	assert.Equal(t, apperror.ObjectNotFound, apperror.KindOf(outer))
}
