package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := Unavailable("result store unreachable")
	assert.Equal(t, "result store unreachable", err.Error())

	wrapped := Wrap(stderrors.New("dial tcp: refused"), ErrCodeUnavailable, "redis get")
	assert.Equal(t, "redis get: dial tcp: refused", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("root")
	err := Wrap(cause, ErrCodeUnavailable, "store")

	require.True(t, stderrors.Is(err, cause))

	// Code checks survive further wrapping with %w.
	outer := fmt.Errorf("submit result: %w", err)
	assert.True(t, IsUnavailable(outer))
	assert.Equal(t, ErrCodeUnavailable, GetCode(outer))
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
		pred func(error) bool
	}{
		{Validation("bad"), ErrCodeValidation, IsValidation},
		{Unavailable("down"), ErrCodeUnavailable, IsUnavailable},
		{Timeout("slow"), ErrCodeTimeout, IsTimeout},
		{Canceled("stop"), ErrCodeCanceled, IsCanceled},
	}

	for _, tt := range tests {
		assert.True(t, tt.pred(tt.err), "predicate for %s", tt.code)
		assert.Equal(t, tt.code, GetCode(tt.err))
	}

	assert.False(t, IsUnavailable(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(stderrors.New("plain")))
}
