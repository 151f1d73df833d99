package sticky

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvictErrorFormatting(t *testing.T) {
	err := newNotSuspendedError("app.inbox")
	assert.Equal(t, "NOT_SUSPENDED: eviction request references a state with no suspended entry (state=app.inbox)", err.Error())
}

func TestEvictErrorPredicates(t *testing.T) {
	tests := []struct {
		err     error
		unknown bool
		notSusp bool
		active  bool
	}{
		{newUnknownStateError("x"), true, false, false},
		{newNotSuspendedError("x"), false, true, false},
		{newStateActiveError("x"), false, false, true},
		{errors.New("plain"), false, false, false},
		{nil, false, false, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.unknown, IsUnknownState(tc.err))
		assert.Equal(t, tc.notSusp, IsNotSuspended(tc.err))
		assert.Equal(t, tc.active, IsStateActive(tc.err))
	}
}

func TestEvictErrorPredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("transition rejected: %w", newStateActiveError("app.inbox"))
	assert.True(t, IsStateActive(wrapped))

	var ee *EvictError
	assert.True(t, errors.As(wrapped, &ee))
	assert.Equal(t, "app.inbox", ee.State)
}
