package sticky

import (
	"errors"
	"fmt"
)

// EvictError reports a rejected eviction request. The computation
// aborts before any registry mutation; the offending transition fails
// and the registry is untouched.
type EvictError struct {
	// Code identifies the error category.
	Code EvictErrorCode

	// State is the name the request referenced.
	State string

	// Message is a human-readable description.
	Message string
}

// EvictErrorCode categorizes eviction failures.
type EvictErrorCode string

const (
	// ErrCodeUnknownState indicates the request named a state that is
	// not registered in the tree.
	ErrCodeUnknownState EvictErrorCode = "UNKNOWN_STATE"

	// ErrCodeNotSuspended indicates the named state has no entry in
	// the inactive registry.
	ErrCodeNotSuspended EvictErrorCode = "NOT_SUSPENDED"

	// ErrCodeStateActive indicates the named state is part of the path
	// being activated by the same transition.
	ErrCodeStateActive EvictErrorCode = "STATE_ACTIVE"
)

// Error implements the error interface.
func (e *EvictError) Error() string {
	return fmt.Sprintf("%s: %s (state=%s)", e.Code, e.Message, e.State)
}

// IsUnknownState reports whether err is an unknown-state eviction
// error. Uses errors.As to handle wrapped errors.
func IsUnknownState(err error) bool {
	var ee *EvictError
	return errors.As(err, &ee) && ee.Code == ErrCodeUnknownState
}

// IsNotSuspended reports whether err is a not-suspended eviction error.
func IsNotSuspended(err error) bool {
	var ee *EvictError
	return errors.As(err, &ee) && ee.Code == ErrCodeNotSuspended
}

// IsStateActive reports whether err is an active-state eviction error.
func IsStateActive(err error) bool {
	var ee *EvictError
	return errors.As(err, &ee) && ee.Code == ErrCodeStateActive
}

func newUnknownStateError(name string) *EvictError {
	return &EvictError{
		Code:    ErrCodeUnknownState,
		State:   name,
		Message: "eviction request references a state that does not exist",
	}
}

func newNotSuspendedError(name string) *EvictError {
	return &EvictError{
		Code:    ErrCodeNotSuspended,
		State:   name,
		Message: "eviction request references a state with no suspended entry",
	}
}

func newStateActiveError(name string) *EvictError {
	return &EvictError{
		Code:    ErrCodeStateActive,
		State:   name,
		Message: "cannot evict a state that is part of the destination path",
	}
}
