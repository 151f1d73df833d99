package router

import (
	"github.com/pathhold/pathhold/diff"
	"github.com/pathhold/pathhold/state"
	"github.com/pathhold/pathhold/sticky"
)

// Status is a transition's lifecycle state.
type Status int

const (
	// StatusPending means the transition has been created but its
	// outcome is not yet decided.
	StatusPending Status = iota

	// StatusSucceeded means the transition committed: hooks ran and
	// the registry delta was applied.
	StatusSucceeded

	// StatusFailed means the diff computation was rejected; nothing
	// was committed.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Transition is one proposed navigation run through the pipeline.
//
// The diff and pending commit are computed eagerly; the commit is
// applied only when the pipeline reports success. A failed or
// superseded transition's commit simply never fires.
type Transition struct {
	token string
	from  state.Path
	to    state.Path

	reload     *state.State
	exitSticky []string

	changes diff.Changes
	commit  sticky.Commit

	status    Status
	err       error
	onSuccess []func(*Transition)
}

// Token returns the transition's correlation token.
func (t *Transition) Token() string { return t.token }

// From returns the path that was active when the transition started.
func (t *Transition) From() state.Path { return t.from }

// To returns the effective destination path. After a successful sticky
// diff this may differ from the proposed destination: reactivated
// nodes are substituted in place of freshly entering ones.
func (t *Transition) To() state.Path {
	if t.changes.To != nil {
		return t.changes.To
	}
	return t.to
}

// Changes returns the computed classification record.
func (t *Transition) Changes() diff.Changes { return t.changes }

// Status returns the transition outcome.
func (t *Transition) Status() Status { return t.status }

// Err returns the failure cause, or nil.
func (t *Transition) Err() error { return t.err }

// OnSuccess registers a callback invoked after the transition commits.
// Callbacks registered after success never fire.
func (t *Transition) OnSuccess(fn func(*Transition)) {
	if fn != nil {
		t.onSuccess = append(t.onSuccess, fn)
	}
}

// TransitionOption configures a proposed transition.
type TransitionOption func(*Transition)

// WithReload marks a subtree for forced teardown and rebuild.
func WithReload(s *state.State) TransitionOption {
	return func(t *Transition) { t.reload = s }
}

// WithExitSticky requests forced eviction of the named suspended
// states.
func WithExitSticky(names ...string) TransitionOption {
	return func(t *Transition) { t.exitSticky = append(t.exitSticky, names...) }
}
