package state

import "context"

// ID addresses a state inside a Tree arena. IDs are stable for the
// lifetime of the Tree and are never reused.
type ID int

// None is the parent ID of root states.
const None ID = -1

// HookFunc is a suspend/resume callback declared on a state.
//
// The context is the one passed to the transition that triggered the
// hook. The node carries the suspended or resumed parameter values.
type HookFunc func(ctx context.Context, node PathNode)

// Decl declares a single state for Tree registration.
//
// The name establishes parentage: "app.inbox" is a child of "app",
// which must already be registered. Params lists the parameter names
// this state resolves when it appears in a path.
type Decl struct {
	Name   string
	Sticky bool
	Params []string

	// OnInactivate fires when the state is suspended instead of destroyed.
	OnInactivate HookFunc

	// OnReactivate fires when a suspended state is resumed.
	OnReactivate HookFunc
}

// State is a node in the static navigation tree.
//
// States are owned by their Tree and addressed by index; the parent
// link is an arena index, not a pointer, so ancestor walks are plain
// iterative loops (no recursion, no lifetime juggling).
type State struct {
	tree   *Tree
	id     ID
	name   string
	parent ID
	depth  int
	sticky bool
	params []string

	onInactivate HookFunc
	onReactivate HookFunc
}

// ID returns the state's arena index.
func (s *State) ID() ID { return s.id }

// Name returns the full dotted name, NFC-normalized.
func (s *State) Name() string { return s.name }

// Depth returns the number of ancestors (roots have depth 0).
func (s *State) Depth() int { return s.depth }

// Sticky reports whether the state is suspended rather than destroyed
// when navigated away from.
func (s *State) Sticky() bool { return s.sticky }

// Params returns the parameter names this state declares.
func (s *State) Params() []string { return s.params }

// OnInactivate returns the declared suspend callback, or nil.
func (s *State) OnInactivate() HookFunc { return s.onInactivate }

// OnReactivate returns the declared resume callback, or nil.
func (s *State) OnReactivate() HookFunc { return s.onReactivate }

// Parent returns the parent state, or nil for roots.
func (s *State) Parent() *State {
	if s.parent == None {
		return nil
	}
	return s.tree.byID(s.parent)
}

// IsChildOf reports whether s is an immediate child of parent.
func (s *State) IsChildOf(parent *State) bool {
	return parent != nil && s.parent == parent.id
}

// IsDescendantOf reports whether ancestor appears anywhere on s's
// parent chain. A state is not a descendant of itself.
func (s *State) IsDescendantOf(ancestor *State) bool {
	if ancestor == nil {
		return false
	}
	for p := s.parent; p != None; p = s.tree.byID(p).parent {
		if p == ancestor.id {
			return true
		}
	}
	return false
}
