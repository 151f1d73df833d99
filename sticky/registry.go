package sticky

import "github.com/pathhold/pathhold/state"

// Registry is the process-lifetime collection of currently suspended
// path nodes. Order is insertion order and is semantically meaningful:
// orphan eviction breaks depth ties by recency of suspension.
//
// INVARIANTS:
//   - A state identity appears at most once.
//   - Mutation happens only through Apply, only on transition success.
//
// The registry is constructor-injected into the Engine and owned by
// whichever component created it. It is deliberately not a package
// singleton: independent routers must not share suspended state.
type Registry struct {
	entries []entry
	nextSeq int64
}

// entry pairs a suspended node with its insertion sequence number.
type entry struct {
	node state.PathNode
	seq  int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// List returns a read-only snapshot of suspended nodes in insertion
// order.
func (r *Registry) List() state.Path {
	out := make(state.Path, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.node
	}
	return out
}

// States returns the suspended state identities in insertion order.
func (r *Registry) States() []*state.State {
	out := make([]*state.State, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.node.State
	}
	return out
}

// Lookup returns the suspended node for a state identity, if present.
func (r *Registry) Lookup(s *state.State) (state.PathNode, bool) {
	for _, e := range r.entries {
		if e.node.State == s {
			return e.node, true
		}
	}
	return state.PathNode{}, false
}

// Len returns the number of suspended nodes.
func (r *Registry) Len() int { return len(r.entries) }

// Commit is the deferred registry delta computed alongside a diff.
//
// The host applies it exactly once when the transition is reported
// successful and discards it otherwise; a failed or superseded
// transition therefore never touches the registry and needs no
// rollback.
type Commit struct {
	remove map[*state.State]bool
	add    []state.PathNode
}

// Empty reports whether applying the commit would change nothing.
func (c Commit) Empty() bool {
	return len(c.remove) == 0 && len(c.add) == 0
}

// Removes reports whether the commit drops the given state.
func (c Commit) Removes(s *state.State) bool { return c.remove[s] }

// Adds returns the nodes the commit suspends, in order.
func (c Commit) Adds() state.Path {
	return append(state.Path(nil), c.add...)
}

// Apply mutates the registry: removals first, then additions. The
// remove-then-add order keeps a state unique in the registry even when
// it moves active -> inactive -> active across transitions.
func (r *Registry) Apply(c Commit) {
	if len(c.remove) > 0 {
		kept := r.entries[:0]
		for _, e := range r.entries {
			if !c.remove[e.node.State] {
				kept = append(kept, e)
			}
		}
		r.entries = kept
	}
	for _, n := range c.add {
		if _, ok := r.Lookup(n.State); ok {
			continue
		}
		r.nextSeq++
		r.entries = append(r.entries, entry{node: n, seq: r.nextSeq})
	}
}
