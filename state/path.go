package state

import (
	"maps"
	"sort"
	"strings"
)

// Params holds resolved parameter values for one path node.
type Params map[string]string

// Equal reports value equality. Nil and empty compare equal.
func (p Params) Equal(other Params) bool {
	return maps.Equal(p, other)
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// PathNode is one (state, resolved params) pair on a path. Two nodes
// are "the same state" when their State identity matches, regardless
// of params.
type PathNode struct {
	State  *State
	Params Params
}

// String renders the node as name or name(k=v,...) with sorted keys.
func (n PathNode) String() string {
	if len(n.Params) == 0 {
		return n.State.Name()
	}
	keys := make([]string, 0, len(n.Params))
	for k := range n.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(n.State.Name())
	b.WriteByte('(')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(n.Params[k])
	}
	b.WriteByte(')')
	return b.String()
}

// Path is an ordered root-to-leaf node sequence.
type Path []PathNode

// Last returns a pointer to the leaf node, or nil for an empty path.
func (p Path) Last() *PathNode {
	if len(p) == 0 {
		return nil
	}
	return &p[len(p)-1]
}

// ContainsState reports whether any node on the path has the given
// state identity.
func (p Path) ContainsState(s *State) bool {
	for _, n := range p {
		if n.State == s {
			return true
		}
	}
	return false
}

// States returns the state identities in path order.
func (p Path) States() []*State {
	out := make([]*State, len(p))
	for i, n := range p {
		out[i] = n.State
	}
	return out
}

// Strings returns the rendered nodes in path order. Used for journal
// records, trace output, and test assertions.
func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, n := range p {
		out[i] = n.String()
	}
	return out
}

// String renders the whole path root to leaf.
func (p Path) String() string {
	return strings.Join(p.Strings(), " / ")
}

// Clone returns a shallow copy of the node sequence (params maps are
// shared; nodes are treated as immutable once built).
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}
