package state

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Registration errors.
var (
	// ErrDuplicateState indicates a name was registered twice.
	ErrDuplicateState = errors.New("duplicate state name")

	// ErrUnknownParent indicates the dotted prefix of a name does not
	// resolve to a registered state.
	ErrUnknownParent = errors.New("unknown parent state")

	// ErrEmptyName indicates a declaration with an empty name.
	ErrEmptyName = errors.New("empty state name")

	// ErrUnknownParam indicates a path was requested with a parameter
	// value for a name no state on the path declares.
	ErrUnknownParam = errors.New("unknown parameter")
)

// Tree is the arena owning all registered states.
//
// Not safe for concurrent mutation; register all states up front, then
// treat the tree as read-only.
type Tree struct {
	nodes  []*State
	byName map[string]ID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{byName: make(map[string]ID)}
}

// Register adds one state. The parent (everything before the last dot)
// must already be registered; names without a dot are roots.
//
// Names are NFC-normalized so visually identical declarations and
// lookups resolve to the same state.
func (t *Tree) Register(d Decl) (*State, error) {
	name := norm.NFC.String(strings.TrimSpace(d.Name))
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, ok := t.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateState, name)
	}

	parent := None
	depth := 0
	if i := strings.LastIndex(name, "."); i >= 0 {
		pid, ok := t.byName[name[:i]]
		if !ok {
			return nil, fmt.Errorf("%w: %q (declaring %q)", ErrUnknownParent, name[:i], name)
		}
		parent = pid
		depth = t.nodes[pid].depth + 1
	}

	s := &State{
		tree:         t,
		id:           ID(len(t.nodes)),
		name:         name,
		parent:       parent,
		depth:        depth,
		sticky:       d.Sticky,
		params:       append([]string(nil), d.Params...),
		onInactivate: d.OnInactivate,
		onReactivate: d.OnReactivate,
	}
	t.nodes = append(t.nodes, s)
	t.byName[name] = s.id
	return s, nil
}

// RegisterAll registers a batch of declarations, ordering parents
// before children so callers can declare in any order.
func (t *Tree) RegisterAll(decls []Decl) error {
	sorted := append([]Decl(nil), decls...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.Count(sorted[i].Name, ".") < strings.Count(sorted[j].Name, ".")
	})
	for _, d := range sorted {
		if _, err := t.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves a state by name. The boolean result replaces the
// lookup-or-throw idiom: callers construct their own errors.
func (t *Tree) Lookup(name string) (*State, bool) {
	id, ok := t.byName[norm.NFC.String(name)]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// Len returns the number of registered states.
func (t *Tree) Len() int { return len(t.nodes) }

// States returns all states in registration order.
func (t *Tree) States() []*State {
	return append([]*State(nil), t.nodes...)
}

// PathTo builds the full root-to-leaf path ending at leaf. Each node on
// the path takes the values for its declared params from the given map;
// params not declared by any node on the path are rejected.
func (t *Tree) PathTo(leaf *State, params Params) (Path, error) {
	// Collect the ancestor chain iteratively, then reverse.
	var chain []*State
	for s := leaf; s != nil; s = s.Parent() {
		chain = append(chain, s)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	declared := make(map[string]bool)
	path := make(Path, 0, len(chain))
	for _, s := range chain {
		vals := Params{}
		for _, p := range s.params {
			declared[p] = true
			if v, ok := params[p]; ok {
				vals[p] = v
			}
		}
		path = append(path, PathNode{State: s, Params: vals})
	}
	for p := range params {
		if !declared[p] {
			return nil, fmt.Errorf("%w: %q not declared on path to %q", ErrUnknownParam, p, leaf.Name())
		}
	}
	return path, nil
}

func (t *Tree) byID(id ID) *State { return t.nodes[id] }
