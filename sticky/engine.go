// Package sticky implements the sticky-subtree diff engine: it extends
// the ordinary tree diff with inactivating/reactivating classifications
// backed by a registry of suspended path nodes, plus cascading and
// forced eviction of suspended subtrees.
package sticky

import (
	"io"
	"log/slog"
	"sort"

	"github.com/pathhold/pathhold/diff"
	"github.com/pathhold/pathhold/state"
)

// Options is the per-transition options bag the engine consumes.
type Options struct {
	// Reload marks a subtree that is torn down and rebuilt even if
	// otherwise unchanged.
	Reload *state.State

	// ExitSticky names suspended states to evict regardless of the
	// cascade rules. Every name must resolve to a registered state
	// with a registry entry that is not part of the destination path.
	ExitSticky []string
}

// Engine computes sticky tree changes for proposed transitions.
//
// Compute is pure with respect to the registry: it reads the registry
// state at call time and returns the intended delta as a Commit. All
// mutation is deferred to Registry.Apply, which the host calls only
// after the transition succeeds. Interleaved transitions each diff
// against the registry as of their own computation; the host commits
// successes sequentially.
type Engine struct {
	tree     *state.Tree
	registry *Registry
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over the given tree and registry.
func NewEngine(tree *state.Tree, registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		tree:     tree,
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's injected registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Compute classifies a proposed transition, extending the ordinary
// diff with inactivating and reactivating nodes, and returns the
// deferred registry delta.
//
// Runs synchronously with no suspension points. On error the returned
// Changes and Commit are zero values and nothing may be committed.
func (e *Engine) Compute(from, to state.Path, opts Options) (diff.Changes, Commit, error) {
	ch := diff.Compute(from, to, opts.Reload)

	// Sticky reclassification: a sticky subtree is suspended, not
	// destroyed, but only when the transition actually enters
	// somewhere deeper. Leaving with nothing entering is an ordinary
	// exit, and so is a rebuild where the same state re-enters in the
	// same transition (reload, param change): an active state must
	// never land in the suspended registry.
	if len(ch.Entering) > 0 && len(ch.Exiting) > 0 &&
		ch.Exiting[0].State.Sticky() && !ch.Entering.ContainsState(ch.Exiting[0].State) {
		ch.Inactivating = ch.Exiting
		ch.Exiting = nil
	}

	e.detectReactivation(&ch, to, opts.Reload)
	e.evictOrphans(&ch)
	if err := e.forceEvict(&ch, opts.ExitSticky); err != nil {
		return diff.Changes{}, Commit{}, err
	}

	commit := e.pendingCommit(ch)

	e.logger.Debug("sticky diff computed",
		"retained", len(ch.Retained),
		"entering", len(ch.Entering),
		"exiting", len(ch.Exiting),
		"inactivating", len(ch.Inactivating),
		"reactivating", len(ch.Reactivating),
		"suspended", e.registry.Len(),
	)

	return ch, commit, nil
}

// detectReactivation re-runs the ordinary diff against a hypothetical
// from-path in which each entering node is replaced by its suspended
// registry counterpart (entering nodes with no counterpart are
// skipped). Suspended nodes that survive that diff with params intact
// resume; the rest are rebuilt or destroyed.
func (e *Engine) detectReactivation(ch *diff.Changes, to state.Path, reload *state.State) {
	hypothetical := ch.Retained.Clone()
	for _, n := range ch.Entering {
		if held, ok := e.registry.Lookup(n.State); ok {
			hypothetical = append(hypothetical, held)
		}
	}

	sim := diff.Compute(hypothetical, to, reload)
	if sim.Empty() {
		return
	}

	if len(sim.Retained) > len(ch.Retained) {
		ch.Reactivating = sim.Retained[len(ch.Retained):]
	}
	ch.Entering = sim.Entering
	ch.Exiting = append(ch.Exiting, sim.Exiting...)

	// Downstream consumers must see the corrected destination path.
	rewritten := make(state.Path, 0, len(ch.Retained)+len(ch.Reactivating)+len(ch.Entering))
	rewritten = append(rewritten, ch.Retained...)
	rewritten = append(rewritten, ch.Reactivating...)
	rewritten = append(rewritten, ch.Entering...)
	ch.To = rewritten
}

// evictOrphans appends to Exiting every suspended node left without a
// valid active ancestor:
//
//   - states that are exact children of the destination leaf,
//   - non-sticky children of any destination node not themselves on
//     the destination path,
//   - transitively, descendants of anything already exiting.
//
// The result is deduplicated and ordered by ascending depth, ties
// broken by most-recently-suspended first; teardown hooks run in this
// exact order.
func (e *Engine) evictOrphans(ch *diff.Changes) {
	exiting := make(map[*state.State]bool, len(ch.Exiting))
	for _, n := range ch.Exiting {
		exiting[n.State] = true
	}

	marked := make(map[*state.State]bool)
	var orphans []entry

	mark := func(en entry) {
		if !marked[en.node.State] && !exiting[en.node.State] {
			marked[en.node.State] = true
			orphans = append(orphans, en)
		}
	}

	tail := ch.To.Last()
	for _, en := range e.registry.entries {
		s := en.node.State
		if ch.To.ContainsState(s) {
			continue
		}
		if tail != nil && s.IsChildOf(tail.State) {
			mark(en)
			continue
		}
		if !s.Sticky() {
			for _, n := range ch.To {
				if s.IsChildOf(n.State) {
					mark(en)
					break
				}
			}
		}
	}

	// Transitive closure: anything suspended below an exiting or
	// already-orphaned state goes too.
	for changed := true; changed; {
		changed = false
		for _, en := range e.registry.entries {
			s := en.node.State
			if marked[s] || exiting[s] {
				continue
			}
			for anc := range exiting {
				if s.IsDescendantOf(anc) {
					mark(en)
					changed = true
					break
				}
			}
			if marked[s] {
				continue
			}
			for anc := range marked {
				if anc != s && s.IsDescendantOf(anc) {
					mark(en)
					changed = true
					break
				}
			}
		}
	}

	if len(orphans) == 0 {
		return
	}

	sort.SliceStable(orphans, func(i, j int) bool {
		di, dj := orphans[i].node.State.Depth(), orphans[j].node.State.Depth()
		if di != dj {
			return di < dj
		}
		return orphans[i].seq > orphans[j].seq
	})

	for _, en := range orphans {
		e.logger.Debug("evicting orphaned suspended state",
			"state", en.node.State.Name(),
			"depth", en.node.State.Depth(),
		)
		ch.Exiting = append(ch.Exiting, en.node)
	}
}

// forceEvict handles the explicit exitSticky request. All names are
// validated before any eviction is applied so a bad request leaves the
// computation untouched.
func (e *Engine) forceEvict(ch *diff.Changes, names []string) error {
	if len(names) == 0 {
		return nil
	}

	targets := make([]*state.State, 0, len(names))
	for _, name := range names {
		s, ok := e.tree.Lookup(name)
		if !ok {
			return newUnknownStateError(name)
		}
		if _, ok := e.registry.Lookup(s); !ok {
			return newNotSuspendedError(name)
		}
		if ch.To.ContainsState(s) {
			return newStateActiveError(name)
		}
		targets = append(targets, s)
	}

	exiting := make(map[*state.State]bool, len(ch.Exiting))
	for _, n := range ch.Exiting {
		exiting[n.State] = true
	}

	for _, en := range e.registry.entries {
		s := en.node.State
		if exiting[s] {
			continue
		}
		for _, t := range targets {
			if s == t || s.IsDescendantOf(t) {
				exiting[s] = true
				ch.Exiting = append(ch.Exiting, en.node)
				e.logger.Debug("forced eviction", "state", s.Name(), "target", t.Name())
				break
			}
		}
	}
	return nil
}

// pendingCommit builds the deferred registry delta: drop every state
// now exiting, entering, or reactivating, then suspend the
// inactivating nodes.
func (e *Engine) pendingCommit(ch diff.Changes) Commit {
	c := Commit{remove: make(map[*state.State]bool)}
	for _, p := range []state.Path{ch.Exiting, ch.Entering, ch.Reactivating} {
		for _, n := range p {
			c.remove[n.State] = true
		}
	}
	c.add = append(c.add, ch.Inactivating...)
	return c
}
