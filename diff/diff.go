// Package diff implements the ordinary tree-diff primitive: given two
// root-to-leaf paths it classifies every node as retained, entering,
// or exiting. The sticky package layers suspension semantics on top.
package diff

import "github.com/pathhold/pathhold/state"

// Changes is the per-transition classification record.
//
// Retained, Entering, and Exiting are populated by Compute. The sticky
// engine additionally fills Inactivating and Reactivating and may
// rewrite To; Compute always sets To to the destination path it was
// given.
type Changes struct {
	Retained     state.Path
	Entering     state.Path
	Exiting      state.Path
	Inactivating state.Path
	Reactivating state.Path

	// To is the effective destination path for downstream pipeline
	// processing.
	To state.Path
}

// Empty reports whether no node was classified at all.
func (c Changes) Empty() bool {
	return len(c.Retained) == 0 && len(c.Entering) == 0 && len(c.Exiting) == 0 &&
		len(c.Inactivating) == 0 && len(c.Reactivating) == 0
}

// Compute classifies the transition from one path to another.
//
// Retained is the maximal root-aligned prefix of from and to whose
// nodes agree on state identity and params, excluding anything at or
// below reload; the rest of from exits and the rest of to enters.
// A nil reload disables forced teardown.
func Compute(from, to state.Path, reload *state.State) Changes {
	keep := 0
	for keep < len(from) && keep < len(to) {
		f, t := from[keep], to[keep]
		if f.State != t.State || !f.Params.Equal(t.Params) {
			break
		}
		if reload != nil && (f.State == reload || f.State.IsDescendantOf(reload)) {
			break
		}
		keep++
	}

	return Changes{
		Retained: from[:keep].Clone(),
		Exiting:  from[keep:].Clone(),
		Entering: to[keep:].Clone(),
		To:       to.Clone(),
	}
}
