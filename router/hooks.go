package router

import (
	"context"
	"fmt"
	"sort"

	"github.com/pathhold/pathhold/state"
)

// Kind names one path classification of a transition.
type Kind string

// Built-in path kinds.
const (
	KindInactivating Kind = "inactivating"
	KindExiting      Kind = "exiting"
	KindEntering     Kind = "entering"
	KindReactivating Kind = "reactivating"
	KindRetained     Kind = "retained"
)

// Default dispatch priorities. Lower runs earlier: suspension happens
// before ordinary teardown, resumption after ordinary build-up, and
// retained nodes are notified last.
const (
	PriorityInactivate = 10
	PriorityExit       = 20
	PriorityEnter      = 30
	PriorityReactivate = 40
	PriorityRetain     = 50
)

// Hook is a per-node lifecycle callback for one path kind.
type Hook func(ctx context.Context, tx *Transition, node state.PathNode)

// HookRegistry maps path kinds to hooks and dispatch priorities.
// Kinds fire in ascending priority order; hooks within a kind fire in
// registration order, once per node of that kind's path.
type HookRegistry struct {
	kinds map[Kind]*kindSlot
}

type kindSlot struct {
	kind     Kind
	priority int
	hooks    []Hook
}

// NewHookRegistry creates a registry with the built-in kinds at their
// default priorities.
func NewHookRegistry() *HookRegistry {
	r := &HookRegistry{kinds: make(map[Kind]*kindSlot)}
	r.kinds[KindInactivating] = &kindSlot{kind: KindInactivating, priority: PriorityInactivate}
	r.kinds[KindExiting] = &kindSlot{kind: KindExiting, priority: PriorityExit}
	r.kinds[KindEntering] = &kindSlot{kind: KindEntering, priority: PriorityEnter}
	r.kinds[KindReactivating] = &kindSlot{kind: KindReactivating, priority: PriorityReactivate}
	r.kinds[KindRetained] = &kindSlot{kind: KindRetained, priority: PriorityRetain}
	return r
}

// SetPriority overrides the dispatch priority of a kind.
func (r *HookRegistry) SetPriority(kind Kind, priority int) error {
	slot, ok := r.kinds[kind]
	if !ok {
		return fmt.Errorf("unknown path kind %q", kind)
	}
	slot.priority = priority
	return nil
}

// Register adds a hook for a kind.
func (r *HookRegistry) Register(kind Kind, h Hook) error {
	slot, ok := r.kinds[kind]
	if !ok {
		return fmt.Errorf("unknown path kind %q", kind)
	}
	slot.hooks = append(slot.hooks, h)
	return nil
}

// ordered returns the kind slots in dispatch order. Equal priorities
// keep a stable name order so dispatch is deterministic.
func (r *HookRegistry) ordered() []*kindSlot {
	slots := make([]*kindSlot, 0, len(r.kinds))
	for _, s := range r.kinds {
		slots = append(slots, s)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].priority != slots[j].priority {
			return slots[i].priority < slots[j].priority
		}
		return slots[i].kind < slots[j].kind
	})
	return slots
}

// dispatch fires all hooks for one transition. State-declared
// OnInactivate/OnReactivate callbacks fire before registered hooks of
// the corresponding kind.
func (r *HookRegistry) dispatch(ctx context.Context, tx *Transition) {
	for _, slot := range r.ordered() {
		for _, node := range pathForKind(tx, slot.kind) {
			switch slot.kind {
			case KindInactivating:
				if fn := node.State.OnInactivate(); fn != nil {
					fn(ctx, node)
				}
			case KindReactivating:
				if fn := node.State.OnReactivate(); fn != nil {
					fn(ctx, node)
				}
			}
			for _, h := range slot.hooks {
				h(ctx, tx, node)
			}
		}
	}
}

func pathForKind(tx *Transition, kind Kind) state.Path {
	switch kind {
	case KindInactivating:
		return tx.changes.Inactivating
	case KindExiting:
		return tx.changes.Exiting
	case KindEntering:
		return tx.changes.Entering
	case KindReactivating:
		return tx.changes.Reactivating
	case KindRetained:
		return tx.changes.Retained
	default:
		return nil
	}
}
