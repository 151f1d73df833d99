// Package router is a minimal host pipeline around the sticky diff
// engine: it creates transitions, dispatches lifecycle hooks over the
// computed path classifications, and applies the deferred registry
// commit when a transition succeeds.
package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pathhold/pathhold/state"
	"github.com/pathhold/pathhold/sticky"
)

// Router drives transitions over one navigation tree.
//
// Single-writer discipline: all mutation (registry commit, current
// path, journal sequence) happens inside Navigate, which must be
// called from one goroutine at a time. Transitions run to completion
// synchronously within one call.
type Router struct {
	tree     *state.Tree
	registry *sticky.Registry
	engine   *sticky.Engine
	hooks    *HookRegistry
	tokens   TokenGenerator
	journal  Journal
	logger   *slog.Logger

	current state.Path
	seq     int64
}

// Option configures a Router.
type Option func(*Router)

// WithTokenGenerator replaces the UUIDv7 token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(r *Router) { r.tokens = g }
}

// WithJournal records committed transitions to the given journal.
func WithJournal(j Journal) Option {
	return func(r *Router) { r.journal = j }
}

// WithLogger sets the router's structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New creates a router over the given tree with an empty registry.
func New(tree *state.Tree, opts ...Option) *Router {
	r := &Router{
		tree:     tree,
		registry: sticky.NewRegistry(),
		hooks:    NewHookRegistry(),
		tokens:   UUIDv7Generator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.engine = sticky.NewEngine(tree, r.registry, sticky.WithLogger(r.logger))
	return r
}

// Tree returns the router's navigation tree.
func (r *Router) Tree() *state.Tree { return r.tree }

// Hooks returns the hook registry for lifecycle registration.
func (r *Router) Hooks() *HookRegistry { return r.hooks }

// Current returns the active path after the last successful
// transition.
func (r *Router) Current() state.Path { return r.current }

// Inactives returns the currently suspended state identities in
// registry insertion order.
func (r *Router) Inactives() []*state.State { return r.registry.States() }

// Registry exposes the inactive registry snapshot API.
func (r *Router) Registry() *sticky.Registry { return r.registry }

// Navigate runs one transition to the named destination state.
//
// The destination path is built root-to-leaf from the tree; params
// supply values for every param declared along the path. On a diff
// error the returned transition is failed and the registry is
// untouched.
func (r *Router) Navigate(ctx context.Context, dest string, params state.Params, opts ...TransitionOption) (*Transition, error) {
	leaf, ok := r.tree.Lookup(dest)
	if !ok {
		return nil, fmt.Errorf("navigate: unknown state %q", dest)
	}
	to, err := r.tree.PathTo(leaf, params)
	if err != nil {
		return nil, fmt.Errorf("navigate to %q: %w", dest, err)
	}
	return r.run(ctx, to, opts...)
}

// RequestEviction triggers an eviction-only transition: it navigates
// to the current destination with inherited parameters, carrying the
// forced-eviction list. With no names, every currently suspended state
// is targeted; if nothing is suspended the call is a no-op and returns
// a nil transition.
func (r *Router) RequestEviction(ctx context.Context, names ...string) (*Transition, error) {
	if len(names) == 0 {
		for _, s := range r.registry.States() {
			names = append(names, s.Name())
		}
		if len(names) == 0 {
			return nil, nil
		}
	}
	return r.run(ctx, r.current.Clone(), WithExitSticky(names...))
}

func (r *Router) run(ctx context.Context, to state.Path, opts ...TransitionOption) (*Transition, error) {
	tx := &Transition{
		token: r.tokens.Generate(),
		from:  r.current.Clone(),
		to:    to,
	}
	for _, opt := range opts {
		opt(tx)
	}

	r.logger.Debug("transition starting",
		"transition", tx.token,
		"from", tx.from.String(),
		"to", to.String(),
	)

	changes, commit, err := r.engine.Compute(tx.from, to, sticky.Options{
		Reload:     tx.reload,
		ExitSticky: tx.exitSticky,
	})
	if err != nil {
		tx.status = StatusFailed
		tx.err = err
		r.logger.Error("transition rejected", "transition", tx.token, "error", err)
		return tx, err
	}
	tx.changes = changes
	tx.commit = commit

	r.hooks.dispatch(ctx, tx)
	r.succeed(ctx, tx)
	return tx, nil
}

// succeed commits one transition: registry delta first, then current
// path, journal, and success callbacks.
func (r *Router) succeed(ctx context.Context, tx *Transition) {
	r.registry.Apply(tx.commit)
	r.current = tx.changes.To.Clone()
	tx.status = StatusSucceeded

	r.seq++
	if r.journal != nil {
		rec := Record{
			Token:        tx.token,
			Seq:          r.seq,
			From:         tx.from.String(),
			To:           tx.changes.To.String(),
			Retained:     tx.changes.Retained.Strings(),
			Entering:     tx.changes.Entering.Strings(),
			Exiting:      tx.changes.Exiting.Strings(),
			Inactivating: tx.changes.Inactivating.Strings(),
			Reactivating: tx.changes.Reactivating.Strings(),
		}
		if err := r.journal.Append(ctx, rec); err != nil {
			r.logger.Error("journal append failed", "transition", tx.token, "error", err)
		}
	}

	r.logger.Info("transition committed",
		"transition", tx.token,
		"to", tx.changes.To.String(),
		"suspended", r.registry.Len(),
	)

	for _, fn := range tx.onSuccess {
		fn(tx)
	}
}
