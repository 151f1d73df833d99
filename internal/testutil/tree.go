// Package testutil provides shared fixtures for pathhold tests.
package testutil

import (
	"testing"

	"github.com/pathhold/pathhold/state"
)

// NewMailTree builds the canonical test tree used across packages:
//
//	app
//	app.inbox            sticky, params [inboxId]
//	app.inbox.message    params [messageId]
//	app.compose
//	app.contacts         sticky
//	app.contacts.detail  params [contactId]
//	aux
//	aux.settings
func NewMailTree(t *testing.T) *state.Tree {
	t.Helper()
	tree := state.NewTree()
	decls := []state.Decl{
		{Name: "app"},
		{Name: "app.inbox", Sticky: true, Params: []string{"inboxId"}},
		{Name: "app.inbox.message", Params: []string{"messageId"}},
		{Name: "app.compose"},
		{Name: "app.contacts", Sticky: true},
		{Name: "app.contacts.detail", Params: []string{"contactId"}},
		{Name: "aux"},
		{Name: "aux.settings"},
	}
	if err := tree.RegisterAll(decls); err != nil {
		t.Fatalf("build mail tree: %v", err)
	}
	return tree
}

// MustPath builds the root-to-leaf path for the named leaf, failing
// the test on error.
func MustPath(t *testing.T, tree *state.Tree, leaf string, params state.Params) state.Path {
	t.Helper()
	s, ok := tree.Lookup(leaf)
	if !ok {
		t.Fatalf("unknown state %q", leaf)
	}
	p, err := tree.PathTo(s, params)
	if err != nil {
		t.Fatalf("path to %q: %v", leaf, err)
	}
	return p
}

// MustState resolves a state by name, failing the test on error.
func MustState(t *testing.T, tree *state.Tree, name string) *state.State {
	t.Helper()
	s, ok := tree.Lookup(name)
	if !ok {
		t.Fatalf("unknown state %q", name)
	}
	return s
}
