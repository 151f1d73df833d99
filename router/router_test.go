package router

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathhold/pathhold/internal/testutil"
	"github.com/pathhold/pathhold/state"
	"github.com/pathhold/pathhold/sticky"
)

func newMailRouter(t *testing.T, opts ...Option) *Router {
	t.Helper()
	opts = append([]Option{WithTokenGenerator(NewFixedGenerator("tx"))}, opts...)
	return New(testutil.NewMailTree(t), opts...)
}

func mustNavigate(t *testing.T, r *Router, dest string, params state.Params, opts ...TransitionOption) *Transition {
	t.Helper()
	tx, err := r.Navigate(context.Background(), dest, params, opts...)
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, tx.Status())
	return tx
}

func TestNavigateCommitsCurrentPath(t *testing.T) {
	r := newMailRouter(t)

	tx := mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})

	assert.Equal(t, "tx-1", tx.Token())
	assert.Empty(t, tx.From())
	assert.Equal(t, "app / app.inbox(inboxId=1)", tx.To().String())
	assert.Equal(t, "app / app.inbox(inboxId=1)", r.Current().String())
	assert.NoError(t, tx.Err())
}

func TestNavigateUnknownState(t *testing.T) {
	r := newMailRouter(t)
	tx, err := r.Navigate(context.Background(), "app.nope", nil)
	assert.Error(t, err)
	assert.Nil(t, tx)
}

func TestNavigateUndeclaredParam(t *testing.T) {
	r := newMailRouter(t)
	_, err := r.Navigate(context.Background(), "app.compose", state.Params{"bogus": "1"})
	assert.ErrorIs(t, err, state.ErrUnknownParam)
	assert.Empty(t, r.Current())
}

func TestSuspendAndResumeThroughRouter(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})
	mustNavigate(t, r, "app.compose", nil)

	require.Len(t, r.Inactives(), 1)
	assert.Equal(t, "app.inbox", r.Inactives()[0].Name())

	tx := mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})
	assert.Equal(t, []string{"app.inbox(inboxId=1)"}, tx.Changes().Reactivating.Strings())
	assert.Empty(t, r.Inactives())
}

func TestHookDispatchOrder(t *testing.T) {
	r := newMailRouter(t)
	var fired []string
	for _, kind := range []Kind{KindInactivating, KindExiting, KindEntering, KindReactivating, KindRetained} {
		k := kind
		require.NoError(t, r.Hooks().Register(k, func(ctx context.Context, tx *Transition, node state.PathNode) {
			fired = append(fired, fmt.Sprintf("%s %s", k, node.String()))
		}))
	}

	mustNavigate(t, r, "app.contacts", nil)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})

	// The third transition resumes contacts while suspending the inbox:
	// suspension fires first, resumption after build-up, retained last.
	fired = nil
	mustNavigate(t, r, "app.contacts", nil)

	assert.Equal(t, []string{
		"inactivating app.inbox(inboxId=1)",
		"reactivating app.contacts",
		"retained app",
	}, fired)
}

func TestHookPriorityOverride(t *testing.T) {
	r := newMailRouter(t)
	var fired []string
	record := func(kind Kind) Hook {
		return func(ctx context.Context, tx *Transition, node state.PathNode) {
			fired = append(fired, string(kind))
		}
	}
	require.NoError(t, r.Hooks().Register(KindExiting, record(KindExiting)))
	require.NoError(t, r.Hooks().Register(KindEntering, record(KindEntering)))

	// Entering before exiting.
	require.NoError(t, r.Hooks().SetPriority(KindEntering, 5))

	mustNavigate(t, r, "app.compose", nil)
	fired = nil
	mustNavigate(t, r, "aux", nil)

	assert.Equal(t, []string{"entering", "exiting", "exiting"}, fired)
}

func TestHookRegistryRejectsUnknownKind(t *testing.T) {
	hooks := NewHookRegistry()
	assert.Error(t, hooks.Register(Kind("bogus"), func(context.Context, *Transition, state.PathNode) {}))
	assert.Error(t, hooks.SetPriority(Kind("bogus"), 1))
}

func TestStateDeclaredCallbacks(t *testing.T) {
	var events []string
	tree := state.NewTree()
	require.NoError(t, tree.RegisterAll([]state.Decl{
		{Name: "app"},
		{
			Name:   "app.panel",
			Sticky: true,
			OnInactivate: func(ctx context.Context, node state.PathNode) {
				events = append(events, "inactivate "+node.String())
			},
			OnReactivate: func(ctx context.Context, node state.PathNode) {
				events = append(events, "reactivate "+node.String())
			},
		},
		{Name: "app.other"},
	}))
	r := New(tree, WithTokenGenerator(NewFixedGenerator("tx")))

	ctx := context.Background()
	_, err := r.Navigate(ctx, "app.panel", nil)
	require.NoError(t, err)
	_, err = r.Navigate(ctx, "app.other", nil)
	require.NoError(t, err)
	_, err = r.Navigate(ctx, "app.panel", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"inactivate app.panel", "reactivate app.panel"}, events)
}

func TestOnSuccessFiresAfterCommit(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})

	var seenInactives int
	tx := mustNavigate(t, r, "app.compose", nil, func(tx *Transition) {
		tx.OnSuccess(func(tx *Transition) {
			seenInactives = len(r.Inactives())
		})
	})

	require.Equal(t, StatusSucceeded, tx.Status())
	assert.Equal(t, 1, seenInactives, "success callback must observe the committed registry")
}

func TestRequestEvictionByName(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})
	mustNavigate(t, r, "app.compose", nil)

	tx, err := r.RequestEviction(context.Background(), "app.inbox")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, tx.Status())
	assert.Equal(t, []string{"app.inbox(inboxId=1)"}, tx.Changes().Exiting.Strings())
	assert.Empty(t, r.Inactives())
	assert.Equal(t, "app / app.compose", r.Current().String())
}

func TestRequestEvictionAll(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})
	mustNavigate(t, r, "app.compose", nil)
	mustNavigate(t, r, "app.contacts", nil)
	mustNavigate(t, r, "app.compose", nil)
	require.Len(t, r.Inactives(), 2)

	tx, err := r.RequestEviction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, tx.Status())
	assert.Empty(t, r.Inactives())
}

func TestRequestEvictionNothingSuspended(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.compose", nil)

	tx, err := r.RequestEviction(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, tx)
}

func TestFailedEvictionLeavesRouterUntouched(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})
	mustNavigate(t, r, "app.compose", nil)

	tx, err := r.RequestEviction(context.Background(), "app.nope")
	require.Error(t, err)
	assert.True(t, sticky.IsUnknownState(err))
	require.NotNil(t, tx)
	assert.Equal(t, StatusFailed, tx.Status())
	assert.Equal(t, err, tx.Err())

	assert.Equal(t, "app / app.compose", r.Current().String())
	require.Len(t, r.Inactives(), 1)
	assert.Equal(t, "app.inbox", r.Inactives()[0].Name())
}

func TestNavigateWithReload(t *testing.T) {
	r := newMailRouter(t)
	mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"})

	inbox := testutil.MustState(t, r.Tree(), "app.inbox")
	tx := mustNavigate(t, r, "app.inbox", state.Params{"inboxId": "1"}, WithReload(inbox))

	assert.Equal(t, []string{"app.inbox(inboxId=1)"}, tx.Changes().Exiting.Strings())
	assert.Equal(t, []string{"app.inbox(inboxId=1)"}, tx.Changes().Entering.Strings())
}
