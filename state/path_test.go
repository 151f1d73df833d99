package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathNodeString(t *testing.T) {
	tree := buildTree(t,
		Decl{Name: "app"},
		Decl{Name: "app.inbox", Params: []string{"inboxId", "folder"}},
	)
	inbox, _ := tree.Lookup("app.inbox")
	app, _ := tree.Lookup("app")

	tests := []struct {
		name string
		node PathNode
		want string
	}{
		{"no params", PathNode{State: app}, "app"},
		{"empty params", PathNode{State: app, Params: Params{}}, "app"},
		{"one param", PathNode{State: inbox, Params: Params{"inboxId": "1"}}, "app.inbox(inboxId=1)"},
		{
			"sorted keys",
			PathNode{State: inbox, Params: Params{"inboxId": "1", "folder": "spam"}},
			"app.inbox(folder=spam,inboxId=1)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.node.String())
		})
	}
}

func TestParamsEqual(t *testing.T) {
	assert.True(t, Params(nil).Equal(Params{}))
	assert.True(t, Params{"a": "1"}.Equal(Params{"a": "1"}))
	assert.False(t, Params{"a": "1"}.Equal(Params{"a": "2"}))
	assert.False(t, Params{"a": "1"}.Equal(Params{"a": "1", "b": "2"}))
}

func TestPathAccessors(t *testing.T) {
	tree := buildTree(t,
		Decl{Name: "app"},
		Decl{Name: "app.inbox", Params: []string{"inboxId"}},
		Decl{Name: "aux"},
	)
	inbox, _ := tree.Lookup("app.inbox")
	aux, _ := tree.Lookup("aux")

	path, err := tree.PathTo(inbox, Params{"inboxId": "1"})
	require.NoError(t, err)

	assert.Equal(t, inbox, path.Last().State)
	assert.True(t, path.ContainsState(inbox))
	assert.False(t, path.ContainsState(aux))
	assert.Equal(t, []string{"app", "app.inbox(inboxId=1)"}, path.Strings())
	assert.Equal(t, "app / app.inbox(inboxId=1)", path.String())

	assert.Nil(t, Path(nil).Last())
	assert.Equal(t, "", Path(nil).String())
}
