package bdcoap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/status"
)

type testTreeListener struct {
	bdcore.BaseListener

	id int
}

func TestResourceTreeMergesInteriorNode(t *testing.T) {
	tree := newResourceTree()

	red := &testTreeListener{id: 1}
	desc := &testTreeListener{id: 2}

	require.NoError(t, tree.insert("/things/led/properties/red", red))
	require.NoError(t, tree.insert("/things/led", desc))

	require.Equal(t, desc, tree.find("/things/led"))
	require.Equal(t, red, tree.find("/things/led/properties/red"))
}

func TestResourceTreeInteriorNodeNotServed(t *testing.T) {
	tree := newResourceTree()

	require.NoError(t, tree.insert("/things/led/properties/red", &testTreeListener{}))

	require.Nil(t, tree.find("/things/led/properties"))
	require.Nil(t, tree.find("/things"))
	require.Nil(t, tree.find("/things/led/properties/green"))
}

func TestResourceTreeDuplicate(t *testing.T) {
	tree := newResourceTree()

	require.NoError(t, tree.insert("/things/led", &testTreeListener{}))
	require.ErrorIs(t, tree.insert("things/led/", &testTreeListener{}), status.StatusInvalidArg)
	require.ErrorIs(t, tree.insert("/", &testTreeListener{}), status.StatusInvalidArg)
}

func TestResourceTreePaths(t *testing.T) {
	tree := newResourceTree()

	require.NoError(t, tree.insert("/things/led/properties/red", &testTreeListener{}))
	require.NoError(t, tree.insert("/things/led/actions/fadeIn", &testTreeListener{}))
	require.NoError(t, tree.insert("/things/led", &testTreeListener{}))

	require.Equal(t, []string{
		"/things/led",
		"/things/led/actions/fadeIn",
		"/things/led/properties/red",
	}, tree.paths())
}

func TestCleanPath(t *testing.T) {
	require.Equal(t, "/", cleanPath(""))
	require.Equal(t, "/a/b", cleanPath("a//b/"))
	require.Equal(t, "/.well-known/core", cleanPath("/.well-known/core"))
}
