package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportIdempotent(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	apis := root.Child("apis", "./apis")

	first, err := apis.Import("definitions.Widget")
	require.NoError(t, err)
	second, err := apis.Import("definitions.Widget")
	require.NoError(t, err)

	assert.Equal(t, "Widget", first)
	assert.Equal(t, first, second)
	assert.Len(t, apis.Entries(), 1, "re-import must not add an entry")
}

func TestDefinePropagatesQualifiedCopy(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	bar := root.Child("bar", "./bar")

	require.NoError(t, bar.Define("Foo", DefineInfo{Public: true}))

	local := bar.GetEntry("Foo")
	require.NotNil(t, local)
	assert.Equal(t, Definition, local.Type)
	assert.Equal(t, "./bar", local.DefinedIn)

	// The parent sees the definition under its qualified name.
	require.True(t, root.Exists("bar.Foo"))
	promoted := root.GetEntry("bar.Foo")
	require.NotNil(t, promoted)
	assert.Equal(t, "./bar", promoted.DefinedIn)
	assert.False(t, promoted.Public, "propagated copies stay private")

	// The unqualified name stays local to the defining scope.
	assert.False(t, root.Exists("Foo"))
}

func TestImportCollisionGetsSuffix(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	sc := root.Child("apis", "./apis")

	a, err := sc.Import("definitions.Foo")
	require.NoError(t, err)
	b, err := sc.Import("models.Foo")
	require.NoError(t, err)

	assert.Equal(t, "Foo", a)
	assert.Equal(t, "Foo_2", b)

	// Both imports resolve back to their own source.
	assert.Equal(t, "definitions.Foo", sc.GetEntry("Foo").Source)
	assert.Equal(t, "models.Foo", sc.GetEntry("Foo_2").Source)
}

func TestImportOfOwnDefinition(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	defs := root.Child("definitions", "./definitions")
	require.NoError(t, defs.Define("Widget", DefineInfo{Public: true}))

	// Importing a symbol the scope itself defines is a no-op.
	name, err := defs.Import("definitions.Widget")
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)
	assert.Len(t, defs.Entries(), 1)
}

func TestExplicitImportNameTaken(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	sc := root.Child("apis", "./apis")
	require.NoError(t, sc.Define("Client", DefineInfo{}))

	_, err := sc.Import("client.ApiClient", "Client")
	require.Error(t, err)
}

func TestRedefineFails(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	sc := root.Child("definitions", "./definitions")
	require.NoError(t, sc.Define("Widget", DefineInfo{}))
	require.Error(t, sc.Define("Widget", DefineInfo{}))
}

func TestGlobalNameExcludesRoot(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	apis := root.Child("apis", "./apis")

	require.NoError(t, apis.Define("PetsApi", DefineInfo{Public: true}))
	assert.Equal(t, "apis.PetsApi", apis.GetEntry("PetsApi").GlobalName)
	assert.Equal(t, "apis.Other", apis.GlobalName("Other"))
}

func TestFindNearestWins(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	defs := root.Child("definitions", "./definitions")
	apis := root.Child("apis", "./apis")

	require.NoError(t, defs.Define("Widget", DefineInfo{SpecPath: "#/components/schemas/Widget", Public: true}))
	require.NoError(t, apis.Define("Local", DefineInfo{SpecPath: "#/components/schemas/Widget"}))

	byPath := func(e *Entry) bool {
		return e.Type == Definition && e.SpecPath == "#/components/schemas/Widget"
	}

	// From apis the local definition shadows the propagated sibling copy.
	assert.Equal(t, "Local", apis.Find(byPath).LocalName)
	// From a fresh sibling only the propagated copy is reachable.
	other := root.Child("other", "./other")
	assert.Equal(t, "definitions.Widget", other.Find(byPath).LocalName)
}
