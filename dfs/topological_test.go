package dfs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cardbook/core"
	"github.com/katalvlaran/cardbook/dfs"
)

// fixture is a compact test card: entry ID followed by the IDs it tags.
type fixture struct {
	id   string
	tags []string
}

func node(id string, tags ...string) fixture { return fixture{id: id, tags: tags} }

// linked builds and links a store from fixtures, in the given collection order.
func linked(t testing.TB, fixtures ...fixture) *core.Store {
	t.Helper()
	s := core.NewStore()
	for _, fx := range fixtures {
		e := core.NewEntry(fx.id, fx.id).WithText("")
		e.Tags = fx.tags
		require.NoError(t, s.Add(e))
	}
	_, err := s.Link()
	require.NoError(t, err)

	return s
}

// position returns index of v in order or -1 if not found.
func position(order []string, v string) int {
	for i, x := range order {
		if x == v {
			return i
		}
	}

	return -1
}

func entryIDs(es []*core.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}

	return out
}

// TestTopo_NilStore verifies that passing a nil store returns ErrStoreNil.
func TestTopo_NilStore(t *testing.T) {
	order, err := dfs.TopologicalSort(nil)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, dfs.ErrStoreNil)
}

// TestTopo_NotLinked refuses a store whose tags were never resolved.
func TestTopo_NotLinked(t *testing.T) {
	s := core.NewStore()
	require.NoError(t, s.Add(core.NewEntry("a", "a")))
	_, err := dfs.TopologicalSort(s)
	assert.ErrorIs(t, err, dfs.ErrStoreNotLinked)
}

// TestTopo_EmptyStore covers a store with no entries.
func TestTopo_EmptyStore(t *testing.T) {
	order, err := dfs.TopologicalSort(linked(t))
	assert.NoError(t, err)
	assert.Empty(t, order)
}

// TestTopo_NoEdges keeps collection order when nothing is referenced.
func TestTopo_NoEdges(t *testing.T) {
	order, err := dfs.TopologicalSort(linked(t, node("c"), node("a"), node("b")))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, entryIDs(order))
}

// TestTopo_DependenciesFirst: C tags B, B tags A ⇒ A, B, C.
func TestTopo_DependenciesFirst(t *testing.T) {
	order, err := dfs.TopologicalSort(linked(t,
		node("C", "B"),
		node("B", "A"),
		node("A"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, entryIDs(order))
}

// TestTopo_ChildrenByCollectionIndex: references are visited in collection
// order, not tag order.
func TestTopo_ChildrenByCollectionIndex(t *testing.T) {
	order, err := dfs.TopologicalSort(linked(t,
		node("x"),
		node("y"),
		node("top", "y", "x"), // tag order y, x; collection order x, y
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "top"}, entryIDs(order))

	order, err = dfs.TopologicalSort(linked(t,
		node("top", "y", "x"),
		node("x"),
		node("y"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "top"}, entryIDs(order))
}

// TestTopo_ValidOrder checks B ∈ A.References ⇒ pos(B) < pos(A) on a diamond
// with a shared dependency and a duplicate tag.
func TestTopo_ValidOrder(t *testing.T) {
	s := linked(t,
		node("field", "ring", "group"),
		node("ring", "group", "set"),
		node("group", "set", "set"),
		node("set"),
		node("vector", "field", "group"),
	)
	order, err := dfs.TopologicalSort(s)
	require.NoError(t, err)
	ids := entryIDs(order)
	require.Len(t, ids, s.Len())
	assert.ElementsMatch(t, s.IDs(), ids, "each entry exactly once")

	for _, a := range s.Entries() {
		for _, b := range a.References {
			assert.Lessf(t, position(ids, b.ID), position(ids, a.ID),
				"%s must precede %s", b.ID, a.ID)
		}
	}
	assert.Equal(t, []string{"set", "group", "ring", "field", "vector"}, ids)
}

// TestTopo_Deterministic runs the sort repeatedly on identical input.
func TestTopo_Deterministic(t *testing.T) {
	build := func() *core.Store {
		return linked(t,
			node("e", "d", "b"), node("d", "a"), node("c"),
			node("b", "c", "a"), node("a"),
		)
	}
	first, err := dfs.TopologicalSort(build())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := dfs.TopologicalSort(build())
		require.NoError(t, err)
		assert.Equal(t, entryIDs(first), entryIDs(again))
	}
}

// TestTopo_MissingTagStillOrdered keeps entries whose tags do not resolve.
func TestTopo_MissingTagStillOrdered(t *testing.T) {
	order, err := dfs.TopologicalSort(linked(t, node("a", "ghost"), node("b", "a", "ghost")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, entryIDs(order))
}

// TestTopo_TwoCycle: A references B and B references A.
func TestTopo_TwoCycle(t *testing.T) {
	order, err := dfs.TopologicalSort(linked(t, node("A", "B"), node("B", "A")))
	assert.Nil(t, order)
	require.ErrorIs(t, err, dfs.ErrCycleDetected)

	var ce *dfs.CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "A", ce.ID)
	assert.Equal(t, []string{"A", "B", "A"}, ce.Path)
	assert.Contains(t, err.Error(), `"A" visited twice`)
}

// TestTopo_LongCycleAndSelfLoop covers a 3-cycle behind a prefix and a self tag.
func TestTopo_LongCycleAndSelfLoop(t *testing.T) {
	_, err := dfs.TopologicalSort(linked(t,
		node("root", "a"),
		node("a", "b"), node("b", "c"), node("c", "a"),
	))
	var ce *dfs.CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "a", ce.ID)
	assert.Equal(t, []string{"a", "b", "c", "a"}, ce.Path)

	_, err = dfs.TopologicalSort(linked(t, node("self", "self")))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"self", "self"}, ce.Path)
}

// TestTopo_Cancel aborts when the context is already done.
func TestTopo_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dfs.TopologicalSort(linked(t, node("a")), dfs.WithCancelContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestTopo_LongChain exercises a chain far deeper than a recursive walk
// would comfortably handle.
func TestTopo_LongChain(t *testing.T) {
	const n = 50000
	fixtures := make([]fixture, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			fixtures[i] = node("N0")
			continue
		}
		fixtures[i] = node(fmt.Sprintf("N%d", i), fmt.Sprintf("N%d", i-1))
	}
	// reverse so the deepest entry is the first root
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		fixtures[i], fixtures[j] = fixtures[j], fixtures[i]
	}
	order, err := dfs.TopologicalSort(linked(t, fixtures...))
	require.NoError(t, err)
	require.Len(t, order, n)
	assert.Equal(t, "N0", order[0].ID)
	assert.Equal(t, fmt.Sprintf("N%d", n-1), order[n-1].ID)
}
