package selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicflow/internal/graph"
)

// fixture: X <- Y <- Z (Z feeds Y, Y feeds X), plus isolated W
// and an unrelated output O reading Z.
type fixture struct {
	store         *graph.Store
	x, y, z, w, o graph.NodeID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := graph.NewStore(graph.NewSequentialKeys())
	buf := graph.StandardGates()["buf"]
	f := fixture{store: s}
	f.x = s.Insert(graph.NewOutput("X", nil))
	f.y = s.Insert(graph.NewGate("Y", buf))
	f.z = s.Insert(graph.NewSource("Z", true))
	f.w = s.Insert(graph.NewSource("W", false))
	f.o = s.Insert(graph.NewOutput("O", nil))
	require.NoError(t, s.Connect(f.x, 0, f.y))
	require.NoError(t, s.Connect(f.y, 0, f.z))
	require.NoError(t, s.Connect(f.o, 0, f.z))
	return f
}

func TestController_AddIsUniqueAndOrdered(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)

	assert.True(t, c.Add(f.z))
	assert.True(t, c.Add(f.x))
	assert.False(t, c.Add(f.z))

	assert.Equal(t, []graph.NodeID{f.z, f.x}, c.IDs())
	assert.Equal(t, 2, c.Len())
}

func TestController_RemoveAndClear(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)
	c.Add(f.x)
	c.Add(f.y)

	c.Remove(f.x)
	c.Remove(f.w)
	assert.Equal(t, []graph.NodeID{f.y}, c.IDs())

	c.Clear()
	assert.Empty(t, c.IDs())
	assert.False(t, c.Contains(f.y))
}

func TestController_SelectTreeUnion(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)
	c.Add(f.x)

	c.SelectTree()

	want := []graph.NodeID{f.x, f.y, f.z}
	if diff := cmp.Diff(want, c.IDs()); diff != "" {
		t.Errorf("SelectTree mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SelectTreeKeepsIsolatedRoots(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)

	c.SelectTree(f.w, f.y)

	assert.Equal(t, []graph.NodeID{f.w, f.y, f.z}, c.IDs())
}

func TestController_SelectTreeDeduplicatesAcrossRoots(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)

	c.SelectTree(f.x, f.o)

	assert.Equal(t, []graph.NodeID{f.x, f.o, f.y, f.z}, c.IDs())
}

func TestController_EmptySelectionIsNoop(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)

	c.SelectTree()
	c.SelectNetwork()

	assert.Empty(t, c.IDs())
}

func TestController_SelectNetworkStopsAtSources(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)
	c.Add(f.x)

	c.SelectNetwork()

	// Z is a boundary: O, which also reads Z, is not reached.
	assert.Equal(t, []graph.NodeID{f.x, f.y, f.z}, c.IDs())
}

func TestController_Prune(t *testing.T) {
	f := newFixture(t)
	c := New(f.store)
	c.Add(f.x)
	c.Add(f.y)

	f.store.Remove(f.x)
	c.Prune()

	assert.Equal(t, []graph.NodeID{f.y}, c.IDs())
}
