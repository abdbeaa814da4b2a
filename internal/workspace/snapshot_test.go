package workspace

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/testutil"
)

// circuit builds a, b -> and -> lamp with one disabled source.
func circuit(t *testing.T) (*graph.Store, map[string]graph.NodeID) {
	t.Helper()
	gates := graph.StandardGates()
	s := graph.NewStore(nil)

	ids := map[string]graph.NodeID{
		"a":    s.Insert(graph.NewSource("a", true, graph.WithBounds(image.Rect(1, 1, 7, 4)))),
		"b":    s.Insert(graph.NewSource("b", true, graph.Disabled(), graph.WithBounds(image.Rect(1, 6, 7, 9)))),
		"and":  s.Insert(graph.NewGate("and", gates["and"], graph.WithBounds(image.Rect(12, 2, 18, 6)))),
		"lamp": s.Insert(graph.NewCachedOutput("lamp", nil, graph.WithBounds(image.Rect(24, 2, 30, 5)))),
	}
	require.NoError(t, s.Connect(ids["and"], 0, ids["a"]))
	require.NoError(t, s.Connect(ids["and"], 1, ids["b"]))
	require.NoError(t, s.Connect(ids["lamp"], 0, ids["and"]))
	return s, ids
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t, WithIDGenerator(NewFixedGenerator("snap-1")))
	orig, ids := circuit(t)
	container := image.Rect(0, 1, 60, 21)

	id, err := w.Save(ctx, "demo", orig, container)
	require.NoError(t, err)
	assert.Equal(t, "snap-1", id)

	rec := testutil.NewRecordingOutput()
	binder := StandardBinder()
	binder.Outputs = func(graph.NodeID, string) graph.Output { return rec }

	got, gotContainer, err := w.Load(ctx, id, binder)
	require.NoError(t, err)
	assert.Equal(t, container, gotContainer)
	assert.Equal(t, orig.IDs(), got.IDs(), "ids and insertion order survive")

	for _, want := range orig.All() {
		n, ok := got.Get(want.ID())
		require.True(t, ok)
		assert.Equal(t, graph.KindOf(want), graph.KindOf(n))
		assert.Equal(t, want.Label(), n.Label())
		assert.Equal(t, want.Enabled(), n.Enabled())
		assert.Equal(t, want.Bounds(), n.Bounds())
		assert.Equal(t, want.Inputs(), n.Inputs())
	}

	gate, _ := got.Get(ids["and"])
	assert.Equal(t, "and", gate.(*graph.GateNode).Op())
	lamp, _ := got.Get(ids["lamp"])
	assert.True(t, lamp.(*graph.OutputNode).Cached())
	a, _ := got.Get(ids["a"])
	assert.True(t, a.(*graph.SourceNode).Raw())

	// b is disabled, so the and gate reads false.
	got.EvaluateOutputs()
	assert.Equal(t, []bool{false}, rec.Calls())
}

func TestSave_DropsStaleInputs(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t)
	s, ids := circuit(t)
	s.Remove(ids["b"])

	id, err := w.Save(ctx, "stale", s, image.Rect(0, 0, 10, 10))
	require.NoError(t, err)

	got, _, err := w.Load(ctx, id, StandardBinder())
	require.NoError(t, err)

	gate, _ := got.Get(ids["and"])
	assert.Equal(t, []graph.InputRef{graph.Ref(ids["a"]), {}}, gate.Inputs())
}

func TestLoad_UnknownGate(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t)
	s, _ := circuit(t)

	id, err := w.Save(ctx, "demo", s, image.Rect(0, 0, 10, 10))
	require.NoError(t, err)

	_, _, err = w.Load(ctx, id, TableBinder{Gates: graph.Gates{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown gate "and"`)
}

func TestLoad_CorruptCycleSurfacesCycleError(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t, WithIDGenerator(NewFixedGenerator("loop")))
	gates := graph.StandardGates()

	s := graph.NewStore(nil)
	g1 := s.Insert(graph.NewGate("g1", gates["buf"]))
	g2 := s.Insert(graph.NewGate("g2", gates["buf"]))
	require.NoError(t, s.Connect(g1, 0, g2))

	id, err := w.Save(ctx, "loop", s, image.Rect(0, 0, 10, 10))
	require.NoError(t, err)

	// Close the loop behind the graph's back.
	_, err = w.db.Exec(`INSERT INTO inputs (snapshot_id, node_id, slot, source_id) VALUES (?, ?, 0, ?)`,
		id, int64(g2), int64(g1))
	require.NoError(t, err)

	_, _, err = w.Load(ctx, id, StandardBinder())
	require.Error(t, err)
	assert.True(t, graph.IsCycleError(err))
}

func TestLoad_NotFound(t *testing.T) {
	w := createTestWorkspace(t)

	_, _, err := w.Load(context.Background(), "missing", StandardBinder())
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestList_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t, WithIDGenerator(NewFixedGenerator("zz", "aa", "mm")))
	s, _ := circuit(t)

	for _, name := range []string{"first", "second", "third"} {
		_, err := w.Save(ctx, name, s, image.Rect(0, 0, 10, 10))
		require.NoError(t, err)
	}

	list, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, []string{"zz", "aa", "mm"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, []int64{1, 2, 3}, []int64{list[0].Seq, list[1].Seq, list[2].Seq})
	assert.Equal(t, 4, list[0].Nodes)
	assert.Equal(t, image.Rect(0, 0, 10, 10), list[0].Container)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t, WithIDGenerator(NewFixedGenerator("s1", "s2", "s3")))
	s, _ := circuit(t)

	for _, name := range []string{"demo", "other", "demo"} {
		_, err := w.Save(ctx, name, s, image.Rect(0, 0, 10, 10))
		require.NoError(t, err)
	}

	byID, err := w.Resolve(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", byID.ID)

	byName, err := w.Resolve(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "s3", byName.ID, "latest snapshot with the name wins")

	_, err = w.Resolve(ctx, "nope")
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestDelete_Cascades(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t)
	s, _ := circuit(t)

	id, err := w.Save(ctx, "demo", s, image.Rect(0, 0, 10, 10))
	require.NoError(t, err)
	require.NoError(t, w.Delete(ctx, id))

	var nodes, inputs int
	require.NoError(t, w.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&nodes))
	require.NoError(t, w.db.QueryRow(`SELECT COUNT(*) FROM inputs`).Scan(&inputs))
	assert.Zero(t, nodes)
	assert.Zero(t, inputs)

	assert.True(t, errors.Is(w.Delete(ctx, id), ErrSnapshotNotFound))
}

func TestLoad_UsesConfiguredKeys(t *testing.T) {
	ctx := context.Background()
	w := createTestWorkspace(t, WithKeys(func() graph.KeyAllocator {
		return testutil.NewFixedKeys(-1, -100)
	}))
	s, _ := circuit(t)

	id, err := w.Save(ctx, "demo", s, image.Rect(0, 0, 10, 10))
	require.NoError(t, err)

	got, _, err := w.Load(ctx, id, StandardBinder())
	require.NoError(t, err)

	// -1 is live after the load, so the allocator's next candidate is used.
	assert.Equal(t, graph.NodeID(-100), got.Insert(graph.NewSource("new", false)))
}
