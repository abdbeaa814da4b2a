package engine

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/interaction"
	"github.com/roach88/logicflow/internal/testutil"
)

// fakeRecorder counts every Recorder call.
type fakeRecorder struct {
	mu          sync.Mutex
	ticks       int
	transitions []string
	connections map[string]int
	invocations map[string]uint64
	nodes       int
	sweeps      int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{connections: map[string]int{}, invocations: map[string]uint64{}}
}

func (r *fakeRecorder) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *fakeRecorder) ModeTransition(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from+">"+to)
}

func (r *fakeRecorder) Connection(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[result]++
}

func (r *fakeRecorder) OutputInvocations(policy string, n uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invocations[policy] += n
}

func (r *fakeRecorder) Nodes(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = n
}

func (r *fakeRecorder) Sweep(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
}

// Container (0,1)-(60,21). S output port (8,4); O input (39,4).
type editorRig struct {
	editor *Editor
	store  *graph.Store
	rec    *fakeRecorder
	out    *testutil.RecordingOutput
	src    *graph.SourceNode
	s, o   graph.NodeID
}

func newEditorRig(t *testing.T, opts ...Option) *editorRig {
	t.Helper()
	store := graph.NewStore(graph.NewSequentialKeys())
	r := &editorRig{store: store, rec: newFakeRecorder(), out: testutil.NewRecordingOutput()}
	r.src = graph.NewSource("S", true, graph.WithBounds(image.Rect(2, 2, 8, 5)))
	r.s = store.Insert(r.src)
	r.o = store.Insert(graph.NewCachedOutput("O", r.out, graph.WithBounds(image.Rect(40, 2, 46, 5))))
	r.editor = New(store, interaction.DefaultConfig(), append([]Option{WithRecorder(r.rec)}, opts...)...)
	return r
}

func ev(x, y int, a interaction.Action) interaction.Event {
	return interaction.Event{Pointer: image.Pt(x, y), Action: a, Button: interaction.ButtonLeft}
}

func TestEditor_StepConnectsAndSweeps(t *testing.T) {
	r := newEditorRig(t)

	res, err := r.editor.Step(ev(8, 4, interaction.ActionDown))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Seq)
	assert.Equal(t, interaction.ModeDraggingConnection, res.To)
	assert.Empty(t, r.out.Calls(), "unconnected output does not fire")

	res, err = r.editor.Step(ev(39, 4, interaction.ActionUp))
	require.NoError(t, err)
	require.NotNil(t, res.Connected)
	assert.Equal(t, []bool{true}, r.out.Calls(), "the same tick's sweep fires the new output")

	_, err = r.editor.Step(ev(30, 30, interaction.ActionMove))
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, r.out.Calls(), "cached output does not repeat")

	assert.Equal(t, 3, r.rec.ticks)
	assert.Equal(t, []string{"idle>dragging-connection", "dragging-connection>idle"}, r.rec.transitions)
	assert.Equal(t, 1, r.rec.connections[ConnectionAccepted])
	assert.Equal(t, uint64(1), r.rec.invocations[PolicyCached])
	assert.Equal(t, 2, r.rec.nodes)
	assert.Equal(t, 3, r.rec.sweeps)
}

func TestEditor_RejectedDropIsCounted(t *testing.T) {
	r := newEditorRig(t)
	r.store.Insert(graph.NewGate("G", graph.StandardGates()["not"], graph.WithBounds(image.Rect(20, 2, 26, 5))))

	// G's own port back into G's input is a self-loop.
	_, err := r.editor.Step(ev(26, 4, interaction.ActionDown))
	require.NoError(t, err)
	res, err := r.editor.Step(ev(19, 4, interaction.ActionUp))
	require.NoError(t, err)

	assert.NotNil(t, res.Rejected)
	assert.Equal(t, 1, r.rec.connections[ConnectionRejected])
}

func TestEditor_BackgroundAndForceUpdate(t *testing.T) {
	r := newEditorRig(t)
	require.NoError(t, r.store.Connect(r.o, 0, r.s))

	seq := r.editor.Background()
	assert.Equal(t, int64(1), seq)
	r.editor.Background()
	assert.Equal(t, []bool{true}, r.out.Calls())

	r.editor.ForceUpdate()
	assert.Equal(t, []bool{true, true}, r.out.Calls())

	require.NoError(t, r.editor.Update(func(s Session) error {
		r.src.Set(false)
		return nil
	}))
	r.editor.Background()
	assert.Equal(t, []bool{true, true, false}, r.out.Calls())
	assert.Equal(t, uint64(3), r.rec.invocations[PolicyCached])
}

func TestEditor_Frame(t *testing.T) {
	r := newEditorRig(t)
	require.NoError(t, r.store.Connect(r.o, 0, r.s))

	_, err := r.editor.Step(ev(3, 4, interaction.ActionDown))
	require.NoError(t, err)

	f := r.editor.Frame()
	assert.Equal(t, int64(1), f.Seq)
	assert.Equal(t, "dragging-nodes", f.Mode)
	assert.Equal(t, Rect{X: 0, Y: 1, W: 60, H: 20}, f.Container)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 60, H: 1}, f.Header)
	assert.Equal(t, []graph.NodeID{r.s}, f.Selection)

	require.Len(t, f.Nodes, 2)
	s := f.Nodes[0]
	assert.Equal(t, graph.KindSource, s.Kind)
	assert.Equal(t, Rect{X: 2, Y: 3, W: 6, H: 3}, s.Bounds)
	assert.True(t, s.Selected)
	assert.True(t, s.Hovered)
	assert.Equal(t, "true", s.Display)
	require.NotNil(t, s.Output)
	assert.Equal(t, Point{X: 8, Y: 4}, *s.Output)

	o := f.Nodes[1]
	assert.True(t, o.Cached)
	assert.Nil(t, o.Output, "outputs are sinks")
	assert.Equal(t, "true", o.Display)
	require.Len(t, o.Inputs, 1)
	require.NotNil(t, o.Inputs[0].Source)
	assert.Equal(t, r.s, *o.Inputs[0].Source)

	require.Len(t, f.Edges, 1)
	assert.Equal(t, EdgeView{Source: r.s, Target: r.o, Slot: 0, From: Point{X: 8, Y: 4}, To: Point{X: 39, Y: 4}}, f.Edges[0])
}

func TestEditor_FrameOverlays(t *testing.T) {
	r := newEditorRig(t)

	_, err := r.editor.Step(ev(30, 15, interaction.ActionDown))
	require.NoError(t, err)
	_, err = r.editor.Step(ev(35, 18, interaction.ActionDrag))
	require.NoError(t, err)

	f := r.editor.Frame()
	require.NotNil(t, f.Overlays.Box)
	assert.Equal(t, Rect{X: 30, Y: 15, W: 5, H: 3}, *f.Overlays.Box)
	assert.Nil(t, f.Overlays.Connection)
}

func TestEditor_UpdatePrunesSelection(t *testing.T) {
	r := newEditorRig(t)

	require.NoError(t, r.editor.Update(func(s Session) error {
		s.Selection.Add(r.s)
		s.Selection.Add(r.o)
		s.Store.Remove(r.s)
		return nil
	}))

	f := r.editor.Frame()
	assert.Equal(t, []graph.NodeID{r.o}, f.Selection)
	assert.Len(t, f.Nodes, 1)
	assert.Equal(t, 1, r.rec.nodes)
}

func TestEditor_RunDrainsQueueThenStops(t *testing.T) {
	var mu sync.Mutex
	var seqs []int64
	r := newEditorRig(t, WithStepHandler(func(res StepResult, err error) {
		mu.Lock()
		defer mu.Unlock()
		seqs = append(seqs, res.Seq)
	}))

	require.True(t, r.editor.Enqueue(ev(8, 4, interaction.ActionDown)))
	require.True(t, r.editor.Enqueue(ev(39, 4, interaction.ActionUp)))
	assert.Equal(t, 2, r.editor.QueueLen())
	r.editor.Stop()
	assert.False(t, r.editor.Enqueue(ev(0, 0, interaction.ActionMove)))

	err := r.editor.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, seqs)
	assert.Equal(t, []bool{true}, r.out.Calls())
	assert.Equal(t, int64(2), r.editor.Seq())
}

func TestEditor_RunStopsOnCancel(t *testing.T) {
	r := newEditorRig(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.editor.Run(ctx) }()

	r.editor.Enqueue(ev(30, 30, interaction.ActionMove))
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
