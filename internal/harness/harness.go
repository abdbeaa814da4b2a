package harness

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/roach88/logicflow/internal/config"
	"github.com/roach88/logicflow/internal/engine"
	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/interaction"
	"github.com/roach88/logicflow/internal/testutil"
	"github.com/roach88/logicflow/internal/trace"
)

// Harness replays one scenario against a real Editor.
type Harness struct {
	editor  *engine.Editor
	refs    map[string]graph.NodeID
	names   map[graph.NodeID]string
	outputs []boundOutput
	pointer image.Point
	result  *Result
}

type boundOutput struct {
	ref string
	rec *testutil.RecordingOutput
}

// Run executes a scenario and evaluates its assertions.
//
// Node ids come from SequentialKeys and ticks from a fresh logical clock, so
// the same scenario always yields the same trace. Output nodes are bound to
// recording capabilities. opts are passed to the Editor.
func Run(s *Scenario, opts ...engine.Option) (*Result, error) {
	cfg := interaction.DefaultConfig()
	if s.Config != "" {
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c.Interaction()
	}
	if len(s.Container) == 4 {
		x, y := s.Container[0], s.Container[1]
		cfg.Container = image.Rect(x, y, x+s.Container[2], y+s.Container[3])
	}

	h := &Harness{
		refs:   make(map[string]graph.NodeID, len(s.Nodes)),
		names:  make(map[graph.NodeID]string, len(s.Nodes)),
		result: NewResult(),
	}

	store, err := h.build(s)
	if err != nil {
		return nil, err
	}

	opts = append([]engine.Option{engine.WithClock(engine.NewClock())}, opts...)
	h.editor = engine.New(store, cfg, opts...)

	for i, step := range s.Steps {
		if err := h.step(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	h.capture()
	for _, msg := range EvaluateAssertions(h.result, s.Assertions) {
		h.result.AddError(msg)
	}

	slog.Debug("scenario finished", "scenario", s.Name, "ticks", h.editor.Seq(), "pass", h.result.Pass)
	return h.result, nil
}

func (h *Harness) build(s *Scenario) (*graph.Store, error) {
	gates := graph.StandardGates()
	store := graph.NewStore(graph.NewSequentialKeys())

	for _, spec := range s.Nodes {
		label := spec.Label
		if label == "" {
			label = spec.Ref
		}
		b := spec.Bounds
		opts := []graph.NodeOption{graph.WithBounds(image.Rect(b[0], b[1], b[2], b[3]))}
		if spec.Disabled {
			opts = append(opts, graph.Disabled())
		}

		var n graph.Node
		switch graph.Kind(spec.Kind) {
		case graph.KindSource:
			n = graph.NewSource(label, spec.Value, opts...)
		case graph.KindOutput:
			rec := testutil.NewRecordingOutput()
			h.outputs = append(h.outputs, boundOutput{ref: spec.Ref, rec: rec})
			if spec.Cached {
				n = graph.NewCachedOutput(label, rec, opts...)
			} else {
				n = graph.NewOutput(label, rec, opts...)
			}
		case graph.KindGate:
			gate, err := gates.Lookup(spec.Op)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", spec.Ref, err)
			}
			n = graph.NewGate(label, gate, opts...)
		}

		id := store.Insert(n)
		h.refs[spec.Ref] = id
		h.names[id] = spec.Ref
	}

	for _, c := range s.Connections {
		if err := store.Connect(h.refs[c.Target], c.Slot, h.refs[c.Source]); err != nil {
			return nil, fmt.Errorf("connect %s[%d] <- %s: %w", c.Target, c.Slot, c.Source, err)
		}
	}
	return store, nil
}

func (h *Harness) step(step Step) error {
	switch {
	case len(step.Set) > 0:
		return h.set(step.Set)
	case step.Background:
		tick := h.editor.Background()
		h.result.emit(tick, EventBackground, nil)
		h.drainOutputs(tick)
		return nil
	case step.Force:
		h.editor.ForceUpdate()
		tick := h.editor.Seq()
		h.result.emit(tick, EventForce, nil)
		h.drainOutputs(tick)
		return nil
	}

	ev, err := h.event(step)
	if err != nil {
		return err
	}
	res, stepErr := h.editor.Step(ev)
	h.record(res, stepErr)
	h.drainOutputs(res.Seq)
	return nil
}

func (h *Harness) event(step Step) (interaction.Event, error) {
	action, err := interaction.ParseAction(step.Action)
	if err != nil {
		return interaction.Event{}, err
	}
	button, err := interaction.ParseButton(step.Button)
	if err != nil {
		return interaction.Event{}, err
	}
	mods, err := parseMods(step.Mods)
	if err != nil {
		return interaction.Event{}, err
	}
	if len(step.At) == 2 {
		h.pointer = image.Pt(step.At[0], step.At[1])
	}
	return interaction.Event{
		Pointer: h.pointer,
		Action:  action,
		Button:  button,
		Mods:    mods,
		Key:     step.Key,
	}, nil
}

func (h *Harness) set(values map[string]bool) error {
	refs := make([]string, 0, len(values))
	for ref := range values {
		refs = append(refs, ref)
	}
	slices.Sort(refs)

	err := h.editor.Update(func(sess engine.Session) error {
		for _, ref := range refs {
			n, ok := sess.Store.Get(h.refs[ref])
			if !ok {
				return fmt.Errorf("set %q: %w", ref, graph.ErrNodeNotFound)
			}
			src, ok := n.(*graph.SourceNode)
			if !ok {
				return fmt.Errorf("set %q: not a source node", ref)
			}
			src.Set(values[ref])
		}
		return nil
	})
	if err != nil {
		return err
	}

	tick := h.editor.Seq()
	for _, ref := range refs {
		h.result.emit(tick, EventSet, trace.Object{"node": ref, "value": values[ref]})
	}
	return nil
}

// record turns a tick result into trace events.
func (h *Harness) record(res engine.StepResult, err error) {
	tick := res.Seq
	if res.Transitioned() {
		h.result.emit(tick, EventMode, trace.Object{"from": res.From.String(), "to": res.To.String()})
	}
	if c := res.Connected; c != nil {
		h.result.emit(tick, EventConnect, h.connection(c, true))
	}
	if c := res.Rejected; c != nil {
		h.result.emit(tick, EventReject, h.connection(c, true))
	}
	if err != nil {
		h.result.emit(tick, EventError, trace.Object{"message": err.Error()})
	}
	if c := res.Disconnected; c != nil {
		h.result.emit(tick, EventDisconnect, h.connection(c, false))
	}
	if len(res.Removed) > 0 {
		h.result.emit(tick, EventRemove, trace.Object{"nodes": h.refsOf(res.Removed)})
	}
	if len(res.Toggled) > 0 {
		h.result.emit(tick, EventToggle, trace.Object{"nodes": h.refsOf(res.Toggled)})
	}
	if res.SelectionChanged {
		var ids []graph.NodeID
		_ = h.editor.View(func(sess engine.Session) error {
			ids = sess.Selection.IDs()
			return nil
		})
		h.result.emit(tick, EventSelection, trace.Object{"nodes": h.refsOf(ids)})
	}
}

func (h *Harness) connection(c *interaction.Connection, withSource bool) trace.Object {
	obj := trace.Object{"target": h.name(c.Target), "slot": c.Slot}
	if withSource {
		obj["source"] = h.name(c.Source)
	}
	return obj
}

// drainOutputs emits every invocation since the last drain, outputs in
// insertion order.
func (h *Harness) drainOutputs(tick int64) {
	for _, o := range h.outputs {
		for _, v := range o.rec.Drain() {
			h.result.emit(tick, EventOutput, trace.Object{"node": o.ref, "value": v})
			h.result.Final.Outputs[o.ref] = append(h.result.Final.Outputs[o.ref], v)
		}
	}
}

// capture fills the final state.
func (h *Harness) capture() {
	final := &h.result.Final
	_ = h.editor.View(func(sess engine.Session) error {
		final.Mode = sess.Machine.Mode().String()
		final.Selection = h.refsOf(sess.Selection.IDs())
		final.Container = sess.Machine.Container()
		for _, n := range sess.Store.All() {
			inputs := make([]string, 0, graph.Arity(n))
			for _, in := range n.Inputs() {
				ref := ""
				if in.Valid && sess.Store.Contains(in.Source) {
					ref = h.name(in.Source)
				}
				inputs = append(inputs, ref)
			}
			final.Nodes[h.name(n.ID())] = NodeState{
				Kind:    graph.KindOf(n),
				Enabled: n.Enabled(),
				Bounds:  n.Bounds(),
				Inputs:  inputs,
				Display: sess.Store.DisplayOf(n.ID()).String(),
			}
		}
		return nil
	})
}

func (h *Harness) name(id graph.NodeID) string {
	if ref, ok := h.names[id]; ok {
		return ref
	}
	return fmt.Sprintf("#%d", id)
}

func (h *Harness) refsOf(ids []graph.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = h.name(id)
	}
	return out
}
