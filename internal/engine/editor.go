package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/interaction"
	"github.com/roach88/logicflow/internal/selection"
)

// Editor drives one graph: it owns the store, the selection and the
// interaction machine, and serializes every mutation behind one lock.
//
// Each Step is one tick: a machine pass over one event, then an evaluation
// sweep over all outputs, then a fresh Frame for readers.
//
// Thread-safety model:
//   - Step, Background, ForceUpdate, Update, View, Frame: safe from any goroutine
//   - Enqueue: safe from any goroutine
//   - Run: must be called from exactly one goroutine
type Editor struct {
	mu       sync.Mutex
	store    *graph.Store
	sel      *selection.Controller
	machine  *interaction.Machine
	clock    *Clock
	queue    *eventQueue
	recorder Recorder
	onStep   func(StepResult, error)
	frame    Frame
}

// Option configures an Editor.
type Option func(*Editor)

// WithRecorder reports telemetry to r.
func WithRecorder(r Recorder) Option {
	return func(e *Editor) {
		e.recorder = r
	}
}

// WithClock stamps ticks from c instead of a fresh clock.
func WithClock(c *Clock) Option {
	return func(e *Editor) {
		e.clock = c
	}
}

// WithStepHandler is called from Run after every queued event is stepped.
// Without a handler, Run logs step errors and carries on.
func WithStepHandler(fn func(StepResult, error)) Option {
	return func(e *Editor) {
		e.onStep = fn
	}
}

// StepResult is the outcome of one tick.
type StepResult struct {
	Seq int64
	interaction.Result
}

// Session exposes the editor's components to Update and View callbacks.
type Session struct {
	Store     *graph.Store
	Selection *selection.Controller
	Machine   *interaction.Machine
}

// New creates an Editor over store.
func New(store *graph.Store, cfg interaction.Config, opts ...Option) *Editor {
	sel := selection.New(store)
	e := &Editor{
		store:    store,
		sel:      sel,
		machine:  interaction.NewMachine(store, sel, cfg),
		clock:    NewClock(),
		queue:    newEventQueue(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.frame = e.buildFrame(e.clock.Current())
	e.recorder.Nodes(store.Len())
	return e
}

// Step runs one tick for ev. A returned error comes from the connection
// editor; the tick, sweep and frame still complete.
func (e *Editor) Step(ev interaction.Event) (StepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seq := e.clock.Next()
	res, err := e.machine.Tick(ev)
	e.observe(seq, res, err)
	e.sweep()
	e.recorder.Tick()
	e.frame = e.buildFrame(seq)
	return StepResult{Seq: seq, Result: res}, err
}

// Background evaluates every output without an input event, for hosts that
// keep the graph live while its UI is hidden. Returns the tick seq.
func (e *Editor) Background() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	seq := e.clock.Next()
	e.sweep()
	e.frame = e.buildFrame(seq)
	return seq
}

// ForceUpdate re-announces every output's current value, bypassing caches.
func (e *Editor) ForceUpdate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.countInvocations(e.store.ForceUpdate)
	slog.Debug("outputs force-updated", "outputs", len(e.store.Outputs()))
}

// Update runs fn with exclusive access and refreshes the frame afterwards.
// Selected ids that no longer exist are dropped.
func (e *Editor) Update(fn func(Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := fn(e.session())
	e.sel.Prune()
	e.recorder.Nodes(e.store.Len())
	e.frame = e.buildFrame(e.clock.Current())
	return err
}

// View runs fn with exclusive read access.
func (e *Editor) View(fn func(Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session())
}

// Frame returns the most recent snapshot.
func (e *Editor) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Seq returns the last tick stamped by the editor clock.
func (e *Editor) Seq() int64 {
	return e.clock.Current()
}

func (e *Editor) session() Session {
	return Session{Store: e.store, Selection: e.sel, Machine: e.machine}
}

// observe reports what a tick changed. Caller holds e.mu.
func (e *Editor) observe(seq int64, res interaction.Result, err error) {
	if res.Transitioned() {
		slog.Debug("mode transition", "seq", seq, "from", res.From.String(), "to", res.To.String())
		e.recorder.ModeTransition(res.From.String(), res.To.String())
	}
	if c := res.Connected; c != nil {
		slog.Info("connected", "seq", seq, "target", c.Target, "slot", c.Slot, "source", c.Source)
		e.recorder.Connection(ConnectionAccepted)
	}
	if c := res.Rejected; c != nil {
		slog.Debug("connection rejected", "seq", seq, "target", c.Target, "slot", c.Slot, "source", c.Source)
		e.recorder.Connection(ConnectionRejected)
	}
	if err != nil {
		e.recorder.Connection(ConnectionFailed)
	}
	if c := res.Disconnected; c != nil {
		slog.Info("input cleared", "seq", seq, "target", c.Target, "slot", c.Slot)
		e.recorder.Connection(ConnectionCleared)
	}
	if len(res.Removed) > 0 {
		slog.Info("nodes removed", "seq", seq, "ids", res.Removed)
	}
	if len(res.Toggled) > 0 {
		slog.Info("nodes toggled", "seq", seq, "ids", res.Toggled)
	}
}

// sweep evaluates all outputs and reports timing. Caller holds e.mu.
func (e *Editor) sweep() {
	start := time.Now()
	e.countInvocations(func() { e.store.EvaluateOutputs() })
	e.recorder.Sweep(time.Since(start))
	e.recorder.Nodes(e.store.Len())
}

// countInvocations runs fn and reports how many output invocations it caused.
func (e *Editor) countInvocations(fn func()) {
	outs := e.store.Outputs()
	before := make([]uint64, len(outs))
	for i, o := range outs {
		before[i] = o.Invocations()
	}
	fn()
	var cached, direct uint64
	for i, o := range outs {
		d := o.Invocations() - before[i]
		if o.Cached() {
			cached += d
		} else {
			direct += d
		}
	}
	if cached > 0 {
		e.recorder.OutputInvocations(PolicyCached, cached)
	}
	if direct > 0 {
		e.recorder.OutputInvocations(PolicyDirect, direct)
	}
}

// Enqueue submits an event for the Run loop. Returns false after Stop.
func (e *Editor) Enqueue(ev interaction.Event) bool {
	return e.queue.Enqueue(ev)
}

// QueueLen returns the number of events waiting for Run.
func (e *Editor) QueueLen() int {
	return e.queue.Len()
}

// Run steps queued events in FIFO order until ctx is cancelled or Stop is
// called and the queue has drained.
func (e *Editor) Run(ctx context.Context) error {
	slog.Info("editor loop starting")

	for {
		ev, ok := e.queue.TryDequeue()
		if ok {
			res, err := e.Step(ev)
			switch {
			case e.onStep != nil:
				e.onStep(res, err)
			case err != nil:
				slog.Error("step failed", "seq", res.Seq, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("editor loop stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			if e.queue.Drained() {
				slog.Info("editor loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the remaining events are stepped.
func (e *Editor) Stop() {
	e.queue.Close()
}
