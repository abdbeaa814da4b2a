package interaction

import (
	"fmt"
	"image"
	"slices"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/selection"
)

// Keys binds editor commands to key names.
type Keys struct {
	SelectTree    string
	SelectNetwork string
	Disable       string
	Delete        string
}

// DefaultKeys returns the stock bindings.
func DefaultKeys() Keys {
	return Keys{SelectTree: "t", SelectNetwork: "n", Disable: "d", Delete: "delete"}
}

// Config configures a Machine.
type Config struct {
	Keys      Keys
	Layout    Layout
	Container image.Rectangle
}

// DefaultConfig returns the stock configuration with a 60x20 container at (0, 1).
func DefaultConfig() Config {
	return Config{
		Keys:      DefaultKeys(),
		Layout:    DefaultLayout(),
		Container: image.Rect(0, 1, 60, 21),
	}
}

// Slot names one input slot of one node.
type Slot struct {
	Node  graph.NodeID
	Index int
}

// Connection is an edge written or cleared during a tick.
type Connection struct {
	Target graph.NodeID
	Slot   int
	Source graph.NodeID
}

// Hover is what the pointer is over after the last tick. When nodes overlap,
// the most recently inserted one wins.
type Hover struct {
	Node      graph.NodeID
	OnNode    bool
	Port      graph.NodeID
	OnPort    bool
	Slot      Slot
	OnSlot    bool
	Grip      bool
	ValidDrop bool
}

// Result describes what one tick changed.
type Result struct {
	From             Mode
	To               Mode
	Connected        *Connection
	Rejected         *Connection
	Disconnected     *Connection
	Removed          []graph.NodeID
	Toggled          []graph.NodeID
	SelectionChanged bool
}

// Transitioned reports whether the tick changed mode.
func (r Result) Transitioned() bool { return r.From != r.To }

// Machine is the editor's interaction state machine.
// It mutates the store, the selection and its own container rectangle.
type Machine struct {
	store     *graph.Store
	sel       *selection.Controller
	keys      Keys
	layout    Layout
	container image.Rectangle

	state   State
	pointer image.Point
	hover   Hover
	capture bool
}

// NewMachine creates an Idle machine.
func NewMachine(store *graph.Store, sel *selection.Controller, cfg Config) *Machine {
	return &Machine{
		store:     store,
		sel:       sel,
		keys:      cfg.Keys,
		layout:    cfg.Layout,
		container: cfg.Container.Canon(),
		state:     Idle{},
	}
}

// Tick applies one event. The only error is a failed connect, which leaves
// the graph untouched; the machine still finishes the tick.
func (m *Machine) Tick(ev Event) (Result, error) {
	res := Result{From: m.state.Mode()}
	before := m.sel.IDs()
	m.pointer = ev.Pointer

	m.continueDrag(ev)

	body := m.container
	overBody := ev.Pointer.In(body)
	overHeader := ev.Pointer.In(m.layout.Header(body))
	m.capture = ev.Pointer.In(m.layout.Capture(body))
	m.hover = m.hitTest(ev.Pointer)
	h := &m.hover

	var connectErr error

	// 1. connection completion
	if src, ok := m.state.(DraggingConnection); ok && h.OnSlot {
		c := Connection{Target: h.Slot.Node, Slot: h.Slot.Index, Source: src.Source}
		h.ValidDrop = m.store.Contains(c.Source) && m.store.CanConnect(c.Target, c.Source)
		switch {
		case ev.Action != ActionUp:
		case !h.ValidDrop:
			res.Rejected = &c
		default:
			if err := m.store.Connect(c.Target, c.Slot, c.Source); err != nil {
				connectErr = fmt.Errorf("complete connection: %w", err)
			} else {
				res.Connected = &c
			}
		}
	}

	// 2. connection start
	if m.idle() && h.OnPort && ev.pressing() && ev.left() {
		m.state = DraggingConnection{Source: h.Port}
	}

	// 3. resize start
	h.Grip = ev.Pointer.In(m.layout.Grip(body)) && !h.OnNode &&
		(m.idle() || m.state.Mode() == ModeDraggingResize)
	if h.Grip && m.idle() && ev.pressing() && ev.left() {
		m.state = DraggingResize{}
	}

	// 4. selection clear
	if ev.Action == ActionDown && ev.left() && !ev.Mods.Has(ModShift) &&
		overBody && !overHeader && m.idle() && !h.OnNode {
		m.sel.Clear()
	}

	// 5. node pick, node drag start, slot clear
	if ev.Action == ActionDown && h.OnNode {
		if !m.sel.Contains(h.Node) {
			if !ev.Mods.Has(ModShift) {
				m.sel.Clear()
			}
			m.sel.Add(h.Node)
		}
		if m.idle() && ev.left() {
			m.state = DraggingNodes{Last: ev.Pointer}
		}
	}
	if ev.Action == ActionDown && ev.Button == ButtonRight && h.OnSlot {
		m.store.Disconnect(h.Slot.Node, h.Slot.Index)
		res.Disconnected = &Connection{Target: h.Slot.Node, Slot: h.Slot.Index}
	}

	// 6. box select
	if m.idle() && ev.pressing() && ev.left() && overBody && !overHeader {
		m.state = BoxSelecting{Anchor: ev.Pointer}
	}
	if box, ok := m.state.(BoxSelecting); ok && ev.Action == ActionUp {
		m.commitBox(box.Anchor, ev)
	}

	// 7. keys
	if ev.Key != "" && overBody {
		m.applyKey(ev, &res)
	}

	// 8. container drag
	if overHeader && ev.pressing() && ev.left() && !h.OnNode && m.idle() {
		m.state = DraggingContainer{Offset: ev.Pointer.Sub(m.container.Min)}
	}

	// 9. reset
	if ev.Action == ActionUp {
		m.state = Idle{}
	}

	res.To = m.state.Mode()
	res.SelectionChanged = !slices.Equal(before, m.sel.IDs())
	return res, connectErr
}

func (m *Machine) idle() bool {
	_, ok := m.state.(Idle)
	return ok
}

// continueDrag applies the motion of an already active drag.
func (m *Machine) continueDrag(ev Event) {
	switch st := m.state.(type) {
	case DraggingContainer:
		m.MoveContainer(ev.Pointer.Sub(st.Offset))
	case DraggingResize:
		m.ResizeContainer(ev.Pointer.Add(image.Pt(1, 1)).Sub(m.container.Min))
	case DraggingNodes:
		delta := ev.Pointer.Sub(st.Last)
		if delta != (image.Point{}) {
			for _, id := range m.sel.IDs() {
				if n, ok := m.store.Get(id); ok {
					n.SetBounds(n.Bounds().Add(delta))
				}
			}
		}
		m.state = DraggingNodes{Last: ev.Pointer}
	}
}

func (m *Machine) commitBox(anchor image.Point, ev Event) {
	if !ev.Mods.Has(ModShift) {
		m.sel.Clear()
	}
	for _, n := range m.store.All() {
		for _, c := range corners(m.Abs(n.Bounds())) {
			if within(anchor, ev.Pointer, c) {
				m.sel.Add(n.ID())
				break
			}
		}
	}
}

func (m *Machine) applyKey(ev Event, res *Result) {
	if ev.Mods.Has(ModCtrl) {
		if ev.Mods != ModCtrl {
			return
		}
		switch ev.Key {
		case m.keys.SelectTree:
			m.sel.SelectTree()
		case m.keys.SelectNetwork:
			m.sel.SelectNetwork()
		}
		return
	}
	switch ev.Key {
	case m.keys.Disable:
		for _, id := range m.sel.IDs() {
			if n, ok := m.store.Get(id); ok {
				n.SetEnabled(!n.Enabled())
				res.Toggled = append(res.Toggled, id)
			}
		}
	case m.keys.Delete:
		for _, id := range m.sel.IDs() {
			if m.store.Remove(id) {
				res.Removed = append(res.Removed, id)
			}
			m.sel.Remove(id)
		}
	}
}

// hitTest finds the topmost node body, output port and input slot under p.
// Output nodes are sinks and expose no output port.
func (m *Machine) hitTest(p image.Point) Hover {
	var h Hover
	nodes := m.store.All()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		abs := m.Abs(n.Bounds())
		if !h.OnNode && p.In(abs) {
			h.Node, h.OnNode = n.ID(), true
		}
		if _, sink := n.(*graph.OutputNode); !sink && !h.OnPort &&
			p.In(m.layout.Port(m.layout.OutputAnchor(abs))) {
			h.Port, h.OnPort = n.ID(), true
		}
		if !h.OnSlot {
			arity := graph.Arity(n)
			for s := 0; s < arity; s++ {
				if p.In(m.layout.Port(m.layout.InputAnchor(abs, s, arity))) {
					h.Slot, h.OnSlot = Slot{Node: n.ID(), Index: s}, true
					break
				}
			}
		}
	}
	return h
}
