package engine

import (
	"image"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/interaction"
)

// Point is a JSON-friendly image.Point.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is a JSON-friendly image.Rectangle.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func pointOf(p image.Point) Point { return Point{X: p.X, Y: p.Y} }

// RectOf converts an image.Rectangle.
func RectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Image converts back to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// InputView is one input slot as drawn.
type InputView struct {
	Slot    int           `json:"slot"`
	Anchor  Point         `json:"anchor"`
	Source  *graph.NodeID `json:"source,omitempty"`
	Hovered bool          `json:"hovered,omitempty"`
}

// NodeView is one node as drawn. Bounds are absolute.
type NodeView struct {
	ID       graph.NodeID `json:"id"`
	Label    string       `json:"label"`
	Kind     graph.Kind   `json:"kind"`
	Op       string       `json:"op,omitempty"`
	Cached   bool         `json:"cached,omitempty"`
	Bounds   Rect         `json:"bounds"`
	Display  string       `json:"display"`
	Selected bool         `json:"selected"`
	Hovered  bool         `json:"hovered"`
	Output   *Point       `json:"output,omitempty"`
	Inputs   []InputView  `json:"inputs"`
}

// EdgeView is a drawn connection from a source's output port to an input slot.
type EdgeView struct {
	Source graph.NodeID `json:"source"`
	Target graph.NodeID `json:"target"`
	Slot   int          `json:"slot"`
	From   Point        `json:"from"`
	To     Point        `json:"to"`
}

// OverlayView is the transient geometry of the active mode.
type OverlayView struct {
	Connection []Point `json:"connection,omitempty"`
	ValidDrop  bool    `json:"valid_drop,omitempty"`
	Box        *Rect   `json:"box,omitempty"`
	Grip       bool    `json:"grip,omitempty"`
}

// Frame is a read-only snapshot of everything a renderer needs.
type Frame struct {
	Seq       int64          `json:"seq"`
	Mode      string         `json:"mode"`
	Pointer   Point          `json:"pointer"`
	Capturing bool           `json:"capturing"`
	Container Rect           `json:"container"`
	Header    Rect           `json:"header"`
	Grip      Rect           `json:"grip"`
	Nodes     []NodeView     `json:"nodes"`
	Edges     []EdgeView     `json:"edges"`
	Selection []graph.NodeID `json:"selection"`
	Overlays  OverlayView    `json:"overlays"`
}

// buildFrame snapshots the editor. Caller holds e.mu.
func (e *Editor) buildFrame(seq int64) Frame {
	m := e.machine
	layout := m.Layout()
	hover := m.Hover()

	f := Frame{
		Seq:       seq,
		Mode:      m.Mode().String(),
		Pointer:   pointOf(m.Pointer()),
		Capturing: m.Capturing(),
		Container: RectOf(m.Container()),
		Header:    RectOf(m.Header()),
		Grip:      RectOf(m.Grip()),
		Nodes:     make([]NodeView, 0, e.store.Len()),
		Edges:     []EdgeView{},
		Selection: e.sel.IDs(),
	}

	for _, n := range e.store.All() {
		abs := m.Abs(n.Bounds())
		v := NodeView{
			ID:       n.ID(),
			Label:    n.Label(),
			Kind:     graph.KindOf(n),
			Bounds:   RectOf(abs),
			Display:  e.store.DisplayOf(n.ID()).String(),
			Selected: e.sel.Contains(n.ID()),
			Hovered:  hover.OnNode && hover.Node == n.ID(),
			Inputs:   []InputView{},
		}
		if _, sink := n.(*graph.OutputNode); !sink {
			p := pointOf(layout.OutputAnchor(abs))
			v.Output = &p
		}
		switch node := n.(type) {
		case *graph.GateNode:
			v.Op = node.Op()
		case *graph.OutputNode:
			v.Cached = node.Cached()
		}
		inputs := n.Inputs()
		for i, in := range inputs {
			anchor := layout.InputAnchor(abs, i, len(inputs))
			iv := InputView{
				Slot:    i,
				Anchor:  pointOf(anchor),
				Hovered: hover.OnSlot && hover.Slot == interaction.Slot{Node: n.ID(), Index: i},
			}
			if in.Valid {
				src := in.Source
				iv.Source = &src
				if up, ok := e.store.Get(src); ok {
					f.Edges = append(f.Edges, EdgeView{
						Source: src,
						Target: n.ID(),
						Slot:   i,
						From:   pointOf(layout.OutputAnchor(m.Abs(up.Bounds()))),
						To:     pointOf(anchor),
					})
				}
			}
			v.Inputs = append(v.Inputs, iv)
		}
		f.Nodes = append(f.Nodes, v)
	}

	ov := m.Overlays()
	f.Overlays.ValidDrop = ov.ValidDrop
	f.Overlays.Grip = ov.Grip
	if ov.Connection != nil {
		f.Overlays.Connection = []Point{pointOf(ov.Connection.From), pointOf(ov.Connection.To)}
	}
	if ov.Box != nil {
		box := RectOf(*ov.Box)
		f.Overlays.Box = &box
	}
	return f
}
