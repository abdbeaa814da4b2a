package interaction

import "image"

// State returns the active state.
func (m *Machine) State() State { return m.state }

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.state.Mode() }

// Pointer returns the pointer position of the last tick.
func (m *Machine) Pointer() image.Point { return m.pointer }

// Hover returns the hit-test result of the last tick.
func (m *Machine) Hover() Hover { return m.hover }

// Capturing reports whether the last pointer position lies in the capture
// area, in which case the host should not act on the input itself.
func (m *Machine) Capturing() bool { return m.capture }

// Container returns the body rectangle.
func (m *Machine) Container() image.Rectangle { return m.container }

// Header returns the header strip above the body.
func (m *Machine) Header() image.Rectangle { return m.layout.Header(m.container) }

// Grip returns the resize hot-zone.
func (m *Machine) Grip() image.Rectangle { return m.layout.Grip(m.container) }

// Layout returns the chrome layout.
func (m *Machine) Layout() Layout { return m.layout }

// MoveContainer places the container origin at p, keeping its size.
func (m *Machine) MoveContainer(p image.Point) {
	m.container = image.Rectangle{Min: p, Max: p.Add(m.container.Size())}
}

// ResizeContainer sets the container size, keeping its origin.
func (m *Machine) ResizeContainer(size image.Point) {
	size = m.layout.ClampSize(size)
	m.container.Max = m.container.Min.Add(size)
}

// Abs converts a container-relative rectangle to host coordinates.
func (m *Machine) Abs(r image.Rectangle) image.Rectangle {
	return r.Add(m.container.Min)
}

// Line is a straight overlay segment.
type Line struct {
	From, To image.Point
}

// Overlays is the transient geometry a renderer draws on top of the nodes.
type Overlays struct {
	Connection *Line
	ValidDrop  bool
	Box        *image.Rectangle
	Grip       bool
}

// Overlays returns the transient geometry of the current state.
func (m *Machine) Overlays() Overlays {
	o := Overlays{
		ValidDrop: m.hover.ValidDrop,
		Grip:      m.hover.Grip || m.state.Mode() == ModeDraggingResize,
	}
	switch st := m.state.(type) {
	case DraggingConnection:
		if n, ok := m.store.Get(st.Source); ok {
			from := m.layout.OutputAnchor(m.Abs(n.Bounds()))
			o.Connection = &Line{From: from, To: m.pointer}
		}
	case BoxSelecting:
		box := image.Rectangle{Min: st.Anchor, Max: m.pointer}.Canon()
		o.Box = &box
	}
	return o
}
