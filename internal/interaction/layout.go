package interaction

import (
	"image"
	"math"
)

// Layout holds the unscaled sizes of the editor chrome, in host units.
// Every size is multiplied by Scale and rounded, never below one unit.
type Layout struct {
	Scale         float64
	HeaderHeight  int
	PortSize      int
	GripSize      int
	CaptureMargin int
	MinSize       image.Point
}

// DefaultLayout suits a character-cell host at scale 1.
func DefaultLayout() Layout {
	return Layout{
		Scale:         1,
		HeaderHeight:  1,
		PortSize:      1,
		GripSize:      1,
		CaptureMargin: 1,
		MinSize:       image.Pt(8, 4),
	}
}

func (l Layout) scaled(v int) int {
	s := l.Scale
	if s <= 0 {
		s = 1
	}
	return max(1, int(math.Round(float64(v)*s)))
}

// Header returns the header strip directly above container.
func (l Layout) Header(container image.Rectangle) image.Rectangle {
	h := l.scaled(l.HeaderHeight)
	return image.Rect(container.Min.X, container.Min.Y-h, container.Max.X, container.Min.Y)
}

// Grip returns the resize hot-zone in the bottom-right corner of container.
func (l Layout) Grip(container image.Rectangle) image.Rectangle {
	g := l.scaled(l.GripSize)
	return image.Rect(container.Max.X-g, container.Max.Y-g, container.Max.X, container.Max.Y)
}

// Capture returns the area in which the editor swallows host input:
// container and header grown by the capture margin.
func (l Layout) Capture(container image.Rectangle) image.Rectangle {
	m := l.scaled(l.CaptureMargin)
	r := container.Union(l.Header(container))
	return r.Inset(-m)
}

// OutputAnchor is the point just right of the node, at half its height.
func (l Layout) OutputAnchor(node image.Rectangle) image.Point {
	return image.Pt(node.Max.X, node.Min.Y+node.Dy()/2)
}

// InputAnchor is the point just left of the node for slot i of n,
// spread evenly down the left edge.
func (l Layout) InputAnchor(node image.Rectangle, i, n int) image.Point {
	return image.Pt(node.Min.X-1, node.Min.Y+(i+1)*node.Dy()/(n+1))
}

// Port returns the square hot-zone of size PortSize around anchor.
func (l Layout) Port(anchor image.Point) image.Rectangle {
	p := l.scaled(l.PortSize)
	lo := anchor.Sub(image.Pt(p/2, p/2))
	return image.Rectangle{Min: lo, Max: lo.Add(image.Pt(p, p))}
}

// ClampSize enforces the minimum container size.
func (l Layout) ClampSize(size image.Point) image.Point {
	return image.Pt(max(size.X, l.MinSize.X), max(size.Y, l.MinSize.Y))
}

// corners returns the four corner cells of r (inclusive).
func corners(r image.Rectangle) [4]image.Point {
	last := r.Max.Sub(image.Pt(1, 1))
	return [4]image.Point{
		r.Min,
		image.Pt(last.X, r.Min.Y),
		image.Pt(r.Min.X, last.Y),
		last,
	}
}

// within reports whether p lies in the box spanned by a and b, edges included.
func within(a, b, p image.Point) bool {
	lo := image.Pt(min(a.X, b.X), min(a.Y, b.Y))
	hi := image.Pt(max(a.X, b.X), max(a.Y, b.Y))
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}
