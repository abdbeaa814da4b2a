package tui

import (
	"strings"

	"github.com/roach88/logicflow/internal/engine"
)

// drawFrame paints f onto a w x h canvas. Later layers overwrite earlier
// ones: body, header, edges, nodes, ports, overlays, grip.
func drawFrame(f engine.Frame, w, h int) *canvas {
	c := newCanvas(w, h)

	body := f.Container
	for y := body.Y; y < body.Y+body.H; y++ {
		for x := body.X; x < body.X+body.W; x++ {
			if (x-body.X)%4 == 0 && (y-body.Y)%2 == 0 {
				c.set(x, y, '·', styleBody)
			}
		}
	}

	c.fill(f.Header, ' ', styleHeader)
	title := " logicflow · " + f.Mode
	c.text(f.Header.X, f.Header.Y, title, f.Header.W, styleHeader)

	for _, e := range f.Edges {
		drawEdge(c, e.From, e.To, styleEdge)
	}

	for _, n := range f.Nodes {
		drawNode(c, n)
	}

	if conn := f.Overlays.Connection; len(conn) == 2 {
		st := styleDropInvalid
		if f.Overlays.ValidDrop {
			st = styleDrop
		}
		c.line(conn[0], conn[1], '•', st)
	}
	if box := f.Overlays.Box; box != nil {
		c.outline(*box, dashedBorder, styleBox)
	}

	gs := styleBody
	if f.Overlays.Grip {
		gs = styleGrip
	}
	c.fill(f.Grip, '◢', gs)
	return c
}

// drawEdge routes an elbow from an output port to an input anchor.
func drawEdge(c *canvas, from, to engine.Point, st style) {
	mid := from.X + (to.X-from.X)/2
	c.hline(from.X, mid, from.Y, '─', st)
	c.vline(mid, from.Y, to.Y, '│', st)
	c.hline(mid, to.X, to.Y, '─', st)
	if from.Y != to.Y {
		c.set(mid, from.Y, '┼', st)
		c.set(mid, to.Y, '┼', st)
	}
}

func drawNode(c *canvas, n engine.NodeView) {
	st := styleForDisplay(n.Display)
	border := normalBorder
	borderStyle := st
	switch {
	case n.Selected:
		border, borderStyle = thickBorder, styleSelected
	case n.Hovered:
		borderStyle = styleHovered
	}
	c.fill(n.Bounds, ' ', st)
	c.outline(n.Bounds, border, borderStyle)

	inner := n.Bounds.W - 2
	if inner > 0 && n.Bounds.H > 2 {
		c.text(n.Bounds.X+1, n.Bounds.Y+1, nodeCaption(n), inner, st)
		if n.Bounds.H > 3 {
			c.text(n.Bounds.X+1, n.Bounds.Y+2, n.Display, inner, st)
		}
	}

	if n.Output != nil {
		c.set(n.Output.X, n.Output.Y, '▶', stylePort)
	}
	for _, in := range n.Inputs {
		glyph, ps := '○', stylePort
		if in.Source != nil {
			glyph = '●'
		}
		if in.Hovered {
			ps = styleHovered
		}
		c.set(in.Anchor.X, in.Anchor.Y, glyph, ps)
	}
}

func nodeCaption(n engine.NodeView) string {
	switch {
	case n.Label != "":
		return n.Label
	case n.Op != "":
		return strings.ToUpper(n.Op)
	default:
		return string(n.Kind)
	}
}
