package tui

import (
	"strings"

	"github.com/roach88/logicflow/internal/engine"
)

type cell struct {
	r     rune
	style style
}

// canvas is a fixed-size grid of styled runes in host coordinates.
// Writes outside the grid are dropped.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, s style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, style: s}
}

func (c *canvas) at(x, y int) cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return cell{}
	}
	return c.cells[y*c.w+x]
}

func (c *canvas) text(x, y int, s string, maxLen int, st style) {
	n := 0
	for _, r := range s {
		if n >= maxLen {
			return
		}
		c.set(x+n, y, r, st)
		n++
	}
}

func (c *canvas) fill(r engine.Rect, ch rune, st style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			c.set(x, y, ch, st)
		}
	}
}

// hline and vline draw inclusive segments in either direction.
func (c *canvas) hline(x0, x1, y int, ch rune, st style) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		c.set(x, y, ch, st)
	}
}

func (c *canvas) vline(x, y0, y1 int, ch rune, st style) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		c.set(x, y, ch, st)
	}
}

// line draws a straight segment with Bresenham's algorithm.
func (c *canvas) line(a, b engine.Point, ch rune, st style) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	err := dx + dy
	x, y := a.X, a.Y
	for {
		c.set(x, y, ch, st)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// outline draws the border of r. Rectangles thinner than two cells are filled.
func (c *canvas) outline(r engine.Rect, g borderGlyphs, st style) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	if r.W < 2 || r.H < 2 {
		c.fill(r, g.h, st)
		return
	}
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.W-1, r.Y+r.H-1
	c.hline(x0, x1, y0, g.h, st)
	c.hline(x0, x1, y1, g.h, st)
	c.vline(x0, y0, y1, g.v, st)
	c.vline(x1, y0, y1, g.v, st)
	c.set(x0, y0, g.tl, st)
	c.set(x1, y0, g.tr, st)
	c.set(x0, y1, g.bl, st)
	c.set(x1, y1, g.br, st)
}

type borderGlyphs struct {
	h, v           rune
	tl, tr, bl, br rune
}

var (
	normalBorder = borderGlyphs{h: '─', v: '│', tl: '┌', tr: '┐', bl: '└', br: '┘'}
	thickBorder  = borderGlyphs{h: '━', v: '┃', tl: '┏', tr: '┓', bl: '┗', br: '┛'}
	dashedBorder = borderGlyphs{h: '╌', v: '┆', tl: '+', tr: '+', bl: '+', br: '+'}
)

// plain returns the grid without styling, one line per row.
func (c *canvas) plain() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			b.WriteRune(c.cells[y*c.w+x].r)
		}
	}
	return b.String()
}

// render returns the grid with runs of equal style rendered through lipgloss.
func (c *canvas) render() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		cur := styleNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := styles[cur]; ok {
				b.WriteString(st.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
