// Package compositor turns the layout-resolved attribute columns into a
// dense framebuffer of terminal cells (spec §4.4). It is pure: the same
// forest/columns/viewport always produce the same framebuffer.
package compositor

import "github.com/loomtui/loom/store"

// Cell is one terminal grid position: a codepoint plus its resolved style.
// A zero Cell is a cleared cell (space, transparent).
type Cell struct {
	Codepoint rune
	Fg        store.RGBA
	Bg        store.RGBA
	Attrs     store.Attrs
}

// Framebuffer is a dense W×H grid, reused frame to frame like the teacher's
// Buffer (tui/screen.go), generalized to carry resolved color rather than a
// single basement.Style.
type Framebuffer struct {
	W, H  int
	Cells []Cell
}

// NewFramebuffer allocates a cleared W×H framebuffer.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{W: w, H: h, Cells: make([]Cell, w*h)}
}

// Resize grows or shrinks the framebuffer in place, preserving the
// overlapping region (spec §4.4 "reused across frames").
func (f *Framebuffer) Resize(w, h int) {
	next := make([]Cell, w*h)
	minW, minH := w, h
	if f.W < minW {
		minW = f.W
	}
	if f.H < minH {
		minH = f.H
	}
	for y := 0; y < minH; y++ {
		copy(next[y*w:y*w+minW], f.Cells[y*f.W:y*f.W+minW])
	}
	f.W, f.H = w, h
	f.Cells = next
}

// At returns the cell at (x, y), or the zero Cell if out of bounds.
func (f *Framebuffer) At(x, y int) Cell {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return Cell{}
	}
	return f.Cells[y*f.W+x]
}

// set writes a cell, silently discarding writes outside the buffer or
// outside clip (spec §4.4 step 2g: "the compositor rejects writes outside
// the clip").
func (f *Framebuffer) set(x, y int, c Cell, clip rect) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	if !clip.contains(x, y) {
		return
	}
	f.Cells[y*f.W+x] = c
}

// Clear resets every cell to bg with a blank codepoint (spec §4.4 step 1).
func (f *Framebuffer) Clear(bg store.RGBA) {
	for i := range f.Cells {
		f.Cells[i] = Cell{Codepoint: ' ', Bg: bg}
	}
}

// rect is a clip rectangle in framebuffer coordinates: x0/y0 inclusive,
// x1/y1 exclusive.
type rect struct {
	x0, y0, x1, y1 int // x1/y1 exclusive
}

func fullRect(w, h int) rect { return rect{0, 0, w, h} }

func (r rect) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

// intersect returns the overlap of r and other, used when nesting clip
// rectangles for overflow:hidden|scroll subtrees (spec §4.4 step 2g).
func (r rect) intersect(other rect) rect {
	out := rect{
		x0: max(r.x0, other.x0),
		y0: max(r.y0, other.y0),
		x1: min(r.x1, other.x1),
		y1: min(r.y1, other.y1),
	}
	if out.x1 < out.x0 {
		out.x1 = out.x0
	}
	if out.y1 < out.y0 {
		out.y1 = out.y0
	}
	return out
}
