package term

import (
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/loomtui/loom/compositor"
	"github.com/loomtui/loom/store"
)

// cellWidth reports how many terminal columns cell's glyph occupies. A
// Codepoint of 0 is the suppressed companion cell compositor/text.go writes
// after a wide cluster's first column (spec §4.4(e)) and is never itself a
// real glyph, so it is not measured here — the diff loop skips straight
// over it once it accounts for the real glyph's width.
func cellWidth(r rune) int {
	if runewidth.RuneWidth(r) == 2 {
		return 2
	}
	return 1
}

// renderDiff writes the minimal escape sequence that turns the screen from
// d.front into fb, generalizing tui/screen.go's renderUnlocked from a single
// basement.Style field to truecolor fg/bg plus an attribute bitfield. Only
// changed cells are written; the cursor moves only when a changed cell is
// not where the last write left it, and SGR is re-emitted only when a
// changed cell's fg/bg/attrs differ from the last style emitted.
func (d *Driver) renderDiff(fb *compositor.Framebuffer) {
	if d.front == nil || d.front.W != fb.W || d.front.H != fb.H {
		d.front = compositor.NewFramebuffer(fb.W, fb.H)
		d.write(escClearScreen)
	}

	curX, curY := -1, -1
	styleActive := false
	var lastCell compositor.Cell

	for y := 0; y < fb.H; y++ {
		rowOff := y * fb.W
		for x := 0; x < fb.W; {
			i := rowOff + x
			cell := fb.Cells[i]
			cw := cellWidth(cell.Codepoint)

			if cell != d.front.Cells[i] {
				if curX != x || curY != y {
					d.writeCursorPos(y+1, x+1)
				}

				if !styleActive || cell.Fg != lastCell.Fg || cell.Bg != lastCell.Bg || cell.Attrs != lastCell.Attrs {
					if styleActive {
						d.write(escSGRReset)
					}
					d.writeSGR(cell)
					lastCell = cell
					styleActive = true
				}

				ch := cell.Codepoint
				if ch == 0 {
					ch = ' '
				}
				d.out.WriteRune(ch)
				d.front.Cells[i] = cell
				// The terminal auto-advances its own cursor by cw for a
				// wide glyph, so ours must track the same, or the next
				// changed cell in this row gets positioned from a stale
				// column (spec §4.5 step 3).
				curX, curY = x+cw, y
			}

			if cw == 2 && x+1 < fb.W {
				d.front.Cells[i+1] = fb.Cells[i+1]
			}
			x += cw
		}
	}

	if styleActive {
		d.write(escSGRReset)
	}
}

// renderInline draws fb starting at the cursor's current row, moving the
// cursor back up by however many rows the previous frame occupied before
// redrawing (no alt-screen, so earlier screen content above stays put).
func (d *Driver) renderInline(fb *compositor.Framebuffer) {
	if d.inlineRows > 0 {
		d.writeCursorUp(d.inlineRows)
	}
	d.write("\r")

	for y := 0; y < fb.H; y++ {
		if y > 0 {
			d.write("\r\n")
		}
		d.writeRowPlain(fb, y)
	}
	d.inlineRows = fb.H - 1
}

// renderAppend prints fb once to the scrollback with no diffing and no
// cursor repositioning; each call appends a new block of output, matching a
// log-like append mode where prior frames are never revisited.
func (d *Driver) renderAppend(fb *compositor.Framebuffer) {
	for y := 0; y < fb.H; y++ {
		d.writeRowPlain(fb, y)
		d.write("\r\n")
	}
}

// writeRowPlain emits one row with SGR state tracked only within the row
// (inline/append modes don't diff against a previous frame).
func (d *Driver) writeRowPlain(fb *compositor.Framebuffer, y int) {
	styleActive := false
	var lastCell compositor.Cell
	rowOff := y * fb.W
	for x := 0; x < fb.W; {
		cell := fb.Cells[rowOff+x]
		if !styleActive || cell.Fg != lastCell.Fg || cell.Bg != lastCell.Bg || cell.Attrs != lastCell.Attrs {
			if styleActive {
				d.write(escSGRReset)
			}
			d.writeSGR(cell)
			lastCell = cell
			styleActive = true
		}
		ch := cell.Codepoint
		if ch == 0 {
			ch = ' '
		}
		d.out.WriteRune(ch)
		// Skip the companion cell the terminal's own wide-glyph advance
		// already covers — writing it separately would overwrite the
		// glyph's second column with a space.
		x += cellWidth(cell.Codepoint)
	}
	if styleActive {
		d.write(escSGRReset)
	}
}

// writeCursorPos writes `ESC[row;colH`, built without fmt to avoid
// allocating on every moved cell (tui/screen.go's writeCursorPos).
func (d *Driver) writeCursorPos(row, col int) {
	d.out.WriteString("\x1b[")
	d.out.WriteString(strconv.Itoa(row))
	d.out.WriteByte(';')
	d.out.WriteString(strconv.Itoa(col))
	d.out.WriteByte('H')
}

func (d *Driver) writeCursorUp(n int) {
	if n <= 0 {
		return
	}
	d.out.WriteString("\x1b[")
	d.out.WriteString(strconv.Itoa(n))
	d.out.WriteByte('A')
}

// writeSGR emits one combined `ESC[...m` covering attrs plus truecolor
// fg/bg, generalizing tui/screen.go's writeStyle (which emitted one escape
// per attribute plus separately-stored ANSI-16 color strings) to a single
// SGR sequence with 24-bit color params.
func (d *Driver) writeSGR(cell compositor.Cell) {
	d.out.WriteString("\x1b[")
	first := true
	put := func(param string) {
		if !first {
			d.out.WriteByte(';')
		}
		d.out.WriteString(param)
		first = false
	}
	if cell.Attrs&store.AttrBold != 0 {
		put("1")
	}
	if cell.Attrs&store.AttrDim != 0 {
		put("2")
	}
	if cell.Attrs&store.AttrItalic != 0 {
		put("3")
	}
	if cell.Attrs&store.AttrUnderline != 0 {
		put("4")
	}
	if cell.Fg.A != 0 {
		put("38;2;" + strconv.Itoa(int(cell.Fg.R)) + ";" + strconv.Itoa(int(cell.Fg.G)) + ";" + strconv.Itoa(int(cell.Fg.B)))
	}
	if cell.Bg.A != 0 {
		put("48;2;" + strconv.Itoa(int(cell.Bg.R)) + ";" + strconv.Itoa(int(cell.Bg.G)) + ";" + strconv.Itoa(int(cell.Bg.B)))
	}
	if first {
		put("0")
	}
	d.out.WriteByte('m')
}
