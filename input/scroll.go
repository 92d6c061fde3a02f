package input

import (
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// clampScroll bounds offset to [0, max(0, contentSize-viewportSize)], the
// invariant spec §3/§8 scenario 3 requires after every layout pass and
// after every scroll key.
func clampScroll(offset, contentSize, viewportSize int) int {
	max := contentSize - viewportSize
	if max < 0 {
		max = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

// ScrollKeyHandlerFor returns a key handler bound to one scroll container's
// node index, for registration via Handlers.OnKey(idx, ...) so the handler
// only fires while that node is focused.
func ScrollKeyHandlerFor(reg *registry.Registry, cols *store.Columns, idx int) KeyHandler {
	return func(ev Event) bool {
		if cols.OverflowMode.Peek(idx) != store.OverflowScroll {
			return false
		}
		viewportW, viewportH := cols.ContentW.Peek(idx), cols.ContentH.Peek(idx)
		contentW, contentH := scrollContentSize(reg, cols, idx)

		x := cols.ScrollOffsetX.Peek(idx)
		y := cols.ScrollOffsetY.Peek(idx)

		switch ev.Key {
		case KeyArrowUp:
			y--
		case KeyArrowDown:
			y++
		case KeyArrowLeft:
			x--
		case KeyArrowRight:
			x++
		case KeyPgUp:
			y -= viewportH
		case KeyPgDown:
			y += viewportH
		case KeyHome:
			y = 0
		case KeyEnd:
			y = contentH
		default:
			return false
		}

		cols.ScrollOffsetX.Write(clampScroll(x, contentW, viewportW))
		cols.ScrollOffsetY.Write(clampScroll(y, contentH, viewportH))
		return true
	}
}

// scrollContentSize returns a scroll container's content extent along each
// axis: the furthest extent of its children's boxes relative to the
// container's own content origin, mirroring layout.Engine's
// childrenExtentX/Y (the store has no single "content size" column — only
// the post-clamp viewport W/H the compositor draws — so the handler
// recomputes it from the same child geometry layout used).
func scrollContentSize(reg *registry.Registry, cols *store.Columns, idx int) (w, h int) {
	for _, child := range reg.Children(idx) {
		if !cols.Visible.Peek(child) {
			continue
		}
		if right := cols.X.Peek(child) - cols.ContentX.Peek(idx) + cols.W.Peek(child); right > w {
			w = right
		}
		if bottom := cols.Y.Peek(child) - cols.ContentY.Peek(idx) + cols.H.Peek(child); bottom > h {
			h = bottom
		}
	}
	return w, h
}

// RegisterDefaultScrollHandlers walks reg and binds ScrollKeyHandlerFor to
// every overflow='scroll' node, so the default bindings apply without the
// caller needing to enumerate scroll containers itself.
func RegisterDefaultScrollHandlers(reg *registry.Registry, cols *store.Columns, handlers *Handlers) {
	for idx := 0; idx < reg.Len(); idx++ {
		if !reg.Alive(idx) {
			continue
		}
		if cols.OverflowMode.Peek(idx) != store.OverflowScroll {
			continue
		}
		handlers.OnKey(idx, ScrollKeyHandlerFor(reg, cols, idx))
	}
}
