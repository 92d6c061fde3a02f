package input

import (
	"sort"

	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// focusEntry is one candidate in the focusable set, carrying the sort keys
// spec §4.6 orders by: (tabIndex, allocationOrder).
type focusEntry struct {
	idx       int
	tabIndex  int
	allocRank int
}

// isFocusable reports whether idx belongs in the tab order: explicitly
// focusable=true, or an overflow='scroll' container (spec §3 "implicitly
// focusable unless focusable=false"). See DESIGN.md for why the escape
// hatch is not separately representable with a plain bool column.
func isFocusable(cols *store.Columns, idx int) bool {
	if cols.Focusable.Peek(idx) {
		return true
	}
	return cols.OverflowMode.Peek(idx) == store.OverflowScroll
}

// FocusableSet returns every focusable node's index, sorted by
// (tabIndex, allocationOrder) ascending, the tab-cycle order spec §4.6
// walks.
func FocusableSet(reg *registry.Registry, cols *store.Columns) []int {
	var entries []focusEntry
	for idx := 0; idx < reg.Len(); idx++ {
		if !reg.Alive(idx) || !cols.Visible.Peek(idx) {
			continue
		}
		if !isFocusable(cols, idx) {
			continue
		}
		entries = append(entries, focusEntry{
			idx:       idx,
			tabIndex:  cols.TabIndex.Peek(idx),
			allocRank: reg.AllocationRank(idx),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].tabIndex != entries[j].tabIndex {
			return entries[i].tabIndex < entries[j].tabIndex
		}
		return entries[i].allocRank < entries[j].allocRank
	})
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.idx
	}
	return out
}

// FocusNext returns the next node after current in the tab cycle (Tab key),
// wrapping to the first. current=registry.RootIndex (nothing focused)
// focuses the first entry (spec §8 scenario 6).
func FocusNext(reg *registry.Registry, cols *store.Columns, current int) int {
	set := FocusableSet(reg, cols)
	if len(set) == 0 {
		return registry.RootIndex
	}
	if current == registry.RootIndex {
		return set[0]
	}
	for i, idx := range set {
		if idx == current {
			return set[(i+1)%len(set)]
		}
	}
	return set[0]
}

// FocusPrev returns the previous node in the tab cycle (Shift-Tab),
// wrapping to the last.
func FocusPrev(reg *registry.Registry, cols *store.Columns, current int) int {
	set := FocusableSet(reg, cols)
	if len(set) == 0 {
		return registry.RootIndex
	}
	if current == registry.RootIndex {
		return set[len(set)-1]
	}
	for i, idx := range set {
		if idx == current {
			return set[(i-1+len(set))%len(set)]
		}
	}
	return set[len(set)-1]
}

// DefaultFocusKeyHandler returns a global key handler implementing Tab /
// Shift-Tab focus cycling, to be registered via Handlers.OnGlobalKey for
// KeyTab.
func DefaultFocusKeyHandler(reg *registry.Registry, cols *store.Columns, state *State) KeyHandler {
	return func(ev Event) bool {
		if ev.Key != KeyTab {
			return false
		}
		current := state.FocusedIndex.Peek()
		var next int
		if ev.Mod&ModShift != 0 {
			next = FocusPrev(reg, cols, current)
		} else {
			next = FocusNext(reg, cols, current)
		}
		state.FocusedIndex.Write(next)
		return true
	}
}
