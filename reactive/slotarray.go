package reactive

import "sync"

type sourceKind int

const (
	sourceConstant sourceKind = iota
	sourceCell
	sourceDerivation
	sourceGetter
)

// Source describes what a single slot of a SlotArray currently reads from:
// a constant value, a Cell, a Derivation, or a nullary getter closure
// (spec §3/§4.1).
type Source[T any] struct {
	kind       sourceKind
	constant   T
	cell       *Cell[T]
	derivation *Derivation[T]
	getter     func() T
}

// ConstSource binds a slot to a fixed value.
func ConstSource[T any](v T) Source[T] { return Source[T]{kind: sourceConstant, constant: v} }

// CellSource binds a slot to a Cell.
func CellSource[T any](c *Cell[T]) Source[T] { return Source[T]{kind: sourceCell, cell: c} }

// DerivedSource binds a slot to a Derivation.
func DerivedSource[T any](d *Derivation[T]) Source[T] {
	return Source[T]{kind: sourceDerivation, derivation: d}
}

// GetterSource binds a slot to a zero-argument getter, read (and tracked,
// if it reads cells/derivations of its own) on every validation.
func GetterSource[T any](fn func() T) Source[T] { return Source[T]{kind: sourceGetter, getter: fn} }

func (s Source[T]) resolve() T {
	switch s.kind {
	case sourceCell:
		return s.cell.Read()
	case sourceDerivation:
		return s.derivation.Read()
	case sourceGetter:
		return s.getter()
	default:
		return s.constant
	}
}

// SlotArray is a logical vector of independently-trackable cells addressed
// by integer index (spec §3/§4.1). Reading slot i in a tracked frame
// subscribes to exactly that slot; rebinding a slot's source detaches the
// previous one and eagerly invalidates the slot.
type SlotArray[T any] struct {
	mu      sync.Mutex
	def     T
	sources []Source[T]
	slots   []*Derivation[T]
}

// NewSlotArray creates a SlotArray whose slots default to defaultValue until
// a source is bound.
func NewSlotArray[T any](defaultValue T) *SlotArray[T] {
	return &SlotArray[T]{def: defaultValue}
}

// Len returns the number of allocated slots.
func (a *SlotArray[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sources)
}

// Grow ensures the array has at least n slots, padding new slots with the
// default value.
func (a *SlotArray[T]) Grow(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.growLocked(n)
}

func (a *SlotArray[T]) growLocked(n int) {
	for len(a.sources) < n {
		a.sources = append(a.sources, ConstSource(a.def))
		a.slots = append(a.slots, nil)
	}
}

// SetSource binds slot i to a new source, detaching any previous one and
// eagerly invalidating the slot so the next read recomputes.
func (a *SlotArray[T]) SetSource(i int, src Source[T]) {
	a.mu.Lock()
	a.growLocked(i + 1)
	a.sources[i] = src
	slot := a.slots[i]
	a.mu.Unlock()

	if slot != nil {
		slot.Invalidate()
	}
}

// Reset restores slot i to the array's default constant value, used when a
// node index is released (spec §3: "a released index clears every column
// back to its default").
func (a *SlotArray[T]) Reset(i int) {
	a.SetSource(i, ConstSource(a.def))
}

func (a *SlotArray[T]) slotFor(i int) *Derivation[T] {
	a.mu.Lock()
	a.growLocked(i + 1)
	if a.slots[i] == nil {
		idx := i
		a.slots[i] = Derive(func() T {
			a.mu.Lock()
			src := a.sources[idx]
			a.mu.Unlock()
			return src.resolve()
		})
	}
	slot := a.slots[i]
	a.mu.Unlock()
	return slot
}

// Get reads slot i, tracking a dependency on exactly that slot.
func (a *SlotArray[T]) Get(i int) T {
	return a.slotFor(i).Read()
}

// Peek reads slot i without recording a dependency.
func (a *SlotArray[T]) Peek(i int) T {
	return a.slotFor(i).Peek()
}
