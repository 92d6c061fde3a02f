package reactive

import (
	"fmt"
	"reflect"
	"sync"
)

// ErrReactiveCycle is the sentinel a *CycleError unwraps to. Validation that
// re-enters an already-computing derivation panics with a *CycleError
// carrying that derivation's label.
var ErrReactiveCycle = fmt.Errorf("reactive: cycle detected")

// CycleError wraps ErrReactiveCycle with the label of the derivation whose
// recomputation re-entered itself.
type CycleError struct {
	Label string
}

func (e *CycleError) Error() string {
	if e.Label == "" {
		return ErrReactiveCycle.Error()
	}
	return fmt.Sprintf("%s: %s", ErrReactiveCycle.Error(), e.Label)
}

func (e *CycleError) Unwrap() error { return ErrReactiveCycle }

// Derivation is a pure, cached, auto-tracked computation (spec §3/§4.1).
type Derivation[T any] struct {
	mu    sync.Mutex
	fn    func() T
	value T
	rev   uint64
	st    state
	label string
	equal func(a, b T) bool

	// deps is the dependency set observed during the last recompute, along
	// with the revision observed at that time (used by validate to decide
	// whether a "check" state actually needs recomputation).
	deps map[dependency]uint64
	// subs are things that read this derivation and should be notified when
	// it changes.
	subs map[subscriber]struct{}

	node *derivationNode // identity key for the cycle-detection set
}

// Derive creates a new Derivation. fn is not run until the first Read.
func Derive[T any](fn func() T) *Derivation[T] {
	return &Derivation[T]{
		fn:    fn,
		st:    stateDirty,
		equal: func(a, b T) bool { return reflect.DeepEqual(a, b) },
		deps:  make(map[dependency]uint64),
		subs:  make(map[subscriber]struct{}),
		node:  &derivationNode{},
	}
}

// WithLabel attaches a debug label surfaced in CycleError.
func (d *Derivation[T]) WithLabel(label string) *Derivation[T] {
	d.mu.Lock()
	d.label = label
	d.mu.Unlock()
	return d
}

// WithEqual overrides the equality comparator used for the glitch-free
// early-out (spec §9): a recompute producing an equal value must not
// advance the derivation's revision.
func (d *Derivation[T]) WithEqual(eq func(a, b T) bool) *Derivation[T] {
	d.mu.Lock()
	d.equal = eq
	d.mu.Unlock()
	return d
}

func (d *Derivation[T]) subscribe(s subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs[s] = struct{}{}
}

func (d *Derivation[T]) unsubscribe(s subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, s)
}

func (d *Derivation[T]) revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rev
}

func (d *Derivation[T]) addDependency(dep dependency) {
	// Read the revision before taking d.mu: dep may be d itself when a
	// derivation reads itself, and the mutex is not reentrant.
	rev := dep.revision()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deps[dep] = rev
}

// notifyDirect marks this derivation definitely dirty (a direct dependency
// changed) and cascades a "check" to its own subscribers.
func (d *Derivation[T]) notifyDirect() {
	d.mu.Lock()
	already := d.st == stateDirty
	d.st = stateDirty
	subs := d.snapshotSubs()
	d.mu.Unlock()

	if already {
		return
	}
	for _, s := range subs {
		s.notifyCheck()
	}
}

// notifyCheck marks this derivation as possibly-dirty, cascading further
// only the first time (idempotent re-entry guard).
func (d *Derivation[T]) notifyCheck() {
	d.mu.Lock()
	if d.st != stateClean {
		d.mu.Unlock()
		return
	}
	d.st = stateCheck
	subs := d.snapshotSubs()
	d.mu.Unlock()

	for _, s := range subs {
		s.notifyCheck()
	}
}

func (d *Derivation[T]) snapshotSubs() []subscriber {
	out := make([]subscriber, 0, len(d.subs))
	for s := range d.subs {
		out = append(out, s)
	}
	return out
}

// validate brings the derivation's cached value up to date, recomputing only
// if a dependency actually changed (the glitch-free early-out of spec §9).
func (d *Derivation[T]) validate() {
	d.mu.Lock()
	st := d.st
	d.mu.Unlock()

	if st == stateClean {
		return
	}

	if st == stateCheck {
		d.mu.Lock()
		deps := make([]dependency, 0, len(d.deps))
		for dep := range d.deps {
			deps = append(deps, dep)
		}
		d.mu.Unlock()

		changed := false
		for _, dep := range deps {
			dep.validate()
			d.mu.Lock()
			lastSeen := d.deps[dep]
			d.mu.Unlock()
			if dep.revision() != lastSeen {
				changed = true
				break
			}
		}

		d.mu.Lock()
		if !changed {
			d.st = stateClean
			d.mu.Unlock()
			return
		}
		d.st = stateDirty
		d.mu.Unlock()
	}

	d.recompute()
}

func (d *Derivation[T]) recompute() {
	graph.mu.Lock()
	if graph.computing[d.node] {
		graph.mu.Unlock()
		panic(&CycleError{Label: d.label})
	}
	graph.computing[d.node] = true
	graph.mu.Unlock()

	defer func() {
		graph.mu.Lock()
		delete(graph.computing, d.node)
		graph.mu.Unlock()
	}()

	d.mu.Lock()
	oldDeps := d.deps
	d.deps = make(map[dependency]uint64)
	d.mu.Unlock()

	var newValue T
	withTracker(d, func() {
		newValue = d.fn()
	})

	d.mu.Lock()
	// Drop subscriptions to dependencies that did not appear in this run.
	for dep := range oldDeps {
		if _, stillUsed := d.deps[dep]; !stillUsed {
			dep.unsubscribe(d)
		}
	}

	changed := !d.equal(d.value, newValue)
	if changed {
		d.value = newValue
		d.rev++
	}
	d.st = stateClean
	d.mu.Unlock()
}

// Read returns the cached value, recomputing first if dirty/possibly-dirty.
func (d *Derivation[T]) Read() T {
	track(d)
	d.validate()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Peek reads without subscribing the active tracker.
func (d *Derivation[T]) Peek() T {
	d.validate()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Invalidate eagerly marks the derivation (and its subscribers) dirty without
// waiting for a dependency write to do so. Used by SlotArray when a slot is
// rebound to a new source (spec §4.1: "a slot rebinding eagerly invalidates
// the slot cell").
func (d *Derivation[T]) Invalidate() {
	d.mu.Lock()
	d.st = stateDirty
	subs := d.snapshotSubs()
	d.mu.Unlock()

	for _, s := range subs {
		s.notifyCheck()
	}
}
