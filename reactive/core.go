// Package reactive implements the engine's reactive graph: cells, derivations,
// effects, slot arrays, batching and glitch-free propagation.
//
// The graph is single-threaded and cooperative (spec §5): exactly one
// goroutine is expected to call into it at a time. A mutex still guards the
// global tracker state because a stray write from a timer goroutine should
// not corrupt bookkeeping, but the lock is a correctness backstop, not a
// concurrency model.
package reactive

import "sync"

// state is the tri-state dirtiness of a derivation or effect.
//
//	clean — value is up to date, read returns the cache untouched.
//	check — a transitive dependency *might* have changed; validate() must
//	        walk dependencies and only recompute if one of them actually did.
//	dirty — a direct dependency changed; recompute is required.
type state int

const (
	stateClean state = iota
	stateCheck
	stateDirty
)

// dependency is anything that can be read and subscribed to: Cell or Derivation.
type dependency interface {
	subscribe(s subscriber)
	unsubscribe(s subscriber)
	revision() uint64
	// validate brings the dependency up to date before its revision is
	// inspected. No-op for Cell.
	validate()
}

// subscriber is anything that tracks dependencies: Derivation or Effect.
type subscriber interface {
	// notifyDirect is called when a directly-observed dependency changed.
	notifyDirect()
	// notifyCheck is called when a transitive (not directly observed)
	// dependency further upstream may have changed.
	notifyCheck()
	addDependency(d dependency)
}

var graph = struct {
	mu sync.Mutex

	// tracker is the subscriber currently executing inside a tracked frame,
	// or nil outside of one. Read() calls record against it.
	tracker subscriber

	// computing is the set of derivations currently mid-recompute, used for
	// ReactiveCycle detection (spec §4.1).
	computing map[*derivationNode]bool

	batchDepth int
	// pending holds effects that must run once the outermost batch ends,
	// in the order they were first marked pending (registration order per
	// spec §5's ordering guarantee).
	pending     []*Effect
	pendingSeen map[*Effect]bool
}{}

func init() {
	graph.computing = make(map[*derivationNode]bool)
	graph.pendingSeen = make(map[*Effect]bool)
}

// derivationNode is the subset of *Derivation[T] needed for cycle-detection
// bookkeeping without making the global map generic.
type derivationNode struct{}

// withTracker runs fn with sub installed as the active tracker, restoring the
// previous tracker (supports nested tracked frames, e.g. a derivation read
// inside an effect).
func withTracker(sub subscriber, fn func()) {
	graph.mu.Lock()
	prev := graph.tracker
	graph.tracker = sub
	graph.mu.Unlock()

	defer func() {
		graph.mu.Lock()
		graph.tracker = prev
		graph.mu.Unlock()
	}()

	fn()
}

// Untracked runs fn without recording any dependency reads against the
// caller's tracking frame, even if one is active.
func Untracked(fn func()) {
	graph.mu.Lock()
	prev := graph.tracker
	graph.tracker = nil
	graph.mu.Unlock()

	defer func() {
		graph.mu.Lock()
		graph.tracker = prev
		graph.mu.Unlock()
	}()

	fn()
}

func activeTracker() subscriber {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	return graph.tracker
}

// track records a read of d against the currently active subscriber, if any.
func track(d dependency) {
	sub := activeTracker()
	if sub == nil {
		return
	}
	sub.addDependency(d)
	d.subscribe(sub)
}

// schedulePending enqueues an effect to run at the end of the outermost
// batch (or immediately, if no batch is active).
func schedulePending(e *Effect) {
	graph.mu.Lock()
	if graph.pendingSeen[e] {
		graph.mu.Unlock()
		return
	}
	graph.pendingSeen[e] = true
	graph.pending = append(graph.pending, e)
	depth := graph.batchDepth
	graph.mu.Unlock()

	if depth == 0 {
		drainPending()
	}
}

// drainPending runs every effect queued by schedulePending, in the order they
// were enqueued. Effects that get (re-)enqueued while draining run within the
// same drain — this keeps a batch's settle-to-fixed-point behavior without
// requiring the caller to call FlushSync again — but an effect does not
// re-enter itself while it is actively running (see Effect.run).
func drainPending() {
	for {
		graph.mu.Lock()
		if len(graph.pending) == 0 {
			graph.mu.Unlock()
			return
		}
		e := graph.pending[0]
		graph.pending = graph.pending[1:]
		delete(graph.pendingSeen, e)
		graph.mu.Unlock()

		e.run()
	}
}

// Batch groups writes so dependents observe them atomically: propagation is
// deferred until the outermost Batch call returns.
func Batch(fn func()) {
	graph.mu.Lock()
	graph.batchDepth++
	graph.mu.Unlock()

	defer func() {
		graph.mu.Lock()
		graph.batchDepth--
		outermost := graph.batchDepth == 0
		graph.mu.Unlock()
		if outermost {
			drainPending()
		}
	}()

	fn()
}

// FlushSync forces any pending effect runs to drain on the calling goroutine.
// It is a no-op when called from inside an active Batch (propagation still
// waits for the outermost Batch to return, per spec §4.1).
func FlushSync() {
	graph.mu.Lock()
	active := graph.batchDepth > 0
	graph.mu.Unlock()
	if active {
		return
	}
	drainPending()
}

// equalValues implements the structural/reference equality split spec §9
// calls for: small comparable records compare structurally, opaque payloads
// fall back to interface equality (which is reference equality for pointers
// and structural for comparable value types — Go gives us this for free via
// the comparable constraint at the call site).
func equalValues[T comparable](a, b T) bool {
	return a == b
}
