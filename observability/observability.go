// Package observability is the engine-wide sink for the non-fatal error
// taxonomy spec.md §7 names: events that must be surfaced to a host without
// aborting whatever reactive evaluation, layout pass, or decode loop
// triggered them. The teacher reports errors with bare fmt.Fprintf to
// stderr; this generalizes that into a structured github.com/rs/zerolog
// sink, matching the logging stack of the other TUI-adjacent repos in the
// retrieval pack.
package observability

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Kind names one taxonomy entry from spec.md §7.
type Kind string

const (
	KindReactiveCycle          Kind = "reactive_cycle"
	KindDuplicateNodeID        Kind = "duplicate_node_id"
	KindDoubleRelease          Kind = "double_release"
	KindTerminalIO             Kind = "terminal_io"
	KindDecodeInvalid          Kind = "decode_invalid"
	KindConstraintUnsatisfiable Kind = "constraint_unsatisfiable"
	KindUserCallbackPanic      Kind = "user_callback_panic"
)

// Sink is the event channel every other package depends on as an interface,
// never a concrete type, so reactive/layout/term/input stay decoupled from
// zerolog.
type Sink interface {
	// Report logs one non-fatal event. detail is free-form context (a node
	// index, a byte offset, the recovered panic value's string form).
	Report(kind Kind, detail string)
}

// Logger wraps a zerolog.Logger and de-duplicates ConstraintUnsatisfiable
// reports per node index and detail text within a single process lifetime,
// matching spec.md §4.3's "reported once" (SPEC_FULL.md's de-duplication-window
// extension, keyed by node and detail rather than a time window since layout
// runs every frame and a time window would still spam on a static bad
// constraint).
type Logger struct {
	log zerolog.Logger

	mu          sync.Mutex
	reportedKey map[string]bool
}

// New creates a Logger writing to w (os.Stderr if nil).
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{log: zl, reportedKey: make(map[string]bool)}
}

// NewNop creates a Logger that discards every event, for hosts that don't
// want engine diagnostics.
func NewNop() *Logger {
	return New(io.Discard)
}

func (l *Logger) Report(kind Kind, detail string) {
	if kind == KindConstraintUnsatisfiable {
		key := string(kind) + "|" + detail
		l.mu.Lock()
		seen := l.reportedKey[key]
		l.reportedKey[key] = true
		l.mu.Unlock()
		if seen {
			return
		}
	}

	ev := l.log.Warn()
	if kind == KindTerminalIO || kind == KindUserCallbackPanic {
		ev = l.log.Error()
	}
	ev.Str("kind", string(kind)).Msg(detail)
}

// ConstraintUnsatisfiable satisfies layout.Observability without that
// package importing this one.
func (l *Logger) ConstraintUnsatisfiable(node int, detail string) {
	l.Report(KindConstraintUnsatisfiable, nodeDetail(node, detail))
}

// DecodeInvalid satisfies input's decode-error reporting contract.
func (l *Logger) DecodeInvalid(detail string) {
	l.Report(KindDecodeInvalid, detail)
}

// TerminalIO satisfies term's I/O-failure reporting contract.
func (l *Logger) TerminalIO(detail string) {
	l.Report(KindTerminalIO, detail)
}

func nodeDetail(node int, detail string) string {
	return detail + " (node " + strconv.Itoa(node) + ")"
}
