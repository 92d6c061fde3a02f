package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintUnsatisfiableReportedOncePerNode(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.ConstraintUnsatisfiable(3, "negative width clamped to zero")
	l.ConstraintUnsatisfiable(3, "negative width clamped to zero")
	l.ConstraintUnsatisfiable(4, "negative width clamped to zero")

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "constraint_unsatisfiable"))
}

func TestTerminalIOLogsAsError(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.TerminalIO("short write")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "terminal_io")
}

func TestNewNopDiscardsEverything(t *testing.T) {
	l := NewNop()
	l.DecodeInvalid("garbage byte")
	l.ConstraintUnsatisfiable(1, "x")
}
