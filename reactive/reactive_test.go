package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellReadWrite(t *testing.T) {
	count := NewCell(0)
	assert.Equal(t, 0, count.Read())

	count.Write(1)
	assert.Equal(t, 1, count.Read())
}

func TestCellWriteElidesEqualValue(t *testing.T) {
	count := NewCell(5)
	runs := 0
	CreateEffect(func(func(Cleanup)) {
		count.Read()
		runs++
	})
	require.Equal(t, 1, runs)

	count.Write(5)
	FlushSync()
	assert.Equal(t, 1, runs, "equal write must not re-notify subscribers")
}

func TestEffectRunsImmediatelyAndOnChange(t *testing.T) {
	count := NewCell(0)
	runs := 0

	CreateEffect(func(func(Cleanup)) {
		count.Read()
		runs++
	})
	assert.Equal(t, 1, runs)

	count.Write(1)
	assert.Equal(t, 2, runs)

	count.Write(2)
	assert.Equal(t, 3, runs)
}

func TestDerivationRecomputesOnDependencyChange(t *testing.T) {
	count := NewCell(1)
	double := Derive(func() int { return count.Read() * 2 })

	assert.Equal(t, 2, double.Read())

	count.Write(2)
	assert.Equal(t, 4, double.Read())
}

func TestDerivationGlitchFreeEarlyOut(t *testing.T) {
	a := NewCell(1)
	evens := Derive(func() int { return (a.Read() / 2) * 2 }) // floors to even

	downstreamRuns := 0
	CreateEffect(func(func(Cleanup)) {
		evens.Read()
		downstreamRuns++
	})
	require.Equal(t, 1, downstreamRuns)

	// a: 1 -> 2 changes evens (0 -> 2): downstream must re-run.
	a.Write(2)
	assert.Equal(t, 2, downstreamRuns)

	// a: 2 -> 3 does NOT change evens (2 -> 2): downstream must NOT re-run.
	a.Write(3)
	assert.Equal(t, 2, downstreamRuns, "equal recompute must not advance revision or notify")
}

func TestDependencyTrackingMultipleCells(t *testing.T) {
	a := NewCell(1)
	b := NewCell(2)
	sum := 0

	CreateEffect(func(func(Cleanup)) {
		sum = a.Read() + b.Read()
	})
	assert.Equal(t, 3, sum)

	a.Write(2)
	assert.Equal(t, 4, sum)

	b.Write(3)
	assert.Equal(t, 5, sum)
}

func TestBatchCoalescesToOneRun(t *testing.T) {
	a := NewCell(1)
	b := NewCell(2)
	runs := 0

	CreateEffect(func(func(Cleanup)) {
		_ = a.Read() + b.Read()
		runs++
	})
	require.Equal(t, 1, runs)

	Batch(func() {
		a.Write(10)
		b.Write(20)
	})
	assert.Equal(t, 2, runs, "a batch of writes must produce exactly one effect run")
}

func TestUntrackedSuppressesDependencyRecording(t *testing.T) {
	a := NewCell(1)
	runs := 0

	CreateEffect(func(func(Cleanup)) {
		Untracked(func() { a.Read() })
		runs++
	})
	require.Equal(t, 1, runs)

	a.Write(2)
	assert.Equal(t, 1, runs, "untracked read must not subscribe the effect")
}

func TestEffectCleanupRunsLIFOBeforeRerunAndOnDispose(t *testing.T) {
	a := NewCell(0)
	var order []string

	e := CreateEffect(func(addCleanup func(Cleanup)) {
		a.Read()
		addCleanup(func() { order = append(order, "first") })
		addCleanup(func() { order = append(order, "second") })
	})

	a.Write(1)
	assert.Equal(t, []string{"second", "first"}, order)

	order = nil
	e.Dispose()
	assert.Equal(t, []string{"second", "first"}, order)

	order = nil
	a.Write(2)
	assert.Nil(t, order, "disposed effect must not react to further writes")
}

func TestEffectDisposeIsIdempotent(t *testing.T) {
	a := NewCell(0)
	e := CreateEffect(func(func(Cleanup)) { a.Read() })
	e.Dispose()
	assert.NotPanics(t, func() { e.Dispose() })
}

func TestReactiveCycleDetected(t *testing.T) {
	var d *Derivation[int]
	d = Derive(func() int {
		return d.Read() + 1
	})

	assert.PanicsWithValue(t, &CycleError{}, func() {
		d.Read()
	})
}

func TestSlotArrayIndependentTracking(t *testing.T) {
	arr := NewSlotArray(0)
	arr.SetSource(0, ConstSource(1))
	arr.SetSource(1, ConstSource(2))

	slot0Runs := 0
	CreateEffect(func(func(Cleanup)) {
		arr.Get(0)
		slot0Runs++
	})
	require.Equal(t, 1, slot0Runs)

	// Rebinding slot 1 must not affect an effect that only reads slot 0.
	arr.SetSource(1, ConstSource(99))
	FlushSync()
	assert.Equal(t, 1, slot0Runs)

	arr.SetSource(0, ConstSource(5))
	assert.Equal(t, 2, slot0Runs)
	assert.Equal(t, 5, arr.Get(0))
}

func TestSlotArrayRebindToCellSource(t *testing.T) {
	arr := NewSlotArray("")
	c := NewCell("hello")
	arr.SetSource(0, CellSource(c))

	assert.Equal(t, "hello", arr.Get(0))
	c.Write("world")
	assert.Equal(t, "world", arr.Get(0))
}

func TestSlotArrayResetRestoresDefault(t *testing.T) {
	arr := NewSlotArray(42)
	arr.SetSource(0, ConstSource(7))
	require.Equal(t, 7, arr.Get(0))

	arr.Reset(0)
	assert.Equal(t, 42, arr.Get(0))
}
