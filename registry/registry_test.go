package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateAssignsDenseIndices(t *testing.T) {
	r := New()
	r.BeginPass()
	a, err := r.Allocate("a")
	require.NoError(t, err)
	b, err := r.Allocate("b")
	require.NoError(t, err)
	r.EndPass()

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestDuplicateSiblingIDRejected(t *testing.T) {
	r := New()
	r.BeginPass()
	_, err := r.Allocate("x")
	require.NoError(t, err)
	_, err = r.Allocate("x")
	assert.ErrorAs(t, err, new(*ErrDuplicateNodeID))
}

func TestSameIDUnderDifferentParentsIsNotDuplicate(t *testing.T) {
	r := New()
	r.BeginPass()
	parentA, _ := r.Allocate("parent-a")
	parentB, _ := r.Allocate("parent-b")

	r.PushParent(parentA)
	_, err := r.Allocate("child")
	require.NoError(t, err)
	r.PopParent()

	r.PushParent(parentB)
	_, err = r.Allocate("child")
	assert.NoError(t, err)
	r.PopParent()
}

func TestParentChildTreeBuiltFromPushPop(t *testing.T) {
	r := New()
	r.BeginPass()
	box, _ := r.Allocate("box")
	r.PushParent(box)
	childA, _ := r.Allocate("a")
	childB, _ := r.Allocate("b")
	r.PopParent()
	r.EndPass()

	assert.Equal(t, RootIndex, r.Parent(box))
	assert.Equal(t, box, r.Parent(childA))
	assert.Equal(t, []int{childA, childB}, r.Children(box))
}

func TestReconciliationReleasesDroppedReusesSurviving(t *testing.T) {
	r := New()
	r.BeginPass()
	a, _ := r.Allocate("a")
	b, _ := r.Allocate("b")
	c, _ := r.Allocate("c")
	r.EndPass()

	r.BeginPass()
	a2, _ := r.Allocate("a")
	c2, _ := r.Allocate("c")
	d2, _ := r.Allocate("d")
	released := r.EndPass()

	assert.Equal(t, a, a2, "surviving id a must keep its index")
	assert.Equal(t, c, c2, "surviving id c must keep its index")
	assert.Equal(t, []int{b}, released, "dropped id b must be released")
	assert.False(t, r.Alive(b))
	assert.True(t, r.Alive(d2))
	// b is released only at EndPass, after d was allocated, so d takes the
	// next fresh index; b goes onto the free list for a later pass.
	assert.Equal(t, 3, d2)
}

func TestReparentReordersSurvivingSiblings(t *testing.T) {
	r := New()
	r.BeginPass()
	box, _ := r.Allocate("box")
	r.PushParent(box)
	a, _ := r.Allocate("a")
	b, _ := r.Allocate("b")
	c, _ := r.Allocate("c")
	r.PopParent()
	r.EndPass()
	require.Equal(t, []int{a, b, c}, r.Children(box))

	r.BeginPass()
	c2, _ := r.Allocate("box")
	r.PushParent(c2)
	_, _ = r.Allocate("c")
	_, _ = r.Allocate("b")
	_, _ = r.Allocate("a")
	r.PopParent()
	r.EndPass()

	assert.Equal(t, []int{c, b, a}, r.Children(box), "same keys reordered in the new pass must reorder the children slice")
}

func TestRootChildrenReorderAcrossPasses(t *testing.T) {
	r := New()
	r.BeginPass()
	a, _ := r.Allocate("a")
	b, _ := r.Allocate("b")
	c, _ := r.Allocate("c")
	r.EndPass()
	require.Equal(t, []int{a, b, c}, r.Children(RootIndex))

	r.BeginPass()
	_, _ = r.Allocate("c")
	_, _ = r.Allocate("b")
	_, _ = r.Allocate("a")
	r.EndPass()

	assert.Equal(t, []int{c, b, a}, r.Children(RootIndex), "root-level reordering must be reflected, not frozen at first-insertion order")
}

func TestDoubleReleaseRejected(t *testing.T) {
	r := New()
	r.BeginPass()
	a, _ := r.Allocate("a")
	r.EndPass()

	require.NoError(t, r.Release(a))
	err := r.Release(a)
	assert.ErrorAs(t, err, new(*ErrDoubleRelease))
}

func TestAllocationRankOrdersNodes(t *testing.T) {
	r := New()
	r.BeginPass()
	a, _ := r.Allocate("a")
	b, _ := r.Allocate("b")
	r.EndPass()

	assert.Less(t, r.AllocationRank(a), r.AllocationRank(b))
}
