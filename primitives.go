package loom

import (
	"fmt"

	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// mountCtx is the per-mount state primitive calls bind against. A render
// closure only ever runs while a mountCtx is active (pushed by Mount's
// render effect), so Box/Text/Each/Show/When never need it threaded through
// explicitly — matching the teacher's implicit-Screen style in tui/render.go,
// generalized from a single global Screen to a stack so nested or
// concurrent mounts (as in tests) don't collide.
type mountCtx struct {
	reg     *registry.Registry
	cols    *store.Columns
	autoSeq map[int]int // current-parent index -> next ordinal

	// nextID, if non-empty, overrides the next Box/Text call's
	// auto-generated id exactly once; Each uses this to key a list item's
	// root node by its stable key instead of call-site ordinal.
	nextID registry.NodeID
}

var ctxStack []*mountCtx

func pushCtx(c *mountCtx) { ctxStack = append(ctxStack, c) }
func popCtx()             { ctxStack = ctxStack[:len(ctxStack)-1] }

func currentCtx() *mountCtx {
	if len(ctxStack) == 0 {
		panic("loom: box/text/each/show/when called outside a Mount render function")
	}
	return ctxStack[len(ctxStack)-1]
}

// nextAutoID synthesizes the id for a node whose author omitted Attrs.ID:
// either the pending Each key override, or `#<n>` where n is this node's
// ordinal position among its siblings in authoring order (spec §3's
// "auto-generated from call-site ordinality").
func (c *mountCtx) nextAutoID(order int) registry.NodeID {
	if c.nextID != "" {
		id := c.nextID
		c.nextID = ""
		return id
	}
	return registry.NodeID(fmt.Sprintf("#%d", order))
}

// allocate allocates (or reuses) idx's node for this pass, growing the
// columns, applying attrs, and stamping ChildOrder with this node's
// authoring-order position among its current siblings — the position
// every node takes regardless of whether its id was explicit or
// auto-generated, so a derivation can subscribe to "my order among
// siblings" without subscribing to the parent's whole children list.
func (c *mountCtx) allocate(ct store.ComponentType, attrs Attrs) int {
	parent := c.reg.CurrentParent()
	c.autoSeq[parent]++
	order := c.autoSeq[parent]

	id := attrs.ID
	if id == "" {
		id = c.nextAutoID(order)
	}

	idx, err := c.reg.Allocate(id)
	if err != nil {
		panic(err)
	}
	c.cols.Grow(c.reg.Len())
	c.cols.ComponentType.SetSource(idx, reactive.ConstSource(ct))
	c.cols.ChildOrder.SetSource(idx, reactive.ConstSource(order))
	c.cols.ID.SetSource(idx, reactive.ConstSource(id))
	c.cols.ParentIndex.SetSource(idx, reactive.ConstSource(c.reg.Parent(idx)))
	apply(c.cols, idx, attrs)
	return idx
}

// Box allocates a container node. children, if non-nil, is invoked with the
// new node pushed as the current parent, so any primitive calls inside it
// become its children (spec §6 "a children closure... is invoked inside the
// parent context").
func Box(attrs Attrs, children func()) int {
	c := currentCtx()
	idx := c.allocate(store.ComponentBox, attrs)
	if children != nil {
		c.reg.PushParent(idx)
		children()
		c.reg.PopParent()
	}
	return idx
}

// Text allocates a leaf text node.
func Text(attrs Attrs) int {
	return currentCtx().allocate(store.ComponentText, attrs)
}

// Each renders a reactive list: render is invoked once per item returned by
// source, in order, with the item's root primitive call keyed by key(item)
// rather than call-site ordinal. Across passes, items whose key persists
// reuse their index (and subtree); items whose key disappears are released
// at EndPass; items are the structural identity reconciliation already
// gives box/text — Each's only job is picking the right id for each
// iteration (spec §6).
func Each[T any](source func() []T, key func(T) registry.NodeID, render func(item T)) {
	c := currentCtx()
	for _, item := range source() {
		c.nextID = key(item)
		render(item)
		c.nextID = ""
	}
}

// Show renders then() when cond() is true, else() (if given) otherwise.
// Reading cond() inside the active render effect subscribes it like any
// other cell read, so a later flip re-runs the whole render and the branch
// not taken this pass has its nodes released by the ordinary reconciliation
// path (spec §6).
func Show(cond func() bool, then func(), els func()) {
	if cond() {
		then()
	} else if els != nil {
		els()
	}
}

// When is Show with no else branch.
func When(cond func() bool, then func()) {
	Show(cond, then, nil)
}
