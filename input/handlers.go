package input

import (
	"sort"
	"sync"

	"github.com/loomtui/loom/registry"
)

// KeyHandler observes a key Event and reports whether it consumed it (spec
// §4.6 "handlers return a boolean handled").
type KeyHandler func(ev Event) bool

// MouseHandler observes a MouseEvent and reports whether it consumed it.
type MouseHandler func(me MouseEvent) bool

// HandlerID identifies one registered handler for later removal.
type HandlerID int

// Handlers is the per-node handler registry spec §9 describes: "closures
// stored alongside node state... modeled as a registry: each handler slot
// owns a unique id, and the handler itself is looked up via that id at
// dispatch time, so disposing a node can remove all of its handlers without
// touching arbitrary user code." Grounded on the teacher's channel-based
// KeyEvent dispatch (tui/input.go), generalized from "one channel, one
// reader" into a registry because spec §4.6 requires per-node and global
// handlers with capture-order dispatch, which a single channel cannot
// express.
type Handlers struct {
	mu sync.Mutex

	nextID int

	keyByNode   map[int]map[HandlerID]KeyHandler
	mouseByNode map[int]map[HandlerID]MouseHandler
	globalKey   map[HandlerID]globalKeyBinding
}

type globalKeyBinding struct {
	keys []Key
	fn   KeyHandler
}

// NewHandlers creates an empty handler registry.
func NewHandlers() *Handlers {
	return &Handlers{
		keyByNode:   make(map[int]map[HandlerID]KeyHandler),
		mouseByNode: make(map[int]map[HandlerID]MouseHandler),
		globalKey:   make(map[HandlerID]globalKeyBinding),
	}
}

// OnKey registers fn as node's key handler, tried first when node is
// focused (spec §4.6).
func (h *Handlers) OnKey(node int, fn KeyHandler) HandlerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.allocID()
	m := h.keyByNode[node]
	if m == nil {
		m = make(map[HandlerID]KeyHandler)
		h.keyByNode[node] = m
	}
	m[id] = fn
	return id
}

// OnMouse registers fn as one of node's mouse handlers, invoked during
// capture-order dispatch of a mouse event that hits node's subtree.
func (h *Handlers) OnMouse(node int, fn MouseHandler) HandlerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.allocID()
	m := h.mouseByNode[node]
	if m == nil {
		m = make(map[HandlerID]MouseHandler)
		h.mouseByNode[node] = m
	}
	m[id] = fn
	return id
}

// OnGlobalKey registers fn as a fallback handler for any of keys, tried
// when the focused node's own handler (if any) returns "not handled" (spec
// §4.6's "global handlers registered by key name or set of names").
func (h *Handlers) OnGlobalKey(keys []Key, fn KeyHandler) HandlerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.allocID()
	h.globalKey[id] = globalKeyBinding{keys: append([]Key(nil), keys...), fn: fn}
	return id
}

func (h *Handlers) allocID() HandlerID {
	h.nextID++
	return HandlerID(h.nextID)
}

// Remove unregisters id from wherever it was registered. A no-op if id is
// unknown (already removed).
func (h *Handlers) Remove(id HandlerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.globalKey, id)
	for node, m := range h.keyByNode {
		if _, ok := m[id]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(h.keyByNode, node)
			}
			return
		}
	}
	for node, m := range h.mouseByNode {
		if _, ok := m[id]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(h.mouseByNode, node)
			}
			return
		}
	}
}

// RemoveNode drops every handler bound to node, called when the node's
// index is released (spec §4.6 "cleanup on node release removes all
// handlers bound to that node's index").
func (h *Handlers) RemoveNode(node int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.keyByNode, node)
	delete(h.mouseByNode, node)
}

// DispatchKey delivers ev to focused's own key handler first; if it is
// unset or returns false, falls back to global handlers matching ev.Key, in
// registration order. Returns whether any handler consumed the event.
func (h *Handlers) DispatchKey(focused int, ev Event) bool {
	h.mu.Lock()
	nodeHandlers := make([]KeyHandler, 0, 1)
	if m := h.keyByNode[focused]; m != nil {
		for _, fn := range m {
			nodeHandlers = append(nodeHandlers, fn)
		}
	}
	ids := make([]HandlerID, 0, len(h.globalKey))
	for id := range h.globalKey {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	globals := make([]globalKeyBinding, 0, len(ids))
	for _, id := range ids {
		globals = append(globals, h.globalKey[id])
	}
	h.mu.Unlock()

	for _, fn := range nodeHandlers {
		if fn(ev) {
			return true
		}
	}
	for _, b := range globals {
		if !bindingMatches(b, ev.Key) {
			continue
		}
		if b.fn(ev) {
			return true
		}
	}
	return false
}

func bindingMatches(b globalKeyBinding, key Key) bool {
	for _, k := range b.keys {
		if k == key {
			return true
		}
	}
	return false
}

// DispatchMouse delivers me to every node on the path from the forest root
// down to hitNode (ancestor first), stopping at the first handler that
// returns true (spec §4.6 "capture order... stopping if the handler signals
// consumed"). hitNode is normally the hit grid's top-most node under the
// event's coordinates.
func (h *Handlers) DispatchMouse(reg *registry.Registry, hitNode int, me MouseEvent) bool {
	if hitNode == registry.RootIndex {
		return false
	}
	var chain []int
	for n := hitNode; n != registry.RootIndex; n = reg.Parent(n) {
		chain = append(chain, n)
	}
	// chain is leaf-to-root; reverse for ancestor-first capture order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	for _, node := range chain {
		h.mu.Lock()
		var fns []MouseHandler
		if m := h.mouseByNode[node]; m != nil {
			for _, fn := range m {
				fns = append(fns, fn)
			}
		}
		h.mu.Unlock()
		for _, fn := range fns {
			if fn(me) {
				return true
			}
		}
	}
	return false
}
