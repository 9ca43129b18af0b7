// Package tree is an append-only, offset-indexed syntax tree stored as an
// arena. Nodes refer to each other by ID, never by pointer, and are only
// reachable through read-only Node handles once a Builder has finished.
package tree

import (
	"fmt"
	"iter"
	"sort"
)

// ID indexes a node inside its Tree.
type ID int32

// NoID is the parent of the root and the result of failed lookups.
const NoID ID = -1

type record[D any] struct {
	start    int
	end      int
	closed   bool
	parent   ID
	children []ID
	data     D
}

// Tree is a finished parse tree. The root always has ID 0. Offsets are
// half-open [Start, End) rune offsets into the parsed text.
type Tree[D any] struct {
	nodes []record[D]
}

func (t *Tree[D]) Root() Node[D] {
	return Node[D]{t: t, id: 0}
}

func (t *Tree[D]) Len() int {
	return len(t.nodes)
}

// Node returns a handle for id. The handle is invalid when id is out of
// range.
func (t *Tree[D]) Node(id ID) Node[D] {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node[D]{t: t, id: NoID}
	}
	return Node[D]{t: t, id: id}
}

// FindNodeAt returns the deepest node whose range contains offset. Each
// level is searched with a binary search over the sorted children. When no
// child of the root contains offset the root is returned.
func (t *Tree[D]) FindNodeAt(offset int) Node[D] {
	cur := ID(0)
	for {
		next := t.childAt(cur, offset)
		if next == NoID {
			return Node[D]{t: t, id: cur}
		}
		cur = next
	}
}

// FindNodeBefore returns the deepest node containing the rune just before
// offset. Completion uses it, since the cursor sits after the text being
// typed and an unterminated construct ends exactly at the cursor.
func (t *Tree[D]) FindNodeBefore(offset int) Node[D] {
	if offset <= 0 {
		return t.Root()
	}
	return t.FindNodeAt(offset - 1)
}

func (t *Tree[D]) childAt(parent ID, offset int) ID {
	children := t.nodes[parent].children
	// first child starting after offset; the candidate is the one before it
	i := sort.Search(len(children), func(i int) bool {
		return t.nodes[children[i]].start > offset
	}) - 1
	// siblings to the left end at or before this one's start
	if i >= 0 && offset < t.nodes[children[i]].end {
		return children[i]
	}
	return NoID
}

// All yields every node in document order.
func (t *Tree[D]) All() iter.Seq[Node[D]] {
	return func(yield func(Node[D]) bool) {
		t.Walk(func(n Node[D], entering bool) bool {
			if !entering {
				return true
			}
			return yield(n)
		})
	}
}

// Walk visits the tree depth first, calling fn once when entering a node and
// once when leaving it. Returning false on entry skips the node's children
// (the leave call still happens).
func (t *Tree[D]) Walk(fn func(n Node[D], entering bool) bool) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(0, fn)
}

func (t *Tree[D]) walk(id ID, fn func(Node[D], bool) bool) {
	n := Node[D]{t: t, id: id}
	if fn(n, true) {
		for _, c := range t.nodes[id].children {
			t.walk(c, fn)
		}
	}
	fn(n, false)
}

// Check verifies the structural invariants: every child lies inside its
// parent, siblings are sorted and do not overlap, and parent links match.
func (t *Tree[D]) Check() error {
	for id, r := range t.nodes {
		if r.start > r.end {
			return fmt.Errorf("node %d: start %d after end %d", id, r.start, r.end)
		}
		prevEnd := r.start
		for _, c := range r.children {
			cr := t.nodes[c]
			if cr.parent != ID(id) {
				return fmt.Errorf("node %d: child %d has parent %d", id, c, cr.parent)
			}
			if cr.start < prevEnd {
				return fmt.Errorf("node %d: child %d starts at %d before %d", id, c, cr.start, prevEnd)
			}
			if cr.end > r.end {
				return fmt.Errorf("node %d: child %d ends at %d after parent end %d", id, c, cr.end, r.end)
			}
			prevEnd = cr.end
		}
	}
	return nil
}

// Node is a read-only handle on one node of a Tree.
type Node[D any] struct {
	t  *Tree[D]
	id ID
}

func (n Node[D]) Valid() bool {
	return n.t != nil && n.id >= 0 && int(n.id) < len(n.t.nodes)
}

func (n Node[D]) ID() ID {
	return n.id
}

func (n Node[D]) Tree() *Tree[D] {
	return n.t
}

func (n Node[D]) Start() int {
	return n.t.nodes[n.id].start
}

func (n Node[D]) End() int {
	return n.t.nodes[n.id].end
}

// Closed reports whether the node's terminating construct was found.
func (n Node[D]) Closed() bool {
	return n.t.nodes[n.id].closed
}

func (n Node[D]) Data() D {
	return n.t.nodes[n.id].data
}

// Parent returns an invalid handle for the root.
func (n Node[D]) Parent() Node[D] {
	return Node[D]{t: n.t, id: n.t.nodes[n.id].parent}
}

func (n Node[D]) NumChildren() int {
	return len(n.t.nodes[n.id].children)
}

func (n Node[D]) Child(i int) Node[D] {
	children := n.t.nodes[n.id].children
	if i < 0 || i >= len(children) {
		return Node[D]{t: n.t, id: NoID}
	}
	return Node[D]{t: n.t, id: children[i]}
}

func (n Node[D]) Children() iter.Seq[Node[D]] {
	return func(yield func(Node[D]) bool) {
		for _, c := range n.t.nodes[n.id].children {
			if !yield(Node[D]{t: n.t, id: c}) {
				return
			}
		}
	}
}

// Ancestors yields the parent chain up to and including the root.
func (n Node[D]) Ancestors() iter.Seq[Node[D]] {
	return func(yield func(Node[D]) bool) {
		for p := n.Parent(); p.Valid(); p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// Contains reports whether offset lies in [Start, End).
func (n Node[D]) Contains(offset int) bool {
	return offset >= n.Start() && offset < n.End()
}
