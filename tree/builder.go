package tree

// Builder grows a Tree while a parser walks its token stream. It keeps a
// stack of open nodes: Open pushes, Close pops, and Leaf appends a finished
// node to the innermost open one.
//
// The builder enforces the tree invariants by clamping. A child never starts
// before its previous sibling ends and a node never ends before its last
// child, so a parser confused by broken input still yields a valid tree.
type Builder[D any] struct {
	t     *Tree[D]
	stack []ID
}

// NewBuilder starts a tree whose root carries data and starts at start.
func NewBuilder[D any](root D, start int) *Builder[D] {
	t := &Tree[D]{}
	t.nodes = append(t.nodes, record[D]{start: start, end: start, parent: NoID, data: root})
	return &Builder[D]{t: t, stack: []ID{0}}
}

// Top returns the innermost open node.
func (b *Builder[D]) Top() ID {
	return b.stack[len(b.stack)-1]
}

// Depth is the number of open nodes, the root included.
func (b *Builder[D]) Depth() int {
	return len(b.stack)
}

// At returns the open node i levels below the top; At(0) is Top.
func (b *Builder[D]) At(i int) ID {
	if i < 0 || i >= len(b.stack) {
		return NoID
	}
	return b.stack[len(b.stack)-1-i]
}

func (b *Builder[D]) Data(id ID) D {
	return b.t.nodes[id].data
}

// Update mutates the data of id in place.
func (b *Builder[D]) Update(id ID, fn func(*D)) {
	fn(&b.t.nodes[id].data)
}

func (b *Builder[D]) Start(id ID) int {
	return b.t.nodes[id].start
}

func (b *Builder[D]) End(id ID) int {
	return b.t.nodes[id].end
}

// Parent returns the parent of id, NoID for the root.
func (b *Builder[D]) Parent(id ID) ID {
	return b.t.nodes[id].parent
}

// LastChild returns the most recently added child of id, or NoID.
func (b *Builder[D]) LastChild(id ID) ID {
	children := b.t.nodes[id].children
	if len(children) == 0 {
		return NoID
	}
	return children[len(children)-1]
}

// Open adds a child to the top node and makes it the new top.
func (b *Builder[D]) Open(data D, start int) ID {
	id := b.add(data, start, start)
	b.stack = append(b.stack, id)
	return id
}

// Leaf adds a finished, closed child to the top node.
func (b *Builder[D]) Leaf(data D, start, end int) ID {
	id := b.add(data, start, end)
	b.t.nodes[id].closed = true
	return id
}

func (b *Builder[D]) add(data D, start, end int) ID {
	parent := b.Top()
	if lo := b.minStart(parent); start < lo {
		start = lo
	}
	if end < start {
		end = start
	}
	id := ID(len(b.t.nodes))
	b.t.nodes = append(b.t.nodes, record[D]{start: start, end: end, parent: parent, data: data})
	b.t.nodes[parent].children = append(b.t.nodes[parent].children, id)
	return id
}

func (b *Builder[D]) minStart(parent ID) int {
	if last := b.LastChild(parent); last != NoID {
		return b.t.nodes[last].end
	}
	return b.t.nodes[parent].start
}

// Close pops the top node, setting its end and whether its terminator was
// seen. The root cannot be closed this way; use Finish.
func (b *Builder[D]) Close(end int, closed bool) ID {
	if len(b.stack) == 1 {
		return NoID
	}
	id := b.Top()
	b.stack = b.stack[:len(b.stack)-1]
	b.seal(id, end, closed)
	return id
}

// CloseTo pops open nodes until id has been closed. Nodes above id close
// unterminated at end. It does nothing if id is not open.
func (b *Builder[D]) CloseTo(id ID, end int, closed bool) {
	if !b.IsOpen(id) {
		return
	}
	for b.Top() != id {
		b.Close(end, false)
	}
	b.Close(end, closed)
}

// IsOpen reports whether id is on the open stack.
func (b *Builder[D]) IsOpen(id ID) bool {
	for _, open := range b.stack {
		if open == id {
			return true
		}
	}
	return false
}

func (b *Builder[D]) seal(id ID, end int, closed bool) {
	r := &b.t.nodes[id]
	if end < r.start {
		end = r.start
	}
	if n := len(r.children); n > 0 {
		if last := b.t.nodes[r.children[n-1]].end; end < last {
			end = last
		}
	}
	r.end = end
	r.closed = closed
}

// Finish closes every open node at end, unterminated, then closes the root
// and returns the tree. The builder must not be used afterwards.
func (b *Builder[D]) Finish(end int) *Tree[D] {
	for len(b.stack) > 1 {
		b.Close(end, false)
	}
	b.seal(0, end, true)
	b.stack = nil
	t := b.t
	b.t = nil
	return t
}
