package intelephense

// Visit is called by Walk with the node and its ancestor chain (root first,
// parent last). Returning false from the pre-order callback skips the node's
// children.
type Visit func(n Node, spine []Node) bool

// Walk visits every node under root exactly once, calling pre before a
// node's children and post after. Either callback may be nil.
func Walk(root Node, pre Visit, post func(n Node, spine []Node)) {
	var spine []Node

	var walk func(n Node)

	walk = func(n Node) {
		if pre != nil && !pre(n, spine) {
			return
		}

		if ph, ok := n.(*Phrase); ok {
			spine = append(spine, n)

			for _, child := range ph.Children {
				walk(child)
			}

			spine = spine[:len(spine)-1]
		}

		if post != nil {
			post(n, spine)
		}
	}

	walk(root)
}

// FirstToken returns the leftmost token under n, or nil when the subtree
// contains none (an empty or error-only phrase). A nil result is a valid
// answer, not a failure.
func FirstToken(n Node) *Token {
	switch node := n.(type) {
	case *Token:
		return node
	case *Phrase:
		for _, child := range node.Children {
			if tok := FirstToken(child); tok != nil {
				return tok
			}
		}
	}

	return nil
}

// LastToken returns the rightmost token under n, or nil when the subtree
// contains none.
func LastToken(n Node) *Token {
	switch node := n.(type) {
	case *Token:
		return node
	case *Phrase:
		for i := len(node.Children) - 1; i >= 0; i-- {
			if tok := LastToken(node.Children[i]); tok != nil {
				return tok
			}
		}
	}

	return nil
}

// Traverser is a cursor over a tree. Find positions it on the deepest node
// containing an offset and records the ancestor spine so callers can
// classify the cursor context without re-walking from the root.
type Traverser struct {
	root  *Phrase
	spine []Node // ancestors of the current node, root first
	node  Node
}

// NewTraverser returns a traverser positioned at the root.
func NewTraverser(root *Phrase) *Traverser {
	return &Traverser{root: root, node: root}
}

// Node returns the node the traverser is positioned on, or nil when a Find
// missed.
func (t *Traverser) Node() Node {
	return t.node
}

// Spine returns the current ancestor chain, root first. The returned slice
// is shared; callers must not mutate it.
func (t *Traverser) Spine() []Node {
	return t.spine
}

// Find positions the traverser on the deepest node whose token span contains
// offset and returns that node. Spans are half-open, so a token covers
// offsets [Offset, Offset+Length). Returns nil (and leaves the cursor at the
// root) when no token contains the offset.
func (t *Traverser) Find(offset int) Node {
	t.spine = t.spine[:0]
	t.node = t.root

	var descend func(n Node) Node

	descend = func(n Node) Node {
		switch node := n.(type) {
		case *Token:
			if offset >= node.Offset && offset < node.Offset+node.Length {
				return node
			}

			return nil
		case *Phrase:
			for _, child := range node.Children {
				first := FirstToken(child)
				if first == nil || first.Offset > offset {
					continue
				}

				last := LastToken(child)
				if last.End() <= offset {
					continue
				}

				t.spine = append(t.spine, n)

				return descend(child)
			}

			return nil
		}

		return nil
	}

	found := descend(t.root)
	if found == nil {
		t.spine = t.spine[:0]
		t.node = t.root

		return nil
	}

	t.node = found

	return found
}

// Parent returns the immediate parent of the current node, or nil at the
// root.
func (t *Traverser) Parent() *Phrase {
	return t.ancestorPhrase(1)
}

// Ancestor returns the ancestor at the given depth above the current node
// (1 is the parent), or nil when the spine is shorter.
func (t *Traverser) Ancestor(depth int) *Phrase {
	return t.ancestorPhrase(depth)
}

func (t *Traverser) ancestorPhrase(depth int) *Phrase {
	if depth <= 0 || depth > len(t.spine) {
		return nil
	}

	ph, _ := t.spine[len(t.spine)-depth].(*Phrase)

	return ph
}

// AncestorMatching returns the nearest ancestor for which pred is true, or
// nil.
func (t *Traverser) AncestorMatching(pred func(*Phrase) bool) *Phrase {
	for i := len(t.spine) - 1; i >= 0; i-- {
		if ph, ok := t.spine[i].(*Phrase); ok && pred(ph) {
			return ph
		}
	}

	return nil
}

// Clone returns an independent traverser at the same position.
func (t *Traverser) Clone() *Traverser {
	spine := make([]Node, len(t.spine))
	copy(spine, t.spine)

	return &Traverser{root: t.root, spine: spine, node: t.node}
}
