package search

// Prune bounds the width of the tree starting at the root.
// See [Tree.PruneAt].
func (t *Tree) Prune(count, depth int) int {
	return t.PruneAt(t.root, count, depth)
}

// PruneAt keeps only the cheapest children of n and recurses into them.
//
// The boundary is the count-th smallest Best among the children; every child
// with Best <= boundary is retained, so ties at the boundary may keep more
// than count children. Retained children are then visited in ascending
// (Best, key) order. Before each visit, while depth <= 0, count is decremented
// by one; the decrement accumulates across siblings. Each child is pruned with
// max(count, 1) and depth-1, so shallow levels keep the full width and deeper
// levels narrow down to a single branch.
//
// A non-positive count leaves n untouched. PruneAt returns the number of
// nodes removed.
func (t *Tree) PruneAt(n *Node, count, depth int) int {
	if count <= 0 || n.IsLeaf() {
		return 0
	}

	kids := n.byBest()
	boundary := kids[min(count, len(kids))-1].best

	removed := 0
	kept := make([]*Node, 0, min(count, len(kids)))
	for _, c := range kids {
		if c.best <= boundary {
			kept = append(kept, c)
			continue
		}
		removed += c.countNodes()
		delete(n.children, c.key)
		c.parent = nil
	}

	for _, c := range kept {
		if depth <= 0 {
			count--
		}
		removed += t.PruneAt(c, max(count, 1), depth-1)
	}
	return removed
}
