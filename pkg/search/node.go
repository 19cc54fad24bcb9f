package search

import (
	"maps"
	"slices"
)

// Node is one ordering prefix in a [Tree].
//
// A node owns its children; the parent pointer is a plain back reference used
// to reconstruct the prefix. Nodes are created only by [Tree.Update] and
// removed only by [Tree.Prune].
type Node struct {
	key      string
	parent   *Node
	children map[string]*Node

	best, worst int64
	recorded    bool
}

func newNode(parent *Node, key string) *Node {
	return &Node{key: key, parent: parent}
}

// Key returns the file identifier appended at this node. It is empty for the root.
func (n *Node) Key() string { return n.key }

// Parent returns the node whose child this is, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Best returns the lowest cost recorded through this node.
// It is meaningless until [Node.Recorded] reports true.
func (n *Node) Best() int64 { return n.best }

// Worst returns the highest cost recorded through this node.
func (n *Node) Worst() int64 { return n.worst }

// Recorded reports whether at least one cost has been folded into the node.
func (n *Node) Recorded() bool { return n.recorded }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Child returns the child for key, or nil. It never creates a node.
func (n *Node) Child(key string) *Node {
	return n.children[key]
}

// Keys returns the child keys in ascending order.
func (n *Node) Keys() []string {
	return slices.Sorted(maps.Keys(n.children))
}

// Children returns the children ordered by key.
func (n *Node) Children() []*Node {
	keys := n.Keys()
	out := make([]*Node, len(keys))
	for i, k := range keys {
		out[i] = n.children[k]
	}
	return out
}

// Path returns the ordering prefix represented by n, root first.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		path = append(path, cur.key)
	}
	slices.Reverse(path)
	return path
}

// Depth returns the number of edges between n and the root.
func (n *Node) Depth() int {
	d := 0
	for cur := n; cur.parent != nil; cur = cur.parent {
		d++
	}
	return d
}

// observe folds cost into the node's bounds and reports whether it lowered Best.
func (n *Node) observe(cost int64) bool {
	if !n.recorded {
		n.best, n.worst, n.recorded = cost, cost, true
		return true
	}
	if cost > n.worst {
		n.worst = cost
	}
	if cost < n.best {
		n.best = cost
		return true
	}
	return false
}

// childOrInsert is the only place nodes are created.
func (n *Node) childOrInsert(key string) *Node {
	if c, ok := n.children[key]; ok {
		return c
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	c := newNode(n, key)
	n.children[key] = c
	return c
}

// byBest returns the children sorted by ascending Best, ties by key.
func (n *Node) byBest() []*Node {
	kids := n.Children()
	slices.SortStableFunc(kids, func(a, b *Node) int {
		switch {
		case a.best < b.best:
			return -1
		case a.best > b.best:
			return 1
		}
		return 0
	})
	return kids
}

// countNodes returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) countNodes() int {
	total := 1
	for _, c := range n.children {
		total += c.countNodes()
	}
	return total
}

// countLeaves returns the number of leaves below n (1 when n is itself a leaf).
func (n *Node) countLeaves() int {
	if len(n.children) == 0 {
		return 1
	}
	total := 0
	for _, c := range n.children {
		total += c.countLeaves()
	}
	return total
}

func (n *Node) maxDepth() int {
	deepest := 0
	for _, c := range n.children {
		deepest = max(deepest, c.maxDepth()+1)
	}
	return deepest
}
