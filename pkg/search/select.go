package search

import "math"

// DefaultRatio is the exploration ratio used by the tree-search strategy and
// by the second walk of [Tree.CombinedPath].
const DefaultRatio = 5.0

// Weight returns the unnormalized selection weight of child under parent.
//
// When the parent has seen no spread (Best == Worst) every child weighs 1.
// Otherwise:
//
//	quality = (parent.Worst - child.Best) / (parent.Worst - parent.Best)
//	factor  = quality * (1 - 1/ratio)
//	weight  = 1/ratio + factor
//
// quality is 1 for a child that owns the parent's best cost and 0 for one
// whose best equals the parent's worst.
func Weight(parent, child *Node, ratio float64) float64 {
	if parent.best == parent.worst {
		return 1
	}
	quality := float64(parent.worst-child.best) / float64(parent.worst-parent.best)
	factor := quality * (1 - 1/ratio)
	return 1/ratio + factor
}

// ChooseChild samples a child of n with probability proportional to its
// [Weight]. It returns nil when n has no children. Degenerate weights
// (non-positive or non-finite totals) fall back to a uniform draw.
func (t *Tree) ChooseChild(n *Node, ratio float64) *Node {
	kids := n.Children()
	if len(kids) == 0 {
		return nil
	}

	weights := make([]float64, len(kids))
	total := 0.0
	for i, c := range kids {
		weights[i] = Weight(n, c, ratio)
		total += weights[i]
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return kids[t.rng.IntN(len(kids))]
	}

	r := t.rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return kids[i]
		}
		r -= w
	}
	return kids[len(kids)-1]
}

// ChoosePath selects a leaf to extend.
//
// The first forcedDepth levels follow [Tree.BestChild]; if a level has no
// qualifying child the node reached so far is returned. From there the walk
// continues with [Tree.ChooseChild] until a leaf is reached.
func (t *Tree) ChoosePath(ratio float64, forcedDepth int) *Node {
	cur := t.root
	for range max(forcedDepth, 0) {
		next := t.BestChild(cur)
		if next == nil {
			return cur
		}
		cur = next
	}
	for !cur.IsLeaf() {
		cur = t.ChooseChild(cur, ratio)
	}
	return cur
}
