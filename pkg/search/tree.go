package search

import (
	"math/rand/v2"

	"github.com/matzehuels/tarper/pkg/errors"
)

// Tree is the prefix tree of evaluated orderings for one search run.
//
// The zero value is not usable; use [NewTree].
type Tree struct {
	root        *Node
	rng         *rand.Rand
	sampleOrder map[string]int
}

// NewTree creates an empty tree that draws all random decisions from rng.
// A nil rng is replaced by NewRand(0).
func NewTree(rng *rand.Rand) *Tree {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Tree{root: newNode(nil, ""), rng: rng}
}

// Root returns the root node, which represents the empty prefix.
func (t *Tree) Root() *Node { return t.root }

// Best returns the lowest cost recorded anywhere in the tree and whether any
// cost has been recorded yet.
func (t *Tree) Best() (int64, bool) { return t.root.best, t.root.recorded }

// Update records one evaluated ordering.
//
// The cost is folded into the root and into every node along path; missing
// nodes are created on the way. After the call every node on the path
// satisfies Best <= cost <= Worst. It reports whether the cost lowered the
// tree-wide best.
//
// Update fails with INVALID_INPUT when path repeats an identifier, contains an
// empty identifier or when cost is negative; the tree is left untouched.
func (t *Tree) Update(path []string, cost int64) (bool, error) {
	if cost < 0 {
		return false, errors.New(errors.ErrCodeInvalidInput, "negative cost %d", cost)
	}
	seen := make(map[string]struct{}, len(path))
	for _, key := range path {
		if key == "" {
			return false, errors.New(errors.ErrCodeInvalidInput, "path contains an empty identifier")
		}
		if _, dup := seen[key]; dup {
			return false, errors.New(errors.ErrCodeInvalidInput, "path repeats %q", key)
		}
		seen[key] = struct{}{}
	}

	improved := t.root.observe(cost)
	cur := t.root
	for _, key := range path {
		cur = cur.childOrInsert(key)
		cur.observe(cost)
	}
	return improved, nil
}

// BestChild returns a child of n whose Best equals n.Best, chosen uniformly
// at random among ties. It returns nil when n has no such child.
func (t *Tree) BestChild(n *Node) *Node {
	if n.IsLeaf() || !n.recorded {
		return nil
	}
	var ties []*Node
	for _, c := range n.Children() {
		if c.recorded && c.best == n.best {
			ties = append(ties, c)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	return ties[t.rng.IntN(len(ties))]
}

// BestPath descends from the root along [Tree.BestChild] until no child
// qualifies and returns the prefix reached. Ties are broken randomly at each
// level, so repeated calls may return different orderings of equal cost.
func (t *Tree) BestPath() []string {
	cur := t.root
	for {
		next := t.BestChild(cur)
		if next == nil {
			return cur.Path()
		}
		cur = next
	}
}

// SetSampleOrder stores the reference ordering used by [Tree.SampleRanks].
// Only the first call has an effect. The search never reads it.
func (t *Tree) SetSampleOrder(files []string) {
	if t.sampleOrder != nil {
		return
	}
	t.sampleOrder = make(map[string]int, len(files))
	for i, f := range files {
		t.sampleOrder[f] = i
	}
}

// SampleRanks maps path onto positions in the sample ordering, which makes
// evaluated orderings easy to compare in logs. Unknown entries map to -1.
func (t *Tree) SampleRanks(path []string) []int {
	ranks := make([]int, len(path))
	for i, f := range path {
		r, ok := t.sampleOrder[f]
		if !ok {
			r = -1
		}
		ranks[i] = r
	}
	return ranks
}

// Size returns the number of leaves, i.e. distinct complete prefixes kept.
func (t *Tree) Size() int {
	if t.root.IsLeaf() {
		return 0
	}
	return t.root.countLeaves()
}

// NodeCount returns the number of nodes, root included.
func (t *Tree) NodeCount() int { return t.root.countNodes() }

// Depth returns the length of the longest stored prefix.
func (t *Tree) Depth() int { return t.root.maxDepth() }
