package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tarper/pkg/errors"
)

// fourPaths is the fixture used by several tests: a single root child "a"
// with four complete orderings of cost 1..4 below it.
func fourPaths(t *testing.T, seed uint64) *Tree {
	t.Helper()
	tree := NewTree(NewRand(seed))
	for _, u := range []struct {
		path []string
		cost int64
	}{
		{[]string{"a", "b", "c", "d"}, 1},
		{[]string{"a", "b", "d", "c"}, 2},
		{[]string{"a", "c", "b", "d"}, 3},
		{[]string{"a", "c", "d", "b"}, 4},
	} {
		_, err := tree.Update(u.path, u.cost)
		require.NoError(t, err)
	}
	return tree
}

func mustUpdate(t *testing.T, tree *Tree, path []string, cost int64) {
	t.Helper()
	_, err := tree.Update(path, cost)
	require.NoError(t, err)
}

func TestUpdateDepthOne(t *testing.T) {
	tree := NewTree(NewRand(1))
	mustUpdate(t, tree, []string{"a"}, 7)
	mustUpdate(t, tree, []string{"b"}, 5)

	root := tree.Root()
	require.True(t, root.Recorded())
	require.EqualValues(t, 5, root.Best())
	require.EqualValues(t, 7, root.Worst())
}

func TestUpdateMaxMin(t *testing.T) {
	tree := NewTree(NewRand(1))
	mustUpdate(t, tree, []string{"a"}, 7)
	mustUpdate(t, tree, []string{"b"}, 5)
	mustUpdate(t, tree, []string{"c"}, 9)
	mustUpdate(t, tree, []string{"d"}, 4)

	root := tree.Root()
	require.EqualValues(t, 4, root.Best())
	require.EqualValues(t, 9, root.Worst())

	a := root.Child("a")
	require.NotNil(t, a)
	require.EqualValues(t, 7, a.Best())
	require.EqualValues(t, 7, a.Worst())

	b := root.Child("b")
	require.EqualValues(t, 5, b.Best())
	require.EqualValues(t, 5, b.Worst())
}

func TestUpdateReportsImprovement(t *testing.T) {
	tree := NewTree(NewRand(1))

	improved, err := tree.Update([]string{"a", "b"}, 10)
	require.NoError(t, err)
	require.True(t, improved, "first cost is always an improvement")

	improved, err = tree.Update([]string{"b", "a"}, 12)
	require.NoError(t, err)
	require.False(t, improved)

	improved, err = tree.Update([]string{"b", "a"}, 9)
	require.NoError(t, err)
	require.True(t, improved)

	best, ok := tree.Best()
	require.True(t, ok)
	require.EqualValues(t, 9, best)
}

func TestUpdateBoundsTighten(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}
	rng := NewRand(7)
	tree := NewTree(NewRand(7))

	type bounds struct{ best, worst int64 }
	seen := map[*Node]bounds{}

	for range 300 {
		path := append([]string(nil), files...)
		rng.Shuffle(len(path), func(i, j int) { path[i], path[j] = path[j], path[i] })
		path = path[:1+rng.IntN(len(path))]
		cost := int64(rng.IntN(1000))

		mustUpdate(t, tree, path, cost)

		nodes := []*Node{tree.Root()}
		for cur, i := tree.Root(), 0; i < len(path); i++ {
			cur = cur.Child(path[i])
			require.NotNil(t, cur)
			nodes = append(nodes, cur)
		}
		for _, n := range nodes {
			require.LessOrEqual(t, n.Best(), cost)
			require.GreaterOrEqual(t, n.Worst(), cost)
			require.LessOrEqual(t, n.Best(), n.Worst())
			if prev, ok := seen[n]; ok {
				require.LessOrEqual(t, n.Best(), prev.best, "best never loosens")
				require.GreaterOrEqual(t, n.Worst(), prev.worst, "worst never loosens")
			}
			seen[n] = bounds{n.Best(), n.Worst()}
		}
	}
}

func TestUpdateRejectsInvalidPaths(t *testing.T) {
	tests := []struct {
		name string
		path []string
		cost int64
	}{
		{"duplicate", []string{"a", "b", "a"}, 1},
		{"empty key", []string{"a", ""}, 1},
		{"negative cost", []string{"a", "b"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(NewRand(1))
			_, err := tree.Update(tt.path, tt.cost)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
			require.False(t, tree.Root().Recorded(), "rejected update must not touch the tree")
			require.True(t, tree.Root().IsLeaf())
		})
	}
}

func TestPath(t *testing.T) {
	tree := fourPaths(t, 1)
	n := tree.Root().Child("a").Child("c").Child("d").Child("b")
	require.NotNil(t, n)
	require.Equal(t, []string{"a", "c", "d", "b"}, n.Path())
	require.Equal(t, 4, n.Depth())
	require.Empty(t, tree.Root().Path())
}

func TestBestChild(t *testing.T) {
	tree := NewTree(NewRand(1))
	mustUpdate(t, tree, []string{"a", "e"}, 7)
	mustUpdate(t, tree, []string{"b", "f"}, 5)
	mustUpdate(t, tree, []string{"c", "g"}, 9)
	mustUpdate(t, tree, []string{"d", "h"}, 4)

	best := tree.BestChild(tree.Root())
	require.NotNil(t, best)
	require.Equal(t, []string{"d"}, best.Path())
	require.Equal(t, []string{"h"}, best.Keys())
}

func TestBestChildMatchesParentBest(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e", "f"}
	rng := NewRand(3)
	tree := NewTree(NewRand(3))
	for range 200 {
		path := append([]string(nil), files...)
		rng.Shuffle(len(path), func(i, j int) { path[i], path[j] = path[j], path[i] })
		mustUpdate(t, tree, path, int64(100+rng.IntN(50)))
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			require.Nil(t, tree.BestChild(n))
			return
		}
		for range 5 {
			c := tree.BestChild(n)
			require.NotNil(t, c)
			require.Equal(t, n.Best(), c.Best())
			require.Same(t, n, c.Parent())
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree.Root())
}

func TestBestChildEmptyTree(t *testing.T) {
	tree := NewTree(NewRand(1))
	require.Nil(t, tree.BestChild(tree.Root()))
	require.Empty(t, tree.BestPath())
}

func TestBestPath(t *testing.T) {
	tree := fourPaths(t, 1)
	require.Equal(t, []string{"a", "b", "c", "d"}, tree.BestPath())
}

func TestBestPathBreaksTiesRandomly(t *testing.T) {
	tree := NewTree(NewRand(11))
	mustUpdate(t, tree, []string{"a", "b"}, 3)
	mustUpdate(t, tree, []string{"b", "a"}, 3)
	mustUpdate(t, tree, []string{"c", "a"}, 8)

	reached := map[string]int{}
	for range 200 {
		path := tree.BestPath()
		require.Len(t, path, 2)
		reached[path[0]+path[1]]++
	}
	require.Positive(t, reached["ab"])
	require.Positive(t, reached["ba"])
	require.Zero(t, reached["ca"])
}

func TestSampleRanks(t *testing.T) {
	tree := NewTree(NewRand(1))
	tree.SetSampleOrder([]string{"x", "y", "z"})
	tree.SetSampleOrder([]string{"z", "y", "x"}) // ignored

	require.Equal(t, []int{2, 0, 1}, tree.SampleRanks([]string{"z", "x", "y"}))
	require.Equal(t, []int{-1}, tree.SampleRanks([]string{"w"}))
}

func TestSizeAndCounts(t *testing.T) {
	require.Zero(t, NewTree(nil).Size())

	tree := fourPaths(t, 1)
	require.Equal(t, 4, tree.Size())
	require.Equal(t, 12, tree.NodeCount())
	require.Equal(t, 4, tree.Depth())
}
