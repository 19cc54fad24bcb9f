package strategy

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/oracle"
	"github.com/matzehuels/tarper/pkg/scan"
	"github.com/matzehuels/tarper/pkg/search"
)

// newEnv builds an environment over flat identifiers.
func newEnv(ids []string, o oracle.Oracle, opts Options) *Env {
	files := make([]scan.File, len(ids))
	for i, id := range ids {
		files[i] = scan.File{Dir: ".", Name: id, Path: id}
	}
	return &Env{
		Files:   files,
		Oracle:  o,
		Rand:    search.NewRand(7),
		Logger:  log.New(io.Discard),
		Options: opts,
	}
}

// inversions returns an oracle whose cost is 100 plus 10 per pair out of
// order relative to target, and a pointer to its call count.
func inversions(target []string) (oracle.Oracle, *int) {
	calls := 0
	rank := make(map[string]int, len(target))
	for i, id := range target {
		rank[id] = i
	}
	return oracle.Func(func(_ context.Context, files []string) (int64, error) {
		calls++
		inv := 0
		for i := range files {
			for j := i + 1; j < len(files); j++ {
				if rank[files[i]] > rank[files[j]] {
					inv++
				}
			}
		}
		return int64(100 + 10*inv), nil
	}), &calls
}

// table returns an oracle with fixed costs per ordering and a fallback.
func table(costs map[string]int64, fallback int64) oracle.Oracle {
	return oracle.Func(func(_ context.Context, files []string) (int64, error) {
		if c, ok := costs[strings.Join(files, "")]; ok {
			return c, nil
		}
		return fallback, nil
	})
}

func cost(t *testing.T, o oracle.Oracle, order []string) int64 {
	t.Helper()
	c, err := o.Cost(context.Background(), order)
	require.NoError(t, err)
	return c
}

func TestImproves(t *testing.T) {
	tests := []struct {
		candidate, reference int64
		want                 bool
	}{
		{8, 10, true},
		{9, 10, false},
		{10, 10, false},
		{11, 10, false},
		{0, 2, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, improves(tt.candidate, tt.reference), "%d vs %d", tt.candidate, tt.reference)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, []string{
		"swapping", "swappingwithpermutation", "random", "mcts",
		"permutewithindirectory", "default", "nonnaivesimilarity",
		"naivesimilarity", "nonnaivesimilaritywithswap", "size",
		"binsort", "hillclimb", "counted",
	}, c.Names())

	for _, s := range c.All() {
		require.NotEmpty(t, s.Describe(), s.Name())
	}

	s, err := c.Get("mcts")
	require.NoError(t, err)
	require.True(t, s.Evaluates())

	s, err = c.Get("size")
	require.NoError(t, err)
	require.False(t, s.Evaluates())

	_, err = c.Get("annealing")
	require.True(t, errors.Is(err, errors.ErrCodeInvalidStrategy))
	require.Contains(t, err.Error(), "hillclimb")
}

func TestCatalogRegister(t *testing.T) {
	c := NewCatalog(Identity{})
	require.True(t, errors.Is(c.Register(Identity{}), errors.ErrCodeInvalidStrategy))
	require.True(t, errors.Is(c.Register(badName{}), errors.ErrCodeInvalidStrategy))
	require.Panics(t, func() { NewCatalog(Random{}, Random{}) })
}

type badName struct{ Identity }

func (badName) Name() string { return "Not-Valid" }

func TestRunValidation(t *testing.T) {
	o, _ := inversions([]string{"a", "b"})

	_, err := Run(context.Background(), Swapping{}, newEnv([]string{"a"}, o, Options{}))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = Run(context.Background(), Swapping{}, newEnv([]string{"a", "a"}, o, Options{}))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = Run(context.Background(), Swapping{}, newEnv([]string{"a", "b"}, nil, Options{}))
	require.True(t, errors.Is(err, errors.ErrCodeInternal))

	_, err = Run(context.Background(), Counted{}, newEnv([]string{"a", "b"}, o, Options{Iterations: -1}))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	// static strategies need neither an oracle nor two files
	got, err := Run(context.Background(), Identity{}, newEnv([]string{"only"}, nil, Options{}))
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, got)
}

func TestRunFillsDefaults(t *testing.T) {
	env := &Env{Files: []scan.File{{Path: "a"}}}
	_, err := Run(context.Background(), Identity{}, env)
	require.NoError(t, err)
	require.NotNil(t, env.Rand)
	require.NotNil(t, env.Logger)
	require.NotNil(t, env.Hooks)
	require.Equal(t, DefaultIterations, env.Options.Iterations)
	require.Equal(t, search.DefaultRatio, env.Options.ExplorationRatio)
	require.Equal(t, DefaultRestartProbability, *env.Options.RestartProbability)
}

func TestSetDefaultsKeepsZeroRestartProbability(t *testing.T) {
	zero := 0.0
	o := Options{RestartProbability: &zero}
	o.SetDefaults()
	require.NoError(t, o.Validate())
	require.Zero(t, *o.RestartProbability)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"ratio", func(o *Options) { o.ExplorationRatio = -1 }},
		{"prune count", func(o *Options) { o.PruneCount = -1 }},
		{"prune interval", func(o *Options) { o.PruneInterval = -5 }},
		{"samples", func(o *Options) { o.InitSamples = -1 }},
		{"candidates", func(o *Options) { o.Candidates = -1 }},
		{"restart", func(o *Options) { p := 2.0; o.RestartProbability = &p }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Options
			o.SetDefaults()
			require.NoError(t, o.Validate())
			tt.mutate(&o)
			require.True(t, errors.Is(o.Validate(), errors.ErrCodeInvalidConfig))
		})
	}
}

func isPermutation(t *testing.T, want, got []string) {
	t.Helper()
	require.NoError(t, errors.ValidatePermutation(want, got))
	require.Equal(t, len(want), len(slices.Compact(slices.Sorted(slices.Values(got)))))
}
