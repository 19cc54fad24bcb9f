package strategy

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/scan"
	"github.com/matzehuels/tarper/pkg/similarity"
)

// Identity keeps the scan order.
type Identity struct{}

func (Identity) Name() string     { return "default" }
func (Identity) Describe() string { return "scan order, the baseline every search starts from" }
func (Identity) Evaluates() bool  { return false }

func (Identity) Order(_ context.Context, env *Env) ([]string, error) {
	return env.Paths(), nil
}

// BySize orders files by ascending size.
type BySize struct{}

func (BySize) Name() string     { return "size" }
func (BySize) Describe() string { return "ascending file size" }
func (BySize) Evaluates() bool  { return false }

func (BySize) Order(_ context.Context, env *Env) ([]string, error) {
	return scan.Paths(scan.BySize(env.Files)), nil
}

// Random shuffles all files.
type Random struct{}

func (Random) Name() string     { return "random" }
func (Random) Describe() string { return "uniform random permutation" }
func (Random) Evaluates() bool  { return false }

func (Random) Order(_ context.Context, env *Env) ([]string, error) {
	paths := env.Paths()
	env.Rand.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })
	return paths, nil
}

// PermuteWithinDirectory shuffles each directory's files and keeps the
// directories in scan order.
type PermuteWithinDirectory struct{}

func (PermuteWithinDirectory) Name() string     { return "permutewithindirectory" }
func (PermuteWithinDirectory) Describe() string { return "random permutation within each directory" }
func (PermuteWithinDirectory) Evaluates() bool  { return false }

func (PermuteWithinDirectory) Order(_ context.Context, env *Env) ([]string, error) {
	return permuteWithinDirectory(env), nil
}

func permuteWithinDirectory(env *Env) []string {
	out := make([]string, 0, len(env.Files))
	for _, group := range scan.GroupByDir(env.Files) {
		paths := scan.Paths(group)
		env.Rand.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })
		out = append(out, paths...)
	}
	return out
}

// NaiveSimilarity sorts files by their token frequency profile, so files
// dominated by the same tokens end up next to each other.
type NaiveSimilarity struct{}

func (NaiveSimilarity) Name() string     { return "naivesimilarity" }
func (NaiveSimilarity) Describe() string { return "stable sort by most common tokens" }
func (NaiveSimilarity) Evaluates() bool  { return false }

func (NaiveSimilarity) Order(_ context.Context, env *Env) ([]string, error) {
	paths := env.Paths()
	counts, err := tokenize(env.Root, paths, 0)
	if err != nil {
		return nil, err
	}
	return similarity.OrderByProfile(paths, counts), nil
}

// NonNaiveSimilarity chains files greedily by pairwise token overlap,
// starting from the most similar pair.
type NonNaiveSimilarity struct{}

func (NonNaiveSimilarity) Name() string     { return "nonnaivesimilarity" }
func (NonNaiveSimilarity) Describe() string { return "greedy nearest-neighbour chain by token overlap" }
func (NonNaiveSimilarity) Evaluates() bool  { return false }

func (NonNaiveSimilarity) Order(_ context.Context, env *Env) ([]string, error) {
	return similarityChain(env)
}

func tokenize(root string, paths []string, minLen int) ([]similarity.Counts, error) {
	counts := make([]similarity.Counts, len(paths))
	for i, p := range paths {
		c, err := similarity.TokenizeFile(filepath.Join(root, filepath.FromSlash(p)), minLen)
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tokenize %s", p)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "tokenize %s", p)
		}
		counts[i] = c
	}
	return counts, nil
}
