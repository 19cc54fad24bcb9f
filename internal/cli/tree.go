package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/search"
)

// treeSample is one "a,b,c=cost" argument.
type treeSample struct {
	path []string
	cost int64
}

// parseTreeSample parses "a,b,c=cost".
func parseTreeSample(s string) (treeSample, error) {
	files, costStr, ok := strings.Cut(s, "=")
	if !ok {
		return treeSample{}, errors.New(errors.ErrCodeInvalidInput, "%q: expected files=cost", s)
	}
	cost, err := strconv.ParseInt(strings.TrimSpace(costStr), 10, 64)
	if err != nil {
		return treeSample{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%q: bad cost", s)
	}
	var path []string
	for _, f := range strings.Split(files, ",") {
		if f = strings.TrimSpace(f); f != "" {
			path = append(path, f)
		}
	}
	if len(path) == 0 {
		return treeSample{}, errors.New(errors.ErrCodeInvalidInput, "%q: no files", s)
	}
	return treeSample{path: path, cost: cost}, nil
}

// treeCommand creates the tree debug command.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		pruneCount int
		pruneDepth int
		maxDepth   int
		seed       uint64
		dot        bool
		svgOut     string
	)

	cmd := &cobra.Command{
		Use:   "tree <files=cost>...",
		Short: "Build, prune and render a search tree (debug)",
		Long: `Build a search tree from evaluated orderings given as comma-separated file
lists with their cost, optionally prune it, and print the best path.

This is a debugging tool for the tree search: it shows how costs propagate
into the [best, worst] bounds of every prefix and what pruning keeps.`,
		Example: `  tarper tree a,b,c,d=10 a,b,d,c=12 b,a,c,d=11 --prune 1
  tarper tree a,b,c=5 a,c,b=7 --svg tree.svg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := search.NewTree(search.NewRand(seed))
			for _, a := range args {
				s, err := parseTreeSample(a)
				if err != nil {
					return err
				}
				if _, err := t.Update(s.path, s.cost); err != nil {
					return fmt.Errorf("record %q: %w", a, err)
				}
			}

			if pruneCount > 0 {
				before := t.NodeCount()
				removed := t.Prune(pruneCount, pruneDepth)
				loggerFromContext(cmd.Context()).Debug("Pruned tree", "before", before, "removed", removed)
				printInfo("Pruned %d of %d nodes", removed, before)
			}

			if dot {
				fmt.Print(t.ToDOT(search.DOTOptions{MaxDepth: maxDepth}))
				return nil
			}

			best, _ := t.Best()
			printKeyValue("best path", strings.Join(t.BestPath(), " "+iconArrow+" "))
			printKeyValue("best cost", strconv.FormatInt(best, 10))
			printKeyValue("leaves", strconv.Itoa(t.Size()))
			printKeyValue("nodes", strconv.Itoa(t.NodeCount()))
			printKeyValue("depth", strconv.Itoa(t.Depth()))

			if svgOut != "" {
				var spin *spinner
				if isInteractive() {
					spin = newSpinner(cmd.Context(), os.Stderr, "Rendering "+svgOut)
					spin.Start()
				}
				svg, err := t.RenderSVG(cmd.Context(), search.DOTOptions{MaxDepth: maxDepth})
				if err != nil {
					if spin != nil {
						spin.StopWithError("Render failed")
					}
					return err
				}
				if spin != nil {
					spin.Stop()
				}
				if err := os.WriteFile(svgOut, svg, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", svgOut, err)
				}
				printFile(svgOut)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pruneCount, "prune", 0, "prune to this many children per node (0 = no pruning)")
	cmd.Flags().IntVar(&pruneDepth, "prune-depth", 0, "levels that keep the full prune width")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit rendered levels (0 = all)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for tie breaking")
	cmd.Flags().BoolVar(&dot, "dot", false, "print Graphviz DOT instead of a summary")
	cmd.Flags().StringVar(&svgOut, "svg", "", "render the tree to this SVG file")

	return cmd
}
