package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tarper/pkg/buildinfo"
	orderio "github.com/matzehuels/tarper/pkg/io"
	"github.com/matzehuels/tarper/pkg/pipeline"
	"github.com/matzehuels/tarper/pkg/strategy"
)

// runFlags holds the flags shared by run and compare.
type runFlags struct {
	opts    pipeline.Options
	seed    uint64
	restart float64
	noCache bool
	show    int
	save    string

	flags *pflag.FlagSet
}

// register binds the search flags to cmd. Zero values mean "use the config
// file or the built-in default", except for --seed and --restart-probability
// where zero is meaningful and only an explicit flag counts.
func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	f.flags = fl
	fl.StringVarP(&f.opts.Target, "target", "o", "", "archive path prefix; writes <target>_<strategy>.tar.<scheme>")
	fl.StringVar(&f.opts.Scheme, "scheme", "", "compression scheme: gz or zst (default gz)")
	fl.Uint64Var(&f.seed, "seed", 0, "random seed (default 42)")
	fl.IntVarP(&f.opts.Iterations, "iterations", "n", 0, "evaluation budget for counted, hillclimb and mcts (default 1000)")
	fl.Float64Var(&f.opts.ExplorationRatio, "ratio", 0, "tree search exploration ratio (default 5)")
	fl.IntVar(&f.opts.PruneCount, "prune-count", 0, "children kept per node when pruning (default 5)")
	fl.IntVar(&f.opts.PruneInterval, "prune-interval", 0, "iterations between prunes (default 100)")
	fl.IntVar(&f.opts.InitSamples, "init-samples", 0, "random orderings seeding the tree (default 512)")
	fl.IntVar(&f.opts.InitSwaps, "init-swaps", 0, "swaps per seeding ordering (default 5)")
	fl.BoolVar(&f.opts.Mutate, "mutate", false, "let tree search mix in mutated orderings")
	fl.IntVar(&f.opts.Candidates, "candidates", 0, "hillclimb neighbours per round (default 4)")
	fl.Float64Var(&f.restart, "restart-probability", 0, "hillclimb restart probability, 0 disables restarts (default 0.05)")
	fl.StringVar(&f.opts.Binsort, "binsort", "", "binsort executable (default binsort on PATH)")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the cost cache")
	fl.StringVar(&f.save, "save", "", "write the resulting ordering(s) as JSON to this file")
}

// options resolves the flags against the config file for source.
func (f *runFlags) options(c *CLI, source string) pipeline.Options {
	opts := f.opts
	opts.Source = source
	if f.flags != nil && f.flags.Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	if f.flags != nil && f.flags.Changed("restart-probability") {
		restart := f.restart
		opts.RestartProbability = &restart
	}
	c.Config.apply(&opts)
	return opts
}

// runCommand creates the run command for searching one directory.
func (c *CLI) runCommand() *cobra.Command {
	var (
		flags runFlags
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "run <source-dir>",
		Short: "Search for the file ordering with the smallest archive",
		Long: `Run one ordering strategy over the files of a directory and report the
compressed size of the best ordering found.

Without --strategy, tarper asks which strategy to run when attached to a
terminal and uses mcts otherwise. --all runs every strategy in turn.`,
		Example: `  # Tree search with a larger budget, writing out/src_mcts.tar.zst
  tarper run ./src -o out/src --scheme zst -n 5000

  # Compare against the scan order baseline
  tarper run ./src -s default

  # Every strategy, one archive each
  tarper run ./src --all -o out/src`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := flags.options(c, args[0])

			if all {
				return c.runAll(ctx, opts, flags)
			}
			if opts.Strategy == "" && isInteractive() {
				name, err := pickStrategy(strategy.Default())
				if err != nil {
					return err
				}
				if name == "" {
					printInfo("Cancelled")
					return nil
				}
				opts.Strategy = name
			}
			return c.runOne(ctx, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.opts.Strategy, "strategy", "s", "", "strategy to run (see 'tarper strategies')")
	cmd.Flags().BoolVar(&all, "all", false, "run every strategy in registration order")
	cmd.Flags().IntVar(&flags.show, "show", 0, "print the first N entries of the ordering (-1 for all)")
	cmd.MarkFlagsMutuallyExclusive("strategy", "all")
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategies)

	return cmd
}

func (c *CLI) runOne(ctx context.Context, opts pipeline.Options, flags runFlags) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, cc, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	c.Logger.Debug("Starting", "agent", buildinfo.UserAgent(), "source", opts.Source)
	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		reportStrategyError(err)
		return err
	}
	prog.done(fmt.Sprintf("Searched %d files", res.Stats.Files))

	printResult(res)
	if flags.show != 0 {
		printOrder(res.Order, max(flags.show, 0))
	}
	if flags.save != "" {
		if err := orderio.ExportJSON(orderio.FromResult(opts, res), flags.save); err != nil {
			return err
		}
		printFile(flags.save)
	}
	if res.Archive == "" {
		printNextStep("Write the archive", fmt.Sprintf("tarper run %s -s %s -o <prefix>", opts.Source, res.Strategy))
	}
	return nil
}

func (c *CLI) runAll(ctx context.Context, opts pipeline.Options, flags runFlags) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, cc, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	prog := newProgress(c.Logger)
	results, err := runner.ExecuteAll(ctx, opts)
	saved := make([]orderio.Ordering, len(results))
	for i, res := range results {
		printResult(res)
		saved[i] = orderio.FromResult(opts, res)
	}
	if flags.save != "" && len(saved) > 0 {
		if err := orderio.ExportAllJSON(saved, flags.save); err != nil {
			return err
		}
		printFile(flags.save)
	}
	if err != nil {
		reportStrategyError(err)
		return err
	}
	prog.done(fmt.Sprintf("Ran %d strategies", len(results)))
	return nil
}

// reportStrategyError prints the best ordering a failed strategy had found,
// so a long search is not lost entirely.
func reportStrategyError(err error) {
	var serr *pipeline.StrategyError
	if !errors.As(err, &serr) || !serr.HasBest {
		return
	}
	printWarning("%s failed after finding %s", serr.Strategy, formatCost(serr.Cost, true))
	printOrder(serr.Best, 20)
}

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}
