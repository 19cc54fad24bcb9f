package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	orderio "github.com/matzehuels/tarper/pkg/io"
	"github.com/matzehuels/tarper/pkg/pipeline"
	"github.com/matzehuels/tarper/pkg/strategy"
)

// baselineStrategy is the strategy every other result is compared against.
const baselineStrategy = "default"

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		flags runFlags
		names []string
	)

	cmd := &cobra.Command{
		Use:   "compare <source-dir>",
		Short: "Run several strategies and tabulate their archive sizes",
		Long: `Run several strategies over the same directory and print a table with the
compressed size each one reached, relative to the scan order baseline.

Without --strategies every strategy runs. The baseline is always included.`,
		Example: `  tarper compare ./src -S mcts,hillclimb,size -n 2000`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := compareCatalog(strategy.Default(), names)
			if err != nil {
				return err
			}
			return c.compare(cmd.Context(), catalog, flags.options(c, args[0]), flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&names, "strategies", "S", nil, "comma-separated strategies to compare (default all)")
	_ = cmd.RegisterFlagCompletionFunc("strategies", completeStrategies)

	return cmd
}

// compareCatalog returns the named strategies of full, baseline first. An
// empty names list selects every strategy.
func compareCatalog(full *strategy.Catalog, names []string) (*strategy.Catalog, error) {
	if len(names) == 0 {
		return full, nil
	}
	if !slices.Contains(names, baselineStrategy) {
		names = append([]string{baselineStrategy}, names...)
	}
	var picked []strategy.Strategy
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		s, err := full.Get(n)
		if err != nil {
			return nil, err
		}
		picked = append(picked, s)
	}
	return strategy.NewCatalog(picked...), nil
}

func (c *CLI) compare(ctx context.Context, catalog *strategy.Catalog, opts pipeline.Options, flags runFlags) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, cc, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()
	runner.Catalog = catalog

	prog := newProgress(c.Logger)
	results, runErr := runner.ExecuteAll(ctx, opts)
	if len(results) == 0 {
		return runErr
	}
	prog.done(fmt.Sprintf("Compared %d strategies", len(results)))

	fmt.Println(renderComparison(results))
	if flags.save != "" {
		saved := make([]orderio.Ordering, len(results))
		for i, res := range results {
			saved[i] = orderio.FromResult(opts, res)
		}
		if err := orderio.ExportAllJSON(saved, flags.save); err != nil {
			return err
		}
		printFile(flags.save)
	}
	if runErr != nil {
		printWarning("Some strategies failed")
		reportStrategyError(runErr)
		return runErr
	}
	return nil
}

// renderComparison builds the results table, cheapest first.
func renderComparison(results []*pipeline.Result) string {
	var baseline int64
	for _, r := range results {
		if r.Strategy == baselineStrategy && r.Measured {
			baseline = r.Cost
		}
	}

	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b *pipeline.Result) int {
		switch {
		case a.Measured != b.Measured:
			if a.Measured {
				return -1
			}
			return 1
		case a.Cost < b.Cost:
			return -1
		case a.Cost > b.Cost:
			return 1
		}
		return 0
	})

	rows := make([][]string, len(sorted))
	for i, r := range sorted {
		size, saving := "—", "—"
		if r.Measured {
			size = humanize.Comma(r.Cost)
			saving = formatSaving(r.Cost, baseline)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			r.Strategy,
			size,
			saving,
			humanize.Comma(int64(r.Stats.Evaluations)),
			r.Stats.Duration.Round(time.Millisecond).String(),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Strategy", "Bytes", "vs baseline", "Evaluations", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 0 || col == 5:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
