package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tarper/pkg/pipeline"
	"github.com/matzehuels/tarper/pkg/strategy"
)

// strategiesCommand lists the strategy catalog.
func (c *CLI) strategiesCommand() *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:     "strategies",
		Aliases: []string{"ls"},
		Short:   "List the available ordering strategies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := strategy.Default()
			if namesOnly {
				for _, n := range catalog.Names() {
					fmt.Println(n)
				}
				return nil
			}
			nameStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(30)
			for _, s := range catalog.All() {
				name := s.Name()
				if name == pipeline.DefaultStrategy {
					name += " *"
				}
				kind := "static"
				if s.Evaluates() {
					kind = "search"
				}
				fmt.Println(nameStyle.Render(name) + StyleValue.Render(s.Describe()) + " " + StyleDim.Render("("+kind+")"))
			}
			fmt.Println()
			printDetail("* used when --strategy is not given")
			return nil
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "names", false, "print names only, one per line")
	return cmd
}

// completeStrategies offers strategy names for shell completion.
func completeStrategies(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return strategy.Default().Names(), cobra.ShellCompDirectiveNoFileComp
}
