package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tarper/pkg/errors"
	orderio "github.com/matzehuels/tarper/pkg/io"
	"github.com/matzehuels/tarper/pkg/oracle"
	"github.com/matzehuels/tarper/pkg/pipeline"
	"github.com/matzehuels/tarper/pkg/scan"
)

// packCommand creates the pack command, which writes an archive from a
// saved ordering without searching again.
func (c *CLI) packCommand() *cobra.Command {
	var (
		orderPath string
		output    string
		scheme    string
	)

	cmd := &cobra.Command{
		Use:   "pack <source-dir>",
		Short: "Write an archive using an ordering saved by run --save",
		Long: `Write the archive of a directory in the order stored by 'tarper run --save'.

The directory must still contain exactly the files of the saved ordering.
When the saved file holds several orderings (from --all or compare), the
cheapest one is used.`,
		Example: `  tarper run ./src -n 5000 --save order.json
  tarper pack ./src --order order.json -o src.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source := args[0]

			o, err := orderio.ImportJSON(orderPath)
			if err != nil {
				return err
			}
			files, err := scan.Walk(source)
			if err != nil {
				return err
			}
			if err := errors.ValidatePermutation(scan.Paths(files), o.Files); err != nil {
				return fmt.Errorf("%s no longer matches %s: %w", orderPath, source, err)
			}

			if scheme == "" {
				scheme = o.Scheme
			}
			if scheme == "" {
				scheme = string(pipeline.DefaultScheme)
			}
			s, err := oracle.ParseScheme(scheme)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Clean(source) + s.Extension()
			}

			prog := newProgress(c.Logger)
			if err := pipeline.WriteArchiveFile(ctx, output, source, o.Files, s); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Packed %d files", len(o.Files)))

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			printSuccess("Wrote %s", humanize.Bytes(uint64(info.Size())))
			printFile(output)
			if o.Measured && s == oracle.Scheme(o.Scheme) && info.Size() != o.Cost {
				printWarning("Size differs from the saved %s; file contents changed since the search", humanize.Comma(o.Cost))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orderPath, "order", "", "ordering JSON written by run --save (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default <source-dir>.tar.<scheme>)")
	cmd.Flags().StringVar(&scheme, "scheme", "", "compression scheme: gz or zst (default: the saved scheme)")
	_ = cmd.MarkFlagRequired("order")

	return cmd
}
