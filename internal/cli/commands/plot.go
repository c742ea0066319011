package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PlotOptions holds options for the plot command.
type PlotOptions struct {
	X     string
	Y     string
	Table string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	opts := &PlotOptions{}

	cmd := &cobra.Command{
		Use:   "plot <path>",
		Short: "Draw two columns as a PNG",
		Long: `Draw column Y against column X and write <X>_to_<Y>.png to the plots
directory.

Two numeric columns give a line chart, a text X column gives vertical bars
and a text Y column gives horizontal bars.`,
		Example: `  tipy plot sales.csv --x month --y revenue
  tipy plot shop.db --table orders --x customer --y total --plots-dir out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			d, err := c.Open(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeSession(d, c.Logger)

			if err := selectTable(d, opts.Table); err != nil {
				return err
			}
			path, kind, err := d.Plot(opts.X, opts.Y)
			if err != nil {
				return describe(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.X, "x", "", "Column for the X axis")
	cmd.Flags().StringVar(&opts.Y, "y", "", "Column for the Y axis")
	cmd.Flags().StringVar(&opts.Table, "table", "", "Table to plot (default: the first)")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}
