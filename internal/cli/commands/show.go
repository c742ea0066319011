package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/cli/config"
	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/dispatch"
	"github.com/tipy-dev/tipy/internal/table"
)

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Table  string
	Format string
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print the tables of a CSV file or database",
		Long: `Print tables without starting the editor.

Cells are shown as the editor shows them: NULL is empty and numbers use
their shortest form. The format defaults to the configured output.`,
		Example: `  tipy show people.csv
  tipy show shop.db --table orders
  tipy show shop.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Only print this table")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runShow(cmd *cobra.Command, path string, opts *ShowOptions) error {
	c := NewCommandContext(cmd)
	format, err := outputFormat(c, opts.Format)
	if err != nil {
		return err
	}

	d, err := c.Open(cmd, path)
	if err != nil {
		return err
	}
	defer closeSession(d, c.Logger)

	var tables []*table.Table
	if opts.Table != "" {
		if err := selectTable(d, opts.Table); err != nil {
			return err
		}
		tables = append(tables, d.Session().ActiveTab().Table())
	} else {
		for _, t := range d.Session().Tabs {
			tables = append(tables, t.Table())
		}
	}
	return renderTables(cmd.OutOrStdout(), tables, format, delimiter(c))
}

// outputFormat resolves the --format flag against the configured output.
func outputFormat(c *CommandContext, flag string) (string, error) {
	format := flag
	if format == "" {
		format = c.Cfg.OutputFormat
	}
	if format == "markdown" {
		format = "md"
	}
	if !slices.Contains(config.OutputFormats, format) {
		return "", fmt.Errorf("unknown output format %q (want one of %v)", format, config.OutputFormats)
	}
	return format, nil
}

func delimiter(c *CommandContext) rune {
	r, err := csvio.ParseDelimiter(c.Cfg.Delimiter)
	if err != nil {
		return ','
	}
	return r
}

func printActive(cmd *cobra.Command, d *dispatch.Dispatcher, format string, delim rune) error {
	return renderTables(cmd.OutOrStdout(), []*table.Table{d.Session().ActiveTab().Table()}, format, delim)
}
