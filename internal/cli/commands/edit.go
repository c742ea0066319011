package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/dispatch"
	"github.com/tipy-dev/tipy/internal/session"
)

// EditOptions holds options shared by the edit subcommands.
type EditOptions struct {
	Table string
	Yes   bool
}

// NewEditCommand creates the edit command and its subcommands.
func NewEditCommand() *cobra.Command {
	opts := &EditOptions{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change a table without starting the editor",
		Long: `Apply one change to a CSV file or database table, the same way the
editor does.

Database tables are written immediately. CSV files are saved after the
change. Rows and columns are numbered from 1; a column may also be given by
its name.`,
		Example: `  tipy edit set people.csv 2 name Bob
  tipy edit add-row shop.db --table people 3 carol
  tipy edit delete-row shop.db 2 --table people --yes
  tipy edit add-column new.csv email`,
	}

	cmd.PersistentFlags().StringVar(&opts.Table, "table", "", "Table to change (default: the first)")

	cmd.AddCommand(newEditSetCommand(opts))
	cmd.AddCommand(newEditAddRowCommand(opts))
	cmd.AddCommand(newEditDeleteRowCommand(opts))
	cmd.AddCommand(newEditAddColumnCommand(opts))

	return cmd
}

func newEditSetCommand(opts *EditOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <row> <column> <value>",
		Short: "Set one cell",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEdit(cmd, args[0], opts, false, func(d *dispatch.Dispatcher) error {
				g := d.Session().ActiveTab().Grid
				row, err := parseIndex(args[1], g.RowCount(), "row")
				if err != nil {
					return err
				}
				col, err := columnIndex(g.Headers(), args[2])
				if err != nil {
					return err
				}
				return d.Edit(cmd.Context(), row, col, args[3])
			})
		},
	}
}

func newEditAddRowCommand(opts *EditOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-row <path> [values...]",
		Short: "Append a row",
		Long: `Append a row and fill its cells in column order.

A database row is inserted once every cell holds a value; missing values
leave it unsaved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := args[1:]
			return withEdit(cmd, args[0], opts, false, func(d *dispatch.Dispatcher) error {
				g := d.Session().ActiveTab().Grid
				if len(values) > g.ColumnCount() {
					return fmt.Errorf("got %d values for %d columns", len(values), g.ColumnCount())
				}
				row := d.AddRow()
				for col, v := range values {
					if err := d.Edit(cmd.Context(), row, col, v); err != nil {
						return err
					}
				}
				if len(values) < g.ColumnCount() && d.Session().ActiveTab().Backing == session.Database {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Row is incomplete and was not written to the database.")
				}
				return nil
			})
		},
	}
}

func newEditDeleteRowCommand(opts *EditOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-row <path> <row>",
		Short: "Delete a row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEdit(cmd, args[0], opts, false, func(d *dispatch.Dispatcher) error {
				g := d.Session().ActiveTab().Grid
				row, err := parseIndex(args[1], g.RowCount(), "row")
				if err != nil {
					return err
				}
				g.SelectRow(row)

				confirm := dispatch.Yes
				if !opts.Yes && getConfig().ConfirmDeletes {
					confirm = askYesNo(cmd)
				}
				deleted, err := d.DeleteRow(cmd.Context(), confirm)
				if err != nil {
					return err
				}
				if !deleted {
					return errAborted
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func newEditAddColumnCommand(opts *EditOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-column <path> [name]",
		Short: "Add a column to a new CSV file",
		Long: `Add a column to a CSV file that does not exist yet, creating it.

Columns are only added to new tables. Without a name the column is named
by its position.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			return withEdit(cmd, args[0], opts, true, func(d *dispatch.Dispatcher) error {
				_, err := d.AddColumn(name)
				return err
			})
		},
	}
}

// errAborted is returned when the user declines a confirmation.
var errAborted = errors.New("aborted")

// withEdit opens path, focuses the table and runs fn. Memory tabs are
// saved afterwards. With create set, a path that does not exist yet starts
// an empty table that is saved under it.
func withEdit(cmd *cobra.Command, path string, opts *EditOptions, create bool, fn func(*dispatch.Dispatcher) error) error {
	c := NewCommandContext(cmd)

	var (
		d   *dispatch.Dispatcher
		err error
	)
	fresh := create && session.KindOf(path) == session.KindCSV && !fileExists(path)
	if fresh {
		s, err := session.Open(cmd.Context(), c.Request(session.Create, ""), c.Logger)
		if err != nil {
			return describe(err)
		}
		d = dispatch.New(s, dispatch.Options{PlotsDir: c.Cfg.PlotsDir, Logger: c.Logger})
	} else {
		d, err = c.Open(cmd, path)
		if err != nil {
			return err
		}
	}
	defer closeSession(d, c.Logger)

	if !fresh {
		if err := selectTable(d, opts.Table); err != nil {
			return err
		}
	}
	if err := fn(d); err != nil {
		return describe(err)
	}

	tab := d.Session().ActiveTab()
	switch {
	case fresh:
		err = d.SaveAs(path)
	case tab.Backing == session.Memory:
		err = d.Save()
	}
	if err != nil {
		return describe(err)
	}
	c.Logger.Info("table changed", "path", path, "table", tab.Name, "rows", tab.Grid.RowCount())
	return nil
}

// parseIndex turns a 1-based argument into an index below n.
func parseIndex(arg string, n int, what string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", what, arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("%s %d out of range (1..%d)", what, i, n)
	}
	return i - 1, nil
}

// columnIndex resolves a column name, or a 1-based position when no column
// has that name.
func columnIndex(headers []string, arg string) (int, error) {
	for i, h := range headers {
		if h == arg {
			return i, nil
		}
	}
	return parseIndex(arg, len(headers), "column")
}

// askYesNo asks on the command's stdin and accepts y or yes.
func askYesNo(cmd *cobra.Command) dispatch.ConfirmFunc {
	return func(question string) bool {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
