package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tipy-dev/tipy/internal/dispatch"
	"github.com/tipy-dev/tipy/internal/session"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Table  string
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <db> [SQL]",
		Short: "Run SQL against a database",
		Long: `Run a SQL statement against a SQLite database exactly as written, then
print the table it changed.

The statement is read from the arguments, from --input, or from piped
stdin. When none is given and stdin is a terminal, an interactive prompt
starts instead.`,
		Example: `  # Run a statement and print the people table
  tipy query shop.db "UPDATE people SET name = 'Bob' WHERE id = 2" --table people

  # Create a table; it is printed as a new tab
  tipy query shop.db "CREATE TABLE tags (name TEXT)" --table tags

  # Read SQL from a file
  tipy query shop.db --input migrate.sql

  # Interactive mode
  tipy query shop.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Table to print after the statement")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md, yaml")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	c := NewCommandContext(cmd)
	format, err := outputFormat(c, opts.Format)
	if err != nil {
		return err
	}

	path := args[0]
	if session.KindOf(path) != session.KindSQLite {
		return fmt.Errorf("%s is not a SQLite database: %w", path, dispatch.ErrNotSupported)
	}

	var stmt string
	interactive := false
	switch {
	case len(args) > 1:
		stmt = strings.Join(args[1:], " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		stmt = string(content)
	case !isTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		stmt = string(content)
	default:
		interactive = true
	}
	if !interactive && strings.TrimSpace(stmt) == "" {
		return errors.New("no SQL statement given")
	}

	d, err := c.Open(cmd, path)
	if err != nil {
		return err
	}
	defer closeSession(d, c.Logger)

	if interactive {
		return runQueryREPL(cmd, d, path, format, delimiter(c))
	}
	return executeAndRender(cmd, d, stmt, opts.Table, format, delimiter(c))
}

// executeAndRender runs stmt, picks up tables it created and prints the
// named table or the active one.
func executeAndRender(cmd *cobra.Command, d *dispatch.Dispatcher, stmt, tableName, format string, delim rune) error {
	ctx := cmd.Context()
	if err := d.RunSQL(ctx, stmt); err != nil {
		return describe(err)
	}
	if err := d.Reload(ctx); err != nil {
		return err
	}
	if err := selectTable(d, tableName); err != nil {
		return err
	}
	return printActive(cmd, d, format, delim)
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
