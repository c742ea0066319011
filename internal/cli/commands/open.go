package commands

import (
	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/dispatch"
	"github.com/tipy-dev/tipy/internal/session"
	"github.com/tipy-dev/tipy/internal/tui"
)

// NewOpenCommand creates the open command.
func NewOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Edit a CSV file or SQLite database",
		Long: `Open a CSV file or a SQLite database in the table editor.

Every table of a database becomes a tab; a CSV file opens as one tab.
Without a path the entry form asks for one.`,
		Example: `  tipy open people.csv
  tipy open shop.db
  tipy open -d ';' -e cp1252 export.csv`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{AnnotationTUI: "true"},
		RunE:        RunOpen,
	}
}

// RunOpen starts the editor on args[0], or on the entry form when args is
// empty. The root command runs it as its default action.
func RunOpen(cmd *cobra.Command, args []string) error {
	c := NewCommandContext(cmd)
	if len(args) == 0 {
		return runEditor(cmd, c, nil)
	}
	d, err := c.Open(cmd, args[0])
	if err != nil {
		return err
	}
	return runEditor(cmd, c, d)
}

// NewNewCommand creates the new command.
func NewNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start an empty table",
		Long: `Start the editor with an empty table named "page 1".

Add columns and rows, then save with ctrl+s under a new CSV file name.
The delimiter and encoding flags apply to the saved file.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{AnnotationTUI: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			s, err := session.Open(cmd.Context(), c.Request(session.Create, ""), c.Logger)
			if err != nil {
				return describe(err)
			}
			d := dispatch.New(s, dispatch.Options{PlotsDir: c.Cfg.PlotsDir, Logger: c.Logger})
			return runEditor(cmd, c, d)
		},
	}
}

func runEditor(cmd *cobra.Command, c *CommandContext, d *dispatch.Dispatcher) error {
	app := tui.New(cmd.Context(), d, tui.Options{
		Defaults:       c.Request(session.Edit, ""),
		PlotsDir:       c.Cfg.PlotsDir,
		ConfirmDeletes: c.Cfg.ConfirmDeletes,
		Watch:          c.Cfg.Watch,
		Logger:         c.Logger,
	})
	return tui.Run(cmd.Context(), app)
}
