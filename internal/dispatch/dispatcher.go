// Package dispatch turns user actions into store, file and database updates
// for the active session.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tipy-dev/tipy/internal/database"
	"github.com/tipy-dev/tipy/internal/grid"
	"github.com/tipy-dev/tipy/internal/session"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Yes confirms every question.
func Yes(string) bool { return true }

// DeletePrompt is the question asked before a row is deleted.
const DeletePrompt = "Are you sure you want to delete this row?"

// Dispatcher routes actions to the session.
type Dispatcher struct {
	s        *session.Session
	plotsDir string
	logger   *slog.Logger
}

// Options configure a Dispatcher.
type Options struct {
	PlotsDir string
	Logger   *slog.Logger
}

// New attaches a dispatcher to s. Every tab of s, present or future, has
// its edits reconciled by the dispatcher.
func New(s *session.Session, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.PlotsDir == "" {
		opts.PlotsDir = "plots"
	}
	d := &Dispatcher{plotsDir: opts.PlotsDir, logger: logger}
	d.attach(s)
	return d
}

func (d *Dispatcher) attach(s *session.Session) {
	d.s = s
	s.OnTab(func(tab *session.Tab) {
		tab.Grid.OnCellChanged(func(ctx context.Context, c grid.CellChange) error {
			return d.cellChanged(ctx, tab, c)
		})
	})
}

// Session returns the session being dispatched to.
func (d *Dispatcher) Session() *session.Session { return d.s }

// Open replaces the current session with one built from req. The previous
// session is closed only after the new one opened successfully.
func (d *Dispatcher) Open(ctx context.Context, req session.Request) error {
	next, err := session.Open(ctx, req, d.logger)
	if err != nil {
		return err
	}
	if d.s != nil {
		if err := d.s.Close(); err != nil {
			d.logger.Warn("failed to close previous session", "error", err)
		}
	}
	d.attach(next)
	return nil
}

// Edit writes value into the active tab as a user edit.
func (d *Dispatcher) Edit(ctx context.Context, row, col int, value string) error {
	return d.s.ActiveTab().Grid.SetCell(ctx, row, col, value)
}

// cellChanged reconciles a user edit with the tab's database table. Memory
// tabs are persisted on save instead.
func (d *Dispatcher) cellChanged(ctx context.Context, tab *session.Tab, c grid.CellChange) error {
	if tab.Backing != session.Database || d.s.DB == nil {
		return nil
	}
	if !tab.Table().RowComplete(c.Row) {
		d.logger.Debug("row incomplete, edit pending", "table", tab.Name, "row", c.Row)
		return nil
	}

	headers := tab.Grid.Headers()
	stored, err := d.s.DB.Count(ctx, tab.Name)
	if err != nil {
		return err
	}

	if stored != tab.Grid.RowCount() {
		d.logger.Debug("inserting new row", "table", tab.Name, "row", c.Row)
		return d.s.DB.Insert(ctx, tab.Name, headers, c.Values)
	}

	var where []database.Match
	for i, h := range headers {
		if c.Values[i] != c.Value {
			where = append(where, database.Match{Column: h, Value: c.Values[i]})
		}
	}
	if len(where) == 0 {
		return fmt.Errorf("%w: every column of row %d equals %q", ErrNoMatchColumns, c.Row+1, c.Value)
	}

	n, err := d.s.DB.Update(ctx, tab.Name, headers[c.Col], c.Value, where)
	if err != nil {
		return err
	}
	d.logger.Debug("updated row", "table", tab.Name, "column", headers[c.Col], "affected", n)
	return nil
}

// AddRow appends an empty row to the active tab. Database tabs persist it
// once every cell has been filled in.
func (d *Dispatcher) AddRow() int {
	return d.s.ActiveTab().Grid.AddRow()
}

// AddColumn appends a column to the active tab.
func (d *Dispatcher) AddColumn(name string) (int, error) {
	tab := d.s.ActiveTab()
	if !d.s.Caps.AddColumn || tab.Backing != session.Memory {
		return 0, ErrNotSupported
	}
	return tab.Grid.AddColumn(name), nil
}

// DeleteRow deletes the selected row of the active tab after confirmation.
// It reports whether a row was deleted.
func (d *Dispatcher) DeleteRow(ctx context.Context, confirm ConfirmFunc) (bool, error) {
	tab := d.s.ActiveTab()
	row, ok := tab.Grid.SelectedRow()
	if !ok {
		return false, ErrNoRowSelected
	}
	if confirm == nil || !confirm(DeletePrompt) {
		return false, nil
	}

	if tab.Backing == session.Database && d.s.DB != nil {
		values, err := tab.Table().Row(row)
		if err != nil {
			return false, err
		}
		where := make([]database.Match, len(values))
		for i, h := range tab.Grid.Headers() {
			where[i] = database.Match{Column: h, Value: values[i]}
		}
		n, err := d.s.DB.Delete(ctx, tab.Name, where)
		if err != nil {
			return false, err
		}
		if n == 0 {
			d.logger.Warn("no stored row matched, removing it from the grid only", "table", tab.Name, "row", row)
		} else {
			d.logger.Debug("deleted row", "table", tab.Name, "row", row, "affected", n)
		}
	}

	if err := tab.Grid.DeleteRow(row); err != nil {
		return false, err
	}
	return true, nil
}

// RunSQL executes a user statement verbatim and refreshes the active tab.
// On failure nothing in the session changes.
func (d *Dispatcher) RunSQL(ctx context.Context, stmt string) error {
	if !d.s.Caps.SQL || d.s.DB == nil {
		return ErrNotSupported
	}
	if err := d.s.DB.Exec(ctx, stmt); err != nil {
		return err
	}
	d.logger.Info("executed statement", "sql", stmt)
	return d.s.Refresh(ctx, d.s.ActiveTab())
}

// Reload re-reads the session's sources. Database sessions also gain tabs
// for tables created since the last load; CSV tabs drop unsaved edits.
func (d *Dispatcher) Reload(ctx context.Context) error {
	if d.s.DB != nil {
		return d.s.Reload(ctx)
	}
	for _, tab := range d.s.Tabs {
		if err := d.s.Refresh(ctx, tab); err != nil {
			return err
		}
	}
	return nil
}
