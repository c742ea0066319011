package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tipy-dev/tipy/internal/dispatch"
	"github.com/tipy-dev/tipy/internal/guide"
	"github.com/tipy-dev/tipy/internal/plot"
	"github.com/tipy-dev/tipy/internal/session"
)

type screen int

const (
	screenEntry screen = iota
	screenTable
	screenPlotForm
	screenViewer
	screenGuide
)

// ownWriteWindow is how long a change event on a file we just saved is
// treated as our own write.
const ownWriteWindow = 2 * time.Second

// Options configure the application.
type Options struct {
	// Defaults prefill the entry form.
	Defaults       session.Request
	PlotsDir       string
	ConfirmDeletes bool
	Watch          bool
	Logger         *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	opts   Options
	logger *slog.Logger
	d      *dispatch.Dispatcher

	keys KeyMap
	help help.Model

	width, height int
	screen        screen
	back          screen

	entry  *entryForm
	table  tableView
	editor *textinput.Model
	prompt *prompt
	dialog *dialog
	plots  *plotForm
	viewer *plotViewer
	guide  viewport.Model

	notice    string
	watcher   *watcher
	ownWrites map[string]time.Time
}

// New creates the application. With a nil dispatcher it starts on the
// entry form.
func New(ctx context.Context, d *dispatch.Dispatcher, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{
		ctx:       ctx,
		opts:      opts,
		logger:    logger,
		d:         d,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		width:     80,
		height:    24,
		guide:     viewport.New(80, 20),
		ownWrites: map[string]time.Time{},
	}
	a.guide.SetContent(guide.Text())
	if d == nil {
		a.entry = newEntryForm(opts.Defaults)
		a.screen = screenEntry
	} else {
		a.screen = screenTable
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.watch())
}

// Close releases the watcher and the session.
func (a *App) Close() error {
	var errs []error
	if err := a.watcher.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.d != nil {
		if err := a.d.Session().Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// watch (re)starts file watching for the current session.
func (a *App) watch() tea.Cmd {
	if err := a.watcher.Close(); err != nil {
		a.logger.Warn("failed to stop watcher", "error", err)
	}
	a.watcher = nil
	if !a.opts.Watch || a.d == nil {
		return nil
	}
	paths := a.d.Session().Paths()
	if len(paths) == 0 {
		return nil
	}
	w, err := newWatcher(paths)
	if err != nil {
		a.logger.Warn("file watching disabled", "error", err)
		return nil
	}
	a.watcher = w
	return w.next()
}

func (a *App) session() *session.Session { return a.d.Session() }

func (a *App) fail(err error) {
	a.logger.Warn("action failed", "error", err)
	a.dialog = errorDialog(err)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.guide.Width, a.guide.Height = msg.Width, max(msg.Height-2, 1)
		if a.viewer != nil {
			a.viewer.fit(a.width, a.height)
		}
		return a, nil

	case fileChangedMsg:
		if t, ok := a.ownWrites[absPath(msg.Path)]; ok && time.Since(t) < ownWriteWindow {
			return a, a.nextWatch()
		}
		a.notice = fmt.Sprintf("%s changed on disk, ctrl+r to reload", filepath.Base(msg.Path))
		return a, a.nextWatch()

	case watchErrMsg:
		a.logger.Warn("file watching stopped", "error", msg.Err)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// Callbacks may open the next dialog or prompt; only the one that
		// finished is dismissed.
		if dlg := a.dialog; dlg != nil {
			done, cmd := dlg.Update(msg)
			if done && a.dialog == dlg {
				a.dialog = nil
			}
			return a, cmd
		}
		if p := a.prompt; p != nil {
			done, cmd := p.Update(msg)
			if done && a.prompt == p {
				a.prompt = nil
			}
			return a, cmd
		}
		return a.handleKey(msg)

	case tea.MouseMsg:
		if a.screen == screenViewer && a.dialog == nil {
			a.viewer.Update(msg)
		}
		return a, nil
	}
	return a, nil
}

func (a *App) nextWatch() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.next()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case screenEntry:
		return a.updateEntry(msg)
	case screenPlotForm:
		submit, cancel := a.plots.Update(msg)
		switch {
		case cancel:
			a.screen = screenTable
		case submit:
			a.buildPlot()
		}
		return a, nil
	case screenViewer:
		if a.viewer.Update(msg) {
			a.viewer = nil
			a.screen = screenTable
		}
		return a, nil
	case screenGuide:
		if key.Matches(msg, a.keys.Back) || key.Matches(msg, a.keys.Quit) || key.Matches(msg, a.keys.Help) {
			a.screen = a.back
			return a, nil
		}
		var cmd tea.Cmd
		a.guide, cmd = a.guide.Update(msg)
		return a, cmd
	}
	if a.editor != nil {
		return a.updateEditor(msg)
	}
	return a.updateTable(msg)
}

func (a *App) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if a.d == nil {
			return a, tea.Quit
		}
		a.screen = screenTable
		return a, nil
	case "f1":
		a.showGuide()
		return a, nil
	}
	submit, cmd := a.entry.Update(msg)
	if !submit {
		return a, cmd
	}

	req := a.entry.Request()
	if a.d == nil {
		s, err := session.Open(a.ctx, req, a.logger)
		if err != nil {
			a.fail(err)
			return a, nil
		}
		a.d = dispatch.New(s, dispatch.Options{PlotsDir: a.opts.PlotsDir, Logger: a.logger})
	} else if err := a.d.Open(a.ctx, req); err != nil {
		a.fail(err)
		return a, nil
	}
	a.table = tableView{}
	a.notice = ""
	a.screen = screenTable
	return a, a.watch()
}

func (a *App) showGuide() {
	a.back = a.screen
	a.guide.GotoTop()
	a.screen = screenGuide
}

func (a *App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.editor = nil
		return a, nil
	case "enter":
		value := a.editor.Value()
		a.editor = nil
		row, col := a.session().ActiveTab().Grid.Cursor()
		err := a.d.Edit(a.ctx, row, col, value)
		a.markDatabaseWrite()
		if err != nil {
			a.fail(err)
		}
		return a, nil
	}
	var cmd tea.Cmd
	*a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a *App) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := a.session().ActiveTab().Grid
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		g.MoveCursor(-1, 0)
	case key.Matches(msg, a.keys.Down):
		g.MoveCursor(1, 0)
	case key.Matches(msg, a.keys.Left):
		g.MoveCursor(0, -1)
	case key.Matches(msg, a.keys.Right):
		g.MoveCursor(0, 1)
	case key.Matches(msg, a.keys.Back):
		g.ClearSelection()
	case key.Matches(msg, a.keys.Edit):
		return a, a.startEdit()
	case key.Matches(msg, a.keys.AddRow):
		row := a.d.AddRow()
		a.logger.Debug("added row", "row", row)
	case key.Matches(msg, a.keys.AddColumn):
		a.addColumn()
	case key.Matches(msg, a.keys.Select):
		if g.Selecting() {
			g.ClearSelection()
		} else {
			g.StartSelection()
		}
	case key.Matches(msg, a.keys.SelectRow):
		row, _ := g.Cursor()
		g.SelectRow(row)
	case key.Matches(msg, a.keys.DeleteRow):
		a.deleteRow()
	case key.Matches(msg, a.keys.AddTab):
		return a, a.addTab()
	case key.Matches(msg, a.keys.CloseTab):
		a.closeTab()
	case key.Matches(msg, a.keys.NextTab):
		a.selectTab(1)
	case key.Matches(msg, a.keys.PrevTab):
		a.selectTab(-1)
	case key.Matches(msg, a.keys.SQL):
		a.askSQL()
	case key.Matches(msg, a.keys.Plot):
		a.plots = newPlotForm(g.Headers())
		a.screen = screenPlotForm
	case key.Matches(msg, a.keys.Save):
		return a, a.save()
	case key.Matches(msg, a.keys.Reload):
		if err := a.d.Reload(a.ctx); err != nil {
			a.fail(err)
		} else {
			a.notice = "Reloaded."
		}
	case key.Matches(msg, a.keys.Open):
		req := a.opts.Defaults
		req.Mode = a.session().Mode
		req.Path = a.session().Source.Path
		a.entry = newEntryForm(req)
		a.screen = screenEntry
	case key.Matches(msg, a.keys.Help):
		a.showGuide()
	}
	return a, nil
}

func (a *App) startEdit() tea.Cmd {
	g := a.session().ActiveTab().Grid
	if g.ColumnCount() == 0 || g.RowCount() == 0 {
		a.notice = "Nothing to edit: add a column (c) and a row (a) first."
		return nil
	}
	row, col := g.Cursor()
	ti := textinput.New()
	ti.Prompt = g.Headers()[col] + ": "
	ti.CharLimit = 0
	ti.SetValue(g.Value(row, col))
	ti.CursorEnd()
	a.editor = &ti
	return a.editor.Focus()
}

func (a *App) addColumn() {
	if !a.session().Caps.AddColumn {
		a.fail(dispatch.ErrNotSupported)
		return
	}
	a.prompt = newPrompt("Column name", "empty for the column number", func(name string) tea.Cmd {
		if _, err := a.d.AddColumn(strings.TrimSpace(name)); err != nil {
			a.fail(err)
		}
		return nil
	})
}

func (a *App) deleteRow() {
	confirm := dispatch.Yes
	if a.opts.ConfirmDeletes {
		// The selection is checked before asking; the dialog repeats the
		// call once accepted.
		confirm = func(question string) bool {
			a.dialog = confirmDialog(question, func() tea.Cmd {
				a.deleteRowConfirmed()
				return nil
			})
			return false
		}
	}
	deleted, err := a.d.DeleteRow(a.ctx, confirm)
	a.markDatabaseWrite()
	if err != nil {
		a.fail(err)
		return
	}
	if deleted {
		a.session().ActiveTab().Grid.ClearSelection()
	}
}

func (a *App) deleteRowConfirmed() {
	_, err := a.d.DeleteRow(a.ctx, dispatch.Yes)
	a.markDatabaseWrite()
	if err != nil {
		a.fail(err)
		return
	}
	a.session().ActiveTab().Grid.ClearSelection()
}

func (a *App) addTab() tea.Cmd {
	s := a.session()
	if !s.Caps.AddTable {
		a.fail(dispatch.ErrNotSupported)
		return nil
	}
	if s.Mode == session.Create {
		if _, err := a.d.AddTab(""); err != nil {
			a.fail(err)
		}
		return nil
	}
	a.prompt = newPrompt("Open CSV file in a new tab", "path/to/file.csv", func(path string) tea.Cmd {
		if _, err := a.d.AddTab(strings.TrimSpace(path)); err != nil {
			a.fail(err)
			return nil
		}
		return a.watch()
	})
	return nil
}

func (a *App) closeTab() {
	if !a.session().Caps.DeleteTable {
		a.fail(dispatch.ErrNotSupported)
		return
	}
	_, err := a.d.CloseTab(func(question string) bool {
		a.dialog = confirmDialog(question, func() tea.Cmd {
			if _, err := a.d.CloseTab(dispatch.Yes); err != nil {
				a.fail(err)
			}
			a.table = tableView{}
			return nil
		})
		return false
	})
	if err != nil {
		a.fail(err)
	}
}

func (a *App) selectTab(step int) {
	s := a.session()
	n := len(s.Tabs)
	if n == 0 {
		return
	}
	if err := a.d.SelectTab((s.Active + step + n) % n); err != nil {
		a.fail(err)
		return
	}
	a.table = tableView{}
}

func (a *App) askSQL() {
	if !a.session().Caps.SQL {
		a.fail(dispatch.ErrNotSupported)
		return
	}
	a.prompt = newPrompt("SQL", "UPDATE ... / CREATE TABLE ...", func(stmt string) tea.Cmd {
		if strings.TrimSpace(stmt) == "" {
			return nil
		}
		err := a.d.RunSQL(a.ctx, stmt)
		a.markDatabaseWrite()
		if err != nil {
			a.fail(err)
			return nil
		}
		a.notice = "Statement executed."
		return nil
	})
}

func (a *App) save() tea.Cmd {
	err := a.d.Save()
	if errors.Is(err, dispatch.ErrNeedsPath) {
		a.prompt = newPrompt("Save as", "path/to/file.csv", func(path string) tea.Cmd {
			path = strings.TrimSpace(path)
			if path == "" {
				a.fail(fmt.Errorf("%w: path", session.ErrMissingField))
				return nil
			}
			a.ownWrites[absPath(path)] = time.Now()
			if err := a.d.SaveAs(path); err != nil {
				a.fail(err)
				return nil
			}
			a.notice = "Saved " + path
			return a.watch()
		})
		return nil
	}
	if err != nil {
		a.fail(err)
		return nil
	}
	tab := a.session().ActiveTab()
	if tab.Backing == session.Database {
		a.notice = "Database tables are saved on every edit."
		return nil
	}
	a.ownWrites[absPath(tab.Path)] = time.Now()
	a.notice = "Saved " + tab.Path
	return nil
}

// markDatabaseWrite records that the session database may just have been
// written by us.
func (a *App) markDatabaseWrite() {
	if s := a.session(); s != nil && s.DB != nil {
		a.ownWrites[absPath(s.Source.Path)] = time.Now()
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func (a *App) buildPlot() {
	x, y := a.plots.columns()
	path, kind, err := a.d.Plot(x, y)
	if err != nil {
		a.fail(err)
		return
	}
	v, err := plot.Open(path)
	if err != nil {
		a.fail(err)
		return
	}
	a.logger.Debug("showing plot", "kind", kind, "path", path)
	a.viewer = newPlotViewer(path, v, a.keys, a.width, a.height)
	a.screen = screenViewer
}

// View implements tea.Model.
func (a *App) View() string {
	var content string
	switch a.screen {
	case screenEntry:
		content = a.entry.View(a.width)
	case screenPlotForm:
		content = a.plots.View()
	case screenViewer:
		content = a.viewer.View(a.width, a.height, colorProfile()) + a.help.View(viewerKeys(a.keys))
	case screenGuide:
		content = a.guide.View() + "\n" + statusStyle.Render("esc: back")
	default:
		content = a.tableScreen()
	}

	if a.dialog != nil {
		return a.dialog.View(a.width, a.height)
	}
	if a.prompt != nil {
		return lipgloss.JoinVertical(lipgloss.Left, content, "", a.prompt.View(a.width))
	}
	return content
}

func (a *App) tableScreen() string {
	s := a.session()
	tab := s.ActiveTab()

	tabs := make([]string, len(s.Tabs))
	for i, t := range s.Tabs {
		if i == s.Active {
			tabs[i] = activeTabStyle.Render(t.Name)
		} else {
			tabs[i] = tabStyle.Render(t.Name)
		}
	}
	header := titleStyle.Render("TIPY") + " " + statusStyle.Render(titleCase.String(s.Mode.String())) +
		"  " + strings.Join(tabs, "")

	// title, header row, editor, status and help lines
	rows := max(a.height-6, 1)
	body := a.table.Render(tab.Grid, a.width, rows)

	footer := statusStyle.Render(s.Status())
	if a.notice != "" {
		footer += "  " + noticeStyle.Render(a.notice)
	}
	lines := []string{header, body}
	if a.editor != nil {
		lines = append(lines, a.editor.View())
	}
	lines = append(lines, footer, a.help.View(a.keys))
	return strings.Join(lines, "\n")
}
