// Package session holds the state of one open source: its mode, its tabs and
// the single database connection shared by those tabs.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/database"
	"github.com/tipy-dev/tipy/internal/grid"
	"github.com/tipy-dev/tipy/internal/table"
)

// Errors returned by this package.
var (
	ErrMissingField = errors.New("required field is empty")
	ErrNotFound     = errors.New("file does not exist")
)

// Mode is what the user asked the session to do with its source.
type Mode int

const (
	// Edit opens an existing CSV or database file.
	Edit Mode = iota
	// Create starts from an empty table that is saved as a new CSV file.
	Create
)

func (m Mode) String() string {
	if m == Create {
		return "create"
	}
	return "edit"
}

// Kind identifies the source format.
type Kind int

const (
	KindNew Kind = iota
	KindCSV
	KindSQLite
)

func (k Kind) String() string {
	switch k {
	case KindCSV:
		return "csv"
	case KindSQLite:
		return "sqlite"
	default:
		return "new"
	}
}

// KindOf derives the source kind from a file extension. Anything that is
// not a database extension is read as CSV.
func KindOf(path string) Kind {
	if path == "" {
		return KindNew
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindCSV
	}
}

// Source is where the session's data came from.
type Source struct {
	Kind Kind
	Path string
	CSV  csvio.Options
}

// Capabilities are the actions the session offers. They are derived once
// from the source kind and mode.
type Capabilities struct {
	SQL         bool
	AddTable    bool
	DeleteTable bool
	AddColumn   bool
	SaveAs      bool
}

// CapabilitiesFor returns the actions available for a kind and mode.
func CapabilitiesFor(kind Kind, mode Mode) Capabilities {
	switch {
	case mode == Create:
		return Capabilities{AddTable: true, DeleteTable: true, AddColumn: true, SaveAs: true}
	case kind == KindSQLite:
		return Capabilities{SQL: true}
	default:
		return Capabilities{AddTable: true, DeleteTable: true}
	}
}

// Backing says where a tab's rows live.
type Backing int

const (
	// Memory tabs are persisted only on save.
	Memory Backing = iota
	// Database tabs mirror a table of the session database.
	Database
)

// Tab is one open table.
type Tab struct {
	Name    string
	Path    string
	Backing Backing
	Grid    *grid.Grid
}

// Table returns the tab's current contents.
func (t *Tab) Table() *table.Table { return t.Grid.Table() }

// Session is one open source and its tabs.
type Session struct {
	Mode   Mode
	Source Source
	Caps   Capabilities
	Tabs   []*Tab
	Active int
	DB     *database.DB

	pages  int
	hooks  []func(*Tab)
	logger *slog.Logger
}

func newSession(mode Mode, src Source, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		Mode:   mode,
		Source: src,
		Caps:   CapabilitiesFor(src.Kind, mode),
		logger: logger,
	}
}

// OnTab registers fn for every current and future tab.
func (s *Session) OnTab(fn func(*Tab)) {
	s.hooks = append(s.hooks, fn)
	for _, t := range s.Tabs {
		fn(t)
	}
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// ActiveTab returns the focused tab. A session always has at least one.
func (s *Session) ActiveTab() *Tab {
	if len(s.Tabs) == 0 {
		s.addPage()
	}
	if s.Active < 0 || s.Active >= len(s.Tabs) {
		s.Active = 0
	}
	return s.Tabs[s.Active]
}

// Select focuses tab i.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.Tabs) {
		return fmt.Errorf("tab %d: %w", i, table.ErrOutOfRange)
	}
	s.Active = i
	return nil
}

// TabByName returns the first tab with the given name.
func (s *Session) TabByName(name string) (*Tab, int, bool) {
	for i, t := range s.Tabs {
		if t.Name == name {
			return t, i, true
		}
	}
	return nil, -1, false
}

// Status renders the status line for the active tab.
func (s *Session) Status() string {
	t := s.ActiveTab()
	return fmt.Sprintf("Tables: %d | Rows: %d | Columns: %d",
		len(s.Tabs), t.Grid.RowCount(), t.Grid.ColumnCount())
}

// AddPage appends an empty memory tab named "page N" and focuses it.
func (s *Session) AddPage() *Tab {
	t := s.addPage()
	s.Active = len(s.Tabs) - 1
	return t
}

func (s *Session) addPage() *Tab {
	s.pages++
	return s.addTab(&Tab{
		Name:    fmt.Sprintf("page %d", s.pages),
		Backing: Memory,
		Grid:    grid.New(table.New(fmt.Sprintf("page %d", s.pages), nil, nil)),
	})
}

func (s *Session) addTab(t *Tab) *Tab {
	s.Tabs = append(s.Tabs, t)
	for _, fn := range s.hooks {
		fn(t)
	}
	s.logger.Debug("tab added", "name", t.Name, "backing", t.Backing)
	return t
}

// CloseTab removes tab i. Closing the last tab leaves one empty "page 1".
func (s *Session) CloseTab(i int) error {
	if i < 0 || i >= len(s.Tabs) {
		return fmt.Errorf("tab %d: %w", i, table.ErrOutOfRange)
	}
	name := s.Tabs[i].Name
	s.Tabs = append(s.Tabs[:i], s.Tabs[i+1:]...)
	if s.pages > 0 {
		s.pages--
	}
	if len(s.Tabs) == 0 {
		s.pages = 0
		s.addPage()
	}
	if s.Active >= len(s.Tabs) {
		s.Active = len(s.Tabs) - 1
	}
	s.logger.Debug("tab closed", "name", name, "remaining", len(s.Tabs))
	return nil
}

// Close releases the database connection, if any.
func (s *Session) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
