package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/database"
	"github.com/tipy-dev/tipy/internal/grid"
	"github.com/tipy-dev/tipy/internal/table"
	"github.com/tipy-dev/tipy/internal/textenc"
)

// Request is what the entry form collects.
type Request struct {
	Mode      Mode
	Path      string
	Delimiter string
	Encoding  string
}

// Validate checks that every field the mode needs is present. Delimiter and
// encoding are only needed for CSV sources and for create mode.
func (r Request) Validate() error {
	var missing []string
	if r.Mode == Edit && r.Path == "" {
		missing = append(missing, "path")
	}
	if r.needsCSVOptions() {
		if r.Delimiter == "" {
			missing = append(missing, "delimiter")
		}
		if r.Encoding == "" {
			missing = append(missing, "encoding")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingField, missing)
	}
	return nil
}

func (r Request) needsCSVOptions() bool {
	return r.Mode == Create || KindOf(r.Path) == KindCSV
}

func (r Request) csvOptions() (csvio.Options, error) {
	if !r.needsCSVOptions() {
		return csvio.DefaultOptions(), nil
	}
	delim, err := csvio.ParseDelimiter(r.Delimiter)
	if err != nil {
		return csvio.Options{}, err
	}
	if _, err := textenc.Lookup(r.Encoding); err != nil {
		return csvio.Options{}, err
	}
	return csvio.Options{Delimiter: delim, Encoding: r.Encoding}, nil
}

// Open builds a session from an entry form request.
func Open(ctx context.Context, req Request, logger *slog.Logger) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts, err := req.csvOptions()
	if err != nil {
		return nil, err
	}

	if req.Mode == Create {
		s := newSession(Create, Source{Kind: KindNew, CSV: opts}, logger)
		s.addPage()
		s.logger.Info("created empty session")
		return s, nil
	}

	if _, err := os.Stat(req.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", req.Path, err)
	}

	src := Source{Kind: KindOf(req.Path), Path: req.Path, CSV: opts}
	s := newSession(Edit, src, logger)

	switch src.Kind {
	case KindSQLite:
		db, err := database.Open(ctx, req.Path, s.logger)
		if err != nil {
			return nil, err
		}
		s.DB = db
		if err := s.Reload(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		if len(s.Tabs) == 0 {
			s.addPage()
		}
	default:
		if _, err := s.OpenCSVTab(req.Path); err != nil {
			return nil, err
		}
		s.Active = 0
	}

	s.logger.Info("opened session", "path", req.Path, "kind", src.Kind, "tabs", len(s.Tabs))
	return s, nil
}

// OpenCSVTab reads another CSV file into a new tab using the session's
// delimiter and encoding.
func (s *Session) OpenCSVTab(path string) (*Tab, error) {
	t, err := csvio.Read(path, s.Source.CSV)
	if err != nil {
		return nil, err
	}
	tab := s.addTab(&Tab{
		Name:    t.Name,
		Path:    path,
		Backing: Memory,
		Grid:    grid.New(t),
	})
	s.pages++
	s.Active = len(s.Tabs) - 1
	return tab, nil
}

// Reload re-reads every table of the session database. Existing tabs are
// refreshed in place; tables without a tab get a new one.
func (s *Session) Reload(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	names, err := s.DB.Tables(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if tab, _, ok := s.TabByName(name); ok && tab.Backing == Database {
			if err := s.Refresh(ctx, tab); err != nil {
				return err
			}
			continue
		}
		t, err := s.DB.Load(ctx, name)
		if err != nil {
			return err
		}
		s.addTab(&Tab{
			Name:    name,
			Path:    s.Source.Path,
			Backing: Database,
			Grid:    grid.New(t),
		})
	}
	return nil
}

// Refresh re-reads a tab from its source: its database table, or its CSV
// file for memory tabs that have one. The grid is repopulated without
// firing edit handlers.
func (s *Session) Refresh(ctx context.Context, tab *Tab) error {
	var (
		t   *table.Table
		err error
	)
	switch {
	case tab.Backing == Database && s.DB != nil:
		t, err = s.DB.Load(ctx, tab.Name)
	case tab.Backing == Memory && tab.Path != "":
		t, err = csvio.Read(tab.Path, s.Source.CSV)
		if t != nil {
			t.Name = tab.Name
		}
	default:
		return nil
	}
	if err != nil {
		return err
	}
	tab.Grid.Load(t)
	return nil
}

// Paths returns the files backing the session, for change notification.
func (s *Session) Paths() []string {
	if s.Source.Kind == KindSQLite {
		return []string{s.Source.Path}
	}
	var paths []string
	for _, t := range s.Tabs {
		if t.Path != "" && !slices.Contains(paths, t.Path) {
			paths = append(paths, t.Path)
		}
	}
	return paths
}

// Snapshot returns a deep copy of every tab's table.
func (s *Session) Snapshot() []*table.Table {
	out := make([]*table.Table, len(s.Tabs))
	for i, t := range s.Tabs {
		out[i] = t.Table().Clone()
	}
	return out
}
