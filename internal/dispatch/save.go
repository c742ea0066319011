package dispatch

import (
	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/session"
)

// Save writes the active tab back to its CSV file. Database tabs are
// persisted on every edit, so saving them does nothing.
func (d *Dispatcher) Save() error {
	tab := d.s.ActiveTab()
	if tab.Backing == session.Database {
		return nil
	}
	if tab.Path == "" {
		return ErrNeedsPath
	}
	if err := csvio.Write(tab.Path, tab.Table(), d.s.Source.CSV); err != nil {
		return err
	}
	d.logger.Info("saved table", "tab", tab.Name, "path", tab.Path)
	return nil
}

// SaveAs writes the active tab to a new CSV file, which becomes the tab's
// file for later saves.
func (d *Dispatcher) SaveAs(path string) error {
	tab := d.s.ActiveTab()
	if tab.Backing == session.Database {
		return ErrNotSupported
	}
	if path == "" {
		return ErrNeedsPath
	}
	if err := csvio.Write(path, tab.Table(), d.s.Source.CSV); err != nil {
		return err
	}
	tab.Path = path
	d.logger.Info("saved table", "tab", tab.Name, "path", path)
	return nil
}
