package dispatch

import (
	"fmt"

	"github.com/tipy-dev/tipy/internal/session"
)

// AddTab opens a new tab. In create mode it is an empty page; when editing
// CSV files path names the file loaded into it.
func (d *Dispatcher) AddTab(path string) (*session.Tab, error) {
	if !d.s.Caps.AddTable {
		return nil, ErrNotSupported
	}
	if d.s.Mode == session.Create {
		return d.s.AddPage(), nil
	}
	if path == "" {
		return nil, fmt.Errorf("%w: path", session.ErrMissingField)
	}
	return d.s.OpenCSVTab(path)
}

// CloseTab closes the active tab after confirmation.
func (d *Dispatcher) CloseTab(confirm ConfirmFunc) (bool, error) {
	if !d.s.Caps.DeleteTable {
		return false, ErrNotSupported
	}
	if confirm == nil || !confirm("Are you sure you want to close this tab?") {
		return false, nil
	}
	if err := d.s.CloseTab(d.s.Active); err != nil {
		return false, err
	}
	return true, nil
}

// SelectTab focuses tab i.
func (d *Dispatcher) SelectTab(i int) error {
	return d.s.Select(i)
}
