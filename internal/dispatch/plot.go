package dispatch

import (
	"github.com/tipy-dev/tipy/internal/plot"
)

// Plot renders columns x and y of the active tab as read from the grid and
// returns the written PNG path.
func (d *Dispatcher) Plot(x, y string) (string, plot.Kind, error) {
	t := d.s.ActiveTab().Table()
	xs, err := t.Column(x)
	if err != nil {
		return "", 0, err
	}
	ys, err := t.Column(y)
	if err != nil {
		return "", 0, err
	}

	path, kind, err := plot.Render(plot.Request{
		X:       x,
		Y:       y,
		XValues: xs,
		YValues: ys,
		Dir:     d.plotsDir,
	})
	if err != nil {
		return "", kind, err
	}
	d.logger.Info("rendered plot", "kind", kind, "path", path)
	return path, kind, nil
}

// PlotsDir returns the directory plots are written to.
func (d *Dispatcher) PlotsDir() string { return d.plotsDir }
