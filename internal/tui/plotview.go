package tui

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/tipy-dev/tipy/internal/plot"
)

// plotForm picks the X and Y columns.
type plotForm struct {
	headers []string
	x, y    int
	focusY  bool
}

func newPlotForm(headers []string) *plotForm {
	f := &plotForm{headers: headers}
	if len(headers) > 1 {
		f.y = 1
	}
	return f
}

// Update reports whether the form was submitted or cancelled.
func (f *plotForm) Update(msg tea.KeyMsg) (submit, cancel bool) {
	n := len(f.headers)
	move := func(d int) {
		if n == 0 {
			return
		}
		if f.focusY {
			f.y = (f.y + d + n) % n
		} else {
			f.x = (f.x + d + n) % n
		}
	}
	switch msg.String() {
	case "enter":
		return n > 0, false
	case "esc", "q":
		return false, true
	case "tab", "shift+tab", "up", "down", "k", "j":
		f.focusY = !f.focusY
	case "left", "h":
		move(-1)
	case "right", "l":
		move(1)
	}
	return false, false
}

func (f *plotForm) columns() (x, y string) {
	return f.headers[f.x], f.headers[f.y]
}

func (f *plotForm) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Build plot"))
	b.WriteString("\n\n")
	if len(f.headers) == 0 {
		b.WriteString(statusStyle.Render("The table has no columns."))
		return b.String()
	}
	row := func(name string, focused bool, idx int) {
		label := labelStyle.Render(name)
		if focused {
			label = focusLabelStyle.Render(name)
		}
		b.WriteString(label + "‹ " + f.headers[idx] + " ›\n")
	}
	row("X axis", !f.focusY, f.x)
	row("Y axis", f.focusY, f.y)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("←/→: column · tab: axis · enter: build · esc: back"))
	return b.String()
}

// plotViewer shows a rendered plot with half-block characters: every
// terminal cell holds two vertically stacked pixels.
type plotViewer struct {
	path string
	v    *plot.Viewer
	keys KeyMap
	top  int
}

func newPlotViewer(path string, v *plot.Viewer, keys KeyMap, width, height int) *plotViewer {
	pv := &plotViewer{path: path, v: v, keys: keys, top: 1}
	pv.fit(width, height)
	return pv
}

func (pv *plotViewer) fit(width, height int) {
	pv.v.Fit(width, pixelRows(height))
}

// pixelRows is the pixel height available between the title and help lines.
func pixelRows(height int) int {
	return max(height-2, 1) * 2
}

// Update reports whether the viewer was closed.
func (pv *plotViewer) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pv.keys.Back), key.Matches(msg, pv.keys.Quit):
			return true
		case key.Matches(msg, pv.keys.ZoomIn):
			pv.v.ZoomIn()
		case key.Matches(msg, pv.keys.ZoomOut):
			pv.v.ZoomOut()
		case key.Matches(msg, pv.keys.Reset):
			pv.v.Reset()
		case msg.String() == "h", msg.String() == "left":
			pv.v.Pan(-4, 0)
		case msg.String() == "l", msg.String() == "right":
			pv.v.Pan(4, 0)
		case msg.String() == "k":
			pv.v.Pan(0, -4)
		case msg.String() == "j":
			pv.v.Pan(0, 4)
		}
	case tea.MouseMsg:
		x, y := msg.X, (msg.Y-pv.top)*2
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			pv.v.ZoomIn()
		case msg.Button == tea.MouseButtonWheelDown:
			pv.v.ZoomOut()
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			pv.v.Press(x, y)
		case msg.Action == tea.MouseActionMotion:
			pv.v.Move(x, y)
		case msg.Action == tea.MouseActionRelease:
			pv.v.Release()
		}
	}
	return false
}

func (pv *plotViewer) View(width, height int, profile termenv.Profile) string {
	rows := pixelRows(height) / 2
	frame := pv.v.Frame(width, rows*2)

	var b strings.Builder
	b.WriteString(titleStyle.Render(pv.path))
	b.WriteString("\n")
	for cy := 0; cy < rows; cy++ {
		for x := 0; x < width; x++ {
			top, bottom := frame.RGBAAt(x, cy*2), frame.RGBAAt(x, cy*2+1)
			b.WriteString(halfBlock(top, bottom, profile))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// shades runs from light to dark so white paper stays blank.
const shades = " .:-=+*#%@"

func halfBlock(top, bottom color.RGBA, profile termenv.Profile) string {
	if profile == termenv.Ascii {
		l := (luma(top) + luma(bottom)) / 2
		i := (255 - l) * (len(shades) - 1) / 255
		return string(shades[i])
	}
	return profile.String("▀").
		Foreground(profile.FromColor(top)).
		Background(profile.FromColor(bottom)).
		String()
}

func luma(c color.RGBA) int {
	return (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
}
