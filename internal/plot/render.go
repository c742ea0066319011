package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default output size in pixels.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

var barColor = drawing.Color{R: 0, G: 116, B: 217, A: 255}

// Request names the two columns to plot and their values.
type Request struct {
	X, Y    string
	XValues []string
	YValues []string
	Dir     string
	Width   int
	Height  int
}

// FileName returns the PNG name for an X/Y pair. Path separators in column
// names are replaced so the file always lands inside the plots directory.
func FileName(x, y string) string {
	r := strings.NewReplacer("/", "_", `\`, "_")
	return r.Replace(x) + "_to_" + r.Replace(y) + ".png"
}

// Render draws the chart for req into <Dir>/<X>_to_<Y>.png and returns the
// path of the written file. Nothing is written when the columns cannot be
// plotted.
func Render(req Request) (string, Kind, error) {
	kind, err := Choose(IsNumericColumn(req.XValues), IsNumericColumn(req.YValues))
	if err != nil {
		return "", 0, err
	}
	if req.Width <= 0 {
		req.Width = DefaultWidth
	}
	if req.Height <= 0 {
		req.Height = DefaultHeight
	}

	var buf bytes.Buffer
	switch kind {
	case Line:
		err = renderLine(&buf, req)
	case VerticalBars:
		err = renderVerticalBars(&buf, req)
	case HorizontalBars:
		err = renderHorizontalBars(&buf, req)
	}
	if err != nil {
		return "", kind, fmt.Errorf("failed to render %s chart: %w", kind, err)
	}

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return "", kind, fmt.Errorf("failed to create plots directory: %w", err)
	}
	path := filepath.Join(req.Dir, FileName(req.X, req.Y))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // G306
		return "", kind, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, kind, nil
}

func renderLine(buf *bytes.Buffer, req Request) error {
	xs, ys := LinePoints(req.XValues, req.YValues)
	if len(xs) == 0 {
		return errors.New("no points to plot")
	}
	xMin, xMax := bounds(xs, false)
	yMin, yMax := bounds(ys, false)

	c := chart.Chart{
		Width:  req.Width,
		Height: req.Height,
		XAxis: chart.XAxis{
			Name:  req.X,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  req.Y,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    req.Y,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: barColor,
					StrokeWidth: 2,
				},
			},
		},
	}
	return c.Render(chart.PNG, buf)
}

func renderVerticalBars(buf *bytes.Buffer, req Request) error {
	cats, means := CategoryMeans(req.XValues, req.YValues)
	if len(cats) == 0 {
		return errors.New("no bars to plot")
	}
	lo, hi := bounds(means, true)
	bw := barWidth(req.Width, len(cats))

	bars := make([]chart.Value, len(cats))
	for i, c := range cats {
		bars[i] = chart.Value{
			Label: c,
			Value: means[i],
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
	}

	c := chart.BarChart{
		Title:      req.Y + " by " + req.X,
		Width:      req.Width,
		Height:     req.Height,
		BarWidth:   bw,
		BarSpacing: bw,
		YAxis: chart.YAxis{
			Name:  req.Y,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	return c.Render(chart.PNG, buf)
}

func renderHorizontalBars(buf *bytes.Buffer, req Request) error {
	cats, means := CategoryMeans(req.YValues, req.XValues)
	if len(cats) == 0 {
		return errors.New("no bars to plot")
	}
	lo, hi := bounds(means, true)

	// Padding ticks keep the first and last bar off the frame.
	ticks := make([]chart.Tick, 0, len(cats)+2)
	ticks = append(ticks, chart.Tick{Value: -1})
	for i, c := range cats {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: c})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(cats))})

	c := chart.Chart{
		Width:  req.Width,
		Height: req.Height,
		XAxis: chart.XAxis{
			Name:  req.X,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: chart.YAxis{
			Name:  req.Y,
			Ticks: ticks,
		},
		Series: []chart.Series{hbarSeries{name: req.X, values: means}},
	}
	return c.Render(chart.PNG, buf)
}

// bounds returns a non-degenerate range over values. Bar ranges always
// include zero.
func bounds(values []float64, fromZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if fromZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if hi-lo == 0 {
		hi = lo + 1
	}
	return lo, hi
}

func barWidth(width, n int) int {
	w := (width - 100) / (2 * n)
	return max(4, min(w, 60))
}

// hbarSeries draws one horizontal bar per value at y = index.
type hbarSeries struct {
	name   string
	values []float64
}

func (s hbarSeries) GetName() string           { return s.name }
func (s hbarSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s hbarSeries) GetStyle() chart.Style     { return chart.Style{FillColor: barColor} }

func (s hbarSeries) Validate() error {
	if len(s.values) == 0 {
		return errors.New("horizontal bars: no values")
	}
	return nil
}

func (s hbarSeries) Render(r chart.Renderer, canvas chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	step := yrange.Translate(1) - yrange.Translate(0)
	half := max(2, step*3/8)
	zero := canvas.Left + xrange.Translate(math.Max(xrange.GetMin(), 0))

	style := chart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1}
	for i, v := range s.values {
		y := canvas.Bottom - yrange.Translate(float64(i))
		x := canvas.Left + xrange.Translate(v)
		left, right := min(zero, x), max(zero, x)
		chart.Draw.Box(r, chart.Box{Top: y - half, Left: left, Right: right, Bottom: y + half}, style)
	}
}
