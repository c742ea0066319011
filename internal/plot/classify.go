// Package plot renders two grid columns as a line or bar chart PNG and
// keeps the zoom and pan state of the plot viewer.
package plot

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when neither column is entirely numeric.
var ErrNotNumeric = errors.New("no column is filled with numbers entirely")

// IsNumeric reports whether s is a plain unsigned decimal: digits with at
// most one dot somewhere. Signs, exponents and surrounding space do not
// count.
func IsNumeric(s string) bool {
	s = strings.Replace(s, ".", "", 1)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsNumericColumn reports whether every value is numeric. An empty column
// is categorical.
func IsNumericColumn(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !IsNumeric(v) {
			return false
		}
	}
	return true
}

// Kind is the chart chosen for a pair of columns.
type Kind int

const (
	Line Kind = iota
	VerticalBars
	HorizontalBars
)

func (k Kind) String() string {
	switch k {
	case VerticalBars:
		return "bar"
	case HorizontalBars:
		return "horizontal bar"
	default:
		return "line"
	}
}

// Choose picks the chart for an X and a Y column.
func Choose(xNumeric, yNumeric bool) (Kind, error) {
	switch {
	case xNumeric && yNumeric:
		return Line, nil
	case yNumeric:
		return VerticalBars, nil
	case xNumeric:
		return HorizontalBars, nil
	default:
		return 0, ErrNotNumeric
	}
}

func parse(values []string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i], _ = strconv.ParseFloat(v, 64)
	}
	return out
}

// LinePoints sorts the points by x and averages y over duplicate x values.
func LinePoints(xs, ys []string) ([]float64, []float64) {
	x, y := parse(xs), parse(ys)
	n := min(len(x), len(y))

	sums := make(map[float64]float64, n)
	counts := make(map[float64]int, n)
	for i := 0; i < n; i++ {
		sums[x[i]] += y[i]
		counts[x[i]]++
	}

	keys := make([]float64, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	means := make([]float64, len(keys))
	for i, k := range keys {
		means[i] = sums[k] / float64(counts[k])
	}
	return keys, means
}

// CategoryMeans averages the numeric values per category. Categories keep
// the order of their first appearance.
func CategoryMeans(categories, values []string) ([]string, []float64) {
	v := parse(values)
	n := min(len(categories), len(v))

	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		c := categories[i]
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		sums[c] += v[i]
		counts[c]++
	}

	means := make([]float64, len(order))
	for i, c := range order {
		means[i] = sums[c] / float64(counts[c])
	}
	return order, means
}
