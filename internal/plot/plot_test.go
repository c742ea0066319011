package plot

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"42", true},
		{"3.14", true},
		{".5", true},
		{"5.", true},
		{"1.2.3", false},
		{"-1", false},
		{"1e5", false},
		{" 1", false},
		{"", false},
		{".", false},
		{"abc", false},
		{"٣", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNumeric(tt.in), "%q", tt.in)
	}
}

func TestIsNumericColumn(t *testing.T) {
	assert.True(t, IsNumericColumn([]string{"1", "2.5"}))
	assert.False(t, IsNumericColumn([]string{"1", "x"}))
	assert.False(t, IsNumericColumn(nil), "empty column is categorical")
}

func TestChoose(t *testing.T) {
	tests := []struct {
		x, y    bool
		want    Kind
		wantErr bool
	}{
		{x: true, y: true, want: Line},
		{x: false, y: true, want: VerticalBars},
		{x: true, y: false, want: HorizontalBars},
		{x: false, y: false, wantErr: true},
	}
	for _, tt := range tests {
		got, err := Choose(tt.x, tt.y)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrNotNumeric)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLinePoints_SortsAndAverages(t *testing.T) {
	xs, ys := LinePoints([]string{"3", "1", "3", "2"}, []string{"10", "5", "20", "7"})
	assert.Equal(t, []float64{1, 2, 3}, xs)
	assert.Equal(t, []float64{5, 7, 15}, ys)
}

func TestCategoryMeans_FirstAppearanceOrder(t *testing.T) {
	cats, means := CategoryMeans([]string{"b", "a", "b"}, []string{"2", "3", "4"})
	assert.Equal(t, []string{"b", "a"}, cats)
	assert.Equal(t, []float64{3, 3}, means)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "x_to_y.png", FileName("x", "y"))
	assert.Equal(t, "a_b_to_c.png", FileName("a/b", "c"))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Kind
	}{
		{
			name: "line",
			req:  Request{X: "x", Y: "y", XValues: []string{"1", "2", "3"}, YValues: []string{"2", "4", "3"}},
			want: Line,
		},
		{
			name: "single point line",
			req:  Request{X: "x", Y: "y", XValues: []string{"1"}, YValues: []string{"1"}},
			want: Line,
		},
		{
			name: "vertical bars",
			req:  Request{X: "city", Y: "pop", XValues: []string{"a", "b", "a"}, YValues: []string{"1", "2", "3"}},
			want: VerticalBars,
		},
		{
			name: "horizontal bars",
			req:  Request{X: "pop", Y: "city", XValues: []string{"1", "2"}, YValues: []string{"a", "b"}},
			want: HorizontalBars,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "plots")
			tt.req.Dir = dir

			path, kind, err := Render(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, filepath.Join(dir, FileName(tt.req.X, tt.req.Y)), path)

			v, err := Open(path)
			require.NoError(t, err)
			w, h := v.Size()
			assert.Equal(t, DefaultWidth, w)
			assert.Equal(t, DefaultHeight, h)
		})
	}
}

func TestRender_BothCategoricalWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	_, _, err := Render(Request{X: "a", Y: "b", XValues: []string{"x"}, YValues: []string{"y"}, Dir: dir})
	require.ErrorIs(t, err, ErrNotNumeric)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestViewer_Zoom(t *testing.T) {
	v := NewViewer(solid(200, 100))

	v.ZoomIn()
	w, h := v.Size()
	assert.Equal(t, 300, w, "width grows by step*w/h")
	assert.Equal(t, 150, h)

	v.ZoomOut()
	v.ZoomOut()
	w, h = v.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	v.ZoomOut()
	_, h = v.Size()
	assert.Equal(t, 50, h, "height stops at the minimum")

	v.Reset()
	w, h = v.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestViewer_Drag(t *testing.T) {
	v := NewViewer(solid(10, 10))

	v.Move(5, 5)
	x, y := v.Offset()
	assert.Equal(t, 0, x, "moving without a press does nothing")
	assert.Equal(t, 0, y)

	v.Press(2, 3)
	v.Move(12, 8)
	x, y = v.Offset()
	assert.Equal(t, 10, x)
	assert.Equal(t, 5, y)

	v.Release()
	v.Move(0, 0)
	x, _ = v.Offset()
	assert.Equal(t, 10, x)

	v.Pan(-10, -5)
	x, y = v.Offset()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

func TestViewer_FitAndFrame(t *testing.T) {
	v := NewViewer(solid(640, 480))
	v.Fit(64, 96)

	w, h := v.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	f := v.Frame(64, 96)
	assert.Equal(t, image.Rect(0, 0, 64, 96), f.Bounds())

	r, _, _, _ := f.At(10, 10).RGBA()
	assert.Zero(t, r, "plot area is drawn")
	r, _, _, _ = f.At(10, 80).RGBA()
	assert.NotZero(t, r, "outside the plot stays white")
}
