package plot

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Zoom limits in image pixels.
const (
	ZoomStep  = 50
	MinHeight = 50
)

// Viewer holds the zoom and pan state of a rendered plot. Sizes and
// offsets are in viewport pixels.
type Viewer struct {
	img image.Image

	baseW, baseH int
	w, h         int
	x, y         int
	step         int

	dragging     bool
	grabX, grabY int
}

// Open decodes a PNG written by Render.
func Open(path string) (*Viewer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plot: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plot %s: %w", path, err)
	}
	return NewViewer(img), nil
}

// NewViewer shows img at its natural size.
func NewViewer(img image.Image) *Viewer {
	b := img.Bounds()
	v := &Viewer{img: img, baseW: b.Dx(), baseH: b.Dy(), step: ZoomStep}
	v.Reset()
	return v
}

// Fit shrinks the base size so the plot fits a viewport of w by h pixels.
// The zoom step shrinks by the same factor.
func (v *Viewer) Fit(w, h int) {
	b := v.img.Bounds()
	if w <= 0 || h <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	v.baseW = max(1, int(float64(b.Dx())*scale))
	v.baseH = max(1, int(float64(b.Dy())*scale))
	v.step = max(1, int(ZoomStep*scale))
	v.Reset()
}

// Size returns the current scaled size.
func (v *Viewer) Size() (w, h int) { return v.w, v.h }

// Offset returns the top-left corner of the plot in the viewport.
func (v *Viewer) Offset() (x, y int) { return v.x, v.y }

// ZoomIn grows the height by one step, keeping the aspect ratio.
func (v *Viewer) ZoomIn() {
	v.w += v.step * v.w / v.h
	v.h += v.step
}

// ZoomOut shrinks the height by one step. The height never drops below the
// minimum.
func (v *Viewer) ZoomOut() {
	floor := max(1, MinHeight*v.step/ZoomStep)
	if v.h-v.step < floor {
		return
	}
	v.w -= v.step * v.w / v.h
	v.h -= v.step
}

// Reset restores the base size and puts the plot back at the origin.
func (v *Viewer) Reset() {
	v.w, v.h = v.baseW, v.baseH
	v.x, v.y = 0, 0
	v.dragging = false
}

// Press starts a drag at viewport position (x, y).
func (v *Viewer) Press(x, y int) {
	v.dragging = true
	v.grabX, v.grabY = x-v.x, y-v.y
}

// Move drags the plot so the grabbed point follows the pointer.
func (v *Viewer) Move(x, y int) {
	if !v.dragging {
		return
	}
	v.x, v.y = x-v.grabX, y-v.grabY
}

// Release ends a drag.
func (v *Viewer) Release() { v.dragging = false }

// Pan shifts the plot by (dx, dy).
func (v *Viewer) Pan(dx, dy int) {
	v.x += dx
	v.y += dy
}

// Frame renders a w by h viewport with the scaled plot at its offset.
func (v *Viewer) Frame(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	target := image.Rect(v.x, v.y, v.x+v.w, v.y+v.h)
	if target.Overlaps(dst.Bounds()) {
		draw.BiLinear.Scale(dst, target, v.img, v.img.Bounds(), draw.Over, nil)
	}
	return dst
}
