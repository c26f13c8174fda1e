// Package gfx defines the graphics context capability that the display
// server paints through. A Context is an abstract sink for solid
// rectangle fills and bitmap region copies; concrete backends include
// memory-backed contexts, fan-out contexts, and physical framebuffers.
package gfx

import (
	"image"
	"image/color"
)

// Context is a sink for rendering operations. All coordinates are in
// the context's own coordinate space and implementations clip to their
// own bounds.
type Context interface {
	// SetColor sets the drawing color for subsequent fills.
	SetColor(c color.Color) error

	// FillRect fills r with the current drawing color.
	FillRect(r image.Rectangle) error

	// Blit copies the region sr of src so that sr.Min lands on dp.
	Blit(src image.Image, sr image.Rectangle, dp image.Point) error
}

// FillOutline fills the four edges of r, w pixels thick, with the
// context's current drawing color, clipped to clip. Used for
// move/resize previews.
func FillOutline(gc Context, r, clip image.Rectangle, w int) error {
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(r).Intersect(clip)
		if e.Empty() {
			continue
		}
		if err := gc.FillRect(e); err != nil {
			return err
		}
	}
	return nil
}
