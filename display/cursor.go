package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fenestra-os/display/gfx"
)

// Cursor is a pointer image with a hotspot: the pixel within the image
// that tracks the pointer position.
type Cursor struct {
	image   *gfx.ARGB8888
	hotspot image.Point
}

// NewCursor creates a cursor from an image and a hotspot offset.
func NewCursor(img *gfx.ARGB8888, hotspot image.Point) *Cursor {
	return &Cursor{
		image:   img,
		hotspot: hotspot,
	}
}

// Image returns the cursor bitmap.
func (c *Cursor) Image() *gfx.ARGB8888 {
	return c.image
}

// Hotspot returns the hotspot offset within the image.
func (c *Cursor) Hotspot() image.Point {
	return c.hotspot
}

// StdCursor names one of the built-in cursors instantiated at display
// creation.
type StdCursor int

const (
	// CursorArrow is the default pointer.
	CursorArrow StdCursor = iota
	// CursorSizeUD is the vertical resize pointer.
	CursorSizeUD
	// CursorSizeLR is the horizontal resize pointer.
	CursorSizeLR
	// CursorSizeULDR is the up-left/down-right diagonal resize pointer.
	CursorSizeULDR
	// CursorSizeURDL is the up-right/down-left diagonal resize pointer.
	CursorSizeURDL

	stdCursorLimit
)

var (
	cursorOutline = color.RGBA64{A: 0xffff}
	cursorFill    = color.RGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0xffff}
)

// newCursor rasterizes a built-in cursor image. 'X' is the outline
// color, '.' the fill, anything else transparent.
func newCursor(ci cursorImage) (*Cursor, error) {
	if len(ci.art) == 0 {
		return nil, fmt.Errorf("cursor image: empty")
	}

	w := len(ci.art[0])
	img := gfx.NewARGB8888(image.Rect(0, 0, w, len(ci.art)))
	for y, row := range ci.art {
		if len(row) != w {
			return nil, fmt.Errorf("cursor image: ragged row %v", y)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case 'X':
				img.Set(x, y, cursorOutline)
			case '.':
				img.Set(x, y, cursorFill)
			}
		}
	}

	return NewCursor(img, ci.hotspot), nil
}
