package display

import (
	"image"

	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/gfx/clonegc"
	"github.com/fenestra-os/display/gfx/memgc"
)

// DDev is a physical display output: a graphics context plus the
// geometry the device reports for it.
type DDev interface {
	Rect() image.Rectangle
	Context() gfx.Context
}

// AddDDev attaches a display device. The first device fixes the screen
// rectangle and creates the fan-out context (and the backbuffer, if
// double-buffering is enabled); every further device becomes an
// additional mirrored output with the same geometry.
func (d *Display) AddDDev(dd DDev) {
	for _, v := range d.ddevs {
		if v == dd {
			panic("display: display device already attached")
		}
	}
	d.ddevs = append(d.ddevs, dd)

	if d.rect.Empty() {
		d.rect = dd.Rect()
		d.fbgc = clonegc.New(dd.Context())
		d.allocBackbuf()
		return
	}

	d.fbgc.AddOutput(dd.Context())
}

// RemoveDDev detaches a display device and removes its context from
// the fan-out set. Detaching the last device resets the screen
// rectangle to empty; the next device attached renegotiates geometry
// from scratch.
func (d *Display) RemoveDDev(dd DDev) {
	i := -1
	for j, v := range d.ddevs {
		if v == dd {
			i = j
			break
		}
	}
	if i < 0 {
		return
	}
	d.ddevs = append(d.ddevs[:i], d.ddevs[i+1:]...)

	if d.fbgc != nil {
		d.fbgc.RemoveOutput(dd.Context())
	}
	if len(d.ddevs) == 0 {
		d.rect = image.Rectangle{}
		d.dirty = image.Rectangle{}
		d.fbgc = nil
		d.backbuf = nil
		d.bbgc = nil
	}
}

// allocBackbuf builds the offscreen backbuffer and the memory context
// whose invalidate callback accumulates the dirty rectangle. Present
// requests on the backbuffer are ignored; presentation is driven by
// the paint pipeline.
func (d *Display) allocBackbuf() {
	if d.flags&DoubleBuffered == 0 {
		return
	}

	d.backbuf = gfx.NewARGB8888(d.rect)
	d.bbgc = memgc.New(d.backbuf, backbufCallbacks{d})
	d.dirty = image.Rectangle{}
}

type backbufCallbacks struct {
	d *Display
}

func (cb backbufCallbacks) Invalidate(rect image.Rectangle) {
	cb.d.dirty = cb.d.dirty.Union(rect)
}

func (cb backbufCallbacks) Update() {}

// gc returns the context all compositing draws into: the backbuffer
// context when double-buffered, the fan-out context otherwise. It is
// nil until a display device is attached.
func (d *Display) gc() gfx.Context {
	if d.flags&DoubleBuffered != 0 && d.bbgc != nil {
		return d.bbgc
	}
	if d.fbgc == nil {
		return nil
	}
	return d.fbgc
}

// paintBg fills the requested region with the background color.
func (d *Display) paintBg(rect image.Rectangle) error {
	gc := d.gc()
	if gc == nil {
		return nil
	}

	if err := gc.SetColor(d.bg); err != nil {
		return err
	}
	return gc.FillRect(rect.Intersect(d.rect))
}

// Paint composites the given region of the display: background, then
// windows back to front, then move/resize previews, then seat
// pointers, then the present step. The caller must hold the display
// lock. The first failing step aborts the frame and is returned;
// whatever was already painted stays visible.
func (d *Display) Paint(rect image.Rectangle) error {
	if err := d.paintBg(rect); err != nil {
		return err
	}

	for i := len(d.windows) - 1; i >= 0; i-- {
		if err := d.windows[i].paint(rect); err != nil {
			return err
		}
	}

	// Previews go in a second pass so that they are never obscured by
	// window content.
	for i := len(d.windows) - 1; i >= 0; i-- {
		if err := d.windows[i].paintPreview(rect); err != nil {
			return err
		}
	}

	for _, s := range d.seats {
		if err := s.paintPointer(rect); err != nil {
			return err
		}
	}

	return d.update()
}

// Refresh repaints the whole screen.
func (d *Display) Refresh() error {
	return d.Paint(d.rect)
}

// update copies the dirty rectangle from the backbuffer to the fan-out
// context and resets it. A no-op when not double-buffered.
func (d *Display) update() error {
	if d.backbuf == nil {
		return nil
	}

	if !d.dirty.Empty() {
		if err := d.fbgc.Blit(d.backbuf, d.dirty, d.dirty.Min); err != nil {
			return err
		}
	}
	d.dirty = image.Rectangle{}
	return nil
}
