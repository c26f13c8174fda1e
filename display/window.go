package display

import (
	"errors"
	"image"
	"image/color"

	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/gfx/memgc"
	"github.com/sirupsen/logrus"
)

// WindowFlags control a window's stacking and window-management
// visibility.
type WindowFlags uint32

const (
	// Topmost keeps the window in front of all non-topmost windows.
	Topmost WindowFlags = 1 << iota
	// Popup marks transient surfaces (menus, tooltips) that window
	// lists should skip.
	Popup
	// System marks server-owned surfaces that window lists should skip.
	System
)

// WindowParams describes a window to be created.
type WindowParams struct {
	// Rect is the window-local bounding rectangle of the content.
	Rect image.Rectangle
	// Pos is the initial position of the window origin on the display.
	Pos     image.Point
	Caption string
	Flags   WindowFlags
}

var previewColor = color.RGBA64{R: 0x2000, G: 0x2000, B: 0x2000, A: 0xffff}

// Window is a rectangular, z-ordered, client-owned paintable surface.
// Content is drawn by the client through the window's memory context
// and composited by the display.
type Window struct {
	client  *Client
	id      WindowID
	caption string
	flags   WindowFlags

	// dpos is the position of the window origin on the display; rect
	// is the content bounds in window-local coordinates.
	dpos image.Point
	rect image.Rectangle

	content *gfx.ARGB8888
	gc      *memgc.GC

	// damage is the window-local envelope of content writes since the
	// last present.
	damage image.Rectangle

	// preview, when non-empty, is the outline rectangle (in display
	// coordinates) shown while the window is interactively moved or
	// resized.
	preview image.Rectangle
}

// CreateWindow creates a window owned by the client, enlists it in the
// display stacking order and notifies window managers.
func (c *Client) CreateWindow(params WindowParams) (*Window, error) {
	if c.display == nil {
		panic("display: creating window on unregistered client")
	}
	if params.Rect.Empty() {
		return nil, errors.New("create window: empty geometry")
	}

	wnd := &Window{
		client:  c,
		id:      c.display.allocWindowID(),
		caption: params.Caption,
		flags:   params.Flags,
		dpos:    params.Pos,
		rect:    params.Rect.Canon(),
	}
	wnd.content = gfx.NewARGB8888(wnd.rect)
	wnd.gc = memgc.New(wnd.content, windowCallbacks{wnd})

	c.windows[wnd.id] = wnd
	c.display.AddWindow(wnd)
	return wnd, nil
}

// Destroy removes the window from its client and from the display,
// releasing seat focus and repainting the vacated region.
func (w *Window) Destroy() error {
	d := w.client.display
	drect := w.DisplayRect()

	d.RemoveWindow(w)
	delete(w.client.windows, w.id)
	return d.Paint(drect)
}

type windowCallbacks struct {
	wnd *Window
}

func (cb windowCallbacks) Invalidate(rect image.Rectangle) {
	cb.wnd.damage = cb.wnd.damage.Union(rect)
}

func (cb windowCallbacks) Update() {
	if err := cb.wnd.Present(); err != nil {
		logrus.WithError(err).Warn("window present failed")
	}
}

func (w *Window) ID() WindowID {
	return w.id
}

func (w *Window) Caption() string {
	return w.caption
}

func (w *Window) Flags() WindowFlags {
	return w.flags
}

// Rect returns the content bounds in window-local coordinates.
func (w *Window) Rect() image.Rectangle {
	return w.rect
}

// Pos returns the position of the window origin on the display.
func (w *Window) Pos() image.Point {
	return w.dpos
}

// DisplayRect returns the window's bounding rectangle in display
// coordinates.
func (w *Window) DisplayRect() image.Rectangle {
	return w.rect.Add(w.dpos)
}

// GC returns the context the client draws window content through.
func (w *Window) GC() *memgc.GC {
	return w.gc
}

// Present composites the window's accumulated damage onto the display.
func (w *Window) Present() error {
	if w.damage.Empty() {
		return nil
	}
	damage := w.damage.Add(w.dpos)
	w.damage = image.Rectangle{}
	return w.client.display.Paint(damage)
}

// SetCaption renames the window and notifies window managers.
func (w *Window) SetCaption(caption string) {
	w.caption = caption
	w.client.display.notifyWM(func(wm *WMClient) error {
		return wm.postWindowChanged(w.id)
	})
}

// MoveTo moves the window origin and repaints the union of the old and
// new bounding rectangles.
func (w *Window) MoveTo(pos image.Point) error {
	old := w.DisplayRect()
	w.dpos = pos
	return w.client.display.Paint(old.Union(w.DisplayRect()))
}

// Resize replaces the window's content bounds, carrying over the
// content that still fits.
func (w *Window) Resize(rect image.Rectangle) error {
	if rect.Empty() {
		return errors.New("resize window: empty geometry")
	}

	old := w.DisplayRect()
	content := gfx.NewARGB8888(rect.Canon())
	gc := memgc.New(content, windowCallbacks{wnd: w})
	if err := gc.Blit(w.content, w.rect, w.rect.Min); err != nil {
		return err
	}

	w.rect = rect.Canon()
	w.content = content
	w.gc = gc
	w.damage = image.Rectangle{}
	return w.client.display.Paint(old.Union(w.DisplayRect()))
}

// SetPreview shows (or, with an empty rectangle, hides) the move or
// resize preview outline for the window. rect is in display
// coordinates.
func (w *Window) SetPreview(rect image.Rectangle) error {
	old := w.preview
	w.preview = rect.Canon()
	return w.client.display.Paint(old.Union(w.preview))
}

// paint composites the window content clipped to rect.
func (w *Window) paint(rect image.Rectangle) error {
	gc := w.client.display.gc()
	if gc == nil {
		return nil
	}

	crect := w.DisplayRect().Intersect(rect)
	if crect.Empty() {
		return nil
	}
	return gc.Blit(w.content, crect.Sub(w.dpos), crect.Min)
}

// paintPreview paints the move/resize outline, if active, clipped to
// rect.
func (w *Window) paintPreview(rect image.Rectangle) error {
	if w.preview.Empty() {
		return nil
	}

	gc := w.client.display.gc()
	if gc == nil {
		return nil
	}

	if err := gc.SetColor(previewColor); err != nil {
		return err
	}
	return gfx.FillOutline(gc, w.preview, rect, 2)
}
