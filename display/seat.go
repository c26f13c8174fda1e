package display

import (
	"image"

	"github.com/fenestra-os/display/internal/set"
)

// Seat is an input-routing identity: a keyboard focus, a set of bound
// input devices, and a pointer with a cursor.
type Seat struct {
	display *Display

	// focus is a weak reference: the ID resolves to nil once the
	// window is destroyed, and RemoveWindow clears it eagerly.
	focus WindowID

	devices set.Set[DeviceID]
	cursor  *Cursor
	pos     image.Point
	hidden  bool
}

// NewSeat creates a seat. Register it with Display.AddSeat, which also
// assigns the default pointer cursor.
func NewSeat() *Seat {
	return &Seat{
		devices: set.New[DeviceID](),
	}
}

// AddDevice binds an input device to the seat.
func (s *Seat) AddDevice(dev DeviceID) {
	s.devices.Add(dev)
}

// RemoveDevice unbinds an input device from the seat.
func (s *Seat) RemoveDevice(dev DeviceID) {
	s.devices.Remove(dev)
}

// Focus returns the focused window, or nil if there is none or it has
// been destroyed.
func (s *Seat) Focus() *Window {
	return s.display.FindWindow(s.focus)
}

// SetFocus focuses the given window, or clears focus when wnd is nil.
func (s *Seat) SetFocus(wnd *Window) {
	if wnd == nil {
		s.focus = 0
		return
	}
	s.focus = wnd.id
}

// unfocus drops focus if it is on the given window. Called while the
// window is being removed from the display.
func (s *Seat) unfocus(id WindowID) {
	if s.focus == id {
		s.focus = 0
	}
}

// Pos returns the pointer position.
func (s *Seat) Pos() image.Point {
	return s.pos
}

// SetCursor switches the pointer image and repaints the pointer.
func (s *Seat) SetCursor(cur *Cursor) error {
	old := s.pointerRect()
	s.cursor = cur
	return s.display.Paint(old.Union(s.pointerRect()))
}

// SetHidden hides or shows the pointer.
func (s *Seat) SetHidden(hidden bool) error {
	s.hidden = hidden
	return s.display.Paint(s.pointerRect())
}

// PostKbdEvent forwards a keyboard event to the focused window. With
// no focus the event is dropped.
func (s *Seat) PostKbdEvent(ev KbdEvent) error {
	wnd := s.Focus()
	if wnd == nil {
		return nil
	}
	return wnd.client.postKbdEvent(wnd.id, ev)
}

// PostPtdEvent handles a pointer event: motion moves the pointer and
// repaints it, a button press focuses and raises the window under the
// pointer, and press/release events are forwarded to the focused
// window with window-local coordinates.
func (s *Seat) PostPtdEvent(ev PtdEvent) error {
	d := s.display

	switch ev.Type {
	case PtdMove:
		old := s.pointerRect()
		s.pos = clampToRect(ev.Pos, d.rect)
		return d.Paint(old.Union(s.pointerRect()))

	case PtdPress:
		wnd := d.WindowByPos(s.pos)
		if wnd != nil && wnd != s.Focus() {
			d.WindowToTop(wnd)
			s.focus = wnd.id
			if err := d.Paint(wnd.DisplayRect()); err != nil {
				return err
			}
		}
	}

	wnd := s.Focus()
	if wnd == nil {
		return nil
	}
	ev.Pos = s.pos.Sub(wnd.dpos)
	return wnd.client.postPtdEvent(wnd.id, ev)
}

// pointerRect returns the cursor's bounding rectangle on the display.
func (s *Seat) pointerRect() image.Rectangle {
	if s.cursor == nil {
		return image.Rectangle{}
	}
	return s.cursor.image.Bounds().Add(s.pos.Sub(s.cursor.hotspot))
}

// paintPointer blits the cursor image at the pointer position, clipped
// to rect.
func (s *Seat) paintPointer(rect image.Rectangle) error {
	if s.cursor == nil || s.hidden {
		return nil
	}

	gc := s.display.gc()
	if gc == nil {
		return nil
	}

	crect := s.pointerRect().Intersect(rect)
	if crect.Empty() {
		return nil
	}

	origin := s.pos.Sub(s.cursor.hotspot)
	return gc.Blit(s.cursor.image, crect.Sub(origin), crect.Min)
}

func clampToRect(p image.Point, r image.Rectangle) image.Point {
	if r.Empty() {
		return p
	}
	return image.Point{
		X: min(max(p.X, r.Min.X), r.Max.X-1),
		Y: min(max(p.Y, r.Min.Y), r.Max.Y-1),
	}
}
