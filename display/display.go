// Package display implements the compositor core of the display
// server: the window, client, seat, cursor and output registries, the
// stacking order, and the dirty-region double-buffered paint pipeline.
//
// A Display is guarded by a single mutual-exclusion lock. Any caller
// accessing the display or its child objects must hold the lock for
// the duration of one logical operation, including all paint work done
// on its behalf.
package display

import (
	"fmt"
	"image"
	"image/color"
	"slices"
	"sync"

	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/gfx/clonegc"
	"github.com/fenestra-os/display/gfx/memgc"
	"github.com/sirupsen/logrus"
)

// WindowID identifies a window for the lifetime of the display. IDs
// are never reused; a lookup of a destroyed window's ID yields nil.
type WindowID uint32

// DeviceID identifies a physical input device.
type DeviceID uint32

// Flags control display-wide behavior.
type Flags uint32

const (
	// DoubleBuffered renders through an offscreen backbuffer and
	// presents only the accumulated dirty rectangle.
	DoubleBuffered Flags = 1 << iota
)

// Display is the top-level server object. It owns every registry and
// the presentation pipeline.
type Display struct {
	mu    sync.Mutex
	rect  image.Rectangle
	bg    color.Color
	flags Flags

	// dirty is the envelope of all backbuffer writes since the last
	// present. Always contained in rect.
	dirty image.Rectangle

	fbgc    *clonegc.GC
	backbuf *gfx.ARGB8888
	bbgc    *memgc.GC

	clients   []*Client
	wmclients []*WMClient
	seats     []*Seat
	ddevs     []DDev
	cursors   []*Cursor
	std       [stdCursorLimit]*Cursor

	// windows is the global stacking order, front to back, partitioned
	// as [topmost...][normal...].
	windows []*Window

	nextWndID WindowID
}

// defaultBackground matches the classic desktop blue.
var defaultBackground = color.RGBA64{R: 0x8000, G: 0xc800, B: 0xffff, A: 0xffff}

// New creates a display and its built-in cursor set. The screen
// rectangle stays empty until the first display device is attached.
func New(flags Flags) (*Display, error) {
	d := &Display{
		bg:        defaultBackground,
		flags:     flags,
		nextWndID: 1,
	}

	for i, ci := range stdCursorImages {
		cur, err := newCursor(ci)
		if err != nil {
			d.cursors = nil
			return nil, fmt.Errorf("build cursor set: %w", err)
		}
		d.AddCursor(cur)
		d.std[i] = cur
	}

	return d, nil
}

// Close tears down the display. All clients, WM clients and seats must
// have been removed first; a live registration at this point is a bug
// in the caller.
func (d *Display) Close() {
	if len(d.clients) != 0 || len(d.wmclients) != 0 || len(d.seats) != 0 {
		panic("display: close with live clients or seats")
	}
}

// Lock acquires the display lock. It must be held by any goroutine
// that accesses the display or its child objects.
func (d *Display) Lock() {
	d.mu.Lock()
}

// Unlock releases the display lock.
func (d *Display) Unlock() {
	d.mu.Unlock()
}

// Rect returns the screen rectangle. It is empty until the first
// display device is attached.
func (d *Display) Rect() image.Rectangle {
	return d.rect
}

// SetBackground sets the background color used behind all windows.
func (d *Display) SetBackground(c color.Color) {
	d.bg = c
}

// AddClient registers a client connection.
func (d *Display) AddClient(c *Client) {
	if c.display != nil {
		panic("display: client already registered")
	}
	c.display = d
	d.clients = append(d.clients, c)
}

// RemoveClient unregisters a client. The client's windows must have
// been destroyed first; use Client.Destroy for complete teardown.
func (d *Display) RemoveClient(c *Client) {
	d.clients = slices.DeleteFunc(d.clients, func(v *Client) bool { return v == c })
	c.display = nil
}

// AddWMClient registers a window-management client.
func (d *Display) AddWMClient(wm *WMClient) {
	if wm.display != nil {
		panic("display: WM client already registered")
	}
	wm.display = d
	d.wmclients = append(d.wmclients, wm)
}

// RemoveWMClient unregisters a window-management client.
func (d *Display) RemoveWMClient(wm *WMClient) {
	d.wmclients = slices.DeleteFunc(d.wmclients, func(v *WMClient) bool { return v == wm })
	wm.display = nil
}

// AddSeat registers a seat and gives it the default pointer cursor.
func (d *Display) AddSeat(s *Seat) {
	if s.display != nil {
		panic("display: seat already registered")
	}
	s.display = d
	if s.cursor == nil {
		s.cursor = d.std[CursorArrow]
	}
	d.seats = append(d.seats, s)
}

// RemoveSeat unregisters a seat.
func (d *Display) RemoveSeat(s *Seat) {
	d.seats = slices.DeleteFunc(d.seats, func(v *Seat) bool { return v == s })
	s.display = nil
}

// AddCursor registers a cursor.
func (d *Display) AddCursor(cur *Cursor) {
	if slices.Contains(d.cursors, cur) {
		panic("display: cursor already registered")
	}
	d.cursors = append(d.cursors, cur)
}

// RemoveCursor unregisters a cursor.
func (d *Display) RemoveCursor(cur *Cursor) {
	d.cursors = slices.DeleteFunc(d.cursors, func(v *Cursor) bool { return v == cur })
}

// StdCursor returns one of the built-in cursors.
func (d *Display) StdCursor(c StdCursor) *Cursor {
	return d.std[c]
}

// FindWindow finds a window in any client by ID.
func (d *Display) FindWindow(id WindowID) *Window {
	if id == 0 {
		return nil
	}
	for _, c := range d.clients {
		if wnd := c.FindWindow(id); wnd != nil {
			return wnd
		}
	}
	return nil
}

// WindowByPos finds the topmost window whose bounding rectangle on the
// display contains pos.
func (d *Display) WindowByPos(pos image.Point) *Window {
	for _, wnd := range d.windows {
		if pos.In(wnd.DisplayRect()) {
			return wnd
		}
	}
	return nil
}

// enlist inserts wnd into the stacking order. Topmost windows go in
// front of everything; normal windows go in front of every other
// normal window but behind every topmost one.
func (d *Display) enlist(wnd *Window) {
	i := 0
	if wnd.flags&Topmost == 0 {
		i = slices.IndexFunc(d.windows, func(w *Window) bool {
			return w.flags&Topmost == 0
		})
		if i < 0 {
			i = len(d.windows)
		}
	}
	d.windows = slices.Insert(d.windows, i, wnd)
}

// AddWindow enlists a newly created window and notifies window
// managers. Enlisting a window twice is a bug in the caller.
func (d *Display) AddWindow(wnd *Window) {
	if slices.Contains(d.windows, wnd) {
		panic("display: window already enlisted")
	}
	d.enlist(wnd)
	d.notifyWM(func(wm *WMClient) error { return wm.postWindowAdded(wnd.id) })
}

// RemoveWindow takes a window out of the stacking order, clears any
// seat focus on it, and notifies window managers.
func (d *Display) RemoveWindow(wnd *Window) {
	for _, s := range d.seats {
		s.unfocus(wnd.id)
	}
	d.windows = slices.DeleteFunc(d.windows, func(v *Window) bool { return v == wnd })
	d.notifyWM(func(wm *WMClient) error { return wm.postWindowRemoved(wnd.id) })
}

// WindowToTop raises a window within its stacking segment. A normal
// window never surpasses a topmost one.
func (d *Display) WindowToTop(wnd *Window) {
	if !slices.Contains(d.windows, wnd) {
		panic("display: raising a window that is not enlisted")
	}
	d.windows = slices.DeleteFunc(d.windows, func(v *Window) bool { return v == wnd })
	d.enlist(wnd)
}

// Windows returns the stacking order, front to back.
func (d *Display) Windows() []*Window {
	return slices.Clone(d.windows)
}

// notifyWM broadcasts an event to all WM clients in registration
// order. Delivery is best effort: a failure is logged and does not
// stop delivery to the remaining WM clients.
func (d *Display) notifyWM(post func(*WMClient) error) {
	for _, wm := range d.wmclients {
		if err := post(wm); err != nil {
			logrus.WithError(err).Warn("WM client notification failed")
		}
	}
}

func (d *Display) allocWindowID() WindowID {
	id := d.nextWndID
	d.nextWndID++
	return id
}

// SeatByIDev returns the seat that owns the given input device. A
// device with no explicit binding falls back to the first seat, which
// is the whole story while there is a single seat.
func (d *Display) SeatByIDev(dev DeviceID) *Seat {
	for _, s := range d.seats {
		if s.devices.Has(dev) {
			return s
		}
	}
	if len(d.seats) == 0 {
		return nil
	}
	return d.seats[0]
}

// PostKbdEvent routes a keyboard event from a physical device to the
// window focused by the owning seat. Events with no matching seat are
// dropped.
func (d *Display) PostKbdEvent(ev KbdEvent) error {
	seat := d.SeatByIDev(ev.Device)
	if seat == nil {
		return nil
	}
	return seat.PostKbdEvent(ev)
}

// PostPtdEvent routes a pointer event from a physical device to the
// owning seat. Events with no matching seat are dropped.
func (d *Display) PostPtdEvent(ev PtdEvent) error {
	seat := d.SeatByIDev(ev.Device)
	if seat == nil {
		return nil
	}
	return seat.PostPtdEvent(ev)
}

// ActivateWindow raises the window and focuses it on the seat owning
// the given input device. This is the window-management operation
// behind taskbar button clicks.
func (d *Display) ActivateWindow(dev DeviceID, id WindowID) error {
	wnd := d.FindWindow(id)
	if wnd == nil {
		return fmt.Errorf("activate window: unknown window %v", id)
	}
	d.WindowToTop(wnd)
	if seat := d.SeatByIDev(dev); seat != nil {
		seat.focus = wnd.id
	}
	return d.Paint(wnd.DisplayRect())
}
