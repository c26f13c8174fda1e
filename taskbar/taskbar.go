// Package taskbar implements a window-list bar. It tracks the window
// list through a management session and presents one button per
// application window; clicking a button activates that window.
package taskbar

import (
	"fmt"
	"image"
	"slices"

	"github.com/fenestra-os/display/client"
	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/pointer"
	"github.com/fenestra-os/display/wndmgt"
)

const (
	// buttonPitch is the horizontal distance between the left edges
	// of adjacent buttons. Buttons are buttonPad narrower than the
	// pitch, leaving a gap between them.
	buttonPitch = 145
	buttonPad   = 5

	outlineWidth = 1
)

const (
	bgColor      = 0xFF101010
	faceColor    = 0xFFD8D8D8
	outlineColor = 0xFF404040
)

// hiddenFlags marks windows that never appear on the bar.
const hiddenFlags = display.Popup | display.System

type button struct {
	id      display.WindowID
	caption string
	rect    image.Rectangle
	visible bool
}

// Taskbar is a window-list bar. It owns a system window on the display
// and a management session tracking the window list.
type Taskbar struct {
	wm   *wndmgt.Session
	wnd  *client.Window
	rect image.Rectangle

	// buttons is ordered oldest first, matching the order windows
	// were added. Entries past the right edge are laid out but
	// hidden.
	buttons []*button
}

// New creates a taskbar covering rect. It creates its own window
// through app and populates the bar from wm's current window list.
func New(app *client.Session, wm *wndmgt.Session, rect image.Rectangle) (*Taskbar, error) {
	wnd, err := app.CreateWindow(display.WindowParams{
		Rect:    rect.Sub(rect.Min),
		Pos:     rect.Min,
		Caption: "taskbar",
		Flags:   display.Topmost | display.System,
	})
	if err != nil {
		return nil, fmt.Errorf("create taskbar window: %w", err)
	}

	tb := Taskbar{
		wm:   wm,
		wnd:  wnd,
		rect: rect.Sub(rect.Min),
	}
	wnd.OnPtd = tb.ptdEvent

	ids, err := wm.WindowList()
	if err != nil {
		return nil, fmt.Errorf("get window list: %w", err)
	}
	// The list is front to back; the bar shows oldest first.
	for _, id := range slices.Backward(ids) {
		if err := tb.append(id); err != nil {
			return nil, err
		}
	}

	tb.layout()
	if err := tb.paint(); err != nil {
		return nil, err
	}

	return &tb, nil
}

// Callbacks returns the lifecycle callbacks that keep the bar in sync
// with the window list. Pass them to the management session.
func (tb *Taskbar) Callbacks() wndmgt.Callbacks {
	return wndmgt.Callbacks{
		WindowAdded:   tb.windowAdded,
		WindowRemoved: tb.windowRemoved,
		WindowChanged: tb.windowChanged,
	}
}

// Destroy destroys the taskbar window.
func (tb *Taskbar) Destroy() error {
	return tb.wnd.Destroy()
}

func (tb *Taskbar) windowAdded(id display.WindowID) {
	if tb.find(id) != nil {
		return
	}
	if err := tb.append(id); err != nil {
		return
	}
	tb.layout()
	tb.paint()
}

func (tb *Taskbar) windowRemoved(id display.WindowID) {
	i := slices.IndexFunc(tb.buttons, func(b *button) bool { return b.id == id })
	if i < 0 {
		return
	}
	tb.buttons = slices.Delete(tb.buttons, i, i+1)

	// Removal may make room for a previously hidden button.
	tb.layout()
	tb.paint()
}

func (tb *Taskbar) windowChanged(id display.WindowID) {
	b := tb.find(id)
	if b == nil {
		return
	}
	info, err := tb.wm.WindowInfo(id)
	if err != nil {
		return
	}
	b.caption = info.Caption
	tb.paint()
}

func (tb *Taskbar) append(id display.WindowID) error {
	info, err := tb.wm.WindowInfo(id)
	if err != nil {
		return fmt.Errorf("get window info: %w", err)
	}
	if info.Flags&hiddenFlags != 0 {
		return nil
	}

	tb.buttons = append(tb.buttons, &button{
		id:      id,
		caption: info.Caption,
	})
	return nil
}

func (tb *Taskbar) find(id display.WindowID) *button {
	for _, b := range tb.buttons {
		if b.id == id {
			return b
		}
	}
	return nil
}

// layout assigns button rectangles left to right. Buttons that do not
// fit entirely within the bar are hidden.
func (tb *Taskbar) layout() {
	x := tb.rect.Min.X + buttonPad
	top := tb.rect.Min.Y + buttonPad
	bottom := tb.rect.Max.Y - buttonPad

	for _, b := range tb.buttons {
		b.rect = image.Rect(x, top, x+buttonPitch-buttonPad, bottom)
		b.visible = b.rect.In(tb.rect)
		x += buttonPitch
	}
}

func (tb *Taskbar) paint() error {
	if err := tb.wnd.SetColor(bgColor); err != nil {
		return err
	}
	if err := tb.wnd.FillRect(tb.rect); err != nil {
		return err
	}

	for _, b := range tb.buttons {
		if !b.visible {
			continue
		}
		if err := tb.wnd.SetColor(outlineColor); err != nil {
			return err
		}
		if err := tb.wnd.FillRect(b.rect); err != nil {
			return err
		}
		if err := tb.wnd.SetColor(faceColor); err != nil {
			return err
		}
		if err := tb.wnd.FillRect(b.rect.Inset(outlineWidth)); err != nil {
			return err
		}
	}

	return tb.wnd.Present()
}

func (tb *Taskbar) ptdEvent(pev display.PtdEvent) {
	if pev.Type != display.PtdPress || pointer.Button(pev.Button) != pointer.ButtonLeft {
		return
	}
	for _, b := range tb.buttons {
		if b.visible && pev.Pos.In(b.rect) {
			tb.wm.ActivateWindow(pev.Device, b.id)
			return
		}
	}
}

// Buttons reports the IDs of the windows currently on the bar, oldest
// first, including hidden overflow entries.
func (tb *Taskbar) Buttons() []display.WindowID {
	ids := make([]display.WindowID, 0, len(tb.buttons))
	for _, b := range tb.buttons {
		ids = append(ids, b.id)
	}
	return ids
}
