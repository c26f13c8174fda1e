package client

import (
	"fmt"
	"image"
	"net"

	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/shm"
	"github.com/fenestra-os/display/wire"
)

// Window is a client-side window handle. The OnKbd and OnPtd callbacks
// receive input events routed to the window; set them before events are
// expected, they are not synchronized with dispatch.
type Window struct {
	session *Session
	id      display.WindowID

	OnKbd func(display.KbdEvent)
	OnPtd func(display.PtdEvent)
}

// CreateWindow asks the server for a new window and waits for the
// reply. Events that arrive while waiting are processed.
func (s *Session) CreateWindow(params display.WindowParams) (*Window, error) {
	msg := wire.NewMessage(0, wire.OpCreateWindow)
	writeRect(msg, params.Rect)
	writePoint(msg, params.Pos)
	msg.WriteUint(uint32(params.Flags))
	msg.WriteString(params.Caption)
	if err := s.send(msg); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	for {
		select {
		case <-s.done:
			return nil, net.ErrClosed

		case id := <-s.created:
			wnd := Window{session: s, id: id}
			s.mu.Lock()
			s.windows[id] = &wnd
			s.mu.Unlock()
			return &wnd, nil

		case events := <-s.queue.Get():
			if err := events.Flush(); err != nil {
				return nil, err
			}
		}
	}
}

func (wnd *Window) ID() display.WindowID {
	return wnd.id
}

// Destroy destroys the window on the server and drops the handle.
func (wnd *Window) Destroy() error {
	s := wnd.session
	s.mu.Lock()
	delete(s.windows, wnd.id)
	s.mu.Unlock()

	return s.send(wire.NewMessage(uint32(wnd.id), wire.OpDestroyWindow))
}

func (wnd *Window) MoveTo(pos image.Point) error {
	msg := wire.NewMessage(uint32(wnd.id), wire.OpMoveWindow)
	writePoint(msg, pos)
	return wnd.session.send(msg)
}

func (wnd *Window) Resize(rect image.Rectangle) error {
	msg := wire.NewMessage(uint32(wnd.id), wire.OpResizeWindow)
	writeRect(msg, rect)
	return wnd.session.send(msg)
}

func (wnd *Window) SetCaption(caption string) error {
	msg := wire.NewMessage(uint32(wnd.id), wire.OpSetCaption)
	msg.WriteString(caption)
	return wnd.session.send(msg)
}

func (wnd *Window) Raise() error {
	return wnd.session.send(wire.NewMessage(uint32(wnd.id), wire.OpRaiseWindow))
}

// SetColor sets the drawing color used by FillRect.
func (wnd *Window) SetColor(argb uint32) error {
	msg := wire.NewMessage(uint32(wnd.id), wire.OpSetColor)
	msg.WriteUint(argb)
	return wnd.session.send(msg)
}

// FillRect fills a window-local rectangle with the drawing color.
func (wnd *Window) FillRect(rect image.Rectangle) error {
	msg := wire.NewMessage(uint32(wnd.id), wire.OpFillRect)
	writeRect(msg, rect)
	return wnd.session.send(msg)
}

// Blit copies the contents of buf into the window with its top-left
// corner at dp. The buffer's backing file travels out of band; the
// server maps the same pages, so the pixels never cross the socket.
func (wnd *Window) Blit(buf *shm.ImageBuffer, dp image.Point) error {
	msg := wire.NewMessage(uint32(wnd.id), wire.OpBlit)
	writePoint(msg, dp)
	b := buf.Bounds()
	msg.WriteInt(int32(b.Dx()))
	msg.WriteInt(int32(b.Dy()))
	msg.WriteFile(buf.File())
	return wnd.session.send(msg)
}

// Present asks the server to composite the window's accumulated
// damage to the screen.
func (wnd *Window) Present() error {
	return wnd.session.send(wire.NewMessage(uint32(wnd.id), wire.OpPresent))
}

func writePoint(msg *wire.MessageBuilder, p image.Point) {
	msg.WriteInt(int32(p.X))
	msg.WriteInt(int32(p.Y))
}

func writeRect(msg *wire.MessageBuilder, r image.Rectangle) {
	writePoint(msg, r.Min)
	writePoint(msg, r.Max)
}
