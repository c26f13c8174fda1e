// Package wndmgt implements the window-management side of the display
// protocol. A window manager opens a Session to observe the window
// list and to activate windows on behalf of the user.
package wndmgt

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/internal/debug"
	"github.com/fenestra-os/display/internal/ev"
	"github.com/fenestra-os/display/wire"
)

// Callbacks receives window lifecycle notifications. The callbacks run
// on the goroutine that calls Flush or Wait. Any callback may be nil.
type Callbacks struct {
	WindowAdded   func(display.WindowID)
	WindowRemoved func(display.WindowID)
	WindowChanged func(display.WindowID)
}

// WindowInfo describes one window on the window list.
type WindowInfo struct {
	ID      display.WindowID
	Caption string
	Flags   display.WindowFlags
}

type Session struct {
	done  chan struct{}
	close sync.Once
	conn  *wire.Conn
	queue *ev.Queue
	cb    Callbacks

	wmu sync.Mutex // serializes writes to conn

	list chan []display.WindowID
	info chan WindowInfo
}

// Dial connects to the display server socket named by the environment
// and performs the window-management handshake.
func Dial(cb Callbacks) (*Session, error) {
	c, err := wire.Dial()
	if err != nil {
		return nil, err
	}
	return NewSession(c, cb)
}

// NewSession performs the window-management handshake on conn and
// starts listening for events.
func NewSession(conn *wire.Conn, cb Callbacks) (*Session, error) {
	s := Session{
		done:  make(chan struct{}),
		conn:  conn,
		queue: ev.NewQueue(),
		cb:    cb,
		list:  make(chan []display.WindowID, 1),
		info:  make(chan WindowInfo, 1),
	}

	if err := s.send(wire.NewMessage(0, wire.OpHelloWM)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	go s.listen()

	return &s, nil
}

func (s *Session) Close() error {
	var err error
	s.close.Do(func() {
		close(s.done)
		s.queue.Stop()
		err = s.conn.Close()
	})
	return err
}

func (s *Session) listen() {
	for {
		msg, err := wire.ReadMessage(s.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-s.done:
				return
			case s.queue.Add() <- func() error { return err }:
				continue
			}
		}

		select {
		case <-s.done:
			return
		case s.queue.Add() <- func() error { return s.dispatch(msg) }:
		}
	}
}

// Flush processes any events that have arrived, running lifecycle
// callbacks on the calling goroutine. It does not block.
func (s *Session) Flush() error {
	select {
	case events := <-s.queue.Get():
		return events.Flush()
	default:
		return nil
	}
}

// Wait blocks until at least one event arrives, then processes the
// queued events.
func (s *Session) Wait() error {
	select {
	case <-s.done:
		return net.ErrClosed
	case events := <-s.queue.Get():
		return events.Flush()
	}
}

func (s *Session) dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case wire.EvError:
		str := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		return fmt.Errorf("server: %v", str)

	case wire.EvWindowAdded, wire.EvWindowRemoved, wire.EvWindowChanged:
		id := display.WindowID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		var cb func(display.WindowID)
		switch msg.Op() {
		case wire.EvWindowAdded:
			cb = s.cb.WindowAdded
		case wire.EvWindowRemoved:
			cb = s.cb.WindowRemoved
		case wire.EvWindowChanged:
			cb = s.cb.WindowChanged
		}
		if cb != nil {
			cb(id)
		}
		return nil

	case wire.EvWindowList:
		count := msg.ReadUint()
		ids := make([]display.WindowID, 0, count)
		for i := uint32(0); i < count; i++ {
			ids = append(ids, display.WindowID(msg.ReadUint()))
		}
		if err := msg.Err(); err != nil {
			return err
		}
		select {
		case s.list <- ids:
		default:
			debug.Printf("unexpected window list event")
		}
		return nil

	case wire.EvWindowInfo:
		info := WindowInfo{
			ID: display.WindowID(msg.ReadUint()),
		}
		info.Flags = display.WindowFlags(msg.ReadUint())
		info.Caption = msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		select {
		case s.info <- info:
		default:
			debug.Printf("unexpected window info event")
		}
		return nil
	}

	debug.Printf("unhandled event: op %v", msg.Op())
	return nil
}

// WindowList asks for the current window list, front to back, and
// waits for the reply. Events that arrive while waiting are processed.
func (s *Session) WindowList() ([]display.WindowID, error) {
	if err := s.send(wire.NewMessage(0, wire.OpGetWindowList)); err != nil {
		return nil, fmt.Errorf("get window list: %w", err)
	}

	for {
		select {
		case <-s.done:
			return nil, net.ErrClosed
		case ids := <-s.list:
			return ids, nil
		case events := <-s.queue.Get():
			if err := events.Flush(); err != nil {
				return nil, err
			}
		}
	}
}

// WindowInfo asks for a window's caption and flags and waits for the
// reply.
func (s *Session) WindowInfo(id display.WindowID) (WindowInfo, error) {
	msg := wire.NewMessage(0, wire.OpGetWindowInfo)
	msg.WriteUint(uint32(id))
	if err := s.send(msg); err != nil {
		return WindowInfo{}, fmt.Errorf("get window info: %w", err)
	}

	for {
		select {
		case <-s.done:
			return WindowInfo{}, net.ErrClosed
		case info := <-s.info:
			return info, nil
		case events := <-s.queue.Get():
			if err := events.Flush(); err != nil {
				return WindowInfo{}, err
			}
		}
	}
}

// ActivateWindow raises and focuses a window as if the user had
// clicked it with the pointer device dev.
func (s *Session) ActivateWindow(dev display.DeviceID, id display.WindowID) error {
	msg := wire.NewMessage(0, wire.OpActivateWindow)
	msg.WriteUint(uint32(dev))
	msg.WriteUint(uint32(id))
	return s.send(msg)
}

func (s *Session) send(msg *wire.MessageBuilder) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return msg.Build(s.conn)
}
