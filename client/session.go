// Package client implements the application side of the display
// protocol. A Session owns the connection; windows created through it
// receive input events via callbacks, which run on the goroutine that
// calls Flush.
package client

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

type Session struct {
	done  chan struct{}
	close sync.Once
	conn  *wire.Conn
	queue *ev.Queue

	wmu sync.Mutex // serializes writes to conn

	mu      sync.Mutex
	windows map[display.WindowID]*Window
	created chan display.WindowID
}

// Dial connects to the display server socket named by the environment
// and performs the application handshake.
func Dial() (*Session, error) {
	c, err := wire.Dial()
	if err != nil {
		return nil, err
	}
	return NewSession(c)
}

// NewSession performs the application handshake on conn and starts
// listening for events.
func NewSession(conn *wire.Conn) (*Session, error) {
	s := Session{
		done:    make(chan struct{}),
		conn:    conn,
		queue:   ev.NewQueue(),
		windows: make(map[display.WindowID]*Window),
		created: make(chan display.WindowID, 1),
	}

	if err := s.send(wire.NewMessage(0, wire.OpHello)); err != nil {
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

// Flush processes any events that have arrived, running window
// callbacks on the calling goroutine. It does not block waiting for
// events.
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
		return ServerError{Message: str}

	case wire.EvWindowCreated:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		select {
		case s.created <- display.WindowID(id):
		default:
			debug.Printf("unexpected window created event: %v", id)
		}
		return nil

	case wire.EvKbd:
		kev := display.KbdEvent{
			Device: display.DeviceID(msg.ReadUint()),
			Press:  msg.ReadUint() != 0,
			Key:    msg.ReadUint(),
			Mods:   msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}
		if wnd := s.window(display.WindowID(msg.Sender())); wnd != nil && wnd.OnKbd != nil {
			wnd.OnKbd(kev)
		}
		return nil

	case wire.EvPtd:
		pev := display.PtdEvent{
			Device: display.DeviceID(msg.ReadUint()),
			Type:   display.PtdEventType(msg.ReadUint()),
		}
		pev.Pos.X = int(msg.ReadInt())
		pev.Pos.Y = int(msg.ReadInt())
		pev.Button = msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if wnd := s.window(display.WindowID(msg.Sender())); wnd != nil && wnd.OnPtd != nil {
			wnd.OnPtd(pev)
		}
		return nil
	}

	debug.Printf("unhandled event: op %v", msg.Op())
	return nil
}

func (s *Session) window(id display.WindowID) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[id]
}

func (s *Session) send(msg *wire.MessageBuilder) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return msg.Build(s.conn)
}

// ServerError is an error reported by the server in response to a
// failed request.
type ServerError struct {
	Message string
}

func (err ServerError) Error() string {
	return fmt.Sprintf("server: %v", err.Message)
}
