package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/internal/debug"
	"github.com/fenestra-os/display/internal/ev"
	"github.com/fenestra-os/display/wire"
	"github.com/sirupsen/logrus"
)

// Conn is one accepted connection. It becomes an application client or
// a window-management client with its first hello request.
type Conn struct {
	server *Server
	done   chan struct{}
	close  sync.Once
	conn   *wire.Conn
	queue  *ev.Queue

	// client and wm are set by the hello handshake; at most one of
	// them is ever non-nil.
	client *display.Client
	wm     *display.WMClient
}

func newConn(server *Server, c *wire.Conn) *Conn {
	conn := Conn{
		server: server,
		done:   make(chan struct{}),
		conn:   c,
		queue:  ev.NewQueue(),
	}

	go conn.listen()
	go conn.flush()

	return &conn
}

// Close tears the connection down, destroying any display state it
// owns.
func (conn *Conn) Close() {
	conn.close.Do(func() {
		close(conn.done)
		conn.queue.Stop()
		conn.conn.Close()

		disp := conn.server.disp
		disp.Lock()
		if conn.client != nil {
			conn.client.Destroy()
			conn.client = nil
		}
		if conn.wm != nil {
			disp.RemoveWMClient(conn.wm)
			conn.wm = nil
		}
		disp.Unlock()

		conn.server.removeConn(conn)
		logrus.Debug("client disconnected")
	})
}

func (conn *Conn) listen() {
	defer conn.Close()

	for {
		msg, err := wire.ReadMessage(conn.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-conn.done:
				return
			default:
				logrus.WithError(err).Warn("read failed")
				return
			}
		}

		if err := conn.dispatch(msg); err != nil {
			debug.Printf("request failed: %v", err)
			conn.postError(err)
		}
	}
}

// flush drains the outgoing event queue, sending all enqueued
// messages.
func (conn *Conn) flush() {
	for {
		select {
		case <-conn.done:
			return
		case events := <-conn.queue.Get():
			if err := events.Flush(); err != nil {
				logrus.WithError(err).Warn("event delivery failed")
			}
		}
	}
}

// Enqueue schedules an event message for delivery. Safe to call with
// the display lock held; the actual write happens on the connection's
// flush goroutine.
func (conn *Conn) Enqueue(msg *wire.MessageBuilder) {
	select {
	case <-conn.done:
	case conn.queue.Add() <- func() error { return msg.Build(conn.conn) }:
	}
}

func (conn *Conn) postError(err error) {
	msg := wire.NewMessage(0, wire.EvError)
	msg.WriteString(err.Error())
	conn.Enqueue(msg)
}

// clientSink forwards input events routed to the connection's windows.
type clientSink struct {
	conn *Conn
}

func (s clientSink) KbdEvent(wnd display.WindowID, kev display.KbdEvent) error {
	msg := wire.NewMessage(uint32(wnd), wire.EvKbd)
	msg.WriteUint(uint32(kev.Device))
	var press uint32
	if kev.Press {
		press = 1
	}
	msg.WriteUint(press)
	msg.WriteUint(kev.Key)
	msg.WriteUint(kev.Mods)
	s.conn.Enqueue(msg)
	return nil
}

func (s clientSink) PtdEvent(wnd display.WindowID, pev display.PtdEvent) error {
	msg := wire.NewMessage(uint32(wnd), wire.EvPtd)
	msg.WriteUint(uint32(pev.Device))
	msg.WriteUint(uint32(pev.Type))
	msg.WriteInt(int32(pev.Pos.X))
	msg.WriteInt(int32(pev.Pos.Y))
	msg.WriteUint(pev.Button)
	s.conn.Enqueue(msg)
	return nil
}

// wmSink forwards window lifecycle notifications.
type wmSink struct {
	conn *Conn
}

func (s wmSink) WindowAdded(id display.WindowID) error {
	return s.post(wire.EvWindowAdded, id)
}

func (s wmSink) WindowRemoved(id display.WindowID) error {
	return s.post(wire.EvWindowRemoved, id)
}

func (s wmSink) WindowChanged(id display.WindowID) error {
	return s.post(wire.EvWindowChanged, id)
}

func (s wmSink) post(op uint16, id display.WindowID) error {
	msg := wire.NewMessage(0, op)
	msg.WriteUint(uint32(id))
	s.conn.Enqueue(msg)
	return nil
}
