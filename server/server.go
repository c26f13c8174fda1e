// Package server exposes a display over a Unix domain socket. Each
// connection is served by its own goroutines; all display state is
// accessed under the display lock, acquired once per incoming request.
package server

import (
	"errors"
	"net"
	"sync"

	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/internal/set"
	"github.com/fenestra-os/display/wire"
	"github.com/sirupsen/logrus"
)

type Server struct {
	done  chan struct{}
	close sync.Once
	lis   *net.UnixListener
	disp  *display.Display

	mu    sync.Mutex
	conns set.Set[*Conn]
}

// ListenAndServe serves disp on the socket at path, or at a freshly
// generated path when path is empty.
func ListenAndServe(disp *display.Display, path string) (*Server, error) {
	lis, err := wire.Listen(path)
	if err != nil {
		return nil, err
	}
	return NewServer(disp, lis), nil
}

// NewServer serves disp on lis.
func NewServer(disp *display.Display, lis *net.UnixListener) *Server {
	server := Server{
		done:  make(chan struct{}),
		lis:   lis,
		disp:  disp,
		conns: make(set.Set[*Conn]),
	}
	go server.listen()

	return &server
}

// Addr returns the address of the listening socket.
func (server *Server) Addr() net.Addr {
	return server.lis.Addr()
}

// Display returns the display the server serves.
func (server *Server) Display() *display.Display {
	return server.disp
}

// Close stops accepting connections and tears down the existing ones.
func (server *Server) Close() error {
	var errs []error
	server.close.Do(func() {
		close(server.done)
		errs = append(errs, server.lis.Close())

		server.mu.Lock()
		conns := make([]*Conn, 0, len(server.conns))
		for conn := range server.conns {
			conns = append(conns, conn)
		}
		server.mu.Unlock()

		for _, conn := range conns {
			conn.Close()
		}
	})
	return errors.Join(errs...)
}

func (server *Server) listen() {
	for {
		c, err := server.lis.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-server.done:
				return
			default:
				logrus.WithError(err).Warn("accept failed")
				continue
			}
		}

		server.addConn(c)
	}
}

func (server *Server) addConn(c *net.UnixConn) {
	conn := newConn(server, wire.NewConn(c))

	server.mu.Lock()
	server.conns.Add(conn)
	server.mu.Unlock()

	logrus.Debug("client connected")
}

func (server *Server) removeConn(conn *Conn) {
	server.mu.Lock()
	server.conns.Remove(conn)
	server.mu.Unlock()
}
