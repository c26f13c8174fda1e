// Package netecho implements a simple UDP echo endpoint, usable as a
// remote console transport. A listening endpoint prints whatever it
// receives and replies to the most recent sender; a talking endpoint
// sends its input to a fixed destination and prints the replies.
package netecho

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// chunkSize is the largest datagram payload sent in one piece. Larger
// input is split.
const chunkSize = 1024

// Endpoint is one side of an echo link.
type Endpoint struct {
	conn *net.UDPConn

	mu     sync.Mutex
	remote *net.UDPAddr
}

// Listen opens an endpoint bound to addr. The remote address is
// learned from the first datagram received.
func Listen(addr string) (*Endpoint, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return nil, err
	}

	logrus.WithField("addr", conn.LocalAddr()).Info("listening")
	return &Endpoint{conn: conn}, nil
}

// Dial opens an endpoint that talks to addr.
func Dial(addr string) (*Endpoint, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}

	logrus.WithField("addr", ua).Info("talking")
	return &Endpoint{conn: conn, remote: ua}, nil
}

// Close shuts the endpoint down, unblocking Run.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

// Run pumps data both ways until either side ends: datagrams received
// from the link are written to w, and data read from r is sent over
// the link in chunks.
func (e *Endpoint) Run(r io.Reader, w io.Writer) error {
	errc := make(chan error, 2)

	go func() { errc <- e.receive(w) }()
	go func() { errc <- e.send(r) }()

	// The first side to finish ends the session; the other pump exits
	// once the socket is closed under it.
	err := <-errc
	e.conn.Close()

	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (e *Endpoint) receive(w io.Writer) error {
	buf := make([]byte, chunkSize)
	for {
		n, from, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			return err
		}

		e.mu.Lock()
		if e.remote == nil || e.remote.String() != from.String() {
			logrus.WithField("addr", from).Info("link up")
			e.remote = from
		}
		e.mu.Unlock()

		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
	}
}

func (e *Endpoint) send(r io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if serr := e.Send(buf[:n]); serr != nil {
				return serr
			}
		}
		if err != nil {
			return err
		}
	}
}

// Send transmits one chunk to the link's remote side. It fails when no
// remote is known yet.
func (e *Endpoint) Send(data []byte) error {
	e.mu.Lock()
	remote := e.remote
	e.mu.Unlock()

	if remote == nil {
		return errors.New("no remote address known yet")
	}

	for len(data) > 0 {
		chunk := data
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}
		if _, err := e.conn.WriteToUDP(chunk, remote); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}
