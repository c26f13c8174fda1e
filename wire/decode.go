package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fenestra-os/display/internal/bin"
	"golang.org/x/sys/unix"
)

// unixTee reads from c, but also reads out-of-band data
// simultaneously, writing it into oob.
type unixTee struct {
	c   *Conn
	oob io.Writer
}

func (t unixTee) Read(buf []byte) (int, error) {
	oob := make([]byte, unix.CmsgSpace(len(buf)))
	n, oobn, _, _, err := t.c.conn.ReadMsgUnix(buf, oob)
	_, ooberr := t.oob.Write(oob[:oobn])
	return n, errors.Join(err, ooberr)
}

// MessageBuffer holds message data that has been read from the socket
// but not yet decoded.
type MessageBuffer struct {
	sender  uint32
	op      uint16
	size    uint16
	data    bytes.Reader
	fds     []int
	fdindex int
	err     error
}

// ReadMessage reads message data from the socket into a buffer.
func ReadMessage(c *Conn) (*MessageBuffer, error) {
	var mr MessageBuffer

	var oob bytes.Buffer
	r := unixTee{c: c, oob: &oob}

	sender, err := bin.Read[uint32](r)
	if err != nil {
		return nil, fmt.Errorf("read message sender: %w", err)
	}
	mr.sender = sender

	so, err := bin.Read[uint32](r)
	if err != nil {
		return nil, fmt.Errorf("read message size and opcode: %w", err)
	}
	mr.size = uint16(so >> 16)
	mr.op = uint16(so & 0xFFFF)

	data := bytes.NewBuffer(make([]byte, 0, mr.size))
	_, err = io.CopyN(data, r, int64(mr.size)-8)
	if err != nil {
		return nil, fmt.Errorf("copy data to buffer: %w", err)
	}

	cmsgs, err := unix.ParseSocketControlMessage(oob.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse socket control messages: %w", err)
	}
	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return nil, fmt.Errorf("parse unix control message: %w", err)
		}
		mr.fds = append(mr.fds, fds...)
	}

	mr.data.Reset(data.Bytes())

	return &mr, nil
}

// Sender is the window ID the message concerns, or 0 for display-level
// messages.
func (r *MessageBuffer) Sender() uint32 {
	return r.sender
}

// Op is the opcode of the message.
func (r *MessageBuffer) Op() uint16 {
	return r.op
}

// Size is the total size of the message, including the 8 byte header.
func (r *MessageBuffer) Size() uint16 {
	return r.size
}

// Err returns the first decoding error encountered, if any. The
// header's size field is authoritative, so running out of data while
// reading an argument means the request was truncated and is reported
// as io.ErrUnexpectedEOF.
func (r *MessageBuffer) Err() error {
	if errors.Is(r.err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return r.err
}

func (r *MessageBuffer) ReadInt() (v int32) {
	if r.err != nil {
		return
	}

	v, r.err = bin.Read[int32](&r.data)
	return v
}

func (r *MessageBuffer) ReadUint() (v uint32) {
	if r.err != nil {
		return
	}

	v, r.err = bin.Read[uint32](&r.data)
	return v
}

func (r *MessageBuffer) ReadString() string {
	if r.err != nil {
		return ""
	}

	length := r.ReadUint()
	if r.err != nil {
		return ""
	}
	pad := padding(length)
	// The length comes from the client; it must at least cover the
	// terminator and fit in the remaining message data. Summing in
	// int64 keeps hostile lengths from wrapping.
	if length == 0 || int64(length)+int64(pad) > int64(r.data.Len()) {
		r.err = fmt.Errorf("string length %v is out of range", length)
		return ""
	}

	var str strings.Builder
	str.Grow(int(length + pad))
	_, r.err = io.CopyN(&str, &r.data, int64(length)+int64(pad))
	if r.err != nil {
		return ""
	}
	v := str.String()
	if v[length-1] != 0 {
		r.err = errors.New("string is not null-terminated")
		return ""
	}

	return v[:length-1]
}

func (r *MessageBuffer) ReadArray() []byte {
	if r.err != nil {
		return nil
	}

	length := r.ReadUint()
	if r.err != nil {
		return nil
	}
	pad := padding(length)
	if int64(length)+int64(pad) > int64(r.data.Len()) {
		r.err = fmt.Errorf("array length %v is out of range", length)
		return nil
	}

	buf := make([]byte, length+pad)
	_, r.err = io.ReadFull(&r.data, buf)
	if r.err != nil {
		return nil
	}

	return buf[:length]
}

// ReadFile takes the next file descriptor that arrived out of band
// with the message.
func (r *MessageBuffer) ReadFile() *os.File {
	if r.err != nil {
		return nil
	}

	if r.fdindex >= len(r.fds) {
		r.err = errors.New("no more file descriptors")
		return nil
	}

	f := os.NewFile(uintptr(r.fds[r.fdindex]), "")
	r.fdindex++
	return f
}
