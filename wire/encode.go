package wire

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"

	"github.com/fenestra-os/display/internal/bin"
	"golang.org/x/sys/unix"
)

// MessageBuilder is a message that is under construction.
type MessageBuilder struct {
	sender uint32
	op     uint16
	data   bytes.Buffer
	fds    []int
	err    error
}

// NewMessage starts a message concerning the window with the given ID,
// or the display itself when sender is 0.
func NewMessage(sender uint32, op uint16) *MessageBuilder {
	return &MessageBuilder{
		sender: sender,
		op:     op,
	}
}

func (mb *MessageBuilder) Sender() uint32 {
	return mb.sender
}

func (mb *MessageBuilder) Op() uint16 {
	return mb.op
}

func (mb *MessageBuilder) WriteInt(v int32) {
	if mb.err != nil {
		return
	}

	bin.Write(&mb.data, v)
}

func (mb *MessageBuilder) WriteUint(v uint32) {
	if mb.err != nil {
		return
	}

	bin.Write(&mb.data, v)
}

func (mb *MessageBuilder) WriteString(v string) {
	if mb.err != nil {
		return
	}

	pad := padding(uint32(len(v) + 1))
	bin.Write(&mb.data, uint32(len(v)+1))
	mb.data.WriteString(v)
	mb.data.WriteByte(0)
	for i := uint32(0); i < pad; i++ {
		mb.data.WriteByte(0)
	}
}

func (mb *MessageBuilder) WriteArray(v []byte) {
	if mb.err != nil {
		return
	}

	pad := padding(uint32(len(v)))
	bin.Write(&mb.data, uint32(len(v)))
	mb.data.Write(v)
	for i := uint32(0); i < pad; i++ {
		mb.data.WriteByte(0)
	}
}

// WriteFile attaches a file descriptor to travel out of band with the
// message.
func (mb *MessageBuilder) WriteFile(v *os.File) {
	fd, err := unix.Dup(int(v.Fd()))
	if err != nil {
		mb.err = err
		return
	}

	if len(mb.fds) == 0 {
		runtime.SetFinalizer(mb, (*MessageBuilder).close)
	}

	mb.fds = append(mb.fds, fd)
}

// Build builds the message and sends it to c. The MessageBuilder
// should not be used again after this method is called.
func (mb *MessageBuilder) Build(c *Conn) error {
	if mb.err != nil {
		return mb.err
	}

	length := uint32(8 + mb.data.Len())
	msg := bytes.NewBuffer(make([]byte, 0, length))
	bin.Write(msg, mb.sender)
	bin.Write(msg, (length<<16)|uint32(mb.op))

	io.Copy(msg, &mb.data)
	oob := unix.UnixRights(mb.fds...)

	_, _, mb.err = c.conn.WriteMsgUnix(msg.Bytes(), oob, nil)
	return mb.err
}

func (mb *MessageBuilder) close() {
	errs := make([]error, 0, len(mb.fds))
	for _, fd := range mb.fds {
		errs = append(errs, unix.Close(fd))
	}
	if mb.err == nil {
		mb.err = errors.Join(errs...)
	}
	mb.fds = nil
	runtime.SetFinalizer(mb, nil)
}
