package wire

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"testing"

	"github.com/fenestra-os/display/internal/bin"
	"golang.org/x/sys/unix"
)

func testConns(t *testing.T) (client, server *Conn) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	conns := make([]*Conn, 2)
	for i, fd := range fds {
		file := os.NewFile(uintptr(fd), "")
		nc, err := net.FileConn(file)
		file.Close()
		if err != nil {
			t.Fatalf("FileConn: %v", err)
		}
		conns[i] = NewConn(nc.(*net.UnixConn))
	}
	t.Cleanup(func() {
		conns[0].Close()
		conns[1].Close()
	})

	return conns[0], conns[1]
}

func TestRoundTrip(t *testing.T) {
	client, server := testConns(t)

	msg := NewMessage(42, OpCreateWindow)
	msg.WriteInt(-7)
	msg.WriteUint(0xdeadbeef)
	msg.WriteString("hello")
	msg.WriteArray([]byte{1, 2, 3})
	if err := msg.Build(client); err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	if got.Sender() != 42 {
		t.Errorf("Sender = %v, want 42", got.Sender())
	}
	if got.Op() != OpCreateWindow {
		t.Errorf("Op = %v, want %v", got.Op(), OpCreateWindow)
	}

	if v := got.ReadInt(); v != -7 {
		t.Errorf("ReadInt = %v, want -7", v)
	}
	if v := got.ReadUint(); v != 0xdeadbeef {
		t.Errorf("ReadUint = %08x, want deadbeef", v)
	}
	if v := got.ReadString(); v != "hello" {
		t.Errorf("ReadString = %q, want %q", v, "hello")
	}
	if v := got.ReadArray(); string(v) != "\x01\x02\x03" {
		t.Errorf("ReadArray = %v, want [1 2 3]", v)
	}
	if err := got.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
}

func TestMultipleMessages(t *testing.T) {
	client, server := testConns(t)

	for i := uint32(0); i < 3; i++ {
		msg := NewMessage(i, OpPresent)
		msg.WriteUint(i * 10)
		if err := msg.Build(client); err != nil {
			t.Fatalf("Build %v: %v", i, err)
		}
	}

	for i := uint32(0); i < 3; i++ {
		got, err := ReadMessage(server)
		if err != nil {
			t.Fatalf("ReadMessage %v: %v", i, err)
		}
		if got.Sender() != i {
			t.Errorf("message %v: Sender = %v", i, got.Sender())
		}
		if v := got.ReadUint(); v != i*10 {
			t.Errorf("message %v: payload = %v, want %v", i, v, i*10)
		}
		if err := got.Err(); err != nil {
			t.Errorf("message %v: Err = %v", i, err)
		}
	}
}

func TestFilePassing(t *testing.T) {
	client, server := testConns(t)

	file, err := os.CreateTemp(t.TempDir(), "wire-test")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString("shared contents"); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	msg := NewMessage(1, OpBlit)
	msg.WriteUint(99)
	msg.WriteFile(file)
	if err := msg.Build(client); err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if v := got.ReadUint(); v != 99 {
		t.Errorf("payload = %v, want 99", v)
	}

	rf := got.ReadFile()
	if err := got.Err(); err != nil {
		t.Fatalf("Err after ReadFile: %v", err)
	}
	defer rf.Close()

	buf := make([]byte, 32)
	n, err := rf.ReadAt(buf, 0)
	if err != nil && n == 0 {
		t.Fatalf("read received file: %v", err)
	}
	if string(buf[:n]) != "shared contents" {
		t.Errorf("received file contents = %q", buf[:n])
	}

	// Only one descriptor traveled with the message.
	if got.ReadFile() != nil {
		t.Error("second ReadFile unexpectedly succeeded")
	}
	if got.Err() == nil {
		t.Error("exhausted descriptors did not error")
	}
}

func TestStringPadding(t *testing.T) {
	client, server := testConns(t)

	// Lengths that land on every alignment class.
	strs := []string{"", "a", "ab", "abc", "abcd"}

	msg := NewMessage(0, OpSetCaption)
	for _, s := range strs {
		msg.WriteString(s)
	}
	msg.WriteUint(0x1234)
	if err := msg.Build(client); err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	for _, want := range strs {
		if v := got.ReadString(); v != want {
			t.Errorf("ReadString = %q, want %q", v, want)
		}
	}
	if v := got.ReadUint(); v != 0x1234 {
		t.Errorf("trailing uint = %04x, want 1234", v)
	}
	if err := got.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
}

// writeRaw sends a hand-built message so that tests can produce
// payloads the builder never would.
func writeRaw(t *testing.T, c *Conn, sender uint32, op uint16, words ...uint32) {
	t.Helper()

	length := uint32(8 + 4*len(words))
	var buf bytes.Buffer
	bin.Write(&buf, sender)
	bin.Write(&buf, (length<<16)|uint32(op))
	for _, w := range words {
		bin.Write(&buf, w)
	}
	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		t.Fatalf("write raw message: %v", err)
	}
}

func TestZeroStringLength(t *testing.T) {
	client, server := testConns(t)

	// A length word of zero cannot cover the terminator; the decoder
	// has to fail instead of indexing before the payload.
	writeRaw(t, client, 7, OpSetCaption, 0)

	got, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if v := got.ReadString(); v != "" {
		t.Errorf("ReadString = %q, want empty", v)
	}
	if got.Err() == nil {
		t.Error("zero string length did not error")
	}
}

func TestOversizedLengths(t *testing.T) {
	client, server := testConns(t)

	// Lengths past the payload, including ones whose padded size wraps
	// around to a small value.
	for _, length := range []uint32{8, 0xfffffffd, 0xffffffff} {
		writeRaw(t, client, 7, OpSetCaption, length)
		got, err := ReadMessage(server)
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		got.ReadString()
		if got.Err() == nil {
			t.Errorf("string length %v did not error", length)
		}

		writeRaw(t, client, 7, OpBlit, length)
		got, err = ReadMessage(server)
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		got.ReadArray()
		if got.Err() == nil {
			t.Errorf("array length %v did not error", length)
		}
	}
}

func TestTruncatedArguments(t *testing.T) {
	client, server := testConns(t)

	// A request that carries none of its arguments must surface a
	// truncation error, not execute on zero values.
	writeRaw(t, client, 7, OpMoveWindow)

	got, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	got.ReadInt()
	got.ReadInt()
	if err := got.Err(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Err = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestUnknownOpError(t *testing.T) {
	err := UnknownOpError{Sender: 3, Op: 77}
	if err.Error() == "" {
		t.Error("empty error message")
	}
}
