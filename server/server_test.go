package server

import (
	"errors"
	"image"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenestra-os/display/client"
	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/wire"
)

func startServer(t *testing.T) (*Server, string) {
	t.Helper()

	disp, err := display.New(0)
	if err != nil {
		t.Fatalf("create display: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fenestra-test")
	srv, err := ListenAndServe(disp, path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	return srv, path
}

func dialSession(t *testing.T, path string) *client.Session {
	t.Helper()

	nc, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	session, err := client.NewSession(wire.NewConn(nc.(*net.UnixConn)))
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return session
}

func TestCreateAndDrawWindow(t *testing.T) {
	srv, path := startServer(t)
	session := dialSession(t, path)

	wnd, err := session.CreateWindow(display.WindowParams{
		Rect:    image.Rect(0, 0, 40, 40),
		Pos:     image.Pt(10, 10),
		Caption: "test",
	})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	if err := wnd.SetColor(0xffff0000); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if err := wnd.FillRect(image.Rect(0, 0, 40, 40)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if err := wnd.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	// Drawing requests carry no reply. Creating one more window does,
	// and requests on one connection are processed in order, so the
	// reply means everything above has been handled.
	if _, err := session.CreateWindow(display.WindowParams{Rect: image.Rect(0, 0, 1, 1)}); err != nil {
		t.Fatalf("sync window: %v", err)
	}

	disp := srv.Display()
	disp.Lock()
	defer disp.Unlock()

	srvWnd := disp.FindWindow(wnd.ID())
	if srvWnd == nil {
		t.Fatal("window not found on the server")
	}
	if srvWnd.Caption() != "test" {
		t.Errorf("caption = %q, want %q", srvWnd.Caption(), "test")
	}
	if want := image.Rect(10, 10, 50, 50); srvWnd.DisplayRect() != want {
		t.Errorf("display rect = %v, want %v", srvWnd.DisplayRect(), want)
	}

	img, ok := srvWnd.GC().Image().(*gfx.ARGB8888)
	if !ok {
		t.Fatalf("unexpected content image type %T", srvWnd.GC().Image())
	}
	if got := img.ARGBAt(20, 20); got != gfx.ARGBColor(0xffff0000) {
		t.Errorf("content pixel = %08x, want ffff0000", uint32(got))
	}
}

func TestRequestErrorReported(t *testing.T) {
	_, path := startServer(t)
	session := dialSession(t, path)

	wnd, err := session.CreateWindow(display.WindowParams{Rect: image.Rect(0, 0, 10, 10)})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	if err := wnd.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// Operating on a destroyed window produces an error event.
	if err := wnd.MoveTo(image.Pt(5, 5)); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}

	err = session.Wait()
	var serr client.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("Wait = %v, want a server error", err)
	}
}

func TestBlitRejectsHostileDimensions(t *testing.T) {
	_, path := startServer(t)

	nc, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := wire.NewConn(nc.(*net.UnixConn))
	defer conn.Close()

	if err := wire.NewMessage(0, wire.OpHello).Build(conn); err != nil {
		t.Fatalf("hello: %v", err)
	}

	create := wire.NewMessage(0, wire.OpCreateWindow)
	for _, v := range []int32{0, 0, 10, 10, 0, 0} {
		create.WriteInt(v)
	}
	create.WriteUint(0)
	create.WriteString("")
	if err := create.Build(conn); err != nil {
		t.Fatalf("create window: %v", err)
	}

	reply, err := wire.ReadMessage(conn)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Op() != wire.EvWindowCreated {
		t.Fatalf("reply op = %v, want window created", reply.Op())
	}
	id := reply.ReadUint()
	if err := reply.Err(); err != nil {
		t.Fatalf("decode reply: %v", err)
	}

	file, err := os.CreateTemp(t.TempDir(), "blit")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString("tiny"); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	// Dimensions whose byte size overflows a 32-bit product, and sane
	// dimensions the four-byte file cannot back. Both must come back as
	// error events, not map past the file.
	for _, dim := range []int32{0x8000, 16} {
		blit := wire.NewMessage(id, wire.OpBlit)
		blit.WriteInt(0)
		blit.WriteInt(0)
		blit.WriteInt(dim)
		blit.WriteInt(dim)
		blit.WriteFile(file)
		if err := blit.Build(conn); err != nil {
			t.Fatalf("blit %v: %v", dim, err)
		}

		ev, err := wire.ReadMessage(conn)
		if err != nil {
			t.Fatalf("read event after blit %v: %v", dim, err)
		}
		if ev.Op() != wire.EvError {
			t.Errorf("event after blit %v = op %v, want an error event", dim, ev.Op())
		}
	}
}

func TestClientDisconnectDestroysWindows(t *testing.T) {
	srv, path := startServer(t)
	session := dialSession(t, path)

	wnd, err := session.CreateWindow(display.WindowParams{Rect: image.Rect(0, 0, 10, 10)})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	id := wnd.ID()

	session.Close()

	// The server notices the closed socket asynchronously.
	deadline := time.After(5 * time.Second)
	for {
		srv.mu.Lock()
		n := len(srv.conns)
		srv.mu.Unlock()
		if n == 0 {
			break
		}

		select {
		case <-deadline:
			t.Fatal("server did not reap the closed connection")
		case <-time.After(time.Millisecond):
		}
	}

	disp := srv.Display()
	disp.Lock()
	defer disp.Unlock()
	if got := disp.FindWindow(id); got != nil {
		t.Errorf("window %v survived its client's disconnect", id)
	}
}
