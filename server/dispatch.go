package server

import (
	"errors"
	"fmt"
	"image"

	ximage "deedles.dev/ximage/format"
	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/shm"
	"github.com/fenestra-os/display/wire"
	"golang.org/x/sys/unix"
)

// dispatch performs one request under the display lock. The lock is
// scope-bound so that it is released on every path, including errors.
func (conn *Conn) dispatch(msg *wire.MessageBuffer) error {
	disp := conn.server.disp
	disp.Lock()
	defer disp.Unlock()

	switch msg.Op() {
	case wire.OpHello:
		return conn.hello(msg)
	case wire.OpHelloWM:
		return conn.helloWM(msg)
	case wire.OpCreateWindow:
		return conn.createWindow(msg)
	case wire.OpGetWindowList:
		return conn.getWindowList(msg)
	case wire.OpGetWindowInfo:
		return conn.getWindowInfo(msg)
	case wire.OpActivateWindow:
		return conn.activateWindow(msg)

	case wire.OpDestroyWindow,
		wire.OpMoveWindow,
		wire.OpResizeWindow,
		wire.OpSetCaption,
		wire.OpRaiseWindow,
		wire.OpSetColor,
		wire.OpFillRect,
		wire.OpBlit,
		wire.OpPresent:
		wnd, err := conn.window(msg.Sender())
		if err != nil {
			return err
		}
		return conn.windowOp(wnd, msg)

	default:
		return wire.UnknownOpError{Sender: msg.Sender(), Op: msg.Op()}
	}
}

func (conn *Conn) hello(msg *wire.MessageBuffer) error {
	if err := msg.Err(); err != nil {
		return err
	}
	if conn.client != nil || conn.wm != nil {
		return errors.New("hello: connection already registered")
	}

	conn.client = display.NewClient(clientSink{conn: conn})
	conn.server.disp.AddClient(conn.client)
	return nil
}

func (conn *Conn) helloWM(msg *wire.MessageBuffer) error {
	if err := msg.Err(); err != nil {
		return err
	}
	if conn.client != nil || conn.wm != nil {
		return errors.New("hello: connection already registered")
	}

	conn.wm = display.NewWMClient(wmSink{conn: conn})
	conn.server.disp.AddWMClient(conn.wm)
	return nil
}

func (conn *Conn) createWindow(msg *wire.MessageBuffer) error {
	rect := readRect(msg)
	pos := readPoint(msg)
	flags := msg.ReadUint()
	caption := msg.ReadString()
	if err := msg.Err(); err != nil {
		return err
	}
	if conn.client == nil {
		return errors.New("create window: not an application client")
	}

	wnd, err := conn.client.CreateWindow(display.WindowParams{
		Rect:    rect,
		Pos:     pos,
		Caption: caption,
		Flags:   display.WindowFlags(flags),
	})
	if err != nil {
		return err
	}

	reply := wire.NewMessage(uint32(wnd.ID()), wire.EvWindowCreated)
	reply.WriteUint(uint32(wnd.ID()))
	conn.Enqueue(reply)

	return conn.server.disp.Paint(wnd.DisplayRect())
}

func (conn *Conn) windowOp(wnd *display.Window, msg *wire.MessageBuffer) error {
	disp := conn.server.disp

	switch msg.Op() {
	case wire.OpDestroyWindow:
		if err := msg.Err(); err != nil {
			return err
		}
		return wnd.Destroy()

	case wire.OpMoveWindow:
		pos := readPoint(msg)
		if err := msg.Err(); err != nil {
			return err
		}
		return wnd.MoveTo(pos)

	case wire.OpResizeWindow:
		rect := readRect(msg)
		if err := msg.Err(); err != nil {
			return err
		}
		return wnd.Resize(rect)

	case wire.OpSetCaption:
		caption := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		wnd.SetCaption(caption)
		return nil

	case wire.OpRaiseWindow:
		if err := msg.Err(); err != nil {
			return err
		}
		disp.WindowToTop(wnd)
		return disp.Paint(wnd.DisplayRect())

	case wire.OpSetColor:
		c := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		return wnd.GC().SetColor(gfx.ARGBColor(c))

	case wire.OpFillRect:
		rect := readRect(msg)
		if err := msg.Err(); err != nil {
			return err
		}
		return wnd.GC().FillRect(rect)

	case wire.OpBlit:
		return conn.blit(wnd, msg)

	case wire.OpPresent:
		if err := msg.Err(); err != nil {
			return err
		}
		return wnd.Present()
	}

	return wire.UnknownOpError{Sender: msg.Sender(), Op: msg.Op()}
}

// maxBlitDim bounds client-supplied buffer dimensions; it keeps the
// mapped byte size comfortably inside an int.
const maxBlitDim = 1 << 14

// blit maps the client's shared-memory buffer and copies it into the
// window content at the requested position.
func (conn *Conn) blit(wnd *display.Window, msg *wire.MessageBuffer) error {
	dp := readPoint(msg)
	w := msg.ReadInt()
	h := msg.ReadInt()
	file := msg.ReadFile()
	if err := msg.Err(); err != nil {
		return err
	}
	defer file.Close()

	if w <= 0 || h <= 0 || w > maxBlitDim || h > maxBlitDim {
		return fmt.Errorf("blit: invalid buffer size %vx%v", w, h)
	}
	size := int64(w) * int64(h) * 4

	// Mapping past the end of the file would fault on access, so the
	// file has to actually hold the claimed pixels.
	fi, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat client buffer: %w", err)
	}
	if fi.Size() < size {
		return fmt.Errorf("blit: buffer holds %v bytes, need %v", fi.Size(), size)
	}

	mmap, err := shm.MapShared(file, int(size), unix.PROT_READ)
	if err != nil {
		return fmt.Errorf("map client buffer: %w", err)
	}
	defer mmap.Unmap()

	img := &ximage.Image{
		Format: ximage.ARGB8888,
		Rect:   image.Rect(0, 0, int(w), int(h)),
		Pix:    mmap,
	}
	return wnd.GC().Blit(img, img.Rect, dp)
}

func (conn *Conn) getWindowList(msg *wire.MessageBuffer) error {
	if err := msg.Err(); err != nil {
		return err
	}
	if conn.wm == nil {
		return errors.New("window list: not a WM client")
	}

	ids := conn.wm.WindowList()
	reply := wire.NewMessage(0, wire.EvWindowList)
	reply.WriteUint(uint32(len(ids)))
	for _, id := range ids {
		reply.WriteUint(uint32(id))
	}
	conn.Enqueue(reply)
	return nil
}

func (conn *Conn) getWindowInfo(msg *wire.MessageBuffer) error {
	id := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}
	if conn.wm == nil {
		return errors.New("window info: not a WM client")
	}

	caption, flags, err := conn.wm.WindowInfo(display.WindowID(id))
	if err != nil {
		return err
	}

	reply := wire.NewMessage(id, wire.EvWindowInfo)
	reply.WriteUint(id)
	reply.WriteUint(uint32(flags))
	reply.WriteString(caption)
	conn.Enqueue(reply)
	return nil
}

func (conn *Conn) activateWindow(msg *wire.MessageBuffer) error {
	dev := msg.ReadUint()
	id := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}
	if conn.wm == nil {
		return errors.New("activate window: not a WM client")
	}

	return conn.server.disp.ActivateWindow(display.DeviceID(dev), display.WindowID(id))
}

func (conn *Conn) window(id uint32) (*display.Window, error) {
	if conn.client == nil {
		return nil, errors.New("not an application client")
	}
	wnd := conn.client.FindWindow(display.WindowID(id))
	if wnd == nil {
		return nil, wire.UnknownWindowError{ID: id}
	}
	return wnd, nil
}

func readPoint(msg *wire.MessageBuffer) image.Point {
	return image.Point{
		X: int(msg.ReadInt()),
		Y: int(msg.ReadInt()),
	}
}

func readRect(msg *wire.MessageBuffer) image.Rectangle {
	return image.Rectangle{
		Min: readPoint(msg),
		Max: readPoint(msg),
	}
}
