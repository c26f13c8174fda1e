// Package fbdev drives a Linux framebuffer device as a display output.
// The framebuffer memory is mapped directly and wrapped in a graphics
// context, so compositing writes pixels straight to the screen.
package fbdev

import (
	"errors"
	"fmt"
	"image"
	"os"
	"unsafe"

	ximage "deedles.dev/ximage/format"
	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/gfx/memgc"
	"github.com/fenestra-os/display/shm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// DefaultPath is the usual primary framebuffer device node.
const DefaultPath = "/dev/fb0"

// Device is an open framebuffer. It satisfies the display server's
// output device interface.
type Device struct {
	file *os.File
	mmap shm.Mmap
	rect image.Rectangle
	gc   *memgc.GC
}

// Open maps the framebuffer at path. Only 32 bit per pixel modes with
// a packed stride are supported.
func Open(path string) (d *Device, err error) {
	defer func() {
		if err != nil && d != nil {
			d.Close()
		}
	}()

	d = &Device{}

	d.file, err = os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return d, fmt.Errorf("open framebuffer: %w", err)
	}

	var vinfo unix.FbVarScreeninfo
	if err := ioctl(d.file, unix.FBIOGET_VSCREENINFO, unsafe.Pointer(&vinfo)); err != nil {
		return d, fmt.Errorf("get variable screen info: %w", err)
	}

	var finfo unix.FbFixScreeninfo
	if err := ioctl(d.file, unix.FBIOGET_FSCREENINFO, unsafe.Pointer(&finfo)); err != nil {
		return d, fmt.Errorf("get fixed screen info: %w", err)
	}

	if vinfo.Bits_per_pixel != 32 {
		return d, fmt.Errorf("unsupported depth: %v bits per pixel", vinfo.Bits_per_pixel)
	}
	if finfo.Line_length != vinfo.Xres*4 {
		return d, errors.New("unsupported framebuffer stride")
	}

	size := int(finfo.Line_length * vinfo.Yres)
	d.mmap, err = shm.MapShared(d.file, size, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return d, fmt.Errorf("map framebuffer: %w", err)
	}

	d.rect = image.Rect(0, 0, int(vinfo.Xres), int(vinfo.Yres))
	d.gc = memgc.New(&ximage.Image{
		Format: ximage.ARGB8888,
		Rect:   d.rect,
		Pix:    d.mmap,
	}, nil)

	logrus.WithFields(logrus.Fields{
		"path": path,
		"size": d.rect.Size(),
	}).Info("framebuffer opened")

	return d, nil
}

// Rect returns the screen rectangle of the framebuffer.
func (d *Device) Rect() image.Rectangle {
	return d.rect
}

// Context returns a graphics context drawing directly into the
// framebuffer.
func (d *Device) Context() gfx.Context {
	return d.gc
}

func (d *Device) Close() error {
	var errs []error
	if d.mmap != nil {
		errs = append(errs, d.mmap.Unmap())
		d.mmap = nil
	}
	if d.file != nil {
		errs = append(errs, d.file.Close())
		d.file = nil
	}
	return errors.Join(errs...)
}

func ioctl(file *os.File, req uint, arg unsafe.Pointer) error {
	sc, err := file.SyscallConn()
	if err != nil {
		return err
	}

	cerr := sc.Control(func(fd uintptr) {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
		if errno != 0 {
			err = errno
		}
	})
	if cerr != nil {
		return cerr
	}
	return err
}
