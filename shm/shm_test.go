package shm

import (
	"image"
	"testing"

	"github.com/fenestra-os/display/gfx"
	"golang.org/x/sys/unix"
)

func TestImageBuffer(t *testing.T) {
	buf, err := NewImageBuffer(8, 4)
	if err != nil {
		t.Fatalf("NewImageBuffer: %v", err)
	}
	defer buf.Destroy()

	if buf.Stride() != 32 {
		t.Errorf("Stride = %v, want 32", buf.Stride())
	}
	if buf.Len() != 128 {
		t.Errorf("Len = %v, want 128", buf.Len())
	}
	if want := image.Rect(0, 0, 8, 4); buf.Bounds() != want {
		t.Errorf("Bounds = %v, want %v", buf.Bounds(), want)
	}

	red := gfx.NewARGBColor(0xff, 0, 0, 0xff)
	img := buf.Image()
	img.Set(3, 2, red)

	// A second wrapping of the same buffer sees the write: the pixels
	// live in the shared mapping, not in the image value.
	img2 := buf.Image()
	if got := gfx.ARGBModel.Convert(img2.At(3, 2)).(gfx.ARGBColor); got != red {
		t.Errorf("pixel through second wrapper = %08x, want %08x", uint32(got), uint32(red))
	}
}

func TestMapSharedSeesWrites(t *testing.T) {
	buf, err := NewImageBuffer(4, 4)
	if err != nil {
		t.Fatalf("NewImageBuffer: %v", err)
	}
	defer buf.Destroy()

	copy(buf.mmap, []byte{0xde, 0xad, 0xbe, 0xef})

	// An independent read-only mapping of the same file sees the same
	// pages. This is the consumer side of buffer passing.
	mmap, err := MapShared(buf.File(), int(buf.Len()), unix.PROT_READ)
	if err != nil {
		t.Fatalf("MapShared: %v", err)
	}
	defer mmap.Unmap()

	if got := mmap[:4]; got[0] != 0xde || got[1] != 0xad || got[2] != 0xbe || got[3] != 0xef {
		t.Errorf("shared mapping = %x, want deadbeef", got)
	}
}
