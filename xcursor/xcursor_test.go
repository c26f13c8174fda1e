package xcursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenestra-os/display/gfx"
)

// writeCursorFile builds a minimal Xcursor file with one image chunk
// per given nominal size. Every image is 2x2 with hotspot (1, 0) and
// pixels numbered from a base derived from the size.
func writeCursorFile(sizes ...int) []byte {
	var buf bytes.Buffer
	w := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }

	w(fileMagic)
	w(fileHeaderLen)
	w(1) // Version.
	w(uint32(len(sizes)))

	chunkLen := imageHeaderLen + 2*2*4
	pos := fileHeaderLen + 12*len(sizes)
	for i := range sizes {
		w(chunkImage)
		w(uint32(sizes[i]))
		w(uint32(pos + i*chunkLen))
	}

	for _, size := range sizes {
		w(imageHeaderLen)
		w(chunkImage)
		w(uint32(size))
		w(1) // Version.
		w(2) // Width.
		w(2) // Height.
		w(1) // XHot.
		w(0) // YHot.
		w(50) // Delay.
		for p := uint32(0); p < 4; p++ {
			w(0xff000000 | uint32(size)<<8 | p)
		}
	}

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := writeCursorFile(24)

	cur, err := Decode(bytes.NewReader(data), 24)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cur.Frames) != 1 {
		t.Fatalf("frames = %v, want 1", len(cur.Frames))
	}

	frame := cur.Frames[0]
	if frame.NominalSize != 24 {
		t.Errorf("nominal size = %v, want 24", frame.NominalSize)
	}
	if frame.Hotspot != image.Pt(1, 0) {
		t.Errorf("hotspot = %v, want (1,0)", frame.Hotspot)
	}
	if frame.Delay != 50*time.Millisecond {
		t.Errorf("delay = %v, want 50ms", frame.Delay)
	}
	if frame.Image.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v, want 2x2", frame.Image.Bounds())
	}

	// Pixels arrive row-major; the word value survives the repack into
	// host byte order.
	want := gfx.ARGBColor(0xff001803) // size 24 << 8, pixel 3.
	if got := frame.Image.ARGBAt(1, 1); got != want {
		t.Errorf("pixel (1,1) = %08x, want %08x", uint32(got), uint32(want))
	}
}

func TestDecodePicksNearestSize(t *testing.T) {
	data := writeCursorFile(16, 24, 48)

	cur, err := Decode(bytes.NewReader(data), 30)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cur.Frames) != 1 || cur.Frames[0].NominalSize != 24 {
		t.Errorf("frames = %+v, want one of nominal size 24", cur.Frames)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a cursor file at all")), 24)
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("Decode = %v, want ErrBadMagic", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := writeCursorFile(24)
	_, err := Decode(bytes.NewReader(data[:len(data)-6]), 24)
	if err == nil {
		t.Fatal("decoding a truncated file did not fail")
	}
}

func TestLoadTheme(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "testtheme", "cursors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "left_ptr"), writeCursorFile(24), 0o644); err != nil {
		t.Fatalf("write cursor: %v", err)
	}
	// A non-cursor file in the directory is skipped, not an error.
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("not a cursor"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	t.Setenv("XCURSOR_PATH", root)

	theme, err := LoadTheme("testtheme", 24)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme.Cursor("left_ptr") == nil {
		t.Error("left_ptr not loaded")
	}
	if theme.Cursor("README") != nil {
		t.Error("non-cursor file was loaded as a cursor")
	}
}

func TestLoadThemeInherits(t *testing.T) {
	root := t.TempDir()

	base := filepath.Join(root, "base", "cursors")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "left_ptr"), writeCursorFile(24), 0o644); err != nil {
		t.Fatalf("write cursor: %v", err)
	}

	child := filepath.Join(root, "child")
	if err := os.MkdirAll(filepath.Join(child, "cursors"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(child, "index.theme"), []byte("Inherits=base\n"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	t.Setenv("XCURSOR_PATH", root)

	theme, err := LoadTheme("child", 24)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme.Cursor("left_ptr") == nil {
		t.Error("inherited cursor not loaded")
	}
}

func TestLoadThemeFromHome(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".icons", "hometheme", "cursors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "left_ptr"), writeCursorFile(24), 0o644); err != nil {
		t.Fatalf("write cursor: %v", err)
	}

	// Setenv registers the restore; the variable itself must be absent
	// so the default library paths are consulted.
	t.Setenv("XCURSOR_PATH", "")
	os.Unsetenv("XCURSOR_PATH")
	t.Setenv("HOME", home)

	theme, err := LoadTheme("hometheme", 24)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme.Cursor("left_ptr") == nil {
		t.Error("cursor under the home icon directory not loaded")
	}
}

func TestLoadThemeMissing(t *testing.T) {
	t.Setenv("XCURSOR_PATH", t.TempDir())
	if _, err := LoadTheme("no-such-theme", 24); err == nil {
		t.Fatal("loading a missing theme did not fail")
	}
}
