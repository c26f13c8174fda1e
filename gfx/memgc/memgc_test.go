package memgc

import (
	"image"
	"testing"

	"github.com/fenestra-os/display/gfx"
)

type recordCallbacks struct {
	invalid image.Rectangle
	updates int
}

func (cb *recordCallbacks) Invalidate(rect image.Rectangle) {
	cb.invalid = cb.invalid.Union(rect)
}

func (cb *recordCallbacks) Update() {
	cb.updates++
}

func TestFillRect(t *testing.T) {
	img := gfx.NewARGB8888(image.Rect(0, 0, 20, 20))
	var cb recordCallbacks
	gc := New(img, &cb)

	red := gfx.NewARGBColor(0xff, 0, 0, 0xff)
	if err := gc.SetColor(red); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if err := gc.FillRect(image.Rect(5, 5, 10, 10)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}

	if got := img.ARGBAt(7, 7); got != red {
		t.Errorf("inside pixel = %08x, want %08x", uint32(got), uint32(red))
	}
	if got := img.ARGBAt(12, 12); got == red {
		t.Error("outside pixel was painted")
	}
	if want := image.Rect(5, 5, 10, 10); cb.invalid != want {
		t.Errorf("invalidated %v, want %v", cb.invalid, want)
	}
}

func TestFillRectClipsToBounds(t *testing.T) {
	img := gfx.NewARGB8888(image.Rect(0, 0, 10, 10))
	var cb recordCallbacks
	gc := New(img, &cb)

	if err := gc.FillRect(image.Rect(5, 5, 100, 100)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if want := image.Rect(5, 5, 10, 10); cb.invalid != want {
		t.Errorf("invalidated %v, want %v", cb.invalid, want)
	}

	// A rectangle entirely outside the bounds is a no-op.
	cb.invalid = image.Rectangle{}
	if err := gc.FillRect(image.Rect(50, 50, 60, 60)); err != nil {
		t.Fatalf("FillRect outside bounds: %v", err)
	}
	if !cb.invalid.Empty() {
		t.Errorf("out-of-bounds fill invalidated %v", cb.invalid)
	}
}

func TestBlit(t *testing.T) {
	dst := gfx.NewARGB8888(image.Rect(0, 0, 20, 20))
	var cb recordCallbacks
	gc := New(dst, &cb)

	green := gfx.NewARGBColor(0, 0xff, 0, 0xff)
	src := gfx.NewARGB8888(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, green)
		}
	}

	if err := gc.Blit(src, src.Bounds(), image.Pt(10, 10)); err != nil {
		t.Fatalf("Blit: %v", err)
	}

	if got := dst.ARGBAt(11, 11); got != green {
		t.Errorf("blitted pixel = %08x, want %08x", uint32(got), uint32(green))
	}
	if want := image.Rect(10, 10, 14, 14); cb.invalid != want {
		t.Errorf("invalidated %v, want %v", cb.invalid, want)
	}
}

func TestBlitClipped(t *testing.T) {
	dst := gfx.NewARGB8888(image.Rect(0, 0, 10, 10))
	var cb recordCallbacks
	gc := New(dst, &cb)

	src := gfx.NewARGB8888(image.Rect(0, 0, 6, 6))
	if err := gc.Blit(src, src.Bounds(), image.Pt(8, 8)); err != nil {
		t.Fatalf("Blit: %v", err)
	}
	if want := image.Rect(8, 8, 10, 10); cb.invalid != want {
		t.Errorf("invalidated %v, want %v", cb.invalid, want)
	}
}

func TestInvalidateAccumulates(t *testing.T) {
	img := gfx.NewARGB8888(image.Rect(0, 0, 100, 100))
	var cb recordCallbacks
	gc := New(img, &cb)

	gc.FillRect(image.Rect(0, 0, 10, 10))
	gc.FillRect(image.Rect(90, 90, 100, 100))

	// The recorded region is the union envelope, not the exact set.
	if want := image.Rect(0, 0, 100, 100); cb.invalid != want {
		t.Errorf("envelope = %v, want %v", cb.invalid, want)
	}
}

func TestUpdateForwards(t *testing.T) {
	img := gfx.NewARGB8888(image.Rect(0, 0, 10, 10))
	var cb recordCallbacks
	gc := New(img, &cb)

	gc.Update()
	gc.Update()
	if cb.updates != 2 {
		t.Errorf("updates = %v, want 2", cb.updates)
	}
}
