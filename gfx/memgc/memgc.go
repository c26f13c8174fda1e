// Package memgc implements a graphics context backed by an in-memory
// image. The owner of the context is told, through a callback pair,
// about every region that is written and about requests to present the
// rendered content.
package memgc

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Callbacks connects a GC to its owner.
type Callbacks interface {
	// Invalidate reports that rect was modified in the backing image.
	Invalidate(rect image.Rectangle)

	// Update requests that the rendered content be made visible.
	Update()
}

// GC is a gfx.Context rendering into a backing image. All operations
// clip to the image bounds.
type GC struct {
	img draw.Image
	cb  Callbacks
	clr color.Color
}

func New(img draw.Image, cb Callbacks) *GC {
	return &GC{
		img: img,
		cb:  cb,
		clr: color.Black,
	}
}

// Image returns the backing image.
func (gc *GC) Image() draw.Image {
	return gc.img
}

func (gc *GC) SetColor(c color.Color) error {
	gc.clr = c
	return nil
}

func (gc *GC) FillRect(r image.Rectangle) error {
	r = r.Intersect(gc.img.Bounds())
	if r.Empty() {
		return nil
	}

	draw.Draw(gc.img, r, image.NewUniform(gc.clr), image.Point{}, draw.Src)
	gc.invalidate(r)
	return nil
}

func (gc *GC) Blit(src image.Image, sr image.Rectangle, dp image.Point) error {
	sr = sr.Intersect(src.Bounds())
	r := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}
	r = r.Intersect(gc.img.Bounds())
	if r.Empty() {
		return nil
	}

	sp := sr.Min.Add(r.Min.Sub(dp))
	draw.Draw(gc.img, r, src, sp, draw.Over)
	gc.invalidate(r)
	return nil
}

// Update passes a present request through to the owner.
func (gc *GC) Update() {
	if gc.cb != nil {
		gc.cb.Update()
	}
}

func (gc *GC) invalidate(r image.Rectangle) {
	if gc.cb != nil {
		gc.cb.Invalidate(r)
	}
}
