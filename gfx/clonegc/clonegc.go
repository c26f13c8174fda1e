// Package clonegc implements a fan-out graphics context that mirrors
// every rendering operation to a set of output contexts, typically one
// per physical display device.
package clonegc

import (
	"image"
	"image/color"

	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/internal/xslices"
)

// GC is a gfx.Context composed of zero or more output contexts. Every
// operation is replayed on each output in the order the outputs were
// added; the first failure aborts the operation and is returned.
type GC struct {
	outputs []gfx.Context
}

func New(outputs ...gfx.Context) *GC {
	return &GC{outputs: outputs}
}

// AddOutput adds another mirrored output.
func (gc *GC) AddOutput(out gfx.Context) {
	gc.outputs = append(gc.outputs, out)
}

// RemoveOutput removes out from the set of mirrored outputs. Removing
// an output that is not present is a no-op.
func (gc *GC) RemoveOutput(out gfx.Context) {
	gc.outputs = xslices.Filter(gc.outputs, func(c gfx.Context) bool {
		return c != out
	})
}

// Outputs returns the number of mirrored outputs.
func (gc *GC) Outputs() int {
	return len(gc.outputs)
}

func (gc *GC) SetColor(c color.Color) error {
	for _, out := range gc.outputs {
		if err := out.SetColor(c); err != nil {
			return err
		}
	}
	return nil
}

func (gc *GC) FillRect(r image.Rectangle) error {
	for _, out := range gc.outputs {
		if err := out.FillRect(r); err != nil {
			return err
		}
	}
	return nil
}

func (gc *GC) Blit(src image.Image, sr image.Rectangle, dp image.Point) error {
	for _, out := range gc.outputs {
		if err := out.Blit(src, sr, dp); err != nil {
			return err
		}
	}
	return nil
}
