package gfx

import "image/color"

// ARGBColor is a packed 32-bit ARGB color word.
type ARGBColor uint32

func NewARGBColor(r, g, b, a uint8) ARGBColor {
	return ARGBColor((uint32(a) << 24) | (uint32(r) << 16) | (uint32(g) << 8) | uint32(b))
}

func (c ARGBColor) RGBA() (r, g, b, a uint32) {
	a = uint32(c.a()) * 0xFFFF / 0xFF
	r = uint32(c.r()) * a / 0xFF
	g = uint32(c.g()) * a / 0xFF
	b = uint32(c.b()) * a / 0xFF
	return
}

func (c ARGBColor) r() uint8 {
	return uint8((c & 0x00FF0000) >> 16)
}

func (c ARGBColor) g() uint8 {
	return uint8((c & 0x0000FF00) >> 8)
}

func (c ARGBColor) b() uint8 {
	return uint8(c & 0x000000FF)
}

func (c ARGBColor) a() uint8 {
	return uint8((c & 0xFF000000) >> 24)
}

var ARGBModel color.Model = color.ModelFunc(argbModel)

func argbModel(c color.Color) color.Color {
	if c, ok := c.(ARGBColor); ok {
		return c
	}

	r, g, b, a := c.RGBA()
	if a == 0 {
		return ARGBColor(0)
	}
	r = r * 0xFF / a
	g = g * 0xFF / a
	b = b * 0xFF / a
	return NewARGBColor(uint8(r), uint8(g), uint8(b), uint8(a>>8))
}
