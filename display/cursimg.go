package display

import "image"

type cursorImage struct {
	hotspot image.Point
	art     []string
}

// stdCursorImages holds the built-in cursor set, indexed by StdCursor.
var stdCursorImages = [stdCursorLimit]cursorImage{
	CursorArrow: {
		hotspot: image.Point{},
		art: []string{
			"X          ",
			"XX         ",
			"X.X        ",
			"X..X       ",
			"X...X      ",
			"X....X     ",
			"X.....X    ",
			"X......X   ",
			"X.......X  ",
			"X........X ",
			"X.....XXXX ",
			"X..X..X    ",
			"X.X X..X   ",
			"XX  X..X   ",
			"     X..X  ",
			"      XX   ",
		},
	},
	CursorSizeUD: {
		hotspot: image.Point{X: 4, Y: 8},
		art: []string{
			"    X    ",
			"   X.X   ",
			"  X...X  ",
			" X.....X ",
			"XXXX.XXXX",
			"   X.X   ",
			"   X.X   ",
			"   X.X   ",
			"   X.X   ",
			"   X.X   ",
			"   X.X   ",
			"XXXX.XXXX",
			" X.....X ",
			"  X...X  ",
			"   X.X   ",
			"    X    ",
		},
	},
	CursorSizeLR: {
		hotspot: image.Point{X: 8, Y: 4},
		art: []string{
			"    X      X    ",
			"   XX      XX   ",
			"  X.X      X.X  ",
			" X..XXXXXXXX..X ",
			"X..............X",
			" X..XXXXXXXX..X ",
			"  X.X      X.X  ",
			"   XX      XX   ",
			"    X      X    ",
		},
	},
	CursorSizeULDR: {
		hotspot: image.Point{X: 6, Y: 6},
		art: []string{
			"XXXXXX       ",
			"X...X        ",
			"X..X         ",
			"X.X.X        ",
			"XX X.X       ",
			"X   X.X      ",
			"     X.X     ",
			"      X.X   X",
			"       X.X XX",
			"        X.X.X",
			"         X..X",
			"        X...X",
			"       XXXXXX",
		},
	},
	CursorSizeURDL: {
		hotspot: image.Point{X: 6, Y: 6},
		art: []string{
			"       XXXXXX",
			"        X...X",
			"         X..X",
			"        X.X.X",
			"       X.X XX",
			"      X.X   X",
			"     X.X     ",
			"X   X.X      ",
			"XX X.X       ",
			"X.X.X        ",
			"X..X         ",
			"X...X        ",
			"XXXXXX       ",
		},
	},
}
