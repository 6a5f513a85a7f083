package render

import (
	"image"
	"image/color"
	"image/draw"
)

const (
	glyphAdvance = 4
	labelHeight  = 7
)

// 3x5 pixel digits.
var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text on a filled background box with its top-left
// corner at (x, y). Characters without a glyph leave a blank cell.
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.Color) {
	if text == "" {
		return
	}
	b := img.Bounds()
	set := func(px, py int, c color.Color) {
		if (image.Point{X: px, Y: py}).In(b) {
			img.Set(px, py, c)
		}
	}

	width := len(text) * glyphAdvance
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < width; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		if glyph, ok := glyphs[ch]; ok {
			for row, bits := range glyph {
				for col, bit := range bits {
					if bit == '1' {
						set(cx+col, y+row, fg)
					}
				}
			}
		}
		cx += glyphAdvance
	}
}
