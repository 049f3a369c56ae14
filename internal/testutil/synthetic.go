package testutil

import (
	"image"
	"image/color"
)

// Plate geometry for synthetic engraving photos.
const (
	plateHeight = 48
	glyphWidth  = 10
	glyphGap    = 5
	glyphTop    = 8
	glyphBottom = 40
)

// SyntheticPlate renders a code as dark block glyphs on a light metal-like
// background. Glyph shapes are schematic, not font-accurate; they exist to
// exercise segmentation and forensic analysis, not recognition.
func SyntheticPlate(code string) *image.Gray {
	w := glyphGap + len(code)*(glyphWidth+glyphGap)
	img := image.NewGray(image.Rect(0, 0, w, plateHeight))

	// Brushed-metal background: light with a faint horizontal banding.
	for y := 0; y < plateHeight; y++ {
		v := uint8(204 + (y%4)*3)
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	for i, c := range code {
		x0 := glyphGap + i*(glyphWidth+glyphGap)
		drawGlyph(img, x0, byte(c))
	}
	return img
}

// drawGlyph stamps one schematic character: enclosing characters get a
// ring, everything else a solid block.
func drawGlyph(img *image.Gray, x0 int, c byte) {
	ink := color.Gray{Y: 25}
	ring := c == '0' || c == 'O' || c == 'D' || c == 'Q'
	for y := glyphTop; y < glyphBottom; y++ {
		for x := x0; x < x0+glyphWidth; x++ {
			if ring {
				edge := x < x0+3 || x >= x0+glyphWidth-3 || y < glyphTop+4 || y >= glyphBottom-4
				if !edge {
					continue
				}
			}
			img.SetGray(x, y, ink)
		}
	}
}
