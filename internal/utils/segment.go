package utils

import "image"

// CharBox is one segmented character region within the code line.
type CharBox struct {
	Index  int
	Bounds image.Rectangle
}

// minColumnInk is the fraction of the row height a column must cover with
// ink to count as part of a character.
const minColumnInk = 0.04

// SegmentCharacters splits an ink mask into per-character bounding boxes
// using vertical projection: runs of columns carrying ink form characters,
// gaps between them form separators. The returned boxes are ordered left
// to right.
func SegmentCharacters(mask *image.Gray) []CharBox {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	colInk := make([]int, w)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if mask.Pix[y*mask.Stride+x] == 255 {
				colInk[x]++
			}
		}
	}
	minInk := int(float64(h) * minColumnInk)
	if minInk < 1 {
		minInk = 1
	}

	var boxes []CharBox
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		top, bottom := h, 0
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				if mask.Pix[y*mask.Stride+x] != 255 {
					continue
				}
				if y < top {
					top = y
				}
				if y+1 > bottom {
					bottom = y + 1
				}
			}
		}
		if bottom > top && end-start >= 2 {
			boxes = append(boxes, CharBox{
				Index:  len(boxes),
				Bounds: image.Rect(start, top, end, bottom),
			})
		}
		start = -1
	}
	for x := 0; x < w; x++ {
		if colInk[x] >= minInk {
			if start < 0 {
				start = x
			}
			continue
		}
		flush(x)
	}
	flush(w)
	return boxes
}

// CropGray extracts a sub-image copy from a grayscale image.
func CropGray(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(image.Rect(0, 0, g.Bounds().Dx(), g.Bounds().Dy()))
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.Pix[y*out.Stride+x] = g.Pix[(r.Min.Y+y)*g.Stride+(r.Min.X+x)]
		}
	}
	return out
}
