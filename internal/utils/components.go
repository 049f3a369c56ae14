package utils

import "image"

// Component is one 4-connected region of ink (or background) pixels.
type Component struct {
	Area   int
	Bounds image.Rectangle
	// TouchesBorder reports whether the component reaches the mask edge.
	TouchesBorder bool
}

// ConnectedComponents labels 4-connected regions of the given value in a
// binary mask. The mask must use 0/255 values as produced by Binarize.
func ConnectedComponents(mask *image.Gray, value uint8) []Component {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	visited := make([]bool, w*h)
	at := func(x, y int) uint8 { return mask.Pix[y*mask.Stride+x] }

	var comps []Component
	stack := make([][2]int, 0, 256)
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if visited[sy*w+sx] || at(sx, sy) != value {
				continue
			}
			comp := Component{Bounds: image.Rect(sx, sy, sx+1, sy+1)}
			stack = append(stack[:0], [2]int{sx, sy})
			visited[sy*w+sx] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := p[0], p[1]
				comp.Area++
				comp.Bounds = comp.Bounds.Union(image.Rect(x, y, x+1, y+1))
				if x == 0 || y == 0 || x == w-1 || y == h-1 {
					comp.TouchesBorder = true
				}
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := x+d[0], y+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if visited[ny*w+nx] || at(nx, ny) != value {
						continue
					}
					visited[ny*w+nx] = true
					stack = append(stack, [2]int{nx, ny})
				}
			}
			comps = append(comps, comp)
		}
	}
	return comps
}

// CountSmallComponents counts ink components whose area falls inside
// [minArea, maxArea]. Laser micro-punch engraving produces many such
// specks; stamped strokes produce few.
func CountSmallComponents(mask *image.Gray, minArea, maxArea int) int {
	n := 0
	for _, c := range ConnectedComponents(mask, 255) {
		if c.Area >= minArea && c.Area <= maxArea {
			n++
		}
	}
	return n
}
