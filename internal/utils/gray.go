// Package utils holds the image-processing primitives shared by the
// forensic analyzers: grayscale conversion, thresholding, filtering and
// connected-component labeling over engraving photographs.
package utils

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ImageProcessingError wraps a failure in a named processing step.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ToGray converts any image to 8-bit grayscale.
func ToGray(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "grayscale", Err: errors.New("input image is nil")}
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// Grayscale output has R==G==B; the red channel is the level.
			out.Pix[y*out.Stride+x] = nrgba.NRGBAAt(b.Min.X+x, b.Min.Y+y).R
		}
	}
	return out, nil
}

// OtsuThreshold computes the Otsu binarization threshold of a grayscale
// image from its histogram.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}
	var sumB, wB float64
	var maxVar float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Binarize returns the ink mask of a grayscale image: pixels at or below
// the threshold become 255 (ink), everything else 0. Engraved characters
// read darker than the surrounding metal under inspection lighting. The
// bound is inclusive because Otsu reports the darkest value of the
// separating plateau.
func Binarize(g *image.Gray, threshold uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y <= threshold {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// BoxBlur applies a square mean filter of the given radius.
func BoxBlur(g *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return g
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, n int
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					xx, yy := x+dx, y+dy
					if xx < 0 || yy < 0 || xx >= w || yy >= h {
						continue
					}
					sum += int(g.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y)
					n++
				}
			}
			out.Pix[y*out.Stride+x] = uint8(sum / n)
		}
	}
	return out
}

// GradientStats holds Sobel gradient magnitude statistics over an image.
type GradientStats struct {
	Mean   float64
	StdDev float64
	// EdgeDensity is the fraction of pixels whose gradient magnitude
	// exceeds the edge threshold.
	EdgeDensity float64
}

// Gradient computes Sobel gradient statistics. edgeThreshold is the
// magnitude above which a pixel counts as an edge.
func Gradient(g *image.Gray, edgeThreshold float64) GradientStats {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return GradientStats{}
	}
	at := func(x, y int) float64 { return float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) }

	var sum, sumSq float64
	var edges, n int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag := math.Hypot(gx, gy)
			sum += mag
			sumSq += mag * mag
			if mag > edgeThreshold {
				edges++
			}
			n++
		}
	}
	if n == 0 {
		return GradientStats{}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return GradientStats{
		Mean:        mean,
		StdDev:      math.Sqrt(variance),
		EdgeDensity: float64(edges) / float64(n),
	}
}

// TextureVariance measures local texture as the variance of the residual
// between the image and its blurred version.
func TextureVariance(g *image.Gray, radius int) float64 {
	blur := BoxBlur(g, radius)
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) - float64(blur.GrayAt(x, y).Y)
			sum += d
			sumSq += d * d
		}
	}
	n := float64(w * h)
	mean := sum / n
	v := sumSq/n - mean*mean
	if v < 0 {
		v = 0
	}
	return v
}
