package forensics

import (
	"image"

	"github.com/motoforense/motoscan/internal/registry"
	"github.com/motoforense/motoscan/internal/utils"
)

// textureMetrics are the raw measurements the technique classifier scores.
type textureMetrics struct {
	EdgeDensity     float64 `json:"edge_density"`
	StrokeWidth     float64 `json:"stroke_width"`
	TextureVariance float64 `json:"texture_variance"`
	GradientSpread  float64 `json:"gradient_spread"`
	SmallComponents int     `json:"small_components"`
	LaserScore      int     `json:"laser_score"`
}

// Scoring bands for the laser/stamped decision. Laser engraving shows
// fine uniform lines, dense micro-punch specks and flat lighting; stamping
// shows thick strokes, relief shadows and high texture variance.
const (
	laserDecision   = 65
	stampedDecision = 35
	edgeMagnitude   = 100.0
)

// classifyEngraving scores a grayscale crop and decides the observed
// marking technique.
func classifyEngraving(gray *image.Gray) (registry.EngravingType, float64, textureMetrics) {
	m := measure(gray)

	score := 0
	switch {
	case m.EdgeDensity > 0.08:
		score += 25
	case m.EdgeDensity > 0.05:
		score += 15
	}
	switch {
	case m.StrokeWidth > 0 && m.StrokeWidth < 3.0:
		score += 25
	case m.StrokeWidth > 0 && m.StrokeWidth < 4.5:
		score += 15
	}
	switch {
	case m.TextureVariance < 300:
		score += 20
	case m.TextureVariance < 500:
		score += 10
	}
	switch {
	case m.GradientSpread < 1.2:
		score += 15
	case m.GradientSpread < 1.5:
		score += 8
	}
	switch {
	case m.SmallComponents > 100:
		score += 15
	case m.SmallComponents > 50:
		score += 8
	}
	m.LaserScore = score

	switch {
	case score >= laserDecision:
		return registry.EngravingLaser, min(float64(score)/100, 0.95), m
	case score <= stampedDecision:
		return registry.EngravingStamped, min(float64(100-score)/100, 0.95), m
	default:
		return registry.EngravingUnknown, 0.5, m
	}
}

func measure(gray *image.Gray) textureMetrics {
	var m textureMetrics

	grad := utils.Gradient(gray, edgeMagnitude)
	m.EdgeDensity = grad.EdgeDensity
	if grad.Mean > 0 {
		m.GradientSpread = grad.StdDev / grad.Mean
	}
	m.TextureVariance = utils.TextureVariance(gray, 2)

	mask := utils.Binarize(gray, utils.OtsuThreshold(gray))
	m.SmallComponents = utils.CountSmallComponents(mask, 5, 100)
	m.StrokeWidth = meanStrokeWidth(mask)
	return m
}

// meanStrokeWidth estimates stroke thickness as twice the ink area over
// the ink boundary length.
func meanStrokeWidth(mask *image.Gray) float64 {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	var area, boundary int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] != 255 {
				continue
			}
			area++
			edge := x == 0 || y == 0 || x == w-1 || y == h-1
			if !edge {
				edge = mask.Pix[y*mask.Stride+x-1] == 0 ||
					mask.Pix[y*mask.Stride+x+1] == 0 ||
					mask.Pix[(y-1)*mask.Stride+x] == 0 ||
					mask.Pix[(y+1)*mask.Stride+x] == 0
			}
			if edge {
				boundary++
			}
		}
	}
	if boundary == 0 {
		return 0
	}
	return 2 * float64(area) / float64(boundary)
}
