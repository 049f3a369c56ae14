package forensics

import (
	"errors"
	"image"
	"log/slog"
	"strings"

	"github.com/motoforense/motoscan/internal/normalize"
	"github.com/motoforense/motoscan/internal/registry"
	"github.com/motoforense/motoscan/internal/utils"
)

// Config tunes the engraving analyzer.
type Config struct {
	// AlignmentTolerance is the baseline deviation beyond which a
	// character is flagged, as a fraction of median character height.
	AlignmentTolerance float64
	// MinCharPixels skips per-character technique classification for
	// crops too small to measure.
	MinCharPixels int
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		AlignmentTolerance: DefaultAlignmentTolerance,
		MinCharPixels:      120,
	}
}

// Analyzer performs per-image engraving forensics. Stateless and safe for
// concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.AlignmentTolerance <= 0 {
		cfg.AlignmentTolerance = DefaultAlignmentTolerance
	}
	if cfg.MinCharPixels <= 0 {
		cfg.MinCharPixels = 120
	}
	return &Analyzer{cfg: cfg}
}

// Analyze classifies the observed engraving technique, verifies glyph
// signatures for high-risk characters and measures baseline alignment.
// The expected technique is a step function of the declared year.
func (a *Analyzer) Analyze(img image.Image, code normalize.Code, declaredYear int) (*Findings, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	gray, err := utils.ToGray(img)
	if err != nil {
		return nil, err
	}

	findings := &Findings{
		ExpectedType: registry.ExpectedEngraving(declaredYear),
		GapFlags:     make(map[int]bool),
	}

	detected, conf, metrics := classifyEngraving(gray)
	findings.DetectedType = detected
	findings.DetectionConfidence = conf
	slog.Debug("engraving classification",
		"type", detected, "confidence", conf,
		"laser_score", metrics.LaserScore,
		"edge_density", metrics.EdgeDensity,
		"stroke_width", metrics.StrokeWidth)

	mask := utils.Binarize(gray, utils.OtsuThreshold(gray))
	boxes := utils.SegmentCharacters(mask)
	findings.CharCount = len(boxes)

	chars := strings.ReplaceAll(code.Corrected, "-", "")
	a.analyzeCharacters(gray, mask, boxes, chars, findings)

	dev, misaligned := measureAlignment(boxes, a.cfg.AlignmentTolerance)
	findings.AlignmentDeviation = dev
	findings.MisalignedChars = misaligned

	return findings, nil
}

// analyzeCharacters walks segmented character boxes paired positionally
// with the normalized code, checking glyph signatures on high-risk digits
// and collecting per-character technique votes for mixed-type detection.
func (a *Analyzer) analyzeCharacters(gray, mask *image.Gray, boxes []utils.CharBox, chars string, findings *Findings) {
	n := len(boxes)
	if len(chars) < n {
		n = len(chars)
	}

	var sawLaser, sawStamped bool
	for i := 0; i < n; i++ {
		box := boxes[i].Bounds
		if box.Dx()*box.Dy() >= a.cfg.MinCharPixels {
			charType, conf, _ := classifyEngraving(utils.CropGray(gray, box))
			if conf >= 0.7 {
				switch charType {
				case registry.EngravingLaser:
					sawLaser = true
				case registry.EngravingStamped:
					sawStamped = true
				}
			}
		}

		c := chars[i]
		if !isHighRisk(c) {
			continue
		}
		if checkGlyph(utils.CropGray(mask, box), c) {
			findings.GapFlags[i] = true
		}
	}

	findings.HasMixedTypes = sawLaser && sawStamped
	if findings.HasMixedTypes {
		slog.Warn("mixed engraving techniques within one code")
	}
}
