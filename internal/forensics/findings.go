// Package forensics inspects how an engine code was physically engraved:
// marking technique classification, glyph-gap signatures of the factory
// font, and baseline alignment of the character row.
package forensics

import "github.com/motoforense/motoscan/internal/registry"

// Findings is the read-only forensic output for one image. It is produced
// once per analysis and consumed by the risk aggregator.
type Findings struct {
	DetectedType registry.EngravingType `json:"detected_type"`
	ExpectedType registry.EngravingType `json:"expected_type"`
	// DetectionConfidence is the classifier's confidence in DetectedType.
	DetectionConfidence float64 `json:"detection_confidence"`
	// HasMixedTypes reports different engraving techniques within the
	// same code, physically implausible for one factory pass.
	HasMixedTypes bool `json:"has_mixed_types"`
	// GapFlags maps character index to true when the glyph's structural
	// signature does not match the factory font.
	GapFlags map[int]bool `json:"per_character_gap_flags,omitempty"`
	// AlignmentDeviation is the largest baseline deviation among
	// characters, normalized by the median character height.
	AlignmentDeviation float64 `json:"alignment_deviation"`
	// MisalignedChars lists character indexes beyond the alignment
	// tolerance.
	MisalignedChars []int `json:"misaligned_chars,omitempty"`
	// CharCount is the number of character regions segmented from the
	// image.
	CharCount int `json:"char_count"`
}

// TypeMatch reports whether the detected technique agrees with the one
// expected for the declared year. An unknown detection never mismatches.
func (f *Findings) TypeMatch() bool {
	if f.DetectedType == registry.EngravingUnknown {
		return true
	}
	return f.DetectedType == f.ExpectedType
}

// GapAnomalies returns the number of flagged glyphs.
func (f *Findings) GapAnomalies() int {
	n := 0
	for _, flagged := range f.GapFlags {
		if flagged {
			n++
		}
	}
	return n
}
