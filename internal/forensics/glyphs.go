package forensics

import (
	"image"

	"github.com/motoforense/motoscan/internal/utils"
)

// HighRiskChars are the digits most frequently re-engraved in the field.
const HighRiskChars = "01349"

// glyphSignature is the topological fingerprint of a factory glyph: how
// many connected stroke pieces it has and how many fully enclosed
// counters (holes). The factory four is open at the junction, which is
// exactly the discontinuity forgers tend to close.
type glyphSignature struct {
	strokes int
	holes   int
}

var glyphSignatures = map[byte]glyphSignature{
	'0': {strokes: 1, holes: 1},
	'1': {strokes: 1, holes: 0},
	'3': {strokes: 1, holes: 0},
	'4': {strokes: 2, holes: 0},
	'9': {strokes: 1, holes: 1},
}

// isHighRisk reports whether the character belongs to the monitored set.
func isHighRisk(c byte) bool {
	for i := 0; i < len(HighRiskChars); i++ {
		if HighRiskChars[i] == c {
			return true
		}
	}
	return false
}

// checkGlyph compares a binarized glyph crop against the character's
// canonical signature. It returns true when the observed topology is
// inconsistent: a missing expected discontinuity, an extra one, or a
// filled/broken counter.
func checkGlyph(mask *image.Gray, char byte) bool {
	sig, ok := glyphSignatures[char]
	if !ok {
		return false
	}
	b := mask.Bounds()
	if b.Dx() < 4 || b.Dy() < 6 {
		// Too small to judge topology.
		return false
	}
	// Ignore specks below a fraction of the glyph area.
	minArea := b.Dx() * b.Dy() / 50
	if minArea < 4 {
		minArea = 4
	}

	strokes := 0
	for _, c := range utils.ConnectedComponents(mask, 255) {
		if c.Area >= minArea {
			strokes++
		}
	}
	holes := 0
	for _, c := range utils.ConnectedComponents(mask, 0) {
		if !c.TouchesBorder && c.Area >= minArea {
			holes++
		}
	}
	if strokes == 0 {
		return false
	}
	return strokes != sig.strokes || holes != sig.holes
}
