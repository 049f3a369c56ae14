package forensics

import (
	"sort"

	"github.com/motoforense/motoscan/internal/utils"
)

// DefaultAlignmentTolerance is the allowed baseline deviation as a
// fraction of the median character height. A character re-engraved
// independently of its neighbors rarely lands back on the baseline.
const DefaultAlignmentTolerance = 0.15

// measureAlignment returns the largest normalized center-line deviation
// and the indexes of characters beyond tolerance.
func measureAlignment(boxes []utils.CharBox, tolerance float64) (float64, []int) {
	if len(boxes) < 3 {
		return 0, nil
	}
	centers := make([]float64, len(boxes))
	heights := make([]float64, len(boxes))
	for i, box := range boxes {
		centers[i] = float64(box.Bounds.Min.Y+box.Bounds.Max.Y) / 2
		heights[i] = float64(box.Bounds.Dy())
	}
	medCenter := median(centers)
	medHeight := median(heights)
	if medHeight <= 0 {
		return 0, nil
	}

	var worst float64
	var flagged []int
	for i, c := range centers {
		dev := (c - medCenter) / medHeight
		if dev < 0 {
			dev = -dev
		}
		if dev > worst {
			worst = dev
		}
		if dev > tolerance {
			flagged = append(flagged, boxes[i].Index)
		}
	}
	return worst, flagged
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
