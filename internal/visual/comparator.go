package visual

import (
	"errors"
	"image"
	"log/slog"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/motoforense/motoscan/internal/normalize"
	"github.com/motoforense/motoscan/internal/utils"
)

// CharSimilarity is the per-character comparison outcome.
type CharSimilarity struct {
	Index int     `json:"index"`
	Char  string  `json:"char"`
	Score float64 `json:"score"` // 0..1
}

// MatchResult reports glyph similarity against a reference template set.
// A nil result means no reference existed for the code.
type MatchResult struct {
	ReferenceID string           `json:"reference_id"`
	PerChar     []CharSimilarity `json:"per_char"`
	Overall     float64          `json:"overall_similarity"` // 0..1
}

// Comparator scores observed glyphs against the template store.
// Stateless over an immutable store; safe for concurrent use.
type Comparator struct {
	store *TemplateStore
}

// NewComparator creates a comparator over a template store.
func NewComparator(store *TemplateStore) *Comparator {
	return &Comparator{store: store}
}

// Compare segments the code characters out of the image and scores each
// against the best available reference set. It returns (nil, nil) when no
// template set exists at all.
func (c *Comparator) Compare(img image.Image, code normalize.Code) (*MatchResult, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	set := c.store.Lookup(code.Prefix)
	if set == nil {
		slog.Debug("no reference template set", "prefix", code.Prefix)
		return nil, nil
	}

	gray, err := utils.ToGray(img)
	if err != nil {
		return nil, err
	}
	mask := utils.Binarize(gray, utils.OtsuThreshold(gray))
	boxes := utils.SegmentCharacters(mask)

	chars := strings.ReplaceAll(code.Corrected, "-", "")
	n := len(boxes)
	if len(chars) < n {
		n = len(chars)
	}

	result := &MatchResult{ReferenceID: set.ID}
	var sum float64
	for i := 0; i < n; i++ {
		ref := set.Glyph(chars[i])
		if ref == nil {
			continue
		}
		observed := resizeMask(utils.CropGray(mask, boxes[i].Bounds))
		score := glyphSimilarity(observed, ref)
		result.PerChar = append(result.PerChar, CharSimilarity{
			Index: i,
			Char:  string(chars[i]),
			Score: score,
		})
		sum += score
	}
	if len(result.PerChar) == 0 {
		return nil, nil
	}
	result.Overall = sum / float64(len(result.PerChar))
	return result, nil
}

// resizeMask scales an ink mask to the canonical glyph size. The crop is
// already binarized with ink at 255, so plain thresholding keeps the
// polarity; NormalizeGlyph would flip it.
func resizeMask(mask *image.Gray) *image.Gray {
	resized := imaging.Resize(mask, glyphWidth, glyphHeight, imaging.Lanczos)
	out := image.NewGray(image.Rect(0, 0, glyphWidth, glyphHeight))
	for y := 0; y < glyphHeight; y++ {
		for x := 0; x < glyphWidth; x++ {
			if resized.NRGBAAt(x, y).R >= 128 {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// glyphSimilarity blends normalized cross-correlation with plain pixel
// agreement; correlation alone over-rewards thin glyphs, pixel agreement
// alone over-rewards heavy ones.
func glyphSimilarity(a, b *image.Gray) float64 {
	corr := crossCorrelation(a, b)
	if corr < 0 {
		corr = 0
	}
	pixel := 1 - meanAbsDiff(a, b)/255
	s := 0.6*corr + 0.4*pixel
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func crossCorrelation(a, b *image.Gray) float64 {
	n := glyphWidth * glyphHeight
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += float64(a.Pix[i])
		meanB += float64(b.Pix[i])
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var num, denA, denB float64
	for i := 0; i < n; i++ {
		da := float64(a.Pix[i]) - meanA
		db := float64(b.Pix[i]) - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	den := math.Sqrt(denA * denB)
	if den == 0 {
		return 0
	}
	return num / den
}

func meanAbsDiff(a, b *image.Gray) float64 {
	n := glyphWidth * glyphHeight
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(n)
}
