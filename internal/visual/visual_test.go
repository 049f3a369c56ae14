package visual

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoforense/motoscan/internal/normalize"
)

// glyphImage draws dark shapes on a light background, the way reference
// templates are photographed.
func glyphImage(w, h int, draw func(x, y int) bool) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255)
			if draw(x, y) {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// ringGlyph is a rectangular ring touching the image edges.
func ringGlyph(w, h, stroke int) image.Image {
	return glyphImage(w, h, func(x, y int) bool {
		return x < stroke || y < stroke || x >= w-stroke || y >= h-stroke
	})
}

// barGlyph is a solid vertical bar through the image center.
func barGlyph(w, h int) image.Image {
	return glyphImage(w, h, func(x, y int) bool {
		return x >= w*3/10 && x < w*7/10
	})
}

// sceneWithRings paints three ring characters on a light plate.
func sceneWithRings(t *testing.T) image.Image {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 120, 60))
	for i := range img.Pix {
		img.Pix[i] = 230
	}
	for _, x0 := range []int{10, 50, 90} {
		for y := 10; y < 50; y++ {
			for x := x0; x < x0+20; x++ {
				edge := x < x0+4 || x >= x0+16 || y < 14 || y >= 46
				if edge {
					img.SetGray(x, y, color.Gray{Y: 20})
				}
			}
		}
	}
	return img
}

func newStoreWithSet(id string, glyphs map[byte]image.Image) *TemplateStore {
	s := &TemplateStore{sets: map[string]*TemplateSet{}}
	s.AddSet(NewTemplateSet(id, glyphs))
	return s
}

func TestLookupExactAndFamilyFallback(t *testing.T) {
	s := newStoreWithSet("MD09E", map[byte]image.Image{'0': ringGlyph(50, 70, 8)})

	assert.NotNil(t, s.Lookup("MD09E"))
	// A more specific prefix borrows its family's set.
	assert.NotNil(t, s.Lookup("MD09E1"))
	assert.Nil(t, s.Lookup("KC08E"))
}

func TestLookupGenericFallback(t *testing.T) {
	s := newStoreWithSet(GenericSetID, map[byte]image.Image{'0': ringGlyph(50, 70, 8)})

	assert.NotNil(t, s.Lookup("KC08E"))
	assert.NotNil(t, s.Lookup(""))
}

func TestNewTemplateStoreMissingRoot(t *testing.T) {
	s, err := NewTemplateStore("/nonexistent/templates")
	require.NoError(t, err)
	assert.Nil(t, s.Lookup("MD09E"))
}

func TestCompareNoTemplatesReturnsNil(t *testing.T) {
	c := NewComparator(&TemplateStore{sets: map[string]*TemplateSet{}})

	res, err := c.Compare(sceneWithRings(t), normalize.Code{Prefix: "MD09E", Corrected: "000"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCompareMatchingGlyphsScoreHigh(t *testing.T) {
	store := newStoreWithSet("MD09E", map[byte]image.Image{'0': ringGlyph(50, 70, 12)})
	c := NewComparator(store)

	res, err := c.Compare(sceneWithRings(t), normalize.Code{Prefix: "MD09E", Corrected: "000"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "MD09E", res.ReferenceID)
	assert.Len(t, res.PerChar, 3)
	assert.Greater(t, res.Overall, 0.5, "identical ring glyphs should score high")
}

func TestCompareForeignGlyphsScoreLower(t *testing.T) {
	rings := newStoreWithSet("MD09E", map[byte]image.Image{'0': ringGlyph(50, 70, 12)})
	bars := newStoreWithSet("MD09E", map[byte]image.Image{'0': barGlyph(50, 70)})

	scene := sceneWithRings(t)
	code := normalize.Code{Prefix: "MD09E", Corrected: "000"}

	matching, err := NewComparator(rings).Compare(scene, code)
	require.NoError(t, err)
	require.NotNil(t, matching)

	foreign, err := NewComparator(bars).Compare(scene, code)
	require.NoError(t, err)
	require.NotNil(t, foreign)

	assert.Greater(t, matching.Overall, foreign.Overall)
}

func TestCompareNilImage(t *testing.T) {
	c := NewComparator(newStoreWithSet(GenericSetID, map[byte]image.Image{'0': ringGlyph(50, 70, 8)}))

	_, err := c.Compare(nil, normalize.Code{})
	assert.Error(t, err)
}

func TestCompareUnknownCharsReturnsNil(t *testing.T) {
	// Templates exist but cover none of the code's characters.
	store := newStoreWithSet("MD09E", map[byte]image.Image{'7': ringGlyph(50, 70, 8)})
	c := NewComparator(store)

	res, err := c.Compare(sceneWithRings(t), normalize.Code{Prefix: "MD09E", Corrected: "000"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestNormalizeGlyphCanonicalSize(t *testing.T) {
	g := NormalizeGlyph(ringGlyph(20, 30, 4))
	b := g.Bounds()
	assert.Equal(t, 50, b.Dx())
	assert.Equal(t, 70, b.Dy())
}
