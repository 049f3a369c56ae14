package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gray builds an image filled with a single level.
func grayFill(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// bimodal builds an image whose left half is dark and right half light.
func bimodal(w, h int, dark, light uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := light
			if x < w/2 {
				v = dark
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestToGray(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	g, err := ToGray(src)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Bounds().Dx())
	assert.Equal(t, uint8(120), g.GrayAt(2, 2).Y)
}

func TestToGrayNilImage(t *testing.T) {
	_, err := ToGray(nil)
	require.Error(t, err)
	var ipe *ImageProcessingError
	assert.ErrorAs(t, err, &ipe)
	assert.Equal(t, "grayscale", ipe.Operation)
}

func TestOtsuThresholdBimodal(t *testing.T) {
	// The threshold lands between the two modes, inclusive of the dark one.
	th := OtsuThreshold(bimodal(100, 20, 40, 220))
	assert.GreaterOrEqual(t, th, uint8(40))
	assert.Less(t, th, uint8(220))
}

func TestOtsuThresholdUniform(t *testing.T) {
	// A flat histogram has no between-class variance to maximize.
	assert.Equal(t, uint8(0), OtsuThreshold(grayFill(20, 20, 200)))
}

func TestBinarizePolarity(t *testing.T) {
	mask := Binarize(bimodal(10, 4, 30, 230), 128)
	// Dark pixels are ink (255), light pixels background (0).
	assert.Equal(t, uint8(255), mask.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(8, 1).Y)
}

func TestConnectedComponents(t *testing.T) {
	mask := grayFill(20, 10, 0)
	// Two disjoint blobs, one touching the border.
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := 4; y < 8; y++ {
		for x := 10; x < 14; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	comps := ConnectedComponents(mask, 255)
	require.Len(t, comps, 2)
	assert.Equal(t, 9, comps[0].Area)
	assert.True(t, comps[0].TouchesBorder)
	assert.Equal(t, 16, comps[1].Area)
	assert.False(t, comps[1].TouchesBorder)
	assert.Equal(t, image.Rect(10, 4, 14, 8), comps[1].Bounds)
}

func TestConnectedComponentsDiagonalNotConnected(t *testing.T) {
	mask := grayFill(4, 4, 0)
	mask.SetGray(0, 0, color.Gray{Y: 255})
	mask.SetGray(1, 1, color.Gray{Y: 255})

	// 4-connectivity keeps diagonal neighbors apart.
	assert.Len(t, ConnectedComponents(mask, 255), 2)
}

func TestCountSmallComponents(t *testing.T) {
	mask := grayFill(30, 10, 0)
	// Three single-pixel specks and one large blob.
	mask.SetGray(2, 2, color.Gray{Y: 255})
	mask.SetGray(6, 2, color.Gray{Y: 255})
	mask.SetGray(10, 2, color.Gray{Y: 255})
	for y := 4; y < 9; y++ {
		for x := 20; x < 28; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	assert.Equal(t, 3, CountSmallComponents(mask, 1, 4))
}

func TestSegmentCharacters(t *testing.T) {
	mask := grayFill(60, 20, 0)
	// Two bars separated by a clean gap.
	for y := 2; y < 18; y++ {
		for x := 5; x < 12; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
		for x := 30; x < 40; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	boxes := SegmentCharacters(mask)
	require.Len(t, boxes, 2)
	assert.Equal(t, 0, boxes[0].Index)
	assert.Equal(t, image.Rect(5, 2, 12, 18), boxes[0].Bounds)
	assert.Equal(t, image.Rect(30, 2, 40, 18), boxes[1].Bounds)
}

func TestSegmentCharactersIgnoresNarrowNoise(t *testing.T) {
	mask := grayFill(40, 20, 0)
	// A single-column streak is below the minimum character width.
	for y := 0; y < 20; y++ {
		mask.SetGray(15, y, color.Gray{Y: 255})
	}
	assert.Empty(t, SegmentCharacters(mask))
}

func TestSegmentCharactersEmptyMask(t *testing.T) {
	assert.Empty(t, SegmentCharacters(grayFill(40, 20, 0)))
	assert.Empty(t, SegmentCharacters(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestCropGray(t *testing.T) {
	src := grayFill(10, 10, 0)
	src.SetGray(5, 5, color.Gray{Y: 200})

	crop := CropGray(src, image.Rect(4, 4, 8, 8))
	assert.Equal(t, 4, crop.Bounds().Dx())
	assert.Equal(t, uint8(200), crop.GrayAt(1, 1).Y)

	// Out-of-range rectangles are clipped, not an error.
	clipped := CropGray(src, image.Rect(8, 8, 20, 20))
	assert.Equal(t, 2, clipped.Bounds().Dx())
}

func TestGradientFlatVersusEdge(t *testing.T) {
	flat := Gradient(grayFill(20, 20, 128), 50)
	assert.Zero(t, flat.Mean)
	assert.Zero(t, flat.EdgeDensity)

	edged := Gradient(bimodal(20, 20, 0, 255), 50)
	assert.Greater(t, edged.Mean, flat.Mean)
	assert.Greater(t, edged.EdgeDensity, 0.0)
}

func TestGradientTinyImage(t *testing.T) {
	assert.Equal(t, GradientStats{}, Gradient(grayFill(2, 2, 100), 50))
}

func TestTextureVariance(t *testing.T) {
	flat := TextureVariance(grayFill(20, 20, 128), 2)
	assert.Zero(t, flat)

	// A checkerboard has strong residual against its blur.
	noisy := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(40)
			if (x+y)%2 == 0 {
				v = 220
			}
			noisy.SetGray(x, y, color.Gray{Y: v})
		}
	}
	assert.Greater(t, TextureVariance(noisy, 2), 100.0)
}

func TestBoxBlurZeroRadiusIsIdentity(t *testing.T) {
	img := bimodal(10, 10, 0, 255)
	assert.Equal(t, img, BoxBlur(img, 0))
}
