package screen

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDominantColorSolidFrame(t *testing.T) {
	want := color.RGBA{R: 40, G: 180, B: 220, A: 0xFF}
	img := solidFrame(32, 32, want)

	got, err := DominantColor(img, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got, "a solid frame must round-trip exactly")
}

func TestDominantColorMajorityWins(t *testing.T) {
	red := color.RGBA{R: 200, G: 0, B: 0, A: 0xFF}
	blue := color.RGBA{R: 0, G: 0, B: 200, A: 0xFF}
	img := solidFrame(30, 30, red)
	// right third blue
	for y := 0; y < 30; y++ {
		for x := 20; x < 30; x++ {
			img.SetRGBA(x, y, blue)
		}
	}

	got, err := DominantColor(img, 1)
	require.NoError(t, err)
	assert.Equal(t, red, got)
}

func TestDominantColorTieBreaksToLowerBin(t *testing.T) {
	black := color.RGBA{A: 0xFF}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 0xFF}
	img := solidFrame(16, 16, black)
	// exactly half white
	for y := 8; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, white)
		}
	}

	got, err := DominantColor(img, 1)
	require.NoError(t, err)
	assert.Equal(t, black, got, "equal counts must resolve to the lower bin index")
}

func TestDominantColorEmptyFrame(t *testing.T) {
	_, err := DominantColor(image.NewRGBA(image.Rect(0, 0, 0, 0)), 1)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestDominantColorDeterministic(t *testing.T) {
	img := solidFrame(20, 20, color.RGBA{R: 10, G: 20, B: 30, A: 0xFF})
	for x := 0; x < 20; x += 3 {
		img.SetRGBA(x, x, color.RGBA{R: 240, G: 240, B: 10, A: 0xFF})
	}

	first, err := DominantColor(img, 2)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := DominantColor(img, 2)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHighestContrastReturnsOutlier(t *testing.T) {
	background := color.RGBA{R: 100, G: 100, B: 100, A: 0xFF}
	outlier := color.RGBA{R: 250, G: 10, B: 5, A: 0xFF}
	img := solidFrame(64, 64, background)
	img.SetRGBA(10, 10, outlier)

	got, err := HighestContrastColor(img, 1)
	require.NoError(t, err)
	assert.Equal(t, outlier, got)
}

func TestHighestContrastUniformFrameYieldsFirstPixel(t *testing.T) {
	c := color.RGBA{R: 33, G: 66, B: 99, A: 0xFF}
	img := solidFrame(16, 16, c)

	got, err := HighestContrastColor(img, 1)
	require.NoError(t, err)
	assert.Equal(t, c, got, "all-equal frame falls back to the first-scanned pixel")
}

func TestHighestContrastSinglePixelFrame(t *testing.T) {
	c := color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}
	img := solidFrame(1, 1, c)

	got, err := HighestContrastColor(img, 1)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestHighestContrastEmptyFrame(t *testing.T) {
	_, err := HighestContrastColor(image.NewRGBA(image.Rect(0, 0, 0, 0)), 1)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestExtractorsDoNotMutateFrame(t *testing.T) {
	img := solidFrame(8, 8, color.RGBA{R: 5, G: 6, B: 7, A: 0xFF})
	img.SetRGBA(3, 3, color.RGBA{R: 200, G: 1, B: 1, A: 0xFF})
	before := make([]uint8, len(img.Pix))
	copy(before, img.Pix)

	_, err := DominantColor(img, 1)
	require.NoError(t, err)
	_, err = HighestContrastColor(img, 1)
	require.NoError(t, err)

	assert.Equal(t, before, img.Pix)
}
