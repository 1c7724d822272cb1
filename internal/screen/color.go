package screen

import (
	"image"
	"image/color"
)

// Both extractors walk the frame on a pixelGridSize stride, the same
// performance/accuracy knob the capture loop exposes. 1 visits every pixel.

// quantBits per channel for dominant-color binning: 16 levels per channel,
// 4096 bins total.
const quantBits = 4

// DominantColor returns the color covering the largest share of the frame.
// Pixels are bucketed into a coarse RGB histogram and the mean color of the
// fullest bucket is returned, so a solid frame yields its exact color. Ties
// go to the lower bin index.
func DominantColor(img *image.RGBA, pixelGridSize int) (color.RGBA, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return color.RGBA{}, ErrEmptyFrame
	}
	if pixelGridSize < 1 {
		pixelGridSize = 1
	}

	const bins = 1 << (3 * quantBits)
	var counts [bins]int
	var sums [bins][3]uint64

	for y := bounds.Min.Y; y < bounds.Max.Y; y += pixelGridSize {
		for x := bounds.Min.X; x < bounds.Max.X; x += pixelGridSize {
			r, g, b, _ := img.At(x, y).RGBA()
			r8, g8, b8 := r>>8, g>>8, b>>8
			bin := (r8>>(8-quantBits))<<(2*quantBits) |
				(g8>>(8-quantBits))<<quantBits |
				b8>>(8-quantBits)
			counts[bin]++
			sums[bin][0] += uint64(r8)
			sums[bin][1] += uint64(g8)
			sums[bin][2] += uint64(b8)
		}
	}

	winner := 0
	for bin := 1; bin < bins; bin++ {
		if counts[bin] > counts[winner] {
			winner = bin
		}
	}

	n := uint64(counts[winner])
	return color.RGBA{
		R: uint8(sums[winner][0] / n),
		G: uint8(sums[winner][1] / n),
		B: uint8(sums[winner][2] / n),
		A: 0xFF,
	}, nil
}

// HighestContrastColor returns the color of the pixel that differs most from
// the mean of its surrounding window (Euclidean distance in RGB). Scan order
// is row-major from the top-left and the first maximal pixel wins, so a
// uniform frame deterministically yields its first pixel. The window spans
// four grid steps in each direction and is sampled on the same stride.
func HighestContrastColor(img *image.RGBA, pixelGridSize int) (color.RGBA, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return color.RGBA{}, ErrEmptyFrame
	}
	if pixelGridSize < 1 {
		pixelGridSize = 1
	}
	radius := 4 * pixelGridSize

	var best color.RGBA
	bestScore := -1.0

	for y := bounds.Min.Y; y < bounds.Max.Y; y += pixelGridSize {
		for x := bounds.Min.X; x < bounds.Max.X; x += pixelGridSize {
			c := img.RGBAAt(x, y)
			score := contrastScore(img, bounds, x, y, radius, pixelGridSize, c)
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
	}

	best.A = 0xFF
	return best, nil
}

// contrastScore is the squared distance between the candidate pixel and the
// mean color of its neighborhood, the candidate itself excluded. Squared
// distance preserves the ordering so the sqrt is skipped.
func contrastScore(img *image.RGBA, bounds image.Rectangle, cx, cy, radius, stride int, c color.RGBA) float64 {
	var sumR, sumG, sumB float64
	var n int

	for y := cy - radius; y <= cy+radius; y += stride {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := cx - radius; x <= cx+radius; x += stride {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			if x == cx && y == cy {
				continue
			}
			p := img.RGBAAt(x, y)
			sumR += float64(p.R)
			sumG += float64(p.G)
			sumB += float64(p.B)
			n++
		}
	}

	if n == 0 {
		return 0
	}

	dr := float64(c.R) - sumR/float64(n)
	dg := float64(c.G) - sumG/float64(n)
	db := float64(c.B) - sumB/float64(n)
	return dr*dr + dg*dg + db*db
}
