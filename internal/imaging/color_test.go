package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    HSV
	}{
		{"red", 255, 0, 0, HSV{0, 255, 255}},
		{"green", 0, 255, 0, HSV{60, 255, 255}},
		{"blue", 0, 0, 255, HSV{120, 255, 255}},
		{"cyan", 0, 255, 255, HSV{90, 255, 255}},
		{"white", 255, 255, 255, HSV{0, 0, 255}},
		{"black", 0, 0, 0, HSV{0, 0, 0}},
		{"gray", 128, 128, 128, HSV{0, 0, 128}},
		{"dodger blue", 30, 144, 255, HSV{105, 225, 255}},
		{"magenta-red wraps", 255, 0, 1, HSV{0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RGBToHSV(tt.r, tt.g, tt.b))
		})
	}
}

func TestHSV_Within(t *testing.T) {
	lower := HSV{80, 50, 40}
	upper := HSV{135, 255, 255}

	assert.True(t, HSV{80, 50, 40}.Within(lower, upper), "bounds are inclusive")
	assert.True(t, HSV{135, 255, 255}.Within(lower, upper), "bounds are inclusive")
	assert.True(t, HSV{105, 225, 255}.Within(lower, upper))
	assert.False(t, HSV{79, 200, 200}.Within(lower, upper))
	assert.False(t, HSV{100, 49, 200}.Within(lower, upper))
	assert.False(t, HSV{100, 200, 39}.Within(lower, upper))
}

func TestInRange(t *testing.T) {
	img := createPatternImage(20, 10)

	// Blue hue only: H=120
	mask := InRange(img, HSV{110, 100, 100}, HSV{130, 255, 255})
	require.Equal(t, 20, mask.Width)
	require.Equal(t, 10, mask.Height)

	assert.Equal(t, 50, mask.Count(), "only the blue quadrant should match")
	assert.True(t, mask.At(0, 9))
	assert.True(t, mask.At(9, 5))
	assert.False(t, mask.At(10, 5), "white quadrant has no saturation")
	assert.False(t, mask.At(0, 0), "red quadrant")
}

func TestInRange_NonZeroOrigin(t *testing.T) {
	img := createPatternImage(20, 20)
	sub := img.SubImage(image.Rect(10, 10, 20, 20))

	// The white quadrant sits at the sub-image's origin.
	mask := InRange(sub, HSV{0, 0, 250}, HSV{179, 0, 255})
	assert.Equal(t, 10, mask.Width)
	assert.Equal(t, 100, mask.Count())
}

func TestInRange_NilImage(t *testing.T) {
	mask := InRange(nil, HSV{}, HSV{179, 255, 255})
	assert.Equal(t, 0, mask.Width)
	assert.Equal(t, 0, mask.Count())
}

func TestToHSV_Image(t *testing.T) {
	img := createPatternImage(4, 4)
	assert.Equal(t, HSV{60, 255, 255}, ToHSV(img, 3, 0))
}
