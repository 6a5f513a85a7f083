package imaging

import (
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV represents a color in the 8-bit OpenCV HSV convention.
//
//   - H: hue 0-179 (degrees / 2; 0=red, 60=green, 120=blue)
//   - S: saturation 0-255 (0=gray, 255=vivid)
//   - V: value 0-255 (0=black, 255=brightest)
type HSV struct {
	H uint8 `json:"h"`
	S uint8 `json:"s"`
	V uint8 `json:"v"`
}

func (c HSV) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.H, c.S, c.V)
}

// Within reports whether every channel of c lies in the inclusive range
// [lower, upper].
func (c HSV) Within(lower, upper HSV) bool {
	return c.H >= lower.H && c.H <= upper.H &&
		c.S >= lower.S && c.S <= upper.S &&
		c.V >= lower.V && c.V <= upper.V
}

// RGBToHSV converts 8-bit RGB components to 8-bit HSV.
//
// Hue is computed in degrees by go-colorful and halved, so 360° wraps to 0.
func RGBToHSV(r, g, b uint8) HSV {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v := c.Hsv()

	hue := math.Round(h / 2)
	if hue >= 180 {
		hue -= 180
	}
	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// ToHSV returns the HSV value of the pixel at (x, y) in image coordinates.
// 16-bit sources are reduced to 8 bits by right-shifting.
func ToHSV(img image.Image, x, y int) HSV {
	r, g, b, _ := img.At(x, y).RGBA()
	return RGBToHSV(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// InRange builds a mask selecting the pixels whose HSV value lies within
// [lower, upper] on all three channels.
//
// The returned mask is indexed from (0,0) even when img.Bounds().Min is not
// the origin. A nil image yields an empty 0x0 mask.
func InRange(img image.Image, lower, upper HSV) *Mask {
	if img == nil {
		return NewMask(0, 0)
	}

	bounds := img.Bounds()
	mask := NewMask(bounds.Dx(), bounds.Dy())

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if ToHSV(img, x+bounds.Min.X, y+bounds.Min.Y).Within(lower, upper) {
				mask.Pix[y*mask.Width+x] = true
			}
		}
	}
	return mask
}
