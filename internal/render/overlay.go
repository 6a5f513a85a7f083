// Package render draws detection results onto images.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/pkg/errors"
	"golang.org/x/image/vector"

	"github.com/ironsheep/pool-detect/internal/detection"
)

// Style controls how polygon outlines are drawn.
type Style struct {
	Color     color.Color
	Thickness int
	AntiAlias bool
	// Labels prints the 1-based pool index next to each polygon's first vertex.
	Labels bool
}

// DefaultStyle is a 1px anti-aliased red outline.
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{255, 0, 0, 255},
		Thickness: 1,
		AntiAlias: true,
	}
}

var (
	labelFG = color.RGBA{255, 255, 255, 255}
	labelBG = color.RGBA{0, 0, 0, 180}
)

// Annotate returns an RGBA copy of img with the polygons drawn on it.
// The source image is not modified.
func Annotate(img image.Image, polygons []detection.Polygon, style Style) *image.RGBA {
	canvas := clone.AsRGBA(img)
	DrawPolygons(canvas, polygons, style)
	return canvas
}

// DrawPolygons draws every polygon with at least 3 points as a closed
// outline on dst. Shorter polygons are skipped.
func DrawPolygons(dst draw.Image, polygons []detection.Polygon, style Style) {
	if style.Color == nil {
		style.Color = DefaultStyle().Color
	}
	if style.Thickness < 1 {
		style.Thickness = 1
	}

	for i, p := range polygons {
		if len(p) < 3 {
			continue
		}
		if style.AntiAlias {
			strokeSmooth(dst, p, style)
		} else {
			strokeAliased(dst, p, style)
		}
		if style.Labels {
			drawLabel(dst, p[0].X+2, p[0].Y+2, strconv.Itoa(i+1), labelFG, labelBG)
		}
	}
}

// strokeSmooth fills one quad per edge plus a square cap per vertex in a
// single rasterizer pass. All sub-paths share the same winding so that
// overlaps at the joints accumulate instead of cancelling.
func strokeSmooth(dst draw.Image, p detection.Polygon, style Style) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	hw := float32(style.Thickness) / 2
	// Pixel centres, relative to the rasterizer origin.
	at := func(q detection.Point) (float32, float32) {
		return float32(q.X-b.Min.X) + 0.5, float32(q.Y-b.Min.Y) + 0.5
	}

	n := len(p)
	for i := 0; i < n; i++ {
		ax, ay := at(p[i])
		bx, by := at(p[(i+1)%n])

		z.MoveTo(ax-hw, ay+hw)
		z.LineTo(ax+hw, ay+hw)
		z.LineTo(ax+hw, ay-hw)
		z.LineTo(ax-hw, ay-hw)
		z.ClosePath()

		dx, dy := bx-ax, by-ay
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		z.MoveTo(ax+nx, ay+ny)
		z.LineTo(bx+nx, by+ny)
		z.LineTo(bx-nx, by-ny)
		z.LineTo(ax-nx, ay-ny)
		z.ClosePath()
	}

	z.Draw(dst, b, image.NewUniform(style.Color), image.Point{})
}

// strokeAliased walks each edge with Bresenham and stamps a square brush.
func strokeAliased(dst draw.Image, p detection.Polygon, style Style) {
	b := dst.Bounds()
	t := style.Thickness
	lo := -t / 2

	stamp := func(x, y int) {
		for dy := lo; dy < lo+t; dy++ {
			for dx := lo; dx < lo+t; dx++ {
				if (image.Point{X: x + dx, Y: y + dy}).In(b) {
					dst.Set(x+dx, y+dy, style.Color)
				}
			}
		}
	}

	n := len(p)
	for i := 0; i < n; i++ {
		line(p[i], p[(i+1)%n], stamp)
	}
}

// line calls plot for every pixel on the segment a-b, endpoints included.
func line(a, b detection.Point, plot func(x, y int)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	x, y := a.X, a.Y
	e := dx + dy
	for {
		plot(x, y)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional
// and a missing alpha means opaque.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, errors.Errorf("invalid hex color %q: want 6 or 8 hex digits, got %d", s, len(hex))
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
