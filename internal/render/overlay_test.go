package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pool-detect/internal/detection"
)

var (
	grass = color.RGBA{60, 120, 40, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

// createCanvas creates a solid color RGBA image
func createCanvas(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func square(x1, y1, x2, y2 int) detection.Polygon {
	return detection.Polygon{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}, {X: x1, Y: y1}}
}

func isRedish(c color.Color) bool {
	r, g, _, _ := c.RGBA()
	return r > 200<<8 && g < 100<<8
}

func TestDefaultStyle(t *testing.T) {
	s := DefaultStyle()
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, s.Color)
	assert.Equal(t, 1, s.Thickness)
	assert.True(t, s.AntiAlias)
	assert.False(t, s.Labels)
}

func TestDrawPolygons_AntiAliased(t *testing.T) {
	img := createCanvas(60, 60, grass)
	DrawPolygons(img, []detection.Polygon{square(10, 10, 40, 30)}, DefaultStyle())

	for _, pt := range []image.Point{{10, 10}, {25, 10}, {40, 20}, {25, 30}, {10, 20}} {
		assert.True(t, isRedish(img.At(pt.X, pt.Y)), "outline pixel %v should be red", pt)
	}
	assert.Equal(t, grass, img.RGBAAt(25, 20), "interior is untouched")
	assert.Equal(t, grass, img.RGBAAt(2, 2), "background is untouched")
}

func TestDrawPolygons_Aliased(t *testing.T) {
	img := createCanvas(60, 60, grass)
	style := DefaultStyle()
	style.AntiAlias = false
	DrawPolygons(img, []detection.Polygon{square(10, 10, 40, 30)}, style)

	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, red, img.RGBAAt(40, 30))
	assert.Equal(t, red, img.RGBAAt(20, 30))
	assert.Equal(t, grass, img.RGBAAt(20, 31))
	assert.Equal(t, grass, img.RGBAAt(20, 20))
}

func TestDrawPolygons_Thickness(t *testing.T) {
	img := createCanvas(60, 60, grass)
	style := DefaultStyle()
	style.AntiAlias = false
	style.Thickness = 3
	DrawPolygons(img, []detection.Polygon{square(10, 10, 40, 30)}, style)

	assert.Equal(t, red, img.RGBAAt(20, 9))
	assert.Equal(t, red, img.RGBAAt(20, 11))
	assert.Equal(t, grass, img.RGBAAt(20, 13))
}

func TestDrawPolygons_SkipsDegenerate(t *testing.T) {
	img := createCanvas(30, 30, grass)
	DrawPolygons(img, []detection.Polygon{
		{{X: 5, Y: 5}, {X: 20, Y: 20}},
		{{X: 7, Y: 7}},
		nil,
	}, DefaultStyle())

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			require.Equal(t, grass, img.RGBAAt(x, y), "pixel (%d,%d) changed", x, y)
		}
	}
}

func TestDrawPolygons_ClipsAtEdges(t *testing.T) {
	img := createCanvas(20, 20, grass)
	poly := square(0, 0, 19, 19)

	style := DefaultStyle()
	style.Thickness = 4
	DrawPolygons(img, []detection.Polygon{poly}, style)
	style.AntiAlias = false
	DrawPolygons(img, []detection.Polygon{poly}, style)

	assert.True(t, isRedish(img.At(0, 0)))
	assert.True(t, isRedish(img.At(19, 19)))
}

func TestDrawPolygons_NonZeroOrigin(t *testing.T) {
	full := createCanvas(100, 100, grass)
	sub := full.SubImage(image.Rect(50, 50, 100, 100)).(*image.RGBA)
	style := DefaultStyle()

	DrawPolygons(sub, []detection.Polygon{square(60, 60, 80, 80)}, style)

	assert.True(t, isRedish(full.At(60, 60)))
	assert.True(t, isRedish(full.At(70, 80)))
	assert.Equal(t, grass, full.RGBAAt(70, 70))
}

func TestDrawPolygons_Labels(t *testing.T) {
	img := createCanvas(80, 80, grass)
	style := DefaultStyle()
	style.Labels = true
	DrawPolygons(img, []detection.Polygon{square(10, 10, 60, 60)}, style)

	hasWhite := false
	for y := 11; y < 20; y++ {
		for x := 11; x < 20; x++ {
			if img.RGBAAt(x, y) == labelFG {
				hasWhite = true
			}
		}
	}
	assert.True(t, hasWhite, "label glyph pixels expected near the first vertex")
}

func TestAnnotate_DoesNotMutateSource(t *testing.T) {
	src := createCanvas(40, 40, grass)
	out := Annotate(src, []detection.Polygon{square(5, 5, 30, 30)}, DefaultStyle())

	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, grass, src.RGBAAt(5, 5))
	assert.True(t, isRedish(out.At(5, 5)))
}

func TestLine(t *testing.T) {
	var got []image.Point
	line(detection.Point{X: 0, Y: 0}, detection.Point{X: 3, Y: 0}, func(x, y int) {
		got = append(got, image.Pt(x, y))
	})
	assert.Equal(t, []image.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, got)

	got = nil
	line(detection.Point{X: 2, Y: 2}, detection.Point{X: 0, Y: 0}, func(x, y int) {
		got = append(got, image.Pt(x, y))
	})
	assert.Equal(t, []image.Point{{2, 2}, {1, 1}, {0, 0}}, got)
}

func TestParseHexColor_ErrorNamesInput(t *testing.T) {
	_, err := ParseHexColor("#ABCD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"#ABCD"`)
	assert.Contains(t, err.Error(), "got 4")

	_, err = ParseHexColor("#GGGGGG")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"#GGGGGG"`)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#00FF00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF", color.RGBA{0, 0, 255, 255}, false},
		{"FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#FF000080", color.RGBA{255, 0, 0, 128}, false},
		{"FF000080", color.RGBA{255, 0, 0, 128}, false},
		{"#ff8000", color.RGBA{255, 128, 0, 255}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := ParseHexColor(tt.hex)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
