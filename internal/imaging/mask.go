package imaging

import (
	"image"
	"image/color"
)

// Mask is a binary image. Pix holds Width*Height values in row-major order.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-background mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates are
// ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Gray renders the mask as a grayscale image with foreground at 255.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// Erode applies a size×size square erosion iterations times.
//
// A pixel stays foreground only if every in-bounds pixel under the kernel is
// foreground. The kernel anchor is at size/2.
func (m *Mask) Erode(size, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = out.morph(size, true)
	}
	if out == m {
		return m.Clone()
	}
	return out
}

// Dilate applies a size×size square dilation iterations times.
//
// A pixel becomes foreground if any in-bounds pixel under the kernel is
// foreground.
func (m *Mask) Dilate(size, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = out.morph(size, false)
	}
	if out == m {
		return m.Clone()
	}
	return out
}

// Open performs a morphological opening: erosion iterations times followed by
// dilation iterations times. It removes foreground specks smaller than the
// kernel.
func (m *Mask) Open(size, iterations int) *Mask {
	return m.Erode(size, iterations).Dilate(size, iterations)
}

// Close performs a morphological closing: dilation iterations times followed
// by erosion iterations times. It fills background gaps smaller than the
// kernel.
func (m *Mask) Close(size, iterations int) *Mask {
	return m.Dilate(size, iterations).Erode(size, iterations)
}

// morph runs one erosion (erode=true) or dilation pass. A square kernel is
// separable, so the pass is a horizontal sweep followed by a vertical sweep.
func (m *Mask) morph(size int, erode bool) *Mask {
	if size <= 1 || m.Width == 0 || m.Height == 0 {
		return m.Clone()
	}
	lo := -(size / 2)
	hi := size - 1 - size/2

	rows := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := 0; x < m.Width; x++ {
			rows.Pix[y*m.Width+x] = sweep(row, x, lo, hi, erode)
		}
	}

	out := NewMask(m.Width, m.Height)
	for x := 0; x < m.Width; x++ {
		col := rows.Pix[x:]
		for y := 0; y < m.Height; y++ {
			out.Pix[y*m.Width+x] = sweepStrided(col, y, lo, hi, m.Width, m.Height, erode)
		}
	}
	return out
}

// sweep folds a 1-D window [i+lo, i+hi] of line with AND (erode) or OR.
func sweep(line []bool, i, lo, hi int, erode bool) bool {
	start := max(i+lo, 0)
	end := min(i+hi, len(line)-1)
	for j := start; j <= end; j++ {
		if erode && !line[j] {
			return false
		}
		if !erode && line[j] {
			return true
		}
	}
	return erode
}

// sweepStrided is sweep over a column: element k lives at col[k*stride].
func sweepStrided(col []bool, i, lo, hi, stride, n int, erode bool) bool {
	start := max(i+lo, 0)
	end := min(i+hi, n-1)
	for j := start; j <= end; j++ {
		v := col[j*stride]
		if erode && !v {
			return false
		}
		if !erode && v {
			return true
		}
	}
	return erode
}
