package detection

import (
	"github.com/ironsheep/pool-detect/internal/imaging"
)

// neighbours lists the 8-neighbourhood clockwise on screen (Y grows downward),
// starting east.
var neighbours = [8]Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

const dirWest = 4

// FindExternalContours returns the outer boundary of every 8-connected
// foreground component of mask that is not enclosed by another component.
//
// Components are discovered in raster order (top to bottom, left to right) by
// their first pixel, and contours are returned in that order. Pixels outside
// the mask count as background, so components touching the border are
// external. Background connectivity is 4-connected; a component sitting in a
// hole of another component is skipped.
//
// Each contour is compressed: runs of points moving in the same direction
// (horizontal, vertical or diagonal) keep only their endpoints. The first
// traced point is always kept.
func FindExternalContours(mask *imaging.Mask) [][]Point {
	if mask == nil || mask.Width == 0 || mask.Height == 0 {
		return nil
	}
	width, height := mask.Width, mask.Height

	outside := outerBackground(mask)
	visited := make([]bool, width*height)
	contours := make([][]Point, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !mask.Pix[i] || visited[i] {
				continue
			}
			floodFill(mask, visited, x, y)

			// First raster pixel of a component: its west neighbour is
			// background and belongs to the region surrounding the component.
			if x > 0 && !outside[i-1] {
				continue
			}
			contours = append(contours, compressChain(traceBorder(mask, Point{X: x, Y: y})))
		}
	}

	return contours
}

// outerBackground marks the background pixels 4-connected to the area outside
// the mask.
func outerBackground(mask *imaging.Mask) []bool {
	width, height := mask.Width, mask.Height
	outside := make([]bool, width*height)
	stack := make([]int32, 0, 2*(width+height))

	push := func(x, y int) {
		i := y*width + x
		if mask.Pix[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, int32(i))
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		i := int(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		if x > 0 {
			push(x-1, y)
		}
		if x < width-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < height-1 {
			push(x, y+1)
		}
	}

	return outside
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large components. Marks every 8-connected foreground pixel as visited.
// A pixel is marked when it is pushed, so the stack never holds more entries
// than the component has pixels.
func floodFill(mask *imaging.Mask, visited []bool, startX, startY int) {
	width, height := mask.Width, mask.Height
	start := startY*width + startX
	visited[start] = true
	stack := []int32{int32(start)}

	for len(stack) > 0 {
		i := int(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for _, d := range neighbours {
			nx, ny := x+d.X, y+d.Y
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			j := ny*width + nx
			if visited[j] || !mask.Pix[j] {
				continue
			}
			visited[j] = true
			stack = append(stack, int32(j))
		}
	}
}

// traceBorder follows the outer border of the component containing start,
// which must be the component's first pixel in raster order.
//
// The search pivots around the current pixel counterclockwise from the
// previously visited one, and stops when the walk returns to start about to
// repeat its first step.
func traceBorder(mask *imaging.Mask, start Point) []Point {
	// Clockwise from the west neighbour for the first step.
	first := -1
	for k := 0; k < 8; k++ {
		d := neighbours[(dirWest+k)%8]
		if mask.At(start.X+d.X, start.Y+d.Y) {
			first = (dirWest + k) % 8
			break
		}
	}
	if first < 0 {
		return []Point{start}
	}

	second := Point{X: start.X + neighbours[first].X, Y: start.Y + neighbours[first].Y}
	contour := make([]Point, 0)

	prev, cur := second, start
	for {
		// Direction from cur back to prev, then search counterclockwise.
		back := direction(cur, prev)
		var next Point
		for k := 1; k <= 8; k++ {
			d := neighbours[(back-k+8)%8]
			cand := Point{X: cur.X + d.X, Y: cur.Y + d.Y}
			if mask.At(cand.X, cand.Y) {
				next = cand
				break
			}
		}

		contour = append(contour, cur)
		if next == start && cur == second {
			break
		}
		prev, cur = cur, next
	}

	return contour
}

// direction returns the neighbours index pointing from a to its 8-neighbour b.
func direction(a, b Point) int {
	d := Point{X: sign(b.X - a.X), Y: sign(b.Y - a.Y)}
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// compressChain keeps only the points where the traversal direction changes.
func compressChain(chain []Point) []Point {
	n := len(chain)
	if n < 3 {
		return chain
	}

	out := []Point{chain[0]}
	for i := 1; i < n; i++ {
		prev, next := chain[i-1], chain[(i+1)%n]
		if direction(prev, chain[i]) != direction(chain[i], next) {
			out = append(out, chain[i])
		}
	}
	return out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
