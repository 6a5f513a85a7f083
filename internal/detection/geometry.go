package detection

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Polygon is an ordered boundary. A closed polygon repeats its first point at
// the end.
type Polygon []Point

// Closed reports whether the polygon has at least 3 points and ends where it
// starts.
func (p Polygon) Closed() bool {
	return len(p) >= 3 && p[0] == p[len(p)-1]
}

// Bounds returns the smallest rectangle containing every point. Max is
// inclusive of the extreme point plus one, matching image.Rectangle.
func (p Polygon) Bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(p[0].X, p[0].Y, p[0].X+1, p[0].Y+1)
	for _, pt := range p[1:] {
		r = r.Union(image.Rect(pt.X, pt.Y, pt.X+1, pt.Y+1))
	}
	return r
}

// ContourArea returns the absolute area enclosed by a contour using the
// shoelace formula. The contour is treated as implicitly closed.
func ContourArea(contour []Point) float64 {
	if len(contour) < 3 {
		return 0
	}
	var sum float64
	prev := contour[len(contour)-1]
	for _, p := range contour {
		sum += float64(prev.X)*float64(p.Y) - float64(p.X)*float64(prev.Y)
		prev = p
	}
	return math.Abs(sum) / 2
}

// ArcLength returns the length of a curve. When closed is true the segment
// from the last point back to the first is included.
func ArcLength(curve []Point, closed bool) float64 {
	if len(curve) < 2 {
		return 0
	}
	var length float64
	for i := 1; i < len(curve); i++ {
		length += dist(curve[i-1], curve[i])
	}
	if closed {
		length += dist(curve[len(curve)-1], curve[0])
	}
	return length
}

// ApproxPolyDP simplifies a curve with the Douglas-Peucker algorithm so that no
// removed point lies farther than epsilon from the simplified curve.
//
// For closed curves the split points are an approximately farthest pair, found
// by hopping to the farthest point from the start a few times, and each half is
// simplified independently. A closed curve whose points all lie within epsilon
// of the start collapses to that single point. A final pass drops vertices that
// sit within epsilon of the line through their neighbours.
func ApproxPolyDP(curve []Point, epsilon float64, closed bool) []Point {
	n := len(curve)
	if n <= 2 || epsilon < 0 {
		return append([]Point(nil), curve...)
	}

	var out []Point
	if closed {
		start := 0
		far, maxDist := farthestFrom(curve, start)
		for i := 0; i < 2 && maxDist > epsilon; i++ {
			start, far = far, start
			far, maxDist = farthestFrom(curve, start)
		}
		if maxDist <= epsilon {
			return []Point{curve[start]}
		}

		out = append(out, curve[start])
		out = appendSimplified(out, curve, start, far, epsilon)
		out = append(out, curve[far])
		out = appendSimplified(out, curve, far, start, epsilon)
	} else {
		out = append(out, curve[0])
		out = appendSimplified(out, curve, 0, n-1, epsilon)
		out = append(out, curve[n-1])
	}

	return dropCollinear(out, epsilon, closed)
}

// appendSimplified appends the points strictly between indices from and to
// (walking forward, wrapping around) that Douglas-Peucker keeps.
func appendSimplified(out, curve []Point, from, to int, epsilon float64) []Point {
	n := len(curve)
	span := (to - from + n) % n
	if span < 2 {
		return out
	}

	a, b := curve[from], curve[to]
	best, bestDist := -1, -1.0
	for k := 1; k < span; k++ {
		i := (from + k) % n
		if d := lineDist(curve[i], a, b); d > bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist <= epsilon {
		return out
	}

	out = appendSimplified(out, curve, from, best, epsilon)
	out = append(out, curve[best])
	return appendSimplified(out, curve, best, to, epsilon)
}

// dropCollinear removes vertices lying within epsilon of the line joining
// their neighbours. Open curves keep both endpoints.
func dropCollinear(pts []Point, epsilon float64, closed bool) []Point {
	if len(pts) < 3 {
		return pts
	}

	out := make([]Point, 0, len(pts))
	for i, p := range pts {
		var prev, next Point
		switch {
		case closed:
			if len(out) > 0 {
				prev = out[len(out)-1]
			} else {
				prev = pts[len(pts)-1]
			}
			next = pts[(i+1)%len(pts)]
		case i == 0 || i == len(pts)-1:
			out = append(out, p)
			continue
		default:
			prev = out[len(out)-1]
			next = pts[i+1]
		}
		if prev != next && lineDist(p, prev, next) <= epsilon {
			continue
		}
		out = append(out, p)
	}
	if closed && len(out) < 3 {
		return pts
	}
	return out
}

// closePolygon appends the first point when a polygon of at least 3 points
// does not already end on it.
func closePolygon(p Polygon) Polygon {
	if len(p) >= 3 && !p.Closed() {
		p = append(p, p[0])
	}
	return p
}

func farthestFrom(curve []Point, from int) (int, float64) {
	best, bestDist := from, 0.0
	for i, p := range curve {
		if d := dist(curve[from], p); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func dist(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// lineDist is the perpendicular distance from p to the infinite line through a
// and b, or the distance to a when a and b coincide.
func lineDist(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return dist(p, a)
	}
	return math.Abs(dy*float64(p.X-a.X)-dx*float64(p.Y-a.Y)) / length
}
