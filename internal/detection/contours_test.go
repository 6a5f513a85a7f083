package detection

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pool-detect/internal/imaging"
)

// maskRect marks the half-open rectangle [x1,x2)×[y1,y2) as foreground.
func maskRect(m *imaging.Mask, x1, y1, x2, y2 int, v bool) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			m.Set(x, y, v)
		}
	}
}

func TestFindExternalContours_Empty(t *testing.T) {
	assert.Empty(t, FindExternalContours(imaging.NewMask(20, 20)))
	assert.Empty(t, FindExternalContours(imaging.NewMask(0, 0)))
	assert.Empty(t, FindExternalContours(nil))
}

func TestFindExternalContours_Rectangle(t *testing.T) {
	m := imaging.NewMask(50, 40)
	maskRect(m, 10, 5, 30, 25, true)

	contours := FindExternalContours(m)
	require.Len(t, contours, 1)

	// Chain compression leaves only the four corners.
	assert.ElementsMatch(t, []Point{{10, 5}, {10, 24}, {29, 24}, {29, 5}}, contours[0])
	assert.Equal(t, Point{10, 5}, contours[0][0], "trace starts at the first raster pixel")
	assert.InDelta(t, 19*19, ContourArea(contours[0]), 1e-9)
}

func TestFindExternalContours_SinglePixel(t *testing.T) {
	m := imaging.NewMask(5, 5)
	m.Set(2, 2, true)

	contours := FindExternalContours(m)
	require.Len(t, contours, 1)
	assert.Equal(t, []Point{{2, 2}}, contours[0])
}

func TestFindExternalContours_HorizontalLine(t *testing.T) {
	m := imaging.NewMask(10, 3)
	maskRect(m, 2, 1, 8, 2, true)

	contours := FindExternalContours(m)
	require.Len(t, contours, 1)
	assert.ElementsMatch(t, []Point{{2, 1}, {7, 1}}, contours[0])
	assert.InDelta(t, 0, ContourArea(contours[0]), 1e-9)
}

func TestFindExternalContours_DiscoveryOrder(t *testing.T) {
	m := imaging.NewMask(100, 100)
	maskRect(m, 60, 10, 90, 30, true) // top right, discovered first
	maskRect(m, 5, 50, 25, 80, true)  // lower left

	contours := FindExternalContours(m)
	require.Len(t, contours, 2)
	assert.Equal(t, Point{60, 10}, contours[0][0])
	assert.Equal(t, Point{5, 50}, contours[1][0])
}

func TestFindExternalContours_IgnoresHolesAndNested(t *testing.T) {
	m := imaging.NewMask(60, 60)
	maskRect(m, 5, 5, 55, 55, true)
	maskRect(m, 15, 15, 45, 45, false) // hole
	maskRect(m, 25, 25, 35, 35, true)  // island inside the hole

	contours := FindExternalContours(m)
	require.Len(t, contours, 1, "the hole and the island inside it are not external")
	assert.ElementsMatch(t, []Point{{5, 5}, {5, 54}, {54, 54}, {54, 5}}, contours[0])
}

func TestFindExternalContours_DiagonalConnectivity(t *testing.T) {
	m := imaging.NewMask(10, 10)
	m.Set(2, 2, true)
	m.Set(3, 3, true)
	m.Set(4, 4, true)

	contours := FindExternalContours(m)
	require.Len(t, contours, 1, "diagonal neighbours belong to one component")
	assert.ElementsMatch(t, []Point{{2, 2}, {4, 4}}, contours[0])
}

func TestFindExternalContours_TouchesBorder(t *testing.T) {
	m := imaging.NewMask(20, 20)
	maskRect(m, 0, 0, 8, 8, true)

	contours := FindExternalContours(m)
	require.Len(t, contours, 1)
	assert.ElementsMatch(t, []Point{{0, 0}, {0, 7}, {7, 7}, {7, 0}}, contours[0])
}

func TestFindExternalContours_LargeSolidMask(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large mask in short mode")
	}
	const size = 2000
	m := imaging.NewMask(size, size)
	for i := range m.Pix {
		m.Pix[i] = true
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	contours := FindExternalContours(m)
	runtime.ReadMemStats(&after)

	require.Len(t, contours, 1)
	assert.ElementsMatch(t, []Point{{0, 0}, {0, size - 1}, {size - 1, size - 1}, {size - 1, 0}}, contours[0])

	// Two size×size bool grids plus a fill stack of at most one int32 per pixel.
	const budget = 96 << 20
	allocated := after.TotalAlloc - before.TotalAlloc
	assert.Less(t, allocated, uint64(budget), "allocated %d MB", allocated>>20)
}

func TestFloodFill_MarksWholeComponent(t *testing.T) {
	m := imaging.NewMask(30, 30)
	maskRect(m, 2, 2, 12, 12, true)
	maskRect(m, 20, 20, 25, 25, true)
	m.Set(12, 12, true) // diagonal bridge to nothing else

	visited := make([]bool, 30*30)
	floodFill(m, visited, 2, 2)

	count := 0
	for _, v := range visited {
		if v {
			count++
		}
	}
	assert.Equal(t, 10*10+1, count)
	assert.False(t, visited[20*30+20], "separate component stays unvisited")
}

func TestTraceBorder_Square2x2(t *testing.T) {
	m := imaging.NewMask(4, 4)
	maskRect(m, 0, 0, 2, 2, true)

	assert.Equal(t, []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, traceBorder(m, Point{0, 0}))
}

func TestCompressChain(t *testing.T) {
	chain := []Point{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {1, 0}}
	assert.Equal(t, []Point{{0, 0}, {0, 2}, {2, 2}, {2, 0}}, compressChain(chain))
}
