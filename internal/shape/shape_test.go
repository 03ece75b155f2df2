package shape

import (
	"math/rand"
	"testing"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/neighbours"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shoelace2 is twice the signed area of the closed path: positive for
// counterclockwise loops, negative for clockwise ones.
func shoelace2(p ShapePath) int64 {
	total := int64(0)
	n := len(p.Points)
	for i, a := range p.Points {
		b := p.Points[(i+1)%n]
		total += a.X*b.Y - b.X*a.Y
	}
	return total
}

func randomDisjointRects(rng *rand.Rand, span int64, bites int) []geometry.Rect {
	region := []geometry.Rect{{XMin: 0, XMax: span, YMin: 0, YMax: span}}
	for i := 0; i < bites; i++ {
		x := rng.Int63n(span)
		y := rng.Int63n(span)
		w := 1 + rng.Int63n(span/2)
		h := 1 + rng.Int63n(span/2)
		bite := geometry.Rect{XMin: x, XMax: x + w, YMin: y, YMax: y + h}
		region = geometry.SubtractAll(region, []geometry.Rect{bite})
	}
	return region
}

func shapesOf(t *testing.T, rects []geometry.Rect) []SingleShape {
	t.Helper()
	return BoxesToShapes(rects, neighbours.Build(rects))
}

func TestBoxesToShapes_SingleRectangle(t *testing.T) {
	rects := []geometry.Rect{{XMin: 0, XMax: 4, YMin: 0, YMax: 4}}
	shapes := shapesOf(t, rects)
	require.Len(t, shapes, 1)

	b := shapes[0].Boundary
	assert.Equal(t, []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, b.Points)
	assert.Equal(t, []int{0, 0, 0, 0}, b.TouchingBox)
	assert.Empty(t, shapes[0].Holes)
}

func TestBoxesToShapes_TwoAbutting(t *testing.T) {
	// Collinear runs are merged per owning rectangle, so the vertex where
	// ownership changes along the shared bottom line survives.
	rects := []geometry.Rect{
		{XMin: 0, XMax: 4, YMin: 0, YMax: 4},
		{XMin: 4, XMax: 8, YMin: 0, YMax: 4},
	}
	shapes := shapesOf(t, rects)
	require.Len(t, shapes, 1)

	b := shapes[0].Boundary
	assert.Equal(t, []Point{{0, 0}, {4, 0}, {8, 0}, {8, 4}, {4, 4}, {0, 4}}, b.Points)
	assert.Equal(t, []int{0, 1, 1, 1, 0, 0}, b.TouchingBox)
}

func TestBoxesToShapes_RingHasOneHole(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 8},
		{XMin: 6, XMax: 8, YMin: 0, YMax: 8},
		{XMin: 2, XMax: 6, YMin: 0, YMax: 2},
		{XMin: 2, XMax: 6, YMin: 6, YMax: 8},
	}
	shapes := shapesOf(t, rects)
	require.Len(t, shapes, 1)
	require.Len(t, shapes[0].Holes, 1)

	assert.Positive(t, shoelace2(shapes[0].Boundary), "boundary must be counterclockwise")
	hole := shapes[0].Holes[0]
	assert.Negative(t, shoelace2(hole), "holes must be clockwise")
	assert.ElementsMatch(t, []Point{{2, 2}, {2, 6}, {6, 6}, {6, 2}}, hole.Points)
}

func TestBoxesToShapes_TwoComponents(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 3, YMin: 0, YMax: 3},
		{XMin: 10, XMax: 13, YMin: 0, YMax: 3},
	}
	shapes := shapesOf(t, rects)
	require.Len(t, shapes, 2)
	assert.Len(t, shapes[0].Boundary.Points, 4)
	assert.Len(t, shapes[1].Boundary.Points, 4)
}

func TestCutShapeIntoRectangles_Rectangle(t *testing.T) {
	rects := []geometry.Rect{{XMin: 1, XMax: 5, YMin: 2, YMax: 7}}
	got := CutShapeIntoRectangles(shapesOf(t, rects)[0])
	assert.Equal(t, rects, got)
}

func TestCutShapeIntoRectangles_LShape(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 4, YMin: 0, YMax: 2},
		{XMin: 0, XMax: 2, YMin: 2, YMax: 4},
	}
	got := CutShapeIntoRectangles(shapesOf(t, rects)[0])
	assert.Len(t, got, 2)
	assert.True(t, geometry.RegionIncludesOther(got, rects))
	assert.True(t, geometry.RegionIncludesOther(rects, got))
}

func TestCutShapeIntoRectangles_PlusUsesGoodDiagonals(t *testing.T) {
	// A plus has four reflex corners; three rectangles are optimal and only
	// reachable by pairing up the reflex corners through good diagonals.
	rects := []geometry.Rect{
		{XMin: 0, XMax: 6, YMin: 2, YMax: 4},
		{XMin: 2, XMax: 4, YMin: 0, YMax: 2},
		{XMin: 2, XMax: 4, YMin: 4, YMax: 6},
	}
	got := CutShapeIntoRectangles(shapesOf(t, rects)[0])
	assert.Len(t, got, 3)
	assert.True(t, geometry.RegionIncludesOther(got, rects))
	assert.True(t, geometry.RegionIncludesOther(rects, got))
}

func TestCutShapeIntoRectangles_Ring(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 8},
		{XMin: 6, XMax: 8, YMin: 0, YMax: 8},
		{XMin: 2, XMax: 6, YMin: 0, YMax: 2},
		{XMin: 2, XMax: 6, YMin: 6, YMax: 8},
	}
	got := CutShapeIntoRectangles(shapesOf(t, rects)[0])
	assert.Equal(t, []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 8},
		{XMin: 2, XMax: 6, YMin: 0, YMax: 2},
		{XMin: 6, XMax: 8, YMin: 0, YMax: 8},
		{XMin: 2, XMax: 6, YMin: 6, YMax: 8},
	}, got)
}

func TestShapeRoundTrip_Randomized(t *testing.T) {
	// Decomposing the traced shapes must neither lose nor add area, and the
	// pieces must be pairwise disjoint.
	rng := rand.New(rand.NewSource(5))
	for iter := 0; iter < 150; iter++ {
		rects := randomDisjointRects(rng, 28, 7)
		if len(rects) == 0 {
			continue
		}
		var pieces []geometry.Rect
		for _, s := range shapesOf(t, rects) {
			pieces = append(pieces, CutShapeIntoRectangles(s)...)
		}
		for i := range pieces {
			for j := i + 1; j < len(pieces); j++ {
				assert.True(t, pieces[i].IsDisjoint(pieces[j]),
					"iter %d: pieces %v and %v overlap", iter, pieces[i], pieces[j])
			}
		}
		require.True(t, geometry.RegionIncludesOther(pieces, rects), "iter %d: area lost", iter)
		require.True(t, geometry.RegionIncludesOther(rects, pieces), "iter %d: area added", iter)
	}
}
