package presolve

import (
	"math/rand"
	"testing"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceNumberOfBoxesGreedy_MergesFullEdge(t *testing.T) {
	mandatory := []geometry.Rect{
		{XMin: 0, XMax: 4, YMin: 0, YMax: 4},
		{XMin: 4, XMax: 8, YMin: 0, YMax: 4},
	}
	var optional []geometry.Rect
	assert.True(t, ReduceNumberOfBoxesGreedy(&mandatory, &optional))
	assert.Equal(t, []geometry.Rect{{XMin: 0, XMax: 8, YMin: 0, YMax: 4}}, mandatory)
}

func TestReduceNumberOfBoxesGreedy_PartialEdgeDoesNotMerge(t *testing.T) {
	mandatory := []geometry.Rect{
		{XMin: 0, XMax: 4, YMin: 0, YMax: 4},
		{XMin: 4, XMax: 8, YMin: 0, YMax: 2},
	}
	var optional []geometry.Rect
	assert.False(t, ReduceNumberOfBoxesGreedy(&mandatory, &optional))
	assert.Len(t, mandatory, 2)
}

func TestReduceNumberOfBoxesGreedy_MergeWithOptionalIsMandatory(t *testing.T) {
	mandatory := []geometry.Rect{{XMin: 0, XMax: 4, YMin: 0, YMax: 4}}
	optional := []geometry.Rect{{XMin: 4, XMax: 8, YMin: 0, YMax: 4}}
	assert.True(t, ReduceNumberOfBoxesGreedy(&mandatory, &optional))
	assert.Equal(t, []geometry.Rect{{XMin: 0, XMax: 8, YMin: 0, YMax: 4}}, mandatory)
	assert.Empty(t, optional)
}

func TestReduceNumberOfBoxesGreedy_ChainMergesToOne(t *testing.T) {
	mandatory := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 4},
		{XMin: 2, XMax: 5, YMin: 0, YMax: 4},
		{XMin: 5, XMax: 9, YMin: 0, YMax: 4},
	}
	var optional []geometry.Rect
	assert.True(t, ReduceNumberOfBoxesGreedy(&mandatory, &optional))
	assert.Equal(t, []geometry.Rect{{XMin: 0, XMax: 9, YMin: 0, YMax: 4}}, mandatory)
}

func TestReduceNumberOfBoxesExactMandatory_AbsorbsCoveredHole(t *testing.T) {
	mandatory := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 8},
		{XMin: 6, XMax: 8, YMin: 0, YMax: 8},
		{XMin: 2, XMax: 6, YMin: 0, YMax: 2},
		{XMin: 2, XMax: 6, YMin: 6, YMax: 8},
	}
	optional := []geometry.Rect{{XMin: 2, XMax: 6, YMin: 2, YMax: 6}}
	assert.True(t, ReduceNumberOfBoxesExactMandatory(&mandatory, &optional))
	assert.Equal(t, []geometry.Rect{{XMin: 0, XMax: 8, YMin: 0, YMax: 8}}, mandatory)
	assert.Empty(t, optional)
}

func TestReduceNumberOfBoxesExactMandatory_UncoveredHoleUnchanged(t *testing.T) {
	mandatory := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 8},
		{XMin: 6, XMax: 8, YMin: 0, YMax: 8},
		{XMin: 2, XMax: 6, YMin: 0, YMax: 2},
		{XMin: 2, XMax: 6, YMin: 6, YMax: 8},
	}
	var optional []geometry.Rect
	assert.False(t, ReduceNumberOfBoxesExactMandatory(&mandatory, &optional))
	assert.Len(t, mandatory, 4)
}

func TestReduceNumberOfBoxesExactMandatory_RejectsWhenNotSmaller(t *testing.T) {
	mandatory := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 2},
		{XMin: 4, XMax: 6, YMin: 4, YMax: 6},
	}
	var optional []geometry.Rect
	assert.False(t, ReduceNumberOfBoxesExactMandatory(&mandatory, &optional))
	assert.Len(t, mandatory, 2)
}

func TestPresolveFixed2DRectangles_MergesAcrossTooNarrowGap(t *testing.T) {
	// The 2-wide free corridor cannot host a 3x3 item, so it is obstacle
	// material and the two blocks merge into one covering the whole box.
	items := []geometry.RectInRange{{
		BoundingArea: geometry.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
		XSize:        3, YSize: 3,
	}}
	fixed := []geometry.Rect{
		{XMin: 0, XMax: 4, YMin: 0, YMax: 10},
		{XMin: 6, XMax: 10, YMin: 0, YMax: 10},
	}
	assert.True(t, PresolveFixed2DRectangles(items, &fixed))
	assert.Equal(t, []geometry.Rect{{XMin: 0, XMax: 10, YMin: 0, YMax: 10}}, fixed)
}

func TestPresolveFixed2DRectangles_ClipsObstaclesToReachableArea(t *testing.T) {
	items := []geometry.RectInRange{{
		BoundingArea: geometry.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
		XSize:        2, YSize: 2,
	}}
	fixed := []geometry.Rect{{XMin: 8, XMax: 15, YMin: 0, YMax: 10}}
	assert.True(t, PresolveFixed2DRectangles(items, &fixed))
	assert.Equal(t, []geometry.Rect{{XMin: 8, XMax: 10, YMin: 0, YMax: 10}}, fixed)
}

func TestPresolveFixed2DRectangles_NoChangeReturnsFalse(t *testing.T) {
	items := []geometry.RectInRange{{
		BoundingArea: geometry.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
		XSize:        2, YSize: 2,
	}}
	fixed := []geometry.Rect{{XMin: 4, XMax: 6, YMin: 4, YMax: 6}}
	assert.False(t, PresolveFixed2DRectangles(items, &fixed))
	assert.Equal(t, []geometry.Rect{{XMin: 4, XMax: 6, YMin: 4, YMax: 6}}, fixed)
}

func TestPresolveFixed2DRectangles_PlacementEquivalence(t *testing.T) {
	// Every placement of an item inside its range must be valid against the
	// presolved obstacle set exactly when it was valid against the original.
	rng := rand.New(rand.NewSource(17))
	const span = int64(12)
	randomRange := func() geometry.RectInRange {
		x := rng.Int63n(span - 1)
		y := rng.Int63n(span - 1)
		w := 1 + rng.Int63n(span-x-1)
		h := 1 + rng.Int63n(span-y-1)
		return geometry.RectInRange{
			BoundingArea: geometry.Rect{XMin: x, XMax: x + w, YMin: y, YMax: y + h},
			XSize:        1 + rng.Int63n(w),
			YSize:        1 + rng.Int63n(h),
		}
	}
	for iter := 0; iter < 80; iter++ {
		items := make([]geometry.RectInRange, 1+rng.Intn(3))
		for i := range items {
			items[i] = randomRange()
			items[i].BoxIndex = i
		}
		original := make([]geometry.Rect, 1+rng.Intn(4))
		for i := range original {
			x := rng.Int63n(span + 2)
			y := rng.Int63n(span + 2)
			original[i] = geometry.Rect{
				XMin: x, XMax: x + 1 + rng.Int63n(5),
				YMin: y, YMax: y + 1 + rng.Int63n(5),
			}
		}

		presolved := append([]geometry.Rect(nil), original...)
		PresolveFixed2DRectangles(items, &presolved)

		disjointFromAll := func(foot geometry.Rect, obstacles []geometry.Rect) bool {
			for _, o := range obstacles {
				if !foot.IsDisjoint(o) {
					return false
				}
			}
			return true
		}
		for _, it := range items {
			for x := it.BoundingArea.XMin; x+it.XSize <= it.BoundingArea.XMax; x++ {
				for y := it.BoundingArea.YMin; y+it.YSize <= it.BoundingArea.YMax; y++ {
					foot := geometry.Rect{XMin: x, XMax: x + it.XSize, YMin: y, YMax: y + it.YSize}
					require.Equal(t,
						disjointFromAll(foot, original),
						disjointFromAll(foot, presolved),
						"iter %d: item %d at (%d,%d), original %v, presolved %v",
						iter, it.BoxIndex, x, y, original, presolved)
				}
			}
		}
	}
}
