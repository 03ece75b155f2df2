package energy

import (
	"math/rand"
	"testing"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxesAreInEnergyConflict_OvercommittedWindow(t *testing.T) {
	// Both boxes fit in [0,3]x[0,2] (area 6) but carry energy 8.
	rects := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 2},
		{XMin: 1, XMax: 3, YMin: 0, YMax: 2},
	}
	assert.True(t, BoxesAreInEnergyConflict(rects, []int64{4, 4}, nil))
}

func TestBoxesAreInEnergyConflict_ExactFitIsNotAConflict(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 2},
		{XMin: 2, XMax: 4, YMin: 0, YMax: 2},
	}
	assert.False(t, BoxesAreInEnergyConflict(rects, []int64{4, 4}, nil))
}

func TestBoxesAreInEnergyConflict_RespectsBoxSubset(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 2},
		{XMin: 1, XMax: 3, YMin: 0, YMax: 2},
	}
	assert.False(t, BoxesAreInEnergyConflict(rects, []int64{4, 4}, []int{0}))
}

func TestBoxesAreInEnergyConflict_PanicsOnExcessiveEnergy(t *testing.T) {
	rects := []geometry.Rect{{XMin: 0, XMax: 2, YMin: 0, YMax: 2}}
	assert.Panics(t, func() { BoxesAreInEnergyConflict(rects, []int64{5}, nil) })
}

func TestBoxesAreInEnergyConflict_MatchesWindowEnumeration(t *testing.T) {
	// The sweep must agree with a literal reading of the definition: every
	// pair of x thresholds times every pair of y thresholds, summed from
	// scratch.
	enumerate := func(rects []geometry.Rect, energies []int64) bool {
		for _, a := range rects {
			for _, b := range rects {
				if a.XMin >= b.XMax {
					continue
				}
				for _, c := range rects {
					for _, d := range rects {
						if c.YMin >= d.YMax {
							continue
						}
						w := geometry.Rect{XMin: a.XMin, XMax: b.XMax, YMin: c.YMin, YMax: d.YMax}
						total := int64(0)
						for i, r := range rects {
							if w.Contains(r) {
								total += energies[i]
							}
						}
						if total > w.Area() {
							return true
						}
					}
				}
			}
		}
		return false
	}

	rng := rand.New(rand.NewSource(31))
	for iter := 0; iter < 150; iter++ {
		n := 1 + rng.Intn(5)
		rects := make([]geometry.Rect, n)
		energies := make([]int64, n)
		for i := range rects {
			x := rng.Int63n(7)
			y := rng.Int63n(7)
			rects[i] = geometry.Rect{XMin: x, XMax: x + 1 + rng.Int63n(4), YMin: y, YMax: y + 1 + rng.Int63n(4)}
			energies[i] = rng.Int63n(rects[i].Area() + 1)
		}
		require.Equal(t, enumerate(rects, energies), BoxesAreInEnergyConflict(rects, energies, nil),
			"iter %d: %v %v", iter, rects, energies)
	}
}

func TestAnalyzeIntervals_ReportsConflict(t *testing.T) {
	rects := []geometry.Rect{
		{XMin: 0, XMax: 2, YMin: 0, YMax: 2},
		{XMin: 1, XMax: 3, YMin: 0, YMax: 2},
	}
	_, ok := AnalyzeIntervals(rects, []int64{4, 4}, nil, true)
	assert.False(t, ok)
}

func TestAnalyzeIntervals_ThresholdFiltersWideWindows(t *testing.T) {
	// The [0,2] window carries energy 12 over a hull of width 6: no conflict,
	// but more than one 3-wide box alone could explain, so height 2 stays
	// interesting.
	rects := []geometry.Rect{
		{XMin: 0, XMax: 3, YMin: 0, YMax: 2},
		{XMin: 3, XMax: 6, YMin: 0, YMax: 2},
	}
	threshold, ok := AnalyzeIntervals(rects, []int64{6, 6}, nil, true)
	assert.True(t, ok)
	assert.Equal(t, int64(2), threshold)
}

func scenarioItems() []geometry.RectInRange {
	area := geometry.Rect{XMin: 0, XMax: 11, YMin: 0, YMax: 20}
	var items []geometry.RectInRange
	for i := 0; i < 3; i++ {
		items = append(items, geometry.RectInRange{
			BoxIndex: i, BoundingArea: area, XSize: 10, YSize: 10,
		})
	}
	return items
}

func TestProbingRectangle_InitialWindowAlreadyInConflict(t *testing.T) {
	// Three 10x10 items in an 11x20 box: 300 forced energy in area 220.
	p := NewProbingRectangle(scenarioItems())
	assert.Equal(t, geometry.Rect{XMin: 0, XMax: 11, YMin: 0, YMax: 20}, p.Rect())
	assert.Equal(t, int64(300), p.GetMinimumEnergy())
	assert.True(t, p.IsInConflict())
}

func TestProbingRectangle_ShrinkPanicsWhenMinimal(t *testing.T) {
	p := NewProbingRectangle([]geometry.RectInRange{{
		BoundingArea: geometry.Rect{XMin: 0, XMax: 2, YMin: 0, YMax: 2},
		XSize:        2, YSize: 2,
	}})
	require.True(t, p.IsMinimal())
	assert.Panics(t, func() { p.Shrink(geometry.EdgeLeft) })
}

func randomProbeItems(rng *rand.Rand, n int, span int64) []geometry.RectInRange {
	items := make([]geometry.RectInRange, n)
	for i := range items {
		x := rng.Int63n(span - 1)
		y := rng.Int63n(span - 1)
		w := 1 + rng.Int63n(span-x-1)
		h := 1 + rng.Int63n(span-y-1)
		items[i] = geometry.RectInRange{
			BoxIndex:     i,
			BoundingArea: geometry.Rect{XMin: x, XMax: x + w, YMin: y, YMax: y + h},
			XSize:        1 + rng.Int63n(w),
			YSize:        1 + rng.Int63n(h),
		}
	}
	return items
}

func scratchEnergy(items []geometry.RectInRange, r geometry.Rect) int64 {
	total := int64(0)
	for _, it := range items {
		total += it.MinIntersectionArea(r)
	}
	return total
}

func TestProbingRectangle_CachedEnergyMatchesScratchRecompute(t *testing.T) {
	// The central invariant: after every Shrink the cached aggregate equals
	// the sum of per-item forced overlaps recomputed from scratch, and never
	// increases.
	rng := rand.New(rand.NewSource(23))
	for iter := 0; iter < 200; iter++ {
		items := randomProbeItems(rng, 1+rng.Intn(6), 20)
		p := NewProbingRectangle(items)
		require.Equal(t, scratchEnergy(items, p.Rect()), p.GetMinimumEnergy(), "iter %d", iter)

		for !p.IsMinimal() {
			var shrinkable []geometry.Edge
			for e := geometry.EdgeBottom; e <= geometry.EdgeRight; e++ {
				if p.CanShrink(e) {
					shrinkable = append(shrinkable, e)
				}
			}
			edge := shrinkable[rng.Intn(len(shrinkable))]

			previewRect, previewEnergy, ok := p.previewShrink(edge)
			require.True(t, ok)
			before := p.GetMinimumEnergy()
			p.Shrink(edge)

			require.Equal(t, previewRect, p.Rect(), "iter %d", iter)
			require.Equal(t, previewEnergy, p.GetMinimumEnergy(), "iter %d", iter)
			require.Equal(t, scratchEnergy(items, p.Rect()), p.GetMinimumEnergy(),
				"iter %d: cached energy diverged on edge %v at %v", iter, edge, p.Rect())
			require.LessOrEqual(t, p.GetMinimumEnergy(), before, "iter %d: energy grew", iter)
		}
	}
}

func TestProbingRectangle_AllEdgePreviewsStayFresh(t *testing.T) {
	// Shrinking one edge can move another edge's next target, so every cached
	// preview must be rebuilt, not just the moved edge's.
	rng := rand.New(rand.NewSource(41))
	for iter := 0; iter < 100; iter++ {
		items := randomProbeItems(rng, 1+rng.Intn(5), 16)
		p := NewProbingRectangle(items)
		for {
			for e := geometry.EdgeBottom; e <= geometry.EdgeRight; e++ {
				r, energy, ok := p.previewShrink(e)
				require.Equal(t, p.CanShrink(e), ok, "iter %d edge %v", iter, e)
				if !ok {
					continue
				}
				require.True(t, p.Rect().Contains(r), "iter %d edge %v", iter, e)
				require.Equal(t, scratchEnergy(items, r), energy,
					"iter %d: stale preview for edge %v at %v", iter, e, p.Rect())
			}
			if p.IsMinimal() {
				break
			}
			var shrinkable []geometry.Edge
			for e := geometry.EdgeBottom; e <= geometry.EdgeRight; e++ {
				if p.CanShrink(e) {
					shrinkable = append(shrinkable, e)
				}
			}
			p.Shrink(shrinkable[rng.Intn(len(shrinkable))])
		}
	}
}

// enumeratedMinOverlap slides the item through every integer position of its
// range and returns the smallest intersection area with the window. It is a
// direct reading of forced overlap, independent of the per-axis formula the
// engine computes with.
func enumeratedMinOverlap(it geometry.RectInRange, w geometry.Rect) int64 {
	a := it.BoundingArea
	best := int64(-1)
	for x := a.XMin; x+it.XSize <= a.XMax; x++ {
		for y := a.YMin; y+it.YSize <= a.YMax; y++ {
			placed := geometry.Rect{XMin: x, XMax: x + it.XSize, YMin: y, YMax: y + it.YSize}
			if area := placed.IntersectArea(w); best < 0 || area < best {
				best = area
			}
		}
	}
	return best
}

func enumeratedEnergy(items []geometry.RectInRange, w geometry.Rect) int64 {
	total := int64(0)
	for _, it := range items {
		total += enumeratedMinOverlap(it, w)
	}
	return total
}

func TestProbingRectangle_ConflictsConfirmedByPlacementEnumeration(t *testing.T) {
	// A reported conflict must survive the strongest possible cross-check:
	// even when every item is placed at its most evasive corner coordinates,
	// the window still holds more energy than area.
	items := scenarioItems()
	p := NewProbingRectangle(items)
	require.True(t, p.IsInConflict())
	assert.Greater(t, enumeratedEnergy(items, p.Rect()), p.Rect().Area())

	rng := rand.New(rand.NewSource(53))
	for iter := 0; iter < 60; iter++ {
		items := randomProbeItems(rng, 1+rng.Intn(4), 12)
		p := NewProbingRectangle(items)
		for {
			require.Equal(t, enumeratedEnergy(items, p.Rect()), p.GetMinimumEnergy(),
				"iter %d: enumeration disagrees at %v", iter, p.Rect())
			if p.IsInConflict() {
				require.Greater(t, enumeratedEnergy(items, p.Rect()), p.Rect().Area(), "iter %d", iter)
			}
			if p.IsMinimal() {
				break
			}
			var shrinkable []geometry.Edge
			for e := geometry.EdgeBottom; e <= geometry.EdgeRight; e++ {
				if p.CanShrink(e) {
					shrinkable = append(shrinkable, e)
				}
			}
			p.Shrink(shrinkable[rng.Intn(len(shrinkable))])
		}
	}
}

func TestFindRectanglesWithEnergyConflictMC_FindsKnownConflict(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	conflicts, _ := FindRectanglesWithEnergyConflictMC(scenarioItems(), rng, DefaultFindConflictOptions())
	require.NotEmpty(t, conflicts)
	assert.Equal(t, geometry.Rect{XMin: 0, XMax: 11, YMin: 0, YMax: 20}, conflicts[0])
}

func TestFindRectanglesWithEnergyConflictMC_NoConflictOnLooseInstance(t *testing.T) {
	items := []geometry.RectInRange{{
		BoundingArea: geometry.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
		XSize:        2, YSize: 2,
	}}
	rng := rand.New(rand.NewSource(7))
	conflicts, _ := FindRectanglesWithEnergyConflictMC(items, rng, DefaultFindConflictOptions())
	assert.Empty(t, conflicts)
}
