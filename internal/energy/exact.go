// Package energy detects infeasibility of a non-overlap constraint by area
// counting: if the boxes that must lie inside some window carry more energy
// (minimum occupied area) than the window has, no placement exists.
package energy

import (
	"fmt"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
)

func checkEnergies(rects []geometry.Rect, energies []int64) {
	if len(rects) != len(energies) {
		panic(fmt.Sprintf("energy: %d rectangles but %d energies", len(rects), len(energies)))
	}
	for i, r := range rects {
		if energies[i] < 0 || energies[i] > r.Area() {
			panic(fmt.Sprintf("energy: box %d has energy %d outside [0, %d]", i, energies[i], r.Area()))
		}
	}
}

func selectedBoxes(rects []geometry.Rect, boxes []int) []int {
	if boxes != nil {
		return boxes
	}
	all := make([]int, len(rects))
	for i := range all {
		all[i] = i
	}
	return all
}

// BoxesAreInEnergyConflict reports whether some window spanned by the boxes'
// coordinates holds more energy than area. It sweeps the boxes in increasing
// XMax order, growing one stripe per distinct XMin threshold; whenever a box
// joins a stripe, the stripe's y thresholds are swept the same way with a
// running energy sum per y start, so every window is checked exactly when its
// content is complete instead of being re-summed from scratch. Only the boxes
// listed in boxes are considered; nil means all of them.
func BoxesAreInEnergyConflict(rects []geometry.Rect, energies []int64, boxes []int) bool {
	checkEnergies(rects, energies)
	sel := selectedBoxes(rects, boxes)

	xStarts := make([]int64, 0, len(sel))
	for _, b := range sel {
		xStarts = append(xStarts, rects[b].XMin)
	}
	xStarts = sortedUnique(xStarts)

	byXMax := append([]int(nil), sel...)
	sort.Slice(byXMax, func(i, j int) bool {
		if rects[byXMax[i]].XMax != rects[byXMax[j]].XMax {
			return rects[byXMax[i]].XMax < rects[byXMax[j]].XMax
		}
		return byXMax[i] < byXMax[j]
	})

	stripes := make([][]int, len(xStarts))
	for _, b := range byXMax {
		for j, xlo := range xStarts {
			if xlo > rects[b].XMin {
				break
			}
			stripes[j] = append(stripes[j], b)
			if stripeConflictY(rects, energies, stripes[j], rects[b].XMax-xlo) {
				return true
			}
		}
	}
	return false
}

// stripeConflictY sweeps the y thresholds of one x stripe of the given width.
// Boxes are added in increasing YMax order while a running energy sum is kept
// per y start, so the sum for the window [ylo, box.YMax] is ready the moment
// its last box arrives.
func stripeConflictY(rects []geometry.Rect, energies []int64, boxes []int, width int64) bool {
	yStarts := make([]int64, 0, len(boxes))
	for _, b := range boxes {
		yStarts = append(yStarts, rects[b].YMin)
	}
	yStarts = sortedUnique(yStarts)

	byYMax := append([]int(nil), boxes...)
	sort.Slice(byYMax, func(i, j int) bool {
		if rects[byYMax[i]].YMax != rects[byYMax[j]].YMax {
			return rects[byYMax[i]].YMax < rects[byYMax[j]].YMax
		}
		return byYMax[i] < byYMax[j]
	})

	sums := make([]int64, len(yStarts))
	for _, b := range byYMax {
		yhi := rects[b].YMax
		for k, ylo := range yStarts {
			if ylo > rects[b].YMin {
				break
			}
			sums[k] += energies[b]
			if yhi > ylo && sums[k] > width*(yhi-ylo) {
				return true
			}
		}
	}
	return false
}

// AnalyzeIntervals scans every window along one axis (y windows when vertical
// is true, x windows otherwise). When the energy inside a window exceeds the
// window extent times the hull of the contained boxes on the other axis, that
// is a real conflict and ok is false. Otherwise threshold is the largest
// window extent whose energy exceeded extent times the largest single box, so
// a box longer than threshold along the scanned axis cannot take part in any
// conflict and may be filtered out before running more expensive checks.
func AnalyzeIntervals(rects []geometry.Rect, energies []int64, boxes []int, vertical bool) (threshold int64, ok bool) {
	checkEnergies(rects, energies)
	sel := selectedBoxes(rects, boxes)

	along := func(r geometry.Rect) (int64, int64) { return r.XMin, r.XMax }
	across := func(r geometry.Rect) (int64, int64) { return r.YMin, r.YMax }
	if vertical {
		along, across = across, along
	}

	for _, lo := range sel {
		wlo, _ := along(rects[lo])
		for _, hi := range sel {
			_, whi := along(rects[hi])
			if wlo >= whi {
				continue
			}
			total := int64(0)
			hullLo, hullHi := int64(0), int64(0)
			maxBox := int64(0)
			first := true
			for _, b := range sel {
				blo, bhi := along(rects[b])
				if blo < wlo || bhi > whi {
					continue
				}
				clo, chi := across(rects[b])
				total += energies[b]
				if first {
					hullLo, hullHi = clo, chi
					first = false
				} else {
					hullLo = min64(hullLo, clo)
					hullHi = max64(hullHi, chi)
				}
				maxBox = max64(maxBox, chi-clo)
			}
			if total == 0 {
				continue
			}
			extent := whi - wlo
			if total > extent*(hullHi-hullLo) {
				return 0, false
			}
			if total > extent*maxBox && extent > threshold {
				threshold = extent
			}
		}
	}
	return threshold, true
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
