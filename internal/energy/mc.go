package energy

import (
	"math"
	"math/rand"

	"github.com/piwi3910/rectcheck/internal/geometry"
)

// FindConflictOptions tunes the Monte-Carlo probe walk.
type FindConflictOptions struct {
	// Temperature scales the annealing kernel: higher values make the walk
	// more uniform, lower values greedier towards energy-dense windows.
	Temperature float64
	// CandidateRatio is the energy/area ratio above which a window is
	// recorded as a candidate for a more expensive exact check.
	CandidateRatio float64
}

func DefaultFindConflictOptions() FindConflictOptions {
	return FindConflictOptions{Temperature: 0.1, CandidateRatio: 0.9}
}

func ratioOf(energy int64, r geometry.Rect) float64 {
	area := r.Area()
	if area == 0 {
		return 0
	}
	return float64(energy) / float64(area)
}

// FindRectanglesWithEnergyConflictMC walks one ProbingRectangle trajectory
// from the full bounding box down to a minimal window, choosing each Shrink
// among the four edges with probability proportional to
// exp((newRatio-oldRatio)/temperature), so moves that concentrate energy are
// favored. Every window found in conflict is returned in conflicts; windows
// whose energy/area ratio reaches the candidate threshold without proving a
// conflict are returned separately. An empty conflicts result is not a
// feasibility proof. The walk is fully determined by rng.
func FindRectanglesWithEnergyConflictMC(items []geometry.RectInRange, rng *rand.Rand, opts FindConflictOptions) (conflicts, candidates []geometry.Rect) {
	if len(items) == 0 {
		return nil, nil
	}
	p := NewProbingRectangle(items)

	record := func() {
		if p.IsInConflict() {
			conflicts = append(conflicts, p.Rect())
		} else if ratioOf(p.GetMinimumEnergy(), p.Rect()) >= opts.CandidateRatio {
			candidates = append(candidates, p.Rect())
		}
	}
	record()

	for !p.IsMinimal() {
		cur := ratioOf(p.GetMinimumEnergy(), p.Rect())
		var edges []geometry.Edge
		var weights []float64
		total := 0.0
		for e := geometry.EdgeBottom; e <= geometry.EdgeRight; e++ {
			r, energy, ok := p.previewShrink(e)
			if !ok {
				continue
			}
			w := math.Exp((ratioOf(energy, r) - cur) / opts.Temperature)
			edges = append(edges, e)
			weights = append(weights, w)
			total += w
		}
		pick := rng.Float64() * total
		chosen := edges[len(edges)-1]
		for i, w := range weights {
			pick -= w
			if pick <= 0 {
				chosen = edges[i]
				break
			}
		}
		p.Shrink(chosen)
		record()
	}
	return conflicts, candidates
}
