package packing

import (
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
)

// PackingStatus is the outcome of the exact brute-force search.
type PackingStatus int

const (
	NoSolutionExists PackingStatus = iota
	FoundSolution
	TooBig
)

func (s PackingStatus) String() string {
	switch s {
	case NoSolutionExists:
		return "NO_SOLUTION_EXISTS"
	case FoundSolution:
		return "FOUND_SOLUTION"
	case TooBig:
		return "TOO_BIG"
	}
	return "PackingStatus(?)"
}

// MaxBruteForceItems is the hard cap on the number of items the search will
// accept after preprocessing, whatever complexity the caller asks for.
const MaxBruteForceItems = 16

// BruteForceResult carries the search outcome. Positions is aligned with the
// input items and only populated when a solution was found.
type BruteForceResult struct {
	Status    PackingStatus
	Positions []geometry.Rect
}

// BruteForceOrthogonalPacking decides exactly whether the items can be placed
// in bb without overlap. Items spanning the full remaining width or height,
// and items so large that no other item fits beside them on one axis, are
// first fixed against an edge, which shrinks the box for the rest. The
// remaining items, at most maxComplexity of them, are then searched over
// normal positions (sums of item sizes measured from the box corner) with
// items placed in decreasing area order. The search keeps the list of maximal
// free rectangles as a pruning oracle: every unplaced item must still fit one
// of them, and the unplaced area must not exceed the usable free area.
func BruteForceOrthogonalPacking(sizesX, sizesY []int64, bb geometry.Rect, maxComplexity int) BruteForceResult {
	checkSizes(sizesX, sizesY)
	bb.CheckValid()
	if maxComplexity > MaxBruteForceItems {
		maxComplexity = MaxBruteForceItems
	}

	n := len(sizesX)
	positions := make([]geometry.Rect, n)
	fixed := make([]bool, n)
	box := bb

	// exclusiveOn reports whether item i owns a full strip of the box across
	// the given axis: every other pending item with positive area is too large
	// to sit beside it, so nothing can share i's span on that axis. Such a
	// strip can always be slid against an edge.
	exclusiveOn := func(i int, sizes []int64, span int64) bool {
		for j := 0; j < n; j++ {
			if j == i || fixed[j] || sizesX[j] == 0 || sizesY[j] == 0 {
				continue
			}
			if sizes[i]+sizes[j] <= span {
				return false
			}
		}
		return true
	}

	// Peel items that are forced against an edge. Each peel can unlock more,
	// so sweep until stable.
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			if fixed[i] {
				continue
			}
			w, h := sizesX[i], sizesY[i]
			if w > box.SizeX() || h > box.SizeY() {
				return BruteForceResult{Status: NoSolutionExists}
			}
			switch {
			case w == 0 || h == 0:
				positions[i] = geometry.Rect{XMin: box.XMin, XMax: box.XMin + w, YMin: box.YMin, YMax: box.YMin + h}
			case w == box.SizeX():
				// A full-width item can always be slid to the bottom.
				positions[i] = geometry.Rect{XMin: box.XMin, XMax: box.XMax, YMin: box.YMin, YMax: box.YMin + h}
				box.YMin += h
			case h == box.SizeY():
				positions[i] = geometry.Rect{XMin: box.XMin, XMax: box.XMin + w, YMin: box.YMin, YMax: box.YMax}
				box.XMin += w
			case exclusiveOn(i, sizesY, box.SizeY()):
				// No other item fits above or below i, so its column is a
				// thin sub-strip of its own; stack it against the left edge.
				positions[i] = geometry.Rect{XMin: box.XMin, XMax: box.XMin + w, YMin: box.YMin, YMax: box.YMin + h}
				box.XMin += w
			case exclusiveOn(i, sizesX, box.SizeX()):
				positions[i] = geometry.Rect{XMin: box.XMin, XMax: box.XMin + w, YMin: box.YMin, YMax: box.YMin + h}
				box.YMin += h
			default:
				continue
			}
			fixed[i] = true
			changed = true
		}
	}

	var order []int
	totalArea := int64(0)
	for i := 0; i < n; i++ {
		if !fixed[i] {
			order = append(order, i)
			totalArea += sizesX[i] * sizesY[i]
		}
	}
	if len(order) == 0 {
		return BruteForceResult{Status: FoundSolution, Positions: positions}
	}
	if totalArea > box.Area() {
		return BruteForceResult{Status: NoSolutionExists}
	}
	if len(order) > maxComplexity {
		return BruteForceResult{Status: TooBig}
	}

	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		ai, aj := sizesX[i]*sizesY[i], sizesX[j]*sizesY[j]
		if ai != aj {
			return ai > aj
		}
		if sizesX[i] != sizesX[j] {
			return sizesX[i] > sizesX[j]
		}
		if sizesY[i] != sizesY[j] {
			return sizesY[i] > sizesY[j]
		}
		return i < j
	})

	var ws, hs []int64
	for _, i := range order {
		ws = append(ws, sizesX[i])
		hs = append(hs, sizesY[i])
	}
	s := &bruteSearch{
		sizesX:    sizesX,
		sizesY:    sizesY,
		order:     order,
		box:       box,
		xs:        normalSums(ws, box.SizeX()),
		ys:        normalSums(hs, box.SizeY()),
		positions: positions,
	}
	// Restricting the first item to the bottom-left quadrant is only valid
	// when no identical twin could be swapped for it.
	s.quadrantBreak = len(order) < 2 ||
		sizesX[order[0]] != sizesX[order[1]] || sizesY[order[0]] != sizesY[order[1]]

	if s.place(0, nil, []geometry.Rect{box}) {
		return BruteForceResult{Status: FoundSolution, Positions: positions}
	}
	return BruteForceResult{Status: NoSolutionExists}
}

// normalSums returns the subset sums of sizes not exceeding limit, ascending.
// In a placement where every item is pushed towards the box corner, each
// coordinate is such a sum, so these positions are enough to find a solution
// whenever one exists.
func normalSums(sizes []int64, limit int64) []int64 {
	sums := map[int64]bool{0: true}
	for _, sz := range sizes {
		if sz == 0 {
			continue
		}
		add := make([]int64, 0, len(sums))
		for s := range sums {
			if s+sz <= limit {
				add = append(add, s+sz)
			}
		}
		for _, s := range add {
			sums[s] = true
		}
	}
	out := make([]int64, 0, len(sums))
	for s := range sums {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type bruteSearch struct {
	sizesX, sizesY []int64
	order          []int
	box            geometry.Rect
	xs, ys         []int64
	positions      []geometry.Rect
	quadrantBreak  bool
}

func (s *bruteSearch) place(k int, placed, free []geometry.Rect) bool {
	if k == len(s.order) {
		return true
	}
	i := s.order[k]
	w, h := s.sizesX[i], s.sizesY[i]

	// Identical items are forced into scan order, so permuting them cannot
	// produce a second copy of the same packing.
	samePrev := false
	var prevX, prevY int64
	if k > 0 {
		j := s.order[k-1]
		if s.sizesX[j] == w && s.sizesY[j] == h {
			samePrev = true
			prevX, prevY = s.positions[j].XMin, s.positions[j].YMin
		}
	}

	for _, y := range s.ys {
		py := s.box.YMin + y
		if py+h > s.box.YMax {
			break
		}
		for _, x := range s.xs {
			px := s.box.XMin + x
			if px+w > s.box.XMax {
				break
			}
			if s.quadrantBreak && k == 0 && (2*x > s.box.SizeX()-w || 2*y > s.box.SizeY()-h) {
				continue
			}
			if samePrev && (py < prevY || (py == prevY && px <= prevX)) {
				continue
			}
			r := geometry.Rect{XMin: px, XMax: px + w, YMin: py, YMax: py + h}
			overlaps := false
			for _, p := range placed {
				if !p.IsDisjoint(r) {
					overlaps = true
					break
				}
			}
			if overlaps {
				continue
			}
			newFree := splitFree(free, r)
			if !s.viable(k+1, newFree) {
				continue
			}
			s.positions[i] = r
			if s.place(k+1, append(placed, r), newFree) {
				return true
			}
		}
	}
	return false
}

// viable checks that every unplaced item still fits some maximal free
// rectangle and that the unplaced area does not exceed the usable free area,
// where usable means the union of free rectangles that can host at least one
// unplaced item.
func (s *bruteSearch) viable(k int, free []geometry.Rect) bool {
	if k == len(s.order) {
		return true
	}
	remArea := int64(0)
	for _, idx := range s.order[k:] {
		w, h := s.sizesX[idx], s.sizesY[idx]
		remArea += w * h
		fits := false
		for _, f := range free {
			if f.SizeX() >= w && f.SizeY() >= h {
				fits = true
				break
			}
		}
		if !fits {
			return false
		}
	}

	var acc []geometry.Rect
	usable := int64(0)
	for _, f := range free {
		hosts := false
		for _, idx := range s.order[k:] {
			if f.SizeX() >= s.sizesX[idx] && f.SizeY() >= s.sizesY[idx] {
				hosts = true
				break
			}
		}
		if !hosts {
			continue
		}
		for _, piece := range geometry.SubtractAll([]geometry.Rect{f}, acc) {
			usable += piece.Area()
			acc = append(acc, piece)
		}
	}
	return remArea <= usable
}

// splitFree updates the maximal free rectangle list after placing p: every
// free rectangle overlapping p is replaced by its maximal parts on each side
// of p, and parts contained in another rectangle are dropped.
func splitFree(free []geometry.Rect, p geometry.Rect) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(free)+3)
	for _, f := range free {
		if f.IsDisjoint(p) {
			out = append(out, f)
			continue
		}
		if p.XMin > f.XMin {
			out = append(out, geometry.Rect{XMin: f.XMin, XMax: p.XMin, YMin: f.YMin, YMax: f.YMax})
		}
		if p.XMax < f.XMax {
			out = append(out, geometry.Rect{XMin: p.XMax, XMax: f.XMax, YMin: f.YMin, YMax: f.YMax})
		}
		if p.YMin > f.YMin {
			out = append(out, geometry.Rect{XMin: f.XMin, XMax: f.XMax, YMin: f.YMin, YMax: p.YMin})
		}
		if p.YMax < f.YMax {
			out = append(out, geometry.Rect{XMin: f.XMin, XMax: f.XMax, YMin: p.YMax, YMax: f.YMax})
		}
	}
	return pruneContained(out)
}

func pruneContained(rects []geometry.Rect) []geometry.Rect {
	out := rects[:0:0]
	for i, r := range rects {
		dominated := false
		for j, o := range rects {
			if i == j || !o.Contains(r) {
				continue
			}
			if r.Contains(o) && i < j {
				continue
			}
			dominated = true
			break
		}
		if !dominated {
			out = append(out, r)
		}
	}
	return out
}
