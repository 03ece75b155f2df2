// Package shape converts connected groups of disjoint rectangles into
// rectilinear polygons (exterior boundary plus holes) and cuts such polygons
// back into a near-minimal set of rectangles.
package shape

import (
	"fmt"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/neighbours"
)

// Point is a vertex of a rectilinear polyline.
type Point struct {
	X, Y int64
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// ShapePath is a closed rectilinear polyline. Segment i runs from Points[i]
// to Points[(i+1)%n] and TouchingBox[i] is the rectangle whose interior
// borders that segment.
type ShapePath struct {
	Points      []Point
	TouchingBox []int
}

// SingleShape is the traced outline of one connected component: a
// counterclockwise exterior boundary plus zero or more clockwise holes, so
// the component interior is always on the left of the walking direction.
type SingleShape struct {
	Boundary ShapePath
	Holes    []ShapePath
}

type dir int

const (
	dirRight dir = iota
	dirUp
	dirLeft
	dirDown
)

// boundarySegment is one maximal exposed piece of a rectangle edge, directed
// so that the owning rectangle's interior lies on its left.
type boundarySegment struct {
	from, to Point
	owner    int
	d        dir
}

// exposedParts returns the sub-intervals of [lo, hi) left uncovered by the
// cover intervals, which must be disjoint and sorted.
func exposedParts(lo, hi int64, covers [][2]int64) [][2]int64 {
	var out [][2]int64
	cur := lo
	for _, c := range covers {
		if c[0] > cur {
			out = append(out, [2]int64{cur, c[0]})
		}
		if c[1] > cur {
			cur = c[1]
		}
	}
	if cur < hi {
		out = append(out, [2]int64{cur, hi})
	}
	return out
}

// componentSegments lists the exposed boundary segments of the given boxes.
// Bottom edges run rightwards, right edges upwards, top edges leftwards and
// left edges downwards, which makes exterior loops counterclockwise and hole
// loops clockwise.
func componentSegments(rects []geometry.Rect, nb *neighbours.Neighbours, boxes []int) []boundarySegment {
	var segs []boundarySegment
	coversOf := func(box int, edge geometry.Edge, lo, hi int64, span func(geometry.Rect) (int64, int64)) [][2]int64 {
		var covers [][2]int64
		for _, n := range nb.Get(box, edge) {
			nlo, nhi := span(rects[n])
			if nlo < lo {
				nlo = lo
			}
			if nhi > hi {
				nhi = hi
			}
			covers = append(covers, [2]int64{nlo, nhi})
		}
		return covers
	}
	xSpan := func(r geometry.Rect) (int64, int64) { return r.XMin, r.XMax }
	ySpan := func(r geometry.Rect) (int64, int64) { return r.YMin, r.YMax }

	for _, box := range boxes {
		r := rects[box]
		for _, p := range exposedParts(r.XMin, r.XMax, coversOf(box, geometry.EdgeBottom, r.XMin, r.XMax, xSpan)) {
			segs = append(segs, boundarySegment{from: Point{p[0], r.YMin}, to: Point{p[1], r.YMin}, owner: box, d: dirRight})
		}
		for _, p := range exposedParts(r.YMin, r.YMax, coversOf(box, geometry.EdgeRight, r.YMin, r.YMax, ySpan)) {
			segs = append(segs, boundarySegment{from: Point{r.XMax, p[0]}, to: Point{r.XMax, p[1]}, owner: box, d: dirUp})
		}
		for _, p := range exposedParts(r.XMin, r.XMax, coversOf(box, geometry.EdgeTop, r.XMin, r.XMax, xSpan)) {
			segs = append(segs, boundarySegment{from: Point{p[1], r.YMax}, to: Point{p[0], r.YMax}, owner: box, d: dirLeft})
		}
		for _, p := range exposedParts(r.YMin, r.YMax, coversOf(box, geometry.EdgeLeft, r.YMin, r.YMax, ySpan)) {
			segs = append(segs, boundarySegment{from: Point{r.XMin, p[1]}, to: Point{r.XMin, p[0]}, owner: box, d: dirDown})
		}
	}
	return segs
}

// turnScore ranks continuations at a shared vertex: left turn, straight,
// right turn, then U-turn.
func turnScore(in, out dir) int {
	switch (out - in + 4) % 4 {
	case 1: // left turn
		return 3
	case 0: // straight
		return 2
	case 3: // right turn
		return 1
	default:
		return 0
	}
}

// nextSegment picks the continuation of the loop at the end point of segment
// cur. At a pinch vertex, where two loops pass through the same point, the
// tie is broken by preferring to keep following the rectangle that produced
// the incoming segment, then the sharpest left turn.
func nextSegment(segs []boundarySegment, byStart map[Point][]int, used []bool, cur int) int {
	p := segs[cur].to
	best, bestScore := -1, -1
	for _, c := range byStart[p] {
		if used[c] {
			continue
		}
		score := turnScore(segs[cur].d, segs[c].d)
		if segs[c].owner == segs[cur].owner {
			score += 10
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == -1 {
		panic(fmt.Sprintf("shape: no boundary continuation at %v", p))
	}
	return best
}

func traceLoop(segs []boundarySegment, byStart map[Point][]int, used []bool, start int) ShapePath {
	var pts []Point
	var owners []int
	var dirs []dir
	cur := start
	for {
		used[cur] = true
		s := segs[cur]
		if n := len(dirs); n > 0 && dirs[n-1] == s.d && owners[n-1] == s.owner {
			// Collinear continuation of the same rectangle's edge.
		} else {
			pts = append(pts, s.from)
			owners = append(owners, s.owner)
			dirs = append(dirs, s.d)
		}
		if s.to == segs[start].from {
			break
		}
		cur = nextSegment(segs, byStart, used, cur)
	}
	// The last run may continue into the first one across the closing point.
	if n := len(dirs); n > 1 && dirs[0] == dirs[n-1] && owners[0] == owners[n-1] {
		pts = pts[1:]
		owners = owners[1:]
	}
	return ShapePath{Points: pts, TouchingBox: owners}
}

// traceComponent glues the exposed segments of one connected component into
// closed loops. Loops are started from the bottom-left-most unused segment,
// which guarantees the first loop is the exterior boundary; the remaining
// loops are holes.
func traceComponent(segs []boundarySegment) SingleShape {
	order := make([]int, len(segs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		sa, sb := segs[order[a]], segs[order[b]]
		if sa.from.Y != sb.from.Y {
			return sa.from.Y < sb.from.Y
		}
		if sa.from.X != sb.from.X {
			return sa.from.X < sb.from.X
		}
		if sa.d != sb.d {
			return sa.d < sb.d
		}
		return sa.owner < sb.owner
	})

	byStart := make(map[Point][]int, len(segs))
	for _, i := range order {
		byStart[segs[i].from] = append(byStart[segs[i].from], i)
	}

	used := make([]bool, len(segs))
	var out SingleShape
	first := true
	for _, s := range order {
		if used[s] {
			continue
		}
		loop := traceLoop(segs, byStart, used, s)
		if first {
			out.Boundary = loop
			first = false
		} else {
			out.Holes = append(out.Holes, loop)
		}
	}
	return out
}

// BoxesToShapes traces the outline of every connected component of the
// disjoint rectangle set, using a neighbours graph built from exactly these
// rectangles. Components are returned in the order produced by
// SplitInConnectedComponents.
func BoxesToShapes(rects []geometry.Rect, nb *neighbours.Neighbours) []SingleShape {
	comps := nb.SplitInConnectedComponents()
	shapes := make([]SingleShape, 0, len(comps))
	for _, comp := range comps {
		shapes = append(shapes, traceComponent(componentSegments(rects, nb, comp)))
	}
	return shapes
}
