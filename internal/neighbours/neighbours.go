// Package neighbours builds the adjacency between pairwise-disjoint
// rectangles: for every rectangle and every edge, the ordered list of
// rectangles touching it along a shared boundary segment of non-zero length.
package neighbours

import (
	"fmt"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/sweep"
)

// Neighbours is the immutable adjacency of a disjoint rectangle set. It is
// built once and never mutated afterwards; the caller owns it for the
// duration of one presolve or shape-extraction pass.
type Neighbours struct {
	rects []geometry.Rect
	lists [4][][]int
}

// edgeInterval is one rectangle edge projected on its fixed axis: the edge
// lies at coordinate `at` and spans [lo, hi) along the other axis.
type edgeInterval struct {
	at, lo, hi int64
	box        int
}

// Build constructs the neighbours graph of rects. The rectangles must have
// positive area and be pairwise disjoint; a violation is a bug in the caller
// and panics. Rectangles that meet only at a corner are not neighbours. The
// output is deterministic regardless of input order: every adjacency list is
// sorted by position along its edge.
func Build(rects []geometry.Rect) *Neighbours {
	for i, r := range rects {
		r.CheckValid()
		if r.Area() == 0 {
			panic(fmt.Sprintf("neighbours: rectangle %d has zero area", i))
		}
	}
	sorted := make([]geometry.Rect, len(rects))
	copy(sorted, rects)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].XMin < sorted[j].XMin })
	if pair, found := sweep.FindOneIntersectionIfPresent(sorted); found {
		panic(fmt.Sprintf("neighbours: input rectangles are not pairwise disjoint (e.g. pair %v)", pair))
	}

	nb := &Neighbours{rects: rects}
	for e := range nb.lists {
		nb.lists[e] = make([][]int, len(rects))
	}

	bottoms := make([]edgeInterval, 0, len(rects))
	tops := make([]edgeInterval, 0, len(rects))
	lefts := make([]edgeInterval, 0, len(rects))
	rights := make([]edgeInterval, 0, len(rects))
	for i, r := range rects {
		bottoms = append(bottoms, edgeInterval{at: r.YMin, lo: r.XMin, hi: r.XMax, box: i})
		tops = append(tops, edgeInterval{at: r.YMax, lo: r.XMin, hi: r.XMax, box: i})
		lefts = append(lefts, edgeInterval{at: r.XMin, lo: r.YMin, hi: r.YMax, box: i})
		rights = append(rights, edgeInterval{at: r.XMax, lo: r.YMin, hi: r.YMax, box: i})
	}

	// A bottom edge touches a top edge at the same coordinate; likewise for
	// left and right edges.
	matchEdges(bottoms, tops, func(a, b int) {
		nb.lists[geometry.EdgeBottom][a] = append(nb.lists[geometry.EdgeBottom][a], b)
		nb.lists[geometry.EdgeTop][b] = append(nb.lists[geometry.EdgeTop][b], a)
	})
	matchEdges(lefts, rights, func(a, b int) {
		nb.lists[geometry.EdgeLeft][a] = append(nb.lists[geometry.EdgeLeft][a], b)
		nb.lists[geometry.EdgeRight][b] = append(nb.lists[geometry.EdgeRight][b], a)
	})
	return nb
}

// matchEdges reports every pair of edges from the two lists that lie at the
// same fixed coordinate and share a segment of non-zero length. Within one
// coordinate group the intervals of either list are pairwise disjoint, so a
// single linear merge finds all touching pairs.
func matchEdges(as, bs []edgeInterval, report func(aBox, bBox int)) {
	less := func(s []edgeInterval) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].at != s[j].at {
				return s[i].at < s[j].at
			}
			return s[i].lo < s[j].lo
		}
	}
	sort.Slice(as, less(as))
	sort.Slice(bs, less(bs))

	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		if as[i].at < bs[j].at {
			i++
			continue
		}
		if bs[j].at < as[i].at {
			j++
			continue
		}
		a, b := as[i], bs[j]
		if a.lo < b.hi && b.lo < a.hi {
			report(a.box, b.box)
		}
		// Advance the interval that ends first; on a tie either works.
		if a.hi <= b.hi {
			i++
		} else {
			j++
		}
	}
}

// NumBoxes returns the number of rectangles the graph was built from.
func (nb *Neighbours) NumBoxes() int { return len(nb.rects) }

// Rect returns the rectangle of the given box.
func (nb *Neighbours) Rect(box int) geometry.Rect { return nb.rects[box] }

// Get returns the boxes touching the given edge of box, sorted by position
// along the edge.
func (nb *Neighbours) Get(box int, edge geometry.Edge) []int {
	return nb.lists[edge][box]
}

// NumNodes implements Graph.
func (nb *Neighbours) NumNodes() int { return len(nb.rects) }

// Neighbors implements Graph: the union of all four edge lists of the box.
func (nb *Neighbours) Neighbors(box int) []int {
	var out []int
	for e := 0; e < 4; e++ {
		out = append(out, nb.lists[e][box]...)
	}
	return out
}

// SplitInConnectedComponents partitions the boxes into connected components
// of the touching relation. The adjacency is symmetric, so the strongly
// connected components coincide with the connected components.
func (nb *Neighbours) SplitInConnectedComponents() [][]int {
	comps := StronglyConnectedComponents(nb)
	for _, c := range comps {
		sort.Ints(c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}
