// Package sweep finds overlapping pairs in a set of axis-aligned rectangles
// with a sweep-line over x and an interval structure over y. The full
// detector reports a spanning forest of the intersection graph, which is
// enough to reconstruct connected components with O(N) arcs even when the
// number of truly intersecting pairs is quadratic.
package sweep

import (
	"container/heap"
	"math"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
)

// inflate copies the rectangles, giving degenerate (zero-size) rectangles a
// unit extent along the degenerate axis so points and segments need no
// special-casing downstream.
func inflate(rects []geometry.Rect) []geometry.Rect {
	out := make([]geometry.Rect, len(rects))
	for i, r := range rects {
		r.CheckValid()
		if r.XMin == r.XMax {
			r.XMax++
		}
		if r.YMin == r.YMax {
			r.YMax++
		}
		out[i] = r
	}
	return out
}

// yRanks buckets the distinct y coordinates of the rectangles into dense
// ranks. Equal coordinates map to equal ranks and strict ordering is
// preserved, so two rectangles overlap in y exactly when their half-open
// rank intervals overlap.
func yRanks(rects []geometry.Rect) (lo, hi []int, numSlots int) {
	values := make([]int64, 0, 2*len(rects))
	for _, r := range rects {
		values = append(values, r.YMin, r.YMax)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	rank := make(map[int64]int, len(values))
	for _, v := range values {
		if _, ok := rank[v]; !ok {
			rank[v] = len(rank)
		}
	}
	lo = make([]int, len(rects))
	hi = make([]int, len(rects))
	for i, r := range rects {
		lo[i] = rank[r.YMin]
		hi[i] = rank[r.YMax]
	}
	return lo, hi, len(rank) - 1
}

// unionFind is a standard disjoint-set structure over rectangle indices.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the components of a and b, reporting whether they were
// previously distinct.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
	return true
}

// segTree is a segment tree over y-rank slots. Each node may hold one
// "occupant" rectangle covering the node's whole slot interval; occupants
// are evicted lazily the first time they are touched after their XMax has
// passed the sweep position. maxX tracks the largest active XMax in each
// subtree so whole stale subtrees can be skipped.
type segTree struct {
	slots int
	box   []int
	maxX  []int64
	rects []geometry.Rect
	uf    *unionFind
	arcs  [][2]int
}

const noBox = -1

func newSegTree(slots int, rects []geometry.Rect, uf *unionFind) *segTree {
	size := 4 * slots
	if size < 4 {
		size = 4
	}
	t := &segTree{
		slots: slots,
		box:   make([]int, size),
		maxX:  make([]int64, size),
		rects: rects,
		uf:    uf,
	}
	for i := range t.box {
		t.box[i] = noBox
		t.maxX[i] = math.MinInt64
	}
	return t
}

func (t *segTree) connect(a, b int) {
	if t.uf.union(a, b) {
		t.arcs = append(t.arcs, [2]int{a, b})
	}
}

// visitOccupant checks the occupant stored at node v against the incoming
// rectangle b: stale occupants are evicted, live ones overlap b in both axes
// and get connected.
func (t *segTree) visitOccupant(v, b int) {
	a := t.box[v]
	if a == noBox {
		return
	}
	if t.rects[a].XMax <= t.rects[b].XMin {
		t.box[v] = noBox
		return
	}
	t.connect(a, b)
}

// connectSubtree links b to every live occupant stored strictly below v.
// Occupants that end up in b's component and die no later than b are
// dominated (b is stored at an ancestor covering their interval) and are
// evicted to keep later sweeps cheap.
func (t *segTree) connectSubtree(v, nlo, nhi, b int) {
	if t.maxX[v] <= t.rects[b].XMin {
		return
	}
	a := t.box[v]
	if a != noBox {
		if t.rects[a].XMax <= t.rects[b].XMin {
			t.box[v] = noBox
		} else {
			t.connect(a, b)
			if t.rects[a].XMax <= t.rects[b].XMax {
				t.box[v] = noBox
			}
		}
	}
	if nhi-nlo > 1 {
		mid := (nlo + nhi) / 2
		t.connectSubtree(2*v, nlo, mid, b)
		t.connectSubtree(2*v+1, mid, nhi, b)
	}
	t.pull(v, nlo, nhi)
}

func (t *segTree) pull(v, nlo, nhi int) {
	m := int64(math.MinInt64)
	if t.box[v] != noBox {
		m = t.rects[t.box[v]].XMax
	}
	if nhi-nlo > 1 {
		if t.maxX[2*v] > m {
			m = t.maxX[2*v]
		}
		if t.maxX[2*v+1] > m {
			m = t.maxX[2*v+1]
		}
	}
	t.maxX[v] = m
}

// insert adds rectangle b occupying the slot interval [lo, hi).
func (t *segTree) insert(b, lo, hi int) {
	t.insertRec(1, 0, t.slots, lo, hi, b)
}

func (t *segTree) insertRec(v, nlo, nhi, lo, hi, b int) {
	if lo >= nhi || hi <= nlo {
		return
	}
	t.visitOccupant(v, b)
	if lo <= nlo && nhi <= hi {
		t.connectSubtree(v, nlo, nhi, b)
		if t.box[v] == noBox || t.rects[t.box[v]].XMax < t.rects[b].XMax {
			t.box[v] = b
		}
		t.pull(v, nlo, nhi)
		return
	}
	mid := (nlo + nhi) / 2
	t.insertRec(2*v, nlo, mid, lo, hi, b)
	t.insertRec(2*v+1, mid, nhi, lo, hi, b)
	t.pull(v, nlo, nhi)
}

// FindPartialRectangleIntersections returns a spanning forest of the
// intersection graph of rects: one arc per newly discovered connection,
// sufficient to reconstruct the connected components. The input is not
// required to be disjoint; zero-area rectangles are treated as unit-size
// along their degenerate axis.
func FindPartialRectangleIntersections(rects []geometry.Rect) [][2]int {
	if len(rects) < 2 {
		return nil
	}
	inflated := inflate(rects)
	lo, hi, slots := yRanks(inflated)
	if slots <= 0 {
		return nil
	}

	order := make([]int, len(inflated))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if inflated[order[a]].XMin != inflated[order[b]].XMin {
			return inflated[order[a]].XMin < inflated[order[b]].XMin
		}
		return order[a] < order[b]
	})

	uf := newUnionFind(len(inflated))
	tree := newSegTree(slots, inflated, uf)
	for _, b := range order {
		tree.insert(b, lo[b], hi[b])
	}
	return tree.arcs
}

// activeEntry is one rectangle currently crossed by the sweep line, kept in
// a list sorted by YMin.
type activeEntry struct {
	yMin, yMax int64
	xMax       int64
	idx        int
}

// expiryHeap pops active entries in order of increasing XMax.
type expiryHeap []*activeEntry

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].xMax < h[j].xMax }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x interface{}) { *h = append(*h, x.(*activeEntry)) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// FindOneIntersectionIfPresent returns the first intersecting pair found, or
// false if the rectangles are pairwise disjoint. The input must already be
// sorted by increasing XMin.
func FindOneIntersectionIfPresent(rects []geometry.Rect) ([2]int, bool) {
	inflated := inflate(rects)
	for i := 1; i < len(inflated); i++ {
		if inflated[i].XMin < inflated[i-1].XMin {
			panic("sweep: FindOneIntersectionIfPresent requires rectangles sorted by XMin")
		}
	}

	var active []*activeEntry // sorted by yMin; invariant: pairwise y-disjoint
	expiry := &expiryHeap{}

	remove := func(e *activeEntry) {
		pos := sort.Search(len(active), func(i int) bool { return active[i].yMin >= e.yMin })
		for pos < len(active) && active[pos] != e {
			pos++
		}
		if pos < len(active) {
			active = append(active[:pos], active[pos+1:]...)
		}
	}

	for i, r := range inflated {
		for expiry.Len() > 0 && (*expiry)[0].xMax <= r.XMin {
			e := heap.Pop(expiry).(*activeEntry)
			remove(e)
		}

		pos := sort.Search(len(active), func(j int) bool { return active[j].yMin >= r.YMin })
		// Since live entries never overlap each other in y, only the two
		// neighbours around the insertion point can overlap the newcomer.
		if pos < len(active) && active[pos].yMin < r.YMax {
			return [2]int{active[pos].idx, i}, true
		}
		if pos > 0 && active[pos-1].yMax > r.YMin {
			return [2]int{active[pos-1].idx, i}, true
		}

		e := &activeEntry{yMin: r.YMin, yMax: r.YMax, xMax: r.XMax, idx: i}
		active = append(active, nil)
		copy(active[pos+1:], active[pos:])
		active[pos] = e
		heap.Push(expiry, e)
	}
	return [2]int{}, false
}
