package shape

import (
	"fmt"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
)

// decomposer is the mutable vertex arena of a rectilinear polygon while it is
// being cut into rectangles. Vertices live in pts and the boundary cycles are
// encoded by the next index array; applying a cut duplicates its two end
// vertices and rewires next, which either splits one cycle in two or merges a
// hole into the cycle it is cut open towards.
type decomposer struct {
	pts  []Point
	next []int
}

// polygonCut is a horizontal or vertical segment from a reflex vertex to the
// first boundary point its ray hits. to is the vertex index at the hit, or -1
// when the ray ends in the interior of an edge.
type polygonCut struct {
	from int
	to   int
	hit  Point
}

func newDecomposer(s SingleShape) *decomposer {
	d := &decomposer{}
	d.addPath(s.Boundary)
	for _, h := range s.Holes {
		d.addPath(h)
	}
	return d
}

func (d *decomposer) addPath(p ShapePath) {
	base := len(d.pts)
	n := len(p.Points)
	for i, pt := range p.Points {
		d.pts = append(d.pts, pt)
		d.next = append(d.next, base+(i+1)%n)
	}
}

func (d *decomposer) prevArray() []int {
	prev := make([]int, len(d.next))
	for u, n := range d.next {
		prev[n] = u
	}
	return prev
}

// axisDir returns the unit step from a to b, which must differ along exactly
// one axis.
func axisDir(a, b Point) Point {
	p := Point{}
	switch {
	case b.X > a.X:
		p.X = 1
	case b.X < a.X:
		p.X = -1
	case b.Y > a.Y:
		p.Y = 1
	default:
		p.Y = -1
	}
	return p
}

func cross(a, b Point) int64 { return a.X*b.Y - a.Y*b.X }

// isReflex reports whether the interior angle at v exceeds 180 degrees. The
// interior lies on the left of the walking direction, so a right turn is
// reflex; collinear vertices are not.
func (d *decomposer) isReflex(v int, prev []int) bool {
	din := axisDir(d.pts[prev[v]], d.pts[v])
	dout := axisDir(d.pts[v], d.pts[d.next[v]])
	return cross(din, dout) < 0
}

// rayDirs returns the horizontal and vertical directions pointing from the
// reflex vertex v into the polygon interior: straight past the incoming edge
// and straight back past the outgoing one.
func (d *decomposer) rayDirs(v int, prev []int) (h, vert Point) {
	din := axisDir(d.pts[prev[v]], d.pts[v])
	dout := axisDir(d.pts[v], d.pts[d.next[v]])
	if din.Y == 0 {
		return din, Point{-dout.X, -dout.Y}
	}
	return Point{-dout.X, -dout.Y}, din
}

func angleOf(p Point) int {
	switch {
	case p.X == 1:
		return 0
	case p.Y == 1:
		return 1
	case p.X == -1:
		return 2
	default:
		return 3
	}
}

// coneContains reports whether direction dd points into the closed interior
// wedge at vertex v, i.e. between the outgoing edge direction and the
// reversed incoming one, going counterclockwise.
func (d *decomposer) coneContains(v int, dd Point, prev []int) bool {
	din := axisDir(d.pts[prev[v]], d.pts[v])
	dout := axisDir(d.pts[v], d.pts[d.next[v]])
	a := angleOf(dout)
	span := (angleOf(Point{-din.X, -din.Y}) - a + 4) % 4
	if span == 0 {
		span = 4
	}
	return (angleOf(dd)-a+4)%4 <= span
}

// castRay walks from vertex v in the axis direction rd until the first
// boundary edge blocks it. A horizontal ray stops at vertical edges whose
// closed span contains the ray line, and symmetrically for vertical rays.
// When the hit lands exactly on a vertex shared by several chains, the chain
// whose interior wedge faces back towards v wins.
func (d *decomposer) castRay(v int, rd Point, prev []int) polygonCut {
	p0 := d.pts[v]
	bestDist := int64(-1)
	var bestEdges []int
	for u := range d.pts {
		a, b := d.pts[u], d.pts[d.next[u]]
		var dist int64
		if rd.Y == 0 {
			if a.X != b.X || a.Y == b.Y {
				continue
			}
			lo, hi := a.Y, b.Y
			if lo > hi {
				lo, hi = hi, lo
			}
			if p0.Y < lo || p0.Y > hi {
				continue
			}
			dist = (a.X - p0.X) * rd.X
		} else {
			if a.Y != b.Y || a.X == b.X {
				continue
			}
			lo, hi := a.X, b.X
			if lo > hi {
				lo, hi = hi, lo
			}
			if p0.X < lo || p0.X > hi {
				continue
			}
			dist = (a.Y - p0.Y) * rd.Y
		}
		if dist <= 0 {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			bestDist, bestEdges = dist, bestEdges[:0]
		}
		if dist == bestDist {
			bestEdges = append(bestEdges, u)
		}
	}
	if bestDist == -1 {
		panic(fmt.Sprintf("shape: ray from %v leaves the polygon", p0))
	}

	hit := Point{p0.X + rd.X*bestDist, p0.Y + rd.Y*bestDist}
	back := Point{-rd.X, -rd.Y}
	var vertexHits []int
	for _, u := range bestEdges {
		if d.pts[u] == hit {
			vertexHits = append(vertexHits, u)
		}
		if d.pts[d.next[u]] == hit {
			vertexHits = append(vertexHits, d.next[u])
		}
	}
	switch len(vertexHits) {
	case 0:
		return polygonCut{from: v, to: -1, hit: hit}
	case 1:
		return polygonCut{from: v, to: vertexHits[0], hit: hit}
	}
	for _, w := range vertexHits {
		if d.coneContains(w, back, prev) {
			return polygonCut{from: v, to: w, hit: hit}
		}
	}
	return polygonCut{from: v, to: vertexHits[0], hit: hit}
}

// splitEdgeAt inserts a vertex at p, which must lie strictly inside some
// boundary edge, and returns its index.
func (d *decomposer) splitEdgeAt(p Point) int {
	for u := range d.pts {
		a, b := d.pts[u], d.pts[d.next[u]]
		inside := false
		if a.X == b.X && a.X == p.X {
			lo, hi := a.Y, b.Y
			if lo > hi {
				lo, hi = hi, lo
			}
			inside = lo < p.Y && p.Y < hi
		} else if a.Y == b.Y && a.Y == p.Y {
			lo, hi := a.X, b.X
			if lo > hi {
				lo, hi = hi, lo
			}
			inside = lo < p.X && p.X < hi
		}
		if inside {
			w := len(d.pts)
			d.pts = append(d.pts, p)
			d.next = append(d.next, d.next[u])
			d.next[u] = w
			return w
		}
	}
	panic(fmt.Sprintf("shape: cut endpoint %v is not on the boundary", p))
}

// applyCut splits the boundary along the cut by duplicating both end
// vertices: the duplicate of each end takes over the outgoing edge of the
// other end, turning one cycle into two (or joining two cycles into one when
// the ends lie on different cycles).
func (d *decomposer) applyCut(c polygonCut) {
	p := c.from
	q := c.to
	if q < 0 {
		q = d.splitEdgeAt(c.hit)
	}
	p2 := len(d.pts)
	d.pts = append(d.pts, d.pts[p])
	d.next = append(d.next, 0)
	q2 := len(d.pts)
	d.pts = append(d.pts, d.pts[q])
	d.next = append(d.next, 0)

	outP, outQ := d.next[p], d.next[q]
	d.next[p] = q2
	d.next[q2] = outQ
	d.next[q] = p2
	d.next[p2] = outP
}

// goodDiagonals pairs up reflex vertices whose rays along the given axis hit
// each other, each such pair reported once.
func goodDiagonals(cuts map[int]polygonCut, reflex map[int]bool) [][2]int {
	var out [][2]int
	for v, c := range cuts {
		w := c.to
		if w < 0 || w <= v || !reflex[w] {
			continue
		}
		if back, ok := cuts[w]; ok && back.to == v {
			out = append(out, [2]int{v, w})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// diagonalsCross reports whether a horizontal and a vertical diagonal
// intersect, endpoints included. Two good diagonals sharing a reflex vertex
// cannot both be applied.
func (d *decomposer) diagonalsCross(h, v [2]int) bool {
	hy := d.pts[h[0]].Y
	hx1, hx2 := d.pts[h[0]].X, d.pts[h[1]].X
	if hx1 > hx2 {
		hx1, hx2 = hx2, hx1
	}
	vx := d.pts[v[0]].X
	vy1, vy2 := d.pts[v[0]].Y, d.pts[v[1]].Y
	if vy1 > vy2 {
		vy1, vy2 = vy2, vy1
	}
	return hx1 <= vx && vx <= hx2 && vy1 <= hy && hy <= vy2
}

// chooseIndependentHorizontals returns the horizontal good diagonals in a
// maximum independent set of the crossing graph, via maximum bipartite
// matching and the Koenig cover construction. The vertical diagonals of the
// independent set need no special handling: the later full vertical-cut pass
// applies them anyway.
func (d *decomposer) chooseIndependentHorizontals(hGood, vGood [][2]int) [][2]int {
	adj := make([][]int, len(hGood))
	for i, h := range hGood {
		for j, v := range vGood {
			if d.diagonalsCross(h, v) {
				adj[i] = append(adj[i], j)
			}
		}
	}

	matchOfV := make([]int, len(vGood))
	matchOfH := make([]int, len(hGood))
	for i := range matchOfV {
		matchOfV[i] = -1
	}
	for i := range matchOfH {
		matchOfH[i] = -1
	}
	var seen []bool
	var augment func(h int) bool
	augment = func(h int) bool {
		for _, v := range adj[h] {
			if seen[v] {
				continue
			}
			seen[v] = true
			if matchOfV[v] == -1 || augment(matchOfV[v]) {
				matchOfV[v] = h
				matchOfH[h] = v
				return true
			}
		}
		return false
	}
	for h := range hGood {
		seen = make([]bool, len(vGood))
		augment(h)
	}

	// Alternating reachability from the unmatched horizontal side: the
	// independent set is (H in Z) plus (V not in Z).
	inZH := make([]bool, len(hGood))
	inZV := make([]bool, len(vGood))
	var queue []int
	for h := range hGood {
		if matchOfH[h] == -1 {
			inZH[h] = true
			queue = append(queue, h)
		}
	}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		for _, v := range adj[h] {
			if inZV[v] || matchOfH[h] == v {
				continue
			}
			inZV[v] = true
			if m := matchOfV[v]; m != -1 && !inZH[m] {
				inZH[m] = true
				queue = append(queue, m)
			}
		}
	}

	var chosen [][2]int
	for i, h := range hGood {
		if inZH[i] {
			chosen = append(chosen, h)
		}
	}
	return chosen
}

// applyGoodHorizontalDiagonals computes all polygon cuts, selects a maximum
// independent set of good diagonals and applies its horizontal members.
func (d *decomposer) applyGoodHorizontalDiagonals() {
	prev := d.prevArray()
	reflex := make(map[int]bool)
	hCuts := make(map[int]polygonCut)
	vCuts := make(map[int]polygonCut)
	for v := range d.pts {
		if !d.isReflex(v, prev) {
			continue
		}
		reflex[v] = true
		h, vert := d.rayDirs(v, prev)
		hCuts[v] = d.castRay(v, h, prev)
		vCuts[v] = d.castRay(v, vert, prev)
	}
	hGood := goodDiagonals(hCuts, reflex)
	vGood := goodDiagonals(vCuts, reflex)

	for _, h := range d.chooseIndependentHorizontals(hGood, vGood) {
		// Chosen diagonals are pairwise non-crossing and vertex-disjoint, and
		// horizontal cuts add no vertical edges, so applying them in sequence
		// never invalidates the remaining ones.
		d.applyCut(polygonCut{from: h[0], to: h[1], hit: d.pts[h[1]]})
	}
}

// rectangularizeWithVerticalCuts repeatedly cuts vertically from the
// bottom-left-most remaining reflex vertex until none is left. Every cut
// resolves at least one reflex vertex and introduces none, so this
// terminates with a union of rectangles.
func (d *decomposer) rectangularizeWithVerticalCuts() {
	for {
		prev := d.prevArray()
		best := -1
		for v := range d.pts {
			if !d.isReflex(v, prev) {
				continue
			}
			if best == -1 || lessPos(d.pts[v], d.pts[best]) {
				best = v
			}
		}
		if best == -1 {
			return
		}
		_, vert := d.rayDirs(best, prev)
		d.applyCut(d.castRay(best, vert, prev))
	}
}

func lessPos(a, b Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// extractRectangles walks the remaining cycles, each of which must describe
// an axis-aligned rectangle once collinear vertices are skipped.
func (d *decomposer) extractRectangles() []geometry.Rect {
	visited := make([]bool, len(d.pts))
	var out []geometry.Rect
	for v := range d.pts {
		if visited[v] {
			continue
		}
		bb := geometry.Rect{XMin: d.pts[v].X, XMax: d.pts[v].X, YMin: d.pts[v].Y, YMax: d.pts[v].Y}
		area2 := int64(0)
		u := v
		for {
			visited[u] = true
			a, b := d.pts[u], d.pts[d.next[u]]
			area2 += a.X*b.Y - b.X*a.Y
			bb = bb.GrowToInclude(geometry.Rect{XMin: b.X, XMax: b.X, YMin: b.Y, YMax: b.Y})
			u = d.next[u]
			if u == v {
				break
			}
		}
		if area2 != 2*bb.Area() {
			panic(fmt.Sprintf("shape: decomposed cycle at %v is not a rectangle", d.pts[v]))
		}
		out = append(out, bb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].YMin != out[j].YMin {
			return out[i].YMin < out[j].YMin
		}
		return out[i].XMin < out[j].XMin
	})
	return out
}

// CutShapeIntoRectangles partitions the interior of the shape into
// non-overlapping rectangles covering it exactly. The count is near-minimal:
// a maximum independent set of good diagonals is applied first and only the
// remaining concavities fall back to plain vertical cuts.
func CutShapeIntoRectangles(s SingleShape) []geometry.Rect {
	d := newDecomposer(s)
	d.applyGoodHorizontalDiagonals()
	d.rectangularizeWithVerticalCuts()
	return d.extractRectangles()
}
