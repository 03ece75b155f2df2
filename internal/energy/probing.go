package energy

import (
	"fmt"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
)

// ProbingRectangle maintains, over a window that shrinks one edge at a time,
// the total minimum energy the items are forced to spend inside the window.
// It starts at the bounding box of all item ranges; Shrink moves one edge to
// the next interesting coordinate (an item range boundary, offset by zero or
// the item size) and updates the aggregate by recomputing only the items
// whose forced overlap the moved edge can have changed.
//
// For each of the four edges the probe also keeps the window and energy a
// shrink of that edge would produce next. These previews are refreshed after
// every Shrink, again touching only the items whose forced overlap the
// candidate move can change, so reading a preview costs nothing.
//
// The cached energy is always a lower bound on what any placement must spend
// inside the current window, so a window whose energy exceeds its area is a
// proven conflict even before the rectangle is minimal.
type ProbingRectangle struct {
	items    []geometry.RectInRange
	rect     geometry.Rect
	contrib  []int64
	energy   int64
	xCoords  []int64
	yCoords  []int64
	previews [4]edgePreview
}

// edgePreview is the cached outcome of shrinking one edge next.
type edgePreview struct {
	target int64
	rect   geometry.Rect
	energy int64
	ok     bool
}

// NewProbingRectangle initializes the probe at the bounding box of the item
// ranges. The item list must be non-empty.
func NewProbingRectangle(items []geometry.RectInRange) *ProbingRectangle {
	for _, it := range items {
		it.CheckValid()
	}
	p := &ProbingRectangle{
		items:   items,
		rect:    geometry.RangesBoundingBox(items),
		contrib: make([]int64, len(items)),
	}
	for i, it := range items {
		p.contrib[i] = it.MinIntersectionArea(p.rect)
		p.energy += p.contrib[i]
		a := it.BoundingArea
		p.xCoords = append(p.xCoords, a.XMin, a.XMax, a.XMin+it.XSize, a.XMax-it.XSize)
		p.yCoords = append(p.yCoords, a.YMin, a.YMax, a.YMin+it.YSize, a.YMax-it.YSize)
	}
	p.xCoords = sortedUnique(p.xCoords)
	p.yCoords = sortedUnique(p.yCoords)
	p.refreshPreviews()
	return p
}

func sortedUnique(v []int64) []int64 {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	out := v[:0]
	for i, x := range v {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func nextAbove(coords []int64, v int64) (int64, bool) {
	i := sort.Search(len(coords), func(i int) bool { return coords[i] > v })
	if i == len(coords) {
		return 0, false
	}
	return coords[i], true
}

func nextBelow(coords []int64, v int64) (int64, bool) {
	i := sort.Search(len(coords), func(i int) bool { return coords[i] >= v })
	if i == 0 {
		return 0, false
	}
	return coords[i-1], true
}

// Rect returns the current window.
func (p *ProbingRectangle) Rect() geometry.Rect { return p.rect }

// GetMinimumEnergy returns the cached total forced energy inside the current
// window.
func (p *ProbingRectangle) GetMinimumEnergy() int64 { return p.energy }

// IsInConflict reports whether the forced energy exceeds the window area.
func (p *ProbingRectangle) IsInConflict() bool { return p.energy > p.rect.Area() }

// shrinkTarget returns the coordinate the given edge would move to, and
// whether such a move keeps the window non-degenerate.
func (p *ProbingRectangle) shrinkTarget(edge geometry.Edge) (int64, bool) {
	switch edge {
	case geometry.EdgeLeft:
		if t, ok := nextAbove(p.xCoords, p.rect.XMin); ok && t < p.rect.XMax {
			return t, true
		}
	case geometry.EdgeRight:
		if t, ok := nextBelow(p.xCoords, p.rect.XMax); ok && t > p.rect.XMin {
			return t, true
		}
	case geometry.EdgeBottom:
		if t, ok := nextAbove(p.yCoords, p.rect.YMin); ok && t < p.rect.YMax {
			return t, true
		}
	case geometry.EdgeTop:
		if t, ok := nextBelow(p.yCoords, p.rect.YMax); ok && t > p.rect.YMin {
			return t, true
		}
	}
	return 0, false
}

// CanShrink reports whether the given edge still has an interesting
// coordinate to move to.
func (p *ProbingRectangle) CanShrink(edge geometry.Edge) bool {
	return p.previews[edge].ok
}

// IsMinimal reports whether no edge can shrink any further. Only then is the
// absence of a conflict on this probe trajectory meaningful.
func (p *ProbingRectangle) IsMinimal() bool {
	for e := geometry.EdgeBottom; e <= geometry.EdgeRight; e++ {
		if p.CanShrink(e) {
			return false
		}
	}
	return true
}

// movedRect returns the window after moving the edge to t.
func (p *ProbingRectangle) movedRect(edge geometry.Edge, t int64) geometry.Rect {
	r := p.rect
	switch edge {
	case geometry.EdgeLeft:
		r.XMin = t
	case geometry.EdgeRight:
		r.XMax = t
	case geometry.EdgeBottom:
		r.YMin = t
	case geometry.EdgeTop:
		r.YMax = t
	}
	return r
}

// mayChange reports whether moving the edge from its current position to t
// can change the item's forced overlap. An item is unaffected while the edge
// travels outside the open span of its range on the moved axis.
func (p *ProbingRectangle) mayChange(i int, edge geometry.Edge, t int64) bool {
	a := p.items[i].BoundingArea
	switch edge {
	case geometry.EdgeLeft:
		return a.XMin < t && a.XMax > p.rect.XMin
	case geometry.EdgeRight:
		return a.XMax > t && a.XMin < p.rect.XMax
	case geometry.EdgeBottom:
		return a.YMin < t && a.YMax > p.rect.YMin
	default:
		return a.YMax > t && a.YMin < p.rect.YMax
	}
}

// refreshPreviews recomputes the cached shrink outcome of every edge against
// the current window. Each edge only visits the items its candidate move can
// affect; a shrink of one edge can change another edge's target, so all four
// are redone.
func (p *ProbingRectangle) refreshPreviews() {
	for edge := geometry.EdgeBottom; edge <= geometry.EdgeRight; edge++ {
		t, ok := p.shrinkTarget(edge)
		if !ok {
			p.previews[edge] = edgePreview{}
			continue
		}
		r := p.movedRect(edge, t)
		e := p.energy
		for i := range p.items {
			if p.mayChange(i, edge, t) {
				e += p.items[i].MinIntersectionArea(r) - p.contrib[i]
			}
		}
		p.previews[edge] = edgePreview{target: t, rect: r, energy: e, ok: true}
	}
}

// previewShrink returns the window and total energy a Shrink of the edge
// would produce, without mutating the probe.
func (p *ProbingRectangle) previewShrink(edge geometry.Edge) (geometry.Rect, int64, bool) {
	pv := p.previews[edge]
	return pv.rect, pv.energy, pv.ok
}

// Shrink moves the given edge to the next interesting coordinate. It panics
// when CanShrink(edge) is false.
func (p *ProbingRectangle) Shrink(edge geometry.Edge) {
	pv := p.previews[edge]
	if !pv.ok {
		panic(fmt.Sprintf("energy: cannot shrink edge %v of %v", edge, p.rect))
	}
	for i := range p.items {
		if !p.mayChange(i, edge, pv.target) {
			continue
		}
		p.contrib[i] = p.items[i].MinIntersectionArea(pv.rect)
	}
	p.rect = pv.rect
	p.energy = pv.energy
	p.refreshPreviews()
}
