// Package presolve shrinks the fixed-obstacle set a non-overlap constraint
// has to reason about: it merges obstacles, absorbs unreachable empty space
// into them and rewrites the result as a smaller equivalent rectangle set.
package presolve

import (
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/neighbours"
	"github.com/piwi3910/rectcheck/internal/shape"
)

// ReduceNumberOfBoxesGreedy repeatedly merges any two boxes that share a full
// edge into one, until no such pair is left. A merge of a mandatory box with
// an optional one is mandatory. Reports whether anything was merged.
func ReduceNumberOfBoxesGreedy(mandatory, optional *[]geometry.Rect) bool {
	type box struct {
		r         geometry.Rect
		mandatory bool
		dead      bool
	}
	boxes := make([]box, 0, len(*mandatory)+len(*optional))
	for _, r := range *mandatory {
		boxes = append(boxes, box{r: r, mandatory: true})
	}
	for _, r := range *optional {
		boxes = append(boxes, box{r: r})
	}

	type edgeKey struct{ at, lo, hi int64 }
	changed := false
	for {
		left := make(map[edgeKey]int, len(boxes))
		bottom := make(map[edgeKey]int, len(boxes))
		for i, b := range boxes {
			if b.dead {
				continue
			}
			left[edgeKey{b.r.XMin, b.r.YMin, b.r.YMax}] = i
			bottom[edgeKey{b.r.YMin, b.r.XMin, b.r.XMax}] = i
		}
		merged := false
		for i := range boxes {
			if boxes[i].dead {
				continue
			}
			r := boxes[i].r
			if j, ok := left[edgeKey{r.XMax, r.YMin, r.YMax}]; ok && j != i && !boxes[j].dead &&
				boxes[j].r.XMin == r.XMax && boxes[j].r.YMin == r.YMin && boxes[j].r.YMax == r.YMax {
				boxes[i].r.XMax = boxes[j].r.XMax
				boxes[i].mandatory = boxes[i].mandatory || boxes[j].mandatory
				boxes[j].dead = true
				merged = true
				continue
			}
			if j, ok := bottom[edgeKey{r.YMax, r.XMin, r.XMax}]; ok && j != i && !boxes[j].dead &&
				boxes[j].r.YMin == r.YMax && boxes[j].r.XMin == r.XMin && boxes[j].r.XMax == r.XMax {
				boxes[i].r.YMax = boxes[j].r.YMax
				boxes[i].mandatory = boxes[i].mandatory || boxes[j].mandatory
				boxes[j].dead = true
				merged = true
			}
		}
		if !merged {
			break
		}
		changed = true
	}

	if changed {
		*mandatory = (*mandatory)[:0]
		*optional = (*optional)[:0]
		for _, b := range boxes {
			if b.dead {
				continue
			}
			if b.mandatory {
				*mandatory = append(*mandatory, b.r)
			} else {
				*optional = append(*optional, b.r)
			}
		}
	}
	return changed
}

// decomposeRegion rewrites a disjoint rectangle set as the rectangle
// decomposition of its traced outline.
func decomposeRegion(rects []geometry.Rect) []geometry.Rect {
	nb := neighbours.Build(rects)
	var out []geometry.Rect
	for _, s := range shape.BoxesToShapes(rects, nb) {
		out = append(out, shape.CutShapeIntoRectangles(s)...)
	}
	return out
}

// ReduceNumberOfBoxesExactMandatory absorbs, into the mandatory set, every
// connected component of the empty space inside the mandatory bounding box
// that the optional boxes fully cover, then rewrites the enlarged set through
// shape tracing and decomposition. The rewrite is kept only when it yields
// strictly fewer mandatory boxes than before.
func ReduceNumberOfBoxesExactMandatory(mandatory, optional *[]geometry.Rect) bool {
	var man, zeroArea []geometry.Rect
	for _, r := range *mandatory {
		if r.Area() > 0 {
			man = append(man, r)
		} else {
			zeroArea = append(zeroArea, r)
		}
	}
	if len(man) == 0 {
		return false
	}

	bb := geometry.BoundingBox(man)
	enlarged := man
	dropOptional := make([]bool, len(*optional))
	if empty := geometry.SubtractAll([]geometry.Rect{bb}, man); len(empty) > 0 {
		enb := neighbours.Build(empty)
		for _, comp := range enb.SplitInConnectedComponents() {
			compRects := make([]geometry.Rect, 0, len(comp))
			for _, c := range comp {
				compRects = append(compRects, empty[c])
			}
			if !geometry.RegionIncludesOther(*optional, compRects) {
				continue
			}
			enlarged = append(enlarged, compRects...)
			for oi, o := range *optional {
				if !dropOptional[oi] && geometry.RegionIncludesOther(compRects, []geometry.Rect{o}) {
					dropOptional[oi] = true
				}
			}
		}
	}

	candidate := decomposeRegion(enlarged)
	if len(candidate)+len(zeroArea) >= len(*mandatory) {
		return false
	}
	*mandatory = append(candidate, zeroArea...)
	kept := (*optional)[:0]
	for oi, o := range *optional {
		if !dropOptional[oi] {
			kept = append(kept, o)
		}
	}
	*optional = kept
	return true
}

// disjointParts rebuilds the region covered by rects as a pairwise-disjoint
// set, clipped to the clip rectangle.
func disjointParts(rects []geometry.Rect, clip geometry.Rect) []geometry.Rect {
	var out []geometry.Rect
	for _, r := range rects {
		c := r.Intersect(clip)
		if c.Area() == 0 {
			continue
		}
		out = append(out, geometry.SubtractAll([]geometry.Rect{c}, out)...)
	}
	return out
}

// PresolveFixed2DRectangles simplifies the fixed obstacles of a set of
// yet-to-be-placed items. Obstacles are clipped to the bounding box of the
// item ranges, the definitely-empty space (area no item range reaches, plus
// free-space components too small to host any item) is added as optional
// obstacle material, and the greedy and exact reducers run on the result. The
// fixed set is replaced in place; the return value reports whether it
// changed. Any item placement inside its range is valid against the new set
// exactly when it was valid against the old one.
func PresolveFixed2DRectangles(items []geometry.RectInRange, fixed *[]geometry.Rect) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		it.CheckValid()
	}
	bb := geometry.RangesBoundingBox(items)
	mandatory := disjointParts(*fixed, bb)

	var ranges []geometry.Rect
	for _, it := range items {
		ranges = append(ranges, it.BoundingArea)
	}
	var optional []geometry.Rect
	for _, r := range geometry.SubtractAll([]geometry.Rect{bb}, ranges) {
		optional = append(optional, geometry.SubtractAll([]geometry.Rect{r}, mandatory)...)
	}

	// A placed item cannot overlap an obstacle, so its footprint lies inside
	// a single connected component of the free space. Components too small
	// for every item are unreachable and become obstacle material too.
	if free := geometry.SubtractAll([]geometry.Rect{bb}, mandatory); len(free) > 0 {
		fnb := neighbours.Build(free)
		for _, comp := range fnb.SplitInConnectedComponents() {
			compRects := make([]geometry.Rect, 0, len(comp))
			for _, c := range comp {
				compRects = append(compRects, free[c])
			}
			cbb := geometry.BoundingBox(compRects)
			fits := false
			for _, it := range items {
				if it.XSize <= cbb.SizeX() && it.YSize <= cbb.SizeY() {
					fits = true
					break
				}
			}
			if !fits {
				for _, r := range compRects {
					optional = append(optional, geometry.SubtractAll([]geometry.Rect{r}, optional)...)
				}
			}
		}
	}

	ReduceNumberOfBoxesGreedy(&mandatory, &optional)
	ReduceNumberOfBoxesExactMandatory(&mandatory, &optional)

	changed := !sameRectSet(*fixed, mandatory)
	*fixed = mandatory
	return changed
}

func sameRectSet(a, b []geometry.Rect) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]geometry.Rect(nil), a...)
	bs := append([]geometry.Rect(nil), b...)
	less := func(s []geometry.Rect) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].XMin != s[j].XMin {
				return s[i].XMin < s[j].XMin
			}
			if s[i].YMin != s[j].YMin {
				return s[i].YMin < s[j].YMin
			}
			if s[i].XMax != s[j].XMax {
				return s[i].XMax < s[j].XMax
			}
			return s[i].YMax < s[j].YMax
		}
	}
	sort.Slice(as, less(as))
	sort.Slice(bs, less(bs))
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
