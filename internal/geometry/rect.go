// Package geometry provides the axis-aligned rectangle algebra the rest of
// the engine is built on: exact intersection and disjointness tests, region
// subtraction into disjoint pieces, and items whose final position inside a
// bounding area is not yet decided.
package geometry

import "fmt"

// Edge identifies one of the four sides of a rectangle.
type Edge int

const (
	EdgeBottom Edge = iota
	EdgeTop
	EdgeLeft
	EdgeRight
)

func (e Edge) String() string {
	switch e {
	case EdgeBottom:
		return "Bottom"
	case EdgeTop:
		return "Top"
	case EdgeLeft:
		return "Left"
	default:
		return "Right"
	}
}

// Rect is an axis-aligned rectangle in a signed 64-bit coordinate space.
// XMin <= XMax and YMin <= YMax must hold; an area-zero rectangle (a point
// or a segment) is legal as an obstacle, but operations that assume positive
// area say so in their doc comment.
type Rect struct {
	XMin, XMax int64
	YMin, YMax int64
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d..%d)x[%d..%d)", r.XMin, r.XMax, r.YMin, r.YMax)
}

// SizeX returns the horizontal extent.
func (r Rect) SizeX() int64 { return r.XMax - r.XMin }

// SizeY returns the vertical extent.
func (r Rect) SizeY() int64 { return r.YMax - r.YMin }

// Area returns SizeX * SizeY.
func (r Rect) Area() int64 { return r.SizeX() * r.SizeY() }

// IsValid reports whether XMin <= XMax and YMin <= YMax.
func (r Rect) IsValid() bool {
	return r.XMin <= r.XMax && r.YMin <= r.YMax
}

// CheckValid panics if the rectangle is malformed. Malformed rectangles
// indicate a bug in the caller, never a recoverable data condition.
func (r Rect) CheckValid() {
	if !r.IsValid() {
		panic(fmt.Sprintf("geometry: malformed rectangle %v", r))
	}
}

// IsDisjoint reports whether the two rectangles share no interior point.
// Rectangles that merely touch along an edge or at a corner count as
// disjoint.
func (r Rect) IsDisjoint(o Rect) bool {
	return r.XMin >= o.XMax || o.XMin >= r.XMax ||
		r.YMin >= o.YMax || o.YMin >= r.YMax
}

// Intersect returns the intersection of the two rectangles, or the empty
// rectangle {0,0,0,0} if they do not properly overlap.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		XMin: max64(r.XMin, o.XMin),
		XMax: min64(r.XMax, o.XMax),
		YMin: max64(r.YMin, o.YMin),
		YMax: min64(r.YMax, o.YMax),
	}
	if out.XMin >= out.XMax || out.YMin >= out.YMax {
		return Rect{}
	}
	return out
}

// IntersectArea returns the area of the intersection of the two rectangles.
func (r Rect) IntersectArea(o Rect) int64 {
	return r.Intersect(o).Area()
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return r.XMin <= o.XMin && o.XMax <= r.XMax &&
		r.YMin <= o.YMin && o.YMax <= r.YMax
}

// GrowToInclude extends r to the bounding box of r and o.
func (r Rect) GrowToInclude(o Rect) Rect {
	return Rect{
		XMin: min64(r.XMin, o.XMin),
		XMax: max64(r.XMax, o.XMax),
		YMin: min64(r.YMin, o.YMin),
		YMax: max64(r.YMax, o.YMax),
	}
}

// RegionDifference returns at most four disjoint rectangles covering exactly
// r minus o, in a fixed order: the left strip (full height), the right strip
// (full height), then the bottom and top strips between them.
func (r Rect) RegionDifference(o Rect) []Rect {
	inter := r.Intersect(o)
	if inter.Area() == 0 {
		if r.Area() == 0 {
			return nil
		}
		return []Rect{r}
	}
	var out []Rect
	if r.XMin < inter.XMin {
		out = append(out, Rect{XMin: r.XMin, XMax: inter.XMin, YMin: r.YMin, YMax: r.YMax})
	}
	if inter.XMax < r.XMax {
		out = append(out, Rect{XMin: inter.XMax, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax})
	}
	if r.YMin < inter.YMin {
		out = append(out, Rect{XMin: inter.XMin, XMax: inter.XMax, YMin: r.YMin, YMax: inter.YMin})
	}
	if inter.YMax < r.YMax {
		out = append(out, Rect{XMin: inter.XMin, XMax: inter.XMax, YMin: inter.YMax, YMax: r.YMax})
	}
	return out
}

// SubtractAll removes every rectangle in subs from the region covered by
// rects, returning a set of disjoint rectangles covering exactly the
// remainder.
func SubtractAll(rects []Rect, subs []Rect) []Rect {
	region := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if r.Area() > 0 {
			region = append(region, r)
		}
	}
	for _, s := range subs {
		var next []Rect
		for _, r := range region {
			next = append(next, r.RegionDifference(s)...)
		}
		region = next
	}
	return region
}

// RegionIncludesOther reports whether the region covered by the rectangles in
// outer fully covers the region covered by the rectangles in inner.
func RegionIncludesOther(outer, inner []Rect) bool {
	remainder := SubtractAll(inner, outer)
	for _, r := range remainder {
		if r.Area() > 0 {
			return false
		}
	}
	return true
}

// BoundingBox returns the smallest rectangle containing every rectangle in
// rects. It panics on an empty input.
func BoundingBox(rects []Rect) Rect {
	if len(rects) == 0 {
		panic("geometry: bounding box of an empty rectangle set")
	}
	bb := rects[0]
	for _, r := range rects[1:] {
		bb = bb.GrowToInclude(r)
	}
	return bb
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
