package geometry

import "fmt"

// RectInRange is an item that must eventually become a fixed-size rectangle
// of size (XSize, YSize) placed anywhere inside BoundingArea. It is the unit
// of work for the energy detector and the packing oracle.
type RectInRange struct {
	BoxIndex     int
	BoundingArea Rect
	XSize, YSize int64
}

// CheckValid panics unless the item's sizes fit inside its bounding area.
func (r RectInRange) CheckValid() {
	r.BoundingArea.CheckValid()
	if r.XSize < 0 || r.YSize < 0 ||
		r.XSize > r.BoundingArea.SizeX() || r.YSize > r.BoundingArea.SizeY() {
		panic(fmt.Sprintf("geometry: item %d of size (%d,%d) does not fit in its range %v",
			r.BoxIndex, r.XSize, r.YSize, r.BoundingArea))
	}
}

// forcedOverlap1D returns the minimum overlap length between the window
// [lo, hi] and an interval of length size that may slide anywhere inside
// [bmin, bmax]. The overlap as a function of the interval position is
// concave piecewise linear, so the minimum is attained at the leftmost or
// rightmost placement.
func forcedOverlap1D(bmin, bmax, size, lo, hi int64) int64 {
	left := min64(bmin+size, hi) - max64(bmin, lo)
	right := min64(bmax, hi) - max64(bmax-size, lo)
	forced := min64(left, right)
	if forced < 0 {
		return 0
	}
	return forced
}

// MinIntersectionArea returns the minimum area the item is forced to occupy
// inside rect, over all placements of the item within its bounding area.
func (r RectInRange) MinIntersectionArea(rect Rect) int64 {
	fx := forcedOverlap1D(r.BoundingArea.XMin, r.BoundingArea.XMax, r.XSize, rect.XMin, rect.XMax)
	if fx == 0 {
		return 0
	}
	fy := forcedOverlap1D(r.BoundingArea.YMin, r.BoundingArea.YMax, r.YSize, rect.YMin, rect.YMax)
	return fx * fy
}

// RangesBoundingBox returns the bounding box of all items' bounding areas.
// It panics on an empty input.
func RangesBoundingBox(items []RectInRange) Rect {
	if len(items) == 0 {
		panic("geometry: bounding box of an empty item set")
	}
	bb := items[0].BoundingArea
	for _, it := range items[1:] {
		bb = bb.GrowToInclude(it.BoundingArea)
	}
	return bb
}
