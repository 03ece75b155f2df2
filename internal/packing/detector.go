package packing

import (
	"fmt"
	"sort"
)

// FeasibilityStatus is the outcome of the cheap infeasibility tests. The
// detector only ever proves infeasibility; absence of a proof says nothing.
type FeasibilityStatus int

const (
	FeasibilityUnknown FeasibilityStatus = iota
	Infeasible
)

func (s FeasibilityStatus) String() string {
	switch s {
	case FeasibilityUnknown:
		return "UNKNOWN"
	case Infeasible:
		return "INFEASIBLE"
	default:
		return fmt.Sprintf("FeasibilityStatus(%d)", int(s))
	}
}

// ConflictItem is one item taking part in an infeasibility proof, with the
// smallest sizes at which it would still take part. The difference between the
// recorded size and the minimum is slack a caller may spend, for example to
// explain the conflict with relaxed item sizes.
type ConflictItem struct {
	Index    int
	XSize    int64
	YSize    int64
	MinXSize int64
	MinYSize int64
}

// InfeasibilityProof is a minimal set of items that cannot be packed together,
// as certified by one of the detector's counting tests. Minimal means removing
// any single listed item breaks the certificate, not that a smaller
// infeasible subset cannot exist under a different test.
type InfeasibilityProof struct {
	Items []ConflictItem
}

// Indices returns the implicated item indices in ascending order.
func (p *InfeasibilityProof) Indices() []int {
	out := make([]int, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Index
	}
	return out
}

// TryUseSlackToReduceItemSize shrinks the recorded size of the item at the
// given position in the proof (along x when horizontal is true) down to the
// smallest value that keeps the certificate valid, and returns the new size.
// The second result is false when the item has no slack to spend.
func (p *InfeasibilityProof) TryUseSlackToReduceItemSize(pos int, horizontal bool) (int64, bool) {
	it := &p.Items[pos]
	if horizontal {
		if it.MinXSize >= it.XSize {
			return it.XSize, false
		}
		it.XSize = it.MinXSize
		return it.XSize, true
	}
	if it.MinYSize >= it.YSize {
		return it.YSize, false
	}
	it.YSize = it.MinYSize
	return it.YSize, true
}

// conflictTest is a monotone certificate: it reports a proven conflict for the
// given sizes, items with both sizes zero count as absent, and growing any
// size never turns a conflict into a non-conflict.
type conflictTest struct {
	name     string
	conflict func(sx, sy []int64) bool
}

// OrthogonalPackingInfeasibilityDetector proves that a set of items cannot be
// packed into a boxX by boxY area, using per-item and pairwise fit checks,
// the plain area count, and area counts sharpened by dual feasible functions
// on one or both axes.
type OrthogonalPackingInfeasibilityDetector struct {
	boxX, boxY int64
}

func NewInfeasibilityDetector(boxX, boxY int64) *OrthogonalPackingInfeasibilityDetector {
	if boxX < 0 || boxY < 0 {
		panic(fmt.Sprintf("packing: negative box %dx%d", boxX, boxY))
	}
	return &OrthogonalPackingInfeasibilityDetector{boxX: boxX, boxY: boxY}
}

func checkSizes(sizesX, sizesY []int64) {
	if len(sizesX) != len(sizesY) {
		panic(fmt.Sprintf("packing: %d x-sizes but %d y-sizes", len(sizesX), len(sizesY)))
	}
	for i := range sizesX {
		if sizesX[i] < 0 || sizesY[i] < 0 {
			panic(fmt.Sprintf("packing: item %d has negative size %dx%d", i, sizesX[i], sizesY[i]))
		}
	}
}

func uniqueSizes(sizes []int64) []int64 {
	var out []int64
	for _, s := range sizes {
		if s > 0 {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	w := 0
	for i, s := range out {
		if i == 0 || s != out[w-1] {
			out[w] = s
			w++
		}
	}
	return out[:w]
}

// dffAreaTest compares the transformed area count against the transformed
// capacity: fx and fy must each be dual feasible (identity allowed), so a
// feasible packing can never exceed fx(boxX)*fy(boxY).
func dffAreaTest(name string, fx, fy func(int64) int64, boxX, boxY int64) conflictTest {
	capacity := fx(boxX) * fy(boxY)
	return conflictTest{
		name: name,
		conflict: func(sx, sy []int64) bool {
			total := int64(0)
			for i := range sx {
				if sx[i] == 0 && sy[i] == 0 {
					continue
				}
				total += fx(sx[i]) * fy(sy[i])
			}
			return total > capacity
		},
	}
}

func identity(x int64) int64 { return x }

func (d *OrthogonalPackingInfeasibilityDetector) tests(sizesX, sizesY []int64) []conflictTest {
	boxX, boxY := d.boxX, d.boxY
	tests := []conflictTest{
		{
			name: "item exceeds box",
			conflict: func(sx, sy []int64) bool {
				for i := range sx {
					if sx[i] > boxX || sy[i] > boxY {
						return true
					}
				}
				return false
			},
		},
		{
			name: "pairwise exclusion",
			conflict: func(sx, sy []int64) bool {
				for i := range sx {
					if sx[i] == 0 && sy[i] == 0 {
						continue
					}
					for j := i + 1; j < len(sx); j++ {
						if sx[j] == 0 && sy[j] == 0 {
							continue
						}
						if sx[i]+sx[j] > boxX && sy[i]+sy[j] > boxY {
							return true
						}
					}
				}
				return false
			},
		},
		dffAreaTest("plain area", identity, identity, boxX, boxY),
	}

	kx := uniqueSizes(sizesX)
	ky := uniqueSizes(sizesY)

	// One-axis rounding tests.
	var f0x, f0y []int64
	for _, k := range kx {
		if 2*k <= boxX {
			f0x = append(f0x, k)
			k := k
			tests = append(tests, dffAreaTest(
				fmt.Sprintf("f0 x k=%d", k),
				func(x int64) int64 { return roundExtremes(boxX, k, x) },
				identity, boxX, boxY))
		}
	}
	for _, k := range ky {
		if 2*k <= boxY {
			f0y = append(f0y, k)
			k := k
			tests = append(tests, dffAreaTest(
				fmt.Sprintf("f0 y k=%d", k),
				identity,
				func(y int64) int64 { return roundExtremes(boxY, k, y) },
				boxX, boxY))
		}
	}

	// One-axis slot-counting tests.
	for _, k := range kx {
		if k >= 1 && k <= boxX {
			k := k
			tests = append(tests, dffAreaTest(
				fmt.Sprintf("f2 x k=%d", k),
				func(x int64) int64 { return countSlots(boxX, k, x) },
				identity, boxX, boxY))
		}
	}
	for _, k := range ky {
		if k >= 1 && k <= boxY {
			k := k
			tests = append(tests, dffAreaTest(
				fmt.Sprintf("f2 y k=%d", k),
				identity,
				func(y int64) int64 { return countSlots(boxY, k, y) },
				boxX, boxY))
		}
	}

	// Two-axis rounding tests, and slot counting composed with rounding on the
	// same axis. Both stay dual feasible because the families compose.
	for _, a := range f0x {
		for _, b := range f0y {
			a, b := a, b
			tests = append(tests, dffAreaTest(
				fmt.Sprintf("f0 x k=%d, f0 y k=%d", a, b),
				func(x int64) int64 { return roundExtremes(boxX, a, x) },
				func(y int64) int64 { return roundExtremes(boxY, b, y) },
				boxX, boxY))
		}
	}
	for _, a := range f0x {
		for _, k := range kx {
			if k < 1 || k > boxX {
				continue
			}
			a, k := a, k
			tests = append(tests, dffAreaTest(
				fmt.Sprintf("f2 k=%d of f0 k=%d on x", k, a),
				func(x int64) int64 { return countSlots(boxX, k, roundExtremes(boxX, a, x)) },
				identity, boxX, boxY))
		}
	}
	return tests
}

// TestFeasibility runs the counting tests in a fixed order and, on the first
// conflict, shrinks the certificate to a minimal item subset and computes per
// item the smallest sizes keeping it valid. The result is UNKNOWN with a nil
// proof when no test fires.
func (d *OrthogonalPackingInfeasibilityDetector) TestFeasibility(sizesX, sizesY []int64) (FeasibilityStatus, *InfeasibilityProof) {
	checkSizes(sizesX, sizesY)
	for _, t := range d.tests(sizesX, sizesY) {
		if t.conflict(sizesX, sizesY) {
			return Infeasible, minimizeConflict(t, sizesX, sizesY)
		}
	}
	return FeasibilityUnknown, nil
}

// minimizeConflict drops items one at a time while the certificate holds, then
// binary-searches the smallest size of each survivor on each axis. Items are
// removed by zeroing both sizes, which every test treats as absence.
func minimizeConflict(t conflictTest, sizesX, sizesY []int64) *InfeasibilityProof {
	sx := append([]int64(nil), sizesX...)
	sy := append([]int64(nil), sizesY...)
	kept := make([]bool, len(sx))
	for i := range kept {
		kept[i] = true
	}
	for i := range sx {
		ox, oy := sx[i], sy[i]
		sx[i], sy[i] = 0, 0
		if t.conflict(sx, sy) {
			kept[i] = false
			continue
		}
		sx[i], sy[i] = ox, oy
	}

	proof := &InfeasibilityProof{}
	for i := range sx {
		if !kept[i] {
			continue
		}
		proof.Items = append(proof.Items, ConflictItem{
			Index:    i,
			XSize:    sx[i],
			YSize:    sy[i],
			MinXSize: minimalSize(t, sx, sy, i, true),
			MinYSize: minimalSize(t, sx, sy, i, false),
		})
	}
	return proof
}

// minimalSize finds the smallest size of item i on one axis that keeps the
// certificate valid, holding everything else fixed. Valid because every test
// is monotone in each size.
func minimalSize(t conflictTest, sx, sy []int64, i int, horizontal bool) int64 {
	target := sy
	if horizontal {
		target = sx
	}
	orig := target[i]
	lo, hi := int64(0), orig
	for lo < hi {
		mid := lo + (hi-lo)/2
		target[i] = mid
		if t.conflict(sx, sy) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	target[i] = orig
	return lo
}
