// Package packing decides feasibility of placing fixed-size items in a
// bounding box: a family of dual-feasible-function counting arguments proves
// infeasibility cheaply, and a bounded brute-force search settles small
// instances exactly.
package packing

// A dual feasible function f maps sizes within a capacity c so that any set
// of sizes summing to at most c keeps summing to at most f(c). Rounding item
// sizes through one tightens an aggregate area test without losing any
// feasible packing. Both families below are monotone, superadditive and
// symmetric: f(x) + f(c-x) = f(c).

// roundExtremes is the f0 family: sizes below k round down to zero, sizes
// above c-k round up to the full capacity. Requires 2k <= c.
func roundExtremes(c, k, x int64) int64 {
	switch {
	case x < k:
		return 0
	case x > c-k:
		return c
	default:
		return x
	}
}

// countSlots is the f2 family: sizes are measured in whole slots of width k.
// A size over half the capacity additionally claims the slots its complement
// cannot use. Requires 1 <= k <= c.
func countSlots(c, k, x int64) int64 {
	switch {
	case 2*x > c:
		return 2 * (c/k - (c-x)/k)
	case 2*x == c:
		return c / k
	default:
		return 2 * (x / k)
	}
}
