package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

type point struct {
	x, y float64
}

// segment is a line segment between two points, used for chaining
// disconnected LINE entities into closed outlines.
type segment struct {
	start point
	end   point
}

// ImportDXFObstacles imports fixed obstacles from a DXF file. Each closed
// shape (LWPOLYLINE, CIRCLE, or chain of connected LINEs) contributes its
// axis-aligned bounding box, rounded outward to integer coordinates, as one
// obstacle rectangle.
func ImportDXFObstacles(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]point
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			var outline []point
			for _, v := range e.Vertices {
				outline = append(outline, point{x: v[0], y: v[1]})
			}
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			outlines = append(outlines, []point{
				{x: cx - r, y: cy - r}, {x: cx + r, y: cy - r},
				{x: cx + r, y: cy + r}, {x: cx - r, y: cy + r},
			})

		case *entity.Line:
			segments = append(segments, segment{
				start: point{x: e.Start[0], y: e.Start[1]},
				end:   point{x: e.End[0], y: e.End[1]},
			})

		default:
			// Unsupported entity types are skipped.
		}
	}

	outlines = append(outlines, chainSegments(segments, 0.01)...)

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, outline := range outlines {
		r := outlineBounds(outline)
		if r.Area() == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape %v", r))
			continue
		}
		result.Obstacles = append(result.Obstacles,
			model.NewObstacle(fmt.Sprintf("DXF Obstacle %d", i+1), r))
	}
	return result
}

// outlineBounds returns the outline's bounding box rounded outward to
// integers, so the obstacle never under-covers the drawn shape.
func outlineBounds(outline []point) geometry.Rect {
	minX, minY := outline[0].x, outline[0].y
	maxX, maxY := minX, minY
	for _, p := range outline[1:] {
		minX = math.Min(minX, p.x)
		minY = math.Min(minY, p.y)
		maxX = math.Max(maxX, p.x)
		maxY = math.Max(maxY, p.y)
	}
	return geometry.Rect{
		XMin: int64(math.Floor(minX)),
		XMax: int64(math.Ceil(maxX)),
		YMin: int64(math.Floor(minY)),
		YMax: int64(math.Ceil(maxY)),
	}
}

// chainSegments connects individual segments into closed outlines. tolerance
// is the maximum endpoint distance still considered a connection.
func chainSegments(segs []segment, tolerance float64) [][]point {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines [][]point

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Only closed chains count as outlines.
		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	sort.Slice(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	dx := a.x - b.x
	dy := a.y - b.y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}

// outlineArea computes the absolute polygon area with the shoelace formula.
func outlineArea(o []point) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].x*o[j].y - o[j].x*o[i].y
	}
	return math.Abs(area) / 2
}
