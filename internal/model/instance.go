// Package model defines the instance types the importers and the CLI use to
// feed the reasoning engine: movable items with placement ranges and fixed
// obstacle rectangles, with JSON tags for save/load.
package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/piwi3910/rectcheck/internal/geometry"
)

// Item is a movable rectangle of fixed size whose bottom-left corner may be
// placed anywhere that keeps the whole item inside its range.
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	XSize int64  `json:"x_size"`
	YSize int64  `json:"y_size"`

	// Allowed placement range: the item must lie entirely inside it.
	RangeXMin int64 `json:"range_x_min"`
	RangeXMax int64 `json:"range_x_max"`
	RangeYMin int64 `json:"range_y_min"`
	RangeYMax int64 `json:"range_y_max"`
}

func NewItem(label string, xSize, ySize int64, rng geometry.Rect) Item {
	return Item{
		ID:        uuid.New().String()[:8],
		Label:     label,
		XSize:     xSize,
		YSize:     ySize,
		RangeXMin: rng.XMin,
		RangeXMax: rng.XMax,
		RangeYMin: rng.YMin,
		RangeYMax: rng.YMax,
	}
}

// Range returns the allowed placement range as a rectangle.
func (it Item) Range() geometry.Rect {
	return geometry.Rect{XMin: it.RangeXMin, XMax: it.RangeXMax, YMin: it.RangeYMin, YMax: it.RangeYMax}
}

// InRange converts the item to the engine's range representation. index is
// the caller's handle for the item, reported back in engine results.
func (it Item) InRange(index int) geometry.RectInRange {
	return geometry.RectInRange{
		BoxIndex:     index,
		BoundingArea: it.Range(),
		XSize:        it.XSize,
		YSize:        it.YSize,
	}
}

func (it Item) Validate() error {
	if it.XSize <= 0 || it.YSize <= 0 {
		return fmt.Errorf("item %q: size %dx%d must be positive", it.Label, it.XSize, it.YSize)
	}
	r := it.Range()
	if !r.IsValid() {
		return fmt.Errorf("item %q: invalid range %v", it.Label, r)
	}
	if it.XSize > r.SizeX() || it.YSize > r.SizeY() {
		return fmt.Errorf("item %q: size %dx%d does not fit range %v", it.Label, it.XSize, it.YSize, r)
	}
	return nil
}

// Obstacle is a fixed rectangle no item may overlap.
type Obstacle struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	XMin  int64  `json:"x_min"`
	XMax  int64  `json:"x_max"`
	YMin  int64  `json:"y_min"`
	YMax  int64  `json:"y_max"`
}

func NewObstacle(label string, r geometry.Rect) Obstacle {
	return Obstacle{
		ID:    uuid.New().String()[:8],
		Label: label,
		XMin:  r.XMin,
		XMax:  r.XMax,
		YMin:  r.YMin,
		YMax:  r.YMax,
	}
}

func (o Obstacle) Rect() geometry.Rect {
	return geometry.Rect{XMin: o.XMin, XMax: o.XMax, YMin: o.YMin, YMax: o.YMax}
}

func (o Obstacle) Validate() error {
	r := o.Rect()
	if !r.IsValid() || r.Area() == 0 {
		return fmt.Errorf("obstacle %q: %v is not a valid rectangle with positive area", o.Label, r)
	}
	return nil
}

// Instance ties items and obstacles together for save/load and for handing
// off to the engine packages.
type Instance struct {
	Name      string     `json:"name"`
	Items     []Item     `json:"items"`
	Obstacles []Obstacle `json:"obstacles"`
}

func NewInstance(name string) Instance {
	return Instance{Name: name, Items: []Item{}, Obstacles: []Obstacle{}}
}

func (in Instance) Validate() error {
	for _, it := range in.Items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("instance %q: %w", in.Name, err)
		}
	}
	for _, o := range in.Obstacles {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("instance %q: %w", in.Name, err)
		}
	}
	return nil
}

// ItemsInRange returns the items in the engine's range representation,
// indexed by position.
func (in Instance) ItemsInRange() []geometry.RectInRange {
	out := make([]geometry.RectInRange, len(in.Items))
	for i, it := range in.Items {
		out[i] = it.InRange(i)
	}
	return out
}

// ObstacleRects returns the fixed rectangles, indexed by position.
func (in Instance) ObstacleRects() []geometry.Rect {
	out := make([]geometry.Rect, len(in.Obstacles))
	for i, o := range in.Obstacles {
		out[i] = o.Rect()
	}
	return out
}
