package mutate

import (
	"math"

	"quire/internal/model"
)

// Rect is an axis-aligned box in screen units (cells in the TUI).
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) area() float64 { return math.Max(r.W, 0) * math.Max(r.H, 0) }

func (r Rect) corners() [4][2]float64 {
	return [4][2]float64{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X, r.Y + r.H},
		{r.X + r.W, r.Y + r.H},
	}
}

// Droppable is a candidate drop target.
type Droppable struct {
	ID   string
	Rect Rect
}

// CollisionFunc picks the drop target for the dragged box, or ok=false for none.
type CollisionFunc func(active Rect, targets []Droppable) (id string, ok bool)

// CollisionStrategyFor returns the hit test used while dragging a node of type t. Heading rows
// are tall, so a heading drag needs real overlap; everything else snaps to the nearest row.
func CollisionStrategyFor(t model.NodeType) CollisionFunc {
	if t == model.NodeHeading {
		return RectIntersection
	}
	return ClosestCorners
}

// RectIntersection returns the target with the highest overlap ratio (intersection over union).
// Targets that do not overlap at all never match.
func RectIntersection(active Rect, targets []Droppable) (string, bool) {
	best := ""
	bestRatio := 0.0
	for _, t := range targets {
		left := math.Max(active.X, t.Rect.X)
		right := math.Min(active.X+active.W, t.Rect.X+t.Rect.W)
		top := math.Max(active.Y, t.Rect.Y)
		bottom := math.Min(active.Y+active.H, t.Rect.Y+t.Rect.H)
		if left >= right || top >= bottom {
			continue
		}
		inter := (right - left) * (bottom - top)
		union := active.area() + t.Rect.area() - inter
		if union <= 0 {
			continue
		}
		if ratio := inter / union; ratio > bestRatio {
			best, bestRatio = t.ID, ratio
		}
	}
	return best, best != ""
}

// ClosestCorners returns the target whose corners are nearest (summed distance) to the dragged
// box's corners. It matches whenever there is at least one target.
func ClosestCorners(active Rect, targets []Droppable) (string, bool) {
	ac := active.corners()
	best := ""
	bestDist := math.Inf(1)
	for _, t := range targets {
		tc := t.Rect.corners()
		d := 0.0
		for i := range ac {
			d += math.Hypot(ac[i][0]-tc[i][0], ac[i][1]-tc[i][1])
		}
		if d < bestDist {
			best, bestDist = t.ID, d
		}
	}
	return best, best != ""
}
