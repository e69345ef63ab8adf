package detect

import (
	"image"
	"math"

	"ornament-detect/internal/model"
)

// ClampRect converts box to integer pixels inside a width x height image.
// ok is false when nothing of the box remains.
func ClampRect(box model.BoundingBox, width, height int) (image.Rectangle, bool) {
	x1 := clamp(int(math.Floor(box.X1)), 0, width)
	y1 := clamp(int(math.Floor(box.Y1)), 0, height)
	x2 := clamp(int(math.Ceil(box.X2)), 0, width)
	y2 := clamp(int(math.Ceil(box.Y2)), 0, height)

	rect := image.Rect(x1, y1, x2, y2)
	return rect, !rect.Empty()
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// GroupByClass returns detection indexes per class id, in first-seen order of
// the classes. Suppression runs per group so that overlapping boxes of
// different ornaments survive.
func GroupByClass(detections []model.RawDetection) [][]int {
	var groups [][]int
	position := map[int]int{}
	for i, d := range detections {
		g, ok := position[d.ClassID]
		if !ok {
			g = len(groups)
			position[d.ClassID] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
