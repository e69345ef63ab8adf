package detect

import (
	"fmt"

	"ornament-detect/internal/model"
)

// OutputLayout describes a YOLOv8 detection head tensor. Ultralytics exports
// produce [1, 4+classes, anchors]; some converters transpose the last two axes.
type OutputLayout struct {
	Channels   int // 4 box values + one score per class
	Anchors    int
	Transposed bool // [1, anchors, channels]
}

// Classes is the number of class scores per anchor.
func (l OutputLayout) Classes() int { return l.Channels - 4 }

// LayoutFromDims interprets the output tensor dimensions. The anchor axis is
// always the larger one (8400 for a 640 input).
func LayoutFromDims(dims []int) (OutputLayout, error) {
	if len(dims) == 3 && dims[0] == 1 {
		dims = dims[1:]
	}
	if len(dims) != 2 {
		return OutputLayout{}, fmt.Errorf("unexpected output shape %v", dims)
	}

	layout := OutputLayout{Channels: dims[0], Anchors: dims[1]}
	if dims[0] > dims[1] {
		layout = OutputLayout{Channels: dims[1], Anchors: dims[0], Transposed: true}
	}
	if layout.Classes() < 1 {
		return OutputLayout{}, fmt.Errorf("output shape %v has no class scores", dims)
	}
	return layout, nil
}

// DecodeYOLOv8 turns the raw head output into detections above
// ConfidenceThreshold. Boxes are center/size in network input pixels and are
// scaled back to the source image with scaleX and scaleY. Each anchor yields
// at most one detection, for its best scoring class. Class names are left
// empty for the caller to resolve.
func DecodeYOLOv8(data []float32, layout OutputLayout, scaleX, scaleY float64) ([]model.RawDetection, error) {
	if want := layout.Channels * layout.Anchors; len(data) < want {
		return nil, fmt.Errorf("output has %d values, layout needs %d", len(data), want)
	}

	at := func(channel, anchor int) float64 {
		if layout.Transposed {
			return float64(data[anchor*layout.Channels+channel])
		}
		return float64(data[channel*layout.Anchors+anchor])
	}

	var detections []model.RawDetection
	for i := 0; i < layout.Anchors; i++ {
		bestClass, bestScore := -1, 0.0
		for c := 0; c < layout.Classes(); c++ {
			if score := at(4+c, i); score > bestScore {
				bestClass, bestScore = c, score
			}
		}
		if bestClass < 0 || !AboveThreshold(bestScore) {
			continue
		}

		cx, cy, w, h := at(0, i), at(1, i), at(2, i), at(3, i)
		detections = append(detections, model.RawDetection{
			ClassID:    bestClass,
			Confidence: bestScore,
			Box: model.BoundingBox{
				X1: (cx - w/2) * scaleX,
				Y1: (cy - h/2) * scaleY,
				X2: (cx + w/2) * scaleX,
				Y2: (cy + h/2) * scaleY,
			},
		})
	}
	return detections, nil
}
