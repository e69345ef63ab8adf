package model

// BoundingBox is an axis-aligned box in pixel coordinates of the source image.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Array returns the box as [x1, y1, x2, y2].
func (b BoundingBox) Array() [4]float64 { return [4]float64{b.X1, b.Y1, b.X2, b.Y2} }

// RawDetection is one detector output that cleared the confidence threshold.
type RawDetection struct {
	ClassID    int
	ClassName  string
	Confidence float64
	Box        BoundingBox
}

// Detection is the best RawDetection of its class within one image.
type Detection struct {
	ClassName  string
	Confidence float64
	Box        BoundingBox
	CropRef    string // dataset-relative path of the archived crop, if any
}

// DetectionSet is the per-request working collection.
type DetectionSet struct {
	Raw    []RawDetection
	Unique []Detection
}

// Total is the number of raw detections.
func (s DetectionSet) Total() int { return len(s.Raw) }

// UniqueCount is the number of distinct classes.
func (s DetectionSet) UniqueCount() int { return len(s.Unique) }
