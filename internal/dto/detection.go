package dto

import "time"

// DetectionItem is one ornament in a detection response.
type DetectionItem struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"` // x1, y1, x2, y2
	Meaning    string     `json:"meaning"`
	CropURL    string     `json:"crop_url,omitempty"`
}

// DetectionResponse is returned by the detect endpoint.
type DetectionResponse struct {
	Detections         []DetectionItem `json:"detections"`
	TotalDetections    int             `json:"total_detections"`
	UniqueDetections   int             `json:"unique_detections"`
	NewOrnamentFolders []string        `json:"new_ornament_folders,omitempty"`
	AnnotatedImageURL  string          `json:"annotated_image_url,omitempty"`
}

// DetectionEvent is pushed to websocket clients after a successful detection.
type DetectionEvent struct {
	Time               time.Time `json:"time"`
	Classes            []string  `json:"classes"`
	TotalDetections    int       `json:"total_detections"`
	UniqueDetections   int       `json:"unique_detections"`
	NewOrnamentFolders []string  `json:"new_ornament_folders,omitempty"`
}
