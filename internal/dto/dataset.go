package dto

import (
	"encoding/json"
	"time"
)

// ClassCount is the number of archived images of one class.
type ClassCount struct {
	Class  string `json:"class"`
	Images int    `json:"images"`
}

// DatasetSummary is returned by the dataset overview endpoint.
type DatasetSummary struct {
	TotalImages    int          `json:"total_images"`
	TotalSizeBytes int64        `json:"total_size_bytes"`
	Classes        []ClassCount `json:"classes"`
}

// DatasetEntryInfo describes one archived image.
type DatasetEntryInfo struct {
	Filename   string     `json:"filename"`
	URL        string     `json:"url"`
	Source     string     `json:"source"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
	FileSize   int64      `json:"filesize"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MarshalJSON formats CreatedAt as RFC 3339 in UTC.
func (e DatasetEntryInfo) MarshalJSON() ([]byte, error) {
	type Alias DatasetEntryInfo
	return json.Marshal(&struct {
		CreatedAt string `json:"created_at"`
		Alias
	}{
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		Alias:     (Alias)(e),
	})
}

// DatasetPage is one page of a class listing.
type DatasetPage struct {
	Class   string             `json:"class"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Total   int                `json:"total"`
	Entries []DatasetEntryInfo `json:"entries"`
}
