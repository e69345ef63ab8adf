package model

import (
	"io"
	"time"
)

// Archive sources.
const (
	SourceUpload = "source"
	SourceCrop   = "crop"
)

// DatasetEntry is one stored image under a class directory of the dataset.
type DatasetEntry struct {
	ID         int64       `json:"id"`
	ClassName  string      `json:"class_name"`
	Filename   string      `json:"filename"`
	FilePath   string      `json:"filepath"`
	FileSize   int64       `json:"filesize"`
	Source     string      `json:"source"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
	CreatedAt  time.Time   `json:"created_at"`
}

// RelativePath is the path of the entry relative to the dataset root.
func (e DatasetEntry) RelativePath() string {
	return e.ClassName + "/" + e.Filename
}

// DatasetFilter narrows dataset index queries.
type DatasetFilter struct {
	ClassName string
	Source    string
	Limit     int
	Offset    int
}

// DatasetStats summarizes the dataset index.
type DatasetStats struct {
	TotalImages    int            `json:"total_images"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	PerClass       map[string]int `json:"per_class"`
}

// ArchiveMeta describes the detection an archived image belongs to.
type ArchiveMeta struct {
	Source     string
	Confidence float64
	Box        BoundingBox
}

// ArchiveResult is what one Archive call produced.
type ArchiveResult struct {
	CreatedFolders []string
	Entry          DatasetEntry
}

// Upload is an incoming image as received by the transport.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
