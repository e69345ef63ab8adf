package service

import (
	"context"

	"ornament-detect/internal/model"
)

// Detector runs the ornament model. It is implemented by ai.DetectorService.
type Detector interface {
	Detect(ctx context.Context, imagePath string) ([]model.RawDetection, error)
	Crop(imagePath string, box model.BoundingBox) ([]byte, error)
	Annotate(imagePath string, detections []model.Detection) ([]byte, error)
	Loaded() bool
	ModelPath() string
	Classes() []string
}

// MeaningSource is the read side of meaning.Table.
type MeaningSource interface {
	Lookup(name string, lang model.Language) (string, bool)
	Entry(name string) (model.MeaningEntry, bool)
	Names() []string
	Len() int
	Loaded() bool
}

// Archiver stores images in the dataset tree.
type Archiver interface {
	Archive(data []byte, className, ext string, meta model.ArchiveMeta) (*model.ArchiveResult, error)
	ArchiveFile(srcPath, className, ext string, meta model.ArchiveMeta) (*model.ArchiveResult, error)
	Discard(result *model.ArchiveResult) error
}

// Notifier receives an event after each successful detection.
type Notifier interface {
	Publish(event any)
}
