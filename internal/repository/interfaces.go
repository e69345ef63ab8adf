package repository

import "ornament-detect/internal/model"

// DatasetRepository defines the interface for the dataset index.
type DatasetRepository interface {
	// Create operations
	Insert(entry *model.DatasetEntry) (int64, error)
	InsertBatch(entries []model.DatasetEntry) (int, error)

	// Read operations
	GetByFilename(filename string) (*model.DatasetEntry, error)
	GetAll(filter *model.DatasetFilter) ([]model.DatasetEntry, error)
	GetTotalCount(filter *model.DatasetFilter) (int, error)
	GetClasses() ([]string, error)
	GetStats() (*model.DatasetStats, error)

	// Delete operations
	DeleteByFilename(filename string) error
}
