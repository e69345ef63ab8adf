package service

import (
	"fmt"
	"os"
	"path"
	"sort"

	"ornament-detect/internal/config"
	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
	"ornament-detect/internal/repository"
)

const sampleMeanings = 3

// CatalogService answers the read-only endpoints: meanings, status, debug
// and the dataset index.
type CatalogService struct {
	detector Detector
	meanings MeaningSource
	repo     repository.DatasetRepository
	config   *config.Config
	logger   *logger.Logger
}

// NewCatalogService creates a CatalogService. repo may be nil when the
// dataset index is unavailable.
func NewCatalogService(cfg *config.Config, logger *logger.Logger, detector Detector, meanings MeaningSource, repo repository.DatasetRepository) *CatalogService {
	return &CatalogService{
		detector: detector,
		meanings: meanings,
		repo:     repo,
		config:   cfg,
		logger:   logger,
	}
}

// Meaning looks up one ornament.
func (s *CatalogService) Meaning(name string, lang model.Language) (*dto.MeaningResponse, error) {
	meaning, ok := s.meanings.Lookup(name, lang)
	if !ok {
		return nil, model.NotFound(fmt.Sprintf("Ornament '%s' not found", name))
	}
	return &dto.MeaningResponse{Ornament: name, Meaning: meaning, Language: string(lang)}, nil
}

// Status reports model, meaning table and dataset readiness.
func (s *CatalogService) Status() *dto.StatusResponse {
	status := &dto.StatusResponse{
		Status:          "healthy",
		ModelLoaded:     s.detector.Loaded(),
		ModelPath:       s.detector.ModelPath(),
		ModelClasses:    len(s.detector.Classes()),
		MeaningsLoaded:  s.meanings.Loaded(),
		MeaningsCount:   s.meanings.Len(),
		ArchiveEnabled:  s.config.ArchiveEnabled,
		ArchiveMode:     s.config.ArchiveMode,
		ModelPathExists: fileExists(s.detector.ModelPath()),
	}
	if !status.ModelLoaded {
		status.Status = "degraded"
	}
	for _, lang := range model.Languages {
		status.Languages = append(status.Languages, string(lang))
	}
	if wd, err := os.Getwd(); err == nil {
		status.WorkingDirectory = wd
	}

	if s.repo != nil {
		if stats, err := s.repo.GetStats(); err != nil {
			s.logger.Warning("Could not read dataset stats: %v", err)
		} else {
			status.DatasetImages = stats.TotalImages
			status.DatasetClasses = len(stats.PerClass)
		}
	}
	return status
}

// Debug lists model classes and meaning names with a few sample rows.
func (s *CatalogService) Debug() *dto.DebugResponse {
	names := s.meanings.Names()
	resp := &dto.DebugResponse{
		ModelClasses:   s.detector.Classes(),
		MeaningsCount:  s.meanings.Len(),
		MeaningNames:   names,
		MeaningSamples: []dto.MeaningSample{},
		DatasetClasses: []string{},
	}

	if s.repo != nil {
		if classes, err := s.repo.GetClasses(); err != nil {
			s.logger.Warning("Could not list dataset classes: %v", err)
		} else {
			resp.DatasetClasses = classes
		}
	}

	for _, name := range names[:min(sampleMeanings, len(names))] {
		entry, _ := s.meanings.Entry(name)
		resp.MeaningSamples = append(resp.MeaningSamples, dto.MeaningSample{
			Name: entry.Name,
			EN:   entry.MeaningEN,
			KG:   entry.MeaningKG,
			RU:   entry.MeaningRU,
		})
	}
	return resp
}

// DatasetSummary returns per-class image counts, largest class first.
func (s *CatalogService) DatasetSummary() (*dto.DatasetSummary, error) {
	if s.repo == nil {
		return nil, model.ProcessingFailure("Dataset index is not available", nil)
	}

	stats, err := s.repo.GetStats()
	if err != nil {
		return nil, model.ProcessingFailure("Error reading dataset index", err)
	}

	summary := &dto.DatasetSummary{
		TotalImages:    stats.TotalImages,
		TotalSizeBytes: stats.TotalSizeBytes,
		Classes:        make([]dto.ClassCount, 0, len(stats.PerClass)),
	}
	for class, count := range stats.PerClass {
		summary.Classes = append(summary.Classes, dto.ClassCount{Class: class, Images: count})
	}
	sort.Slice(summary.Classes, func(i, j int) bool {
		a, b := summary.Classes[i], summary.Classes[j]
		if a.Images != b.Images {
			return a.Images > b.Images
		}
		return a.Class < b.Class
	})
	return summary, nil
}

// DatasetPage lists one page of a class, newest first. page starts at 1.
func (s *CatalogService) DatasetPage(class string, page, limit int) (*dto.DatasetPage, error) {
	if s.repo == nil {
		return nil, model.ProcessingFailure("Dataset index is not available", nil)
	}
	page = max(page, 1)
	if limit <= 0 || limit > 200 {
		limit = 24
	}

	filter := &model.DatasetFilter{ClassName: class, Limit: limit, Offset: (page - 1) * limit}
	total, err := s.repo.GetTotalCount(filter)
	if err != nil {
		return nil, model.ProcessingFailure("Error reading dataset index", err)
	}
	if total == 0 {
		return nil, model.NotFound(fmt.Sprintf("Ornament class '%s' has no archived images", class))
	}

	entries, err := s.repo.GetAll(filter)
	if err != nil {
		return nil, model.ProcessingFailure("Error reading dataset index", err)
	}

	result := &dto.DatasetPage{
		Class:   class,
		Page:    page,
		Limit:   limit,
		Total:   total,
		Entries: make([]dto.DatasetEntryInfo, 0, len(entries)),
	}
	for _, e := range entries {
		result.Entries = append(result.Entries, entryInfo(e))
	}
	return result, nil
}

// DatasetEntry returns the index record of one archived file.
func (s *CatalogService) DatasetEntry(class, filename string) (*dto.DatasetEntryInfo, error) {
	if s.repo == nil {
		return nil, model.ProcessingFailure("Dataset index is not available", nil)
	}

	entry, err := s.repo.GetByFilename(filename)
	if err != nil {
		return nil, model.ProcessingFailure("Error reading dataset index", err)
	}
	if entry == nil || entry.ClassName != class {
		return nil, model.NotFound(fmt.Sprintf("Dataset image '%s/%s' not found", class, filename))
	}

	info := entryInfo(*entry)
	return &info, nil
}

func entryInfo(e model.DatasetEntry) dto.DatasetEntryInfo {
	return dto.DatasetEntryInfo{
		Filename:   e.Filename,
		URL:        path.Join("/dataset", e.ClassName, e.Filename),
		Source:     e.Source,
		Confidence: e.Confidence,
		BBox:       e.Box.Array(),
		FileSize:   e.FileSize,
		CreatedAt:  e.CreatedAt,
	}
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
