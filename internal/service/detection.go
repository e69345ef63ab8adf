package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"ornament-detect/internal/config"
	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
	"ornament-detect/internal/service/detect"

	"github.com/google/uuid"
)

// DetectionService runs one upload through detection, meaning lookup and
// archiving.
type DetectionService struct {
	detector Detector
	meanings MeaningSource
	archiver Archiver
	notifier Notifier
	config   *config.Config
	logger   *logger.Logger
}

// NewDetectionService wires the request pipeline. archiver and notifier may be nil.
func NewDetectionService(cfg *config.Config, logger *logger.Logger, detector Detector, meanings MeaningSource, archiver Archiver, notifier Notifier) *DetectionService {
	return &DetectionService{
		detector: detector,
		meanings: meanings,
		archiver: archiver,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
	}
}

// PlaceholderMeaning is reported for a detected ornament without a table entry.
func PlaceholderMeaning(className string) string {
	return fmt.Sprintf("No meaning available for '%s'", className)
}

// Detect validates the upload, runs the model and builds the response.
func (s *DetectionService) Detect(ctx context.Context, upload model.Upload, lang model.Language) (*dto.DetectionResponse, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(upload.ContentType)), "image/") {
		return nil, model.InvalidInput("File must be an image")
	}

	ext := uploadExt(upload.Filename)
	tmpPath, err := s.spool(upload.Body, ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	raw, err := s.detector.Detect(ctx, tmpPath)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			return nil, err
		}
		return nil, model.ProcessingFailure("Error processing image", err)
	}
	raw = detect.FilterByConfidence(raw)

	set := detect.Reduce(raw)
	s.logger.Info("Detected %d ornaments (%d unique) in %s", set.Total(), set.UniqueCount(), upload.Filename)

	resp := &dto.DetectionResponse{
		Detections:       make([]dto.DetectionItem, 0, set.UniqueCount()),
		TotalDetections:  set.Total(),
		UniqueDetections: set.UniqueCount(),
	}

	if s.archiver != nil && s.config.ArchiveEnabled {
		folders, err := s.archive(tmpPath, ext, set.Unique)
		if err != nil {
			return nil, model.ProcessingFailure("Error saving to dataset", err)
		}
		resp.NewOrnamentFolders = folders
	}

	for _, det := range set.Unique {
		meaning, ok := s.meanings.Lookup(det.ClassName, lang)
		if !ok {
			meaning = PlaceholderMeaning(det.ClassName)
		}

		item := dto.DetectionItem{
			Class:      det.ClassName,
			Confidence: det.Confidence,
			BBox:       det.Box.Array(),
			Meaning:    meaning,
		}
		if det.CropRef != "" {
			item.CropURL = "/dataset/" + det.CropRef
		}
		resp.Detections = append(resp.Detections, item)
	}

	if s.config.SaveAnnotated && set.UniqueCount() > 0 {
		resp.AnnotatedImageURL = s.saveAnnotated(tmpPath, set.Unique)
	}

	s.notify(resp)
	return resp, nil
}

// spool copies the upload into a temporary file and returns its path. The
// caller removes the file once the request is done with it.
func (s *DetectionService) spool(body io.Reader, ext string) (string, error) {
	if body == nil {
		return "", model.InvalidInput("Uploaded file is empty")
	}

	tmp, err := os.CreateTemp(s.config.TempDirectory, "ornament-upload-*."+ext)
	if err != nil {
		return "", model.ProcessingFailure("Error storing upload", err)
	}

	reader := body
	if s.config.MaxUploadSize > 0 {
		reader = io.LimitReader(body, s.config.MaxUploadSize+1)
	}

	n, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	var failure error
	switch {
	case err != nil:
		failure = model.ProcessingFailure("Error storing upload", err)
	case n == 0:
		failure = model.InvalidInput("Uploaded file is empty")
	case s.config.MaxUploadSize > 0 && n > s.config.MaxUploadSize:
		failure = model.InvalidInput(fmt.Sprintf("Uploaded file exceeds %d MB", s.config.MaxUploadSize>>20))
	}
	if failure != nil {
		os.Remove(tmp.Name())
		return "", failure
	}
	return tmp.Name(), nil
}

// archive stores one image per unique detection and returns the class
// folders created along the way. In crop mode CropRef is set on each
// detection whose crop was stored. When one class fails, the images already
// stored for this request are discarded again.
func (s *DetectionService) archive(imagePath, ext string, unique []model.Detection) ([]string, error) {
	var (
		folders []string
		stored  []*model.ArchiveResult
	)
	for i := range unique {
		det := &unique[i]
		result, err := s.archiveOne(imagePath, ext, det)
		if err != nil {
			s.discard(stored)
			return nil, err
		}
		stored = append(stored, result)
		folders = append(folders, result.CreatedFolders...)
		if result.Entry.Source == model.SourceCrop {
			det.CropRef = result.Entry.RelativePath()
		}
	}
	return folders, nil
}

func (s *DetectionService) archiveOne(imagePath, ext string, det *model.Detection) (*model.ArchiveResult, error) {
	meta := model.ArchiveMeta{Source: model.SourceUpload, Confidence: det.Confidence, Box: det.Box}

	if s.config.ArchiveMode == config.ArchiveModeCrop {
		crop, err := s.detector.Crop(imagePath, det.Box)
		if err == nil {
			meta.Source = model.SourceCrop
			return s.archiver.Archive(crop, det.ClassName, "jpg", meta)
		}
		s.logger.Warning("Could not crop %s, archiving the full image: %v", det.ClassName, err)
	}

	return s.archiver.ArchiveFile(imagePath, det.ClassName, ext, meta)
}

func (s *DetectionService) discard(stored []*model.ArchiveResult) {
	// Newest first, so a folder is only removed once its files are gone.
	for i := len(stored) - 1; i >= 0; i-- {
		if err := s.archiver.Discard(stored[i]); err != nil {
			s.logger.Warning("Could not discard %s: %v", stored[i].Entry.Filename, err)
		}
	}
}

// saveAnnotated writes the annotated image to the uploads directory and
// returns its URL. Failures only cost the URL.
func (s *DetectionService) saveAnnotated(imagePath string, unique []model.Detection) string {
	annotated, err := s.detector.Annotate(imagePath, unique)
	if err != nil {
		s.logger.Warning("Could not annotate image: %v", err)
		return ""
	}

	if err := os.MkdirAll(s.config.UploadsDirectory, 0755); err != nil {
		s.logger.Warning("Could not create uploads directory: %v", err)
		return ""
	}

	name := fmt.Sprintf("annotated_%s.jpg", uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.config.UploadsDirectory, name), annotated, 0644); err != nil {
		s.logger.Warning("Could not save annotated image: %v", err)
		return ""
	}
	return path.Join("/uploads", name)
}

func (s *DetectionService) notify(resp *dto.DetectionResponse) {
	if s.notifier == nil {
		return
	}

	classes := make([]string, 0, len(resp.Detections))
	for _, d := range resp.Detections {
		classes = append(classes, d.Class)
	}
	s.notifier.Publish(dto.DetectionEvent{
		Time:               time.Now(),
		Classes:            classes,
		TotalDetections:    resp.TotalDetections,
		UniqueDetections:   resp.UniqueDetections,
		NewOrnamentFolders: resp.NewOrnamentFolders,
	})
}

// uploadExt keeps the client's image extension when it is a plain one.
func uploadExt(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "jpg", "jpeg", "png", "bmp", "webp", "tif", "tiff":
		return ext
	default:
		return "jpg"
	}
}
