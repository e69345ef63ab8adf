package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode"

	"ornament-detect/internal/config"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
	"ornament-detect/internal/repository"

	"github.com/google/uuid"
)

// ArchiverService stores detected images in the dataset tree, one directory
// per class. A class directory only ever exists with at least one image in it.
type ArchiverService struct {
	root      string
	logger    *logger.Logger
	repo      repository.DatasetRepository
	newName   func() string
	writeFile func(path string, src io.Reader) (int64, error)
}

// NewArchiverService creates the dataset root if needed. repo may be nil, in
// which case nothing is indexed.
func NewArchiverService(cfg *config.Config, logger *logger.Logger, repo repository.DatasetRepository) (*ArchiverService, error) {
	if err := os.MkdirAll(cfg.DatasetDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}

	return &ArchiverService{
		root:      cfg.DatasetDirectory,
		logger:    logger,
		repo:      repo,
		newName:   uuid.NewString,
		writeFile: writeExclusive,
	}, nil
}

// Root is the dataset directory.
func (s *ArchiverService) Root() string {
	return s.root
}

// Archive writes data as <class>_<uuid>.<ext> into the class directory. The
// result lists the class directory when this call created it.
func (s *ArchiverService) Archive(data []byte, className, ext string, meta model.ArchiveMeta) (*model.ArchiveResult, error) {
	return s.store(bytes.NewReader(data), className, ext, meta)
}

// ArchiveFile copies the file at srcPath into the class directory, like Archive.
func (s *ArchiverService) ArchiveFile(srcPath, className, ext string, meta model.ArchiveMeta) (*model.ArchiveResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	return s.store(src, className, ext, meta)
}

// store needs a second attempt when the class directory disappears between
// Mkdir and the write: a concurrent call that created it may have rolled it
// back after its own write failed.
func (s *ArchiverService) store(src io.ReadSeeker, className, ext string, meta model.ArchiveMeta) (*model.ArchiveResult, error) {
	class := SanitizeClassName(className)
	dir := filepath.Join(s.root, class)
	filename := fmt.Sprintf("%s_%s.%s", class, s.newName(), normalizeExt(ext))
	path := filepath.Join(dir, filename)

	var (
		created bool
		size    int64
		err     error
	)
	for attempt := 0; attempt < 2; attempt++ {
		created, err = s.ensureClassDir(dir, class)
		if err != nil {
			return nil, err
		}
		if _, err = src.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind %s: %w", filename, err)
		}

		size, err = s.writeFile(path, src)
		if err == nil {
			break
		}
		if created {
			s.removeEmptyDir(dir)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", filename, err)
	}

	result := &model.ArchiveResult{
		Entry: model.DatasetEntry{
			ClassName:  class,
			Filename:   filename,
			FilePath:   path,
			FileSize:   size,
			Source:     meta.Source,
			Confidence: meta.Confidence,
			Box:        meta.Box,
			CreatedAt:  time.Now(),
		},
	}
	if result.Entry.Source == "" {
		result.Entry.Source = model.SourceUpload
	}
	if created {
		result.CreatedFolders = []string{class}
		s.logger.Info("Created dataset folder for new ornament: %s", class)
	}

	if s.repo != nil {
		if _, err := s.repo.Insert(&result.Entry); err != nil {
			s.logger.Error("Error indexing dataset image %s: %v", filename, err)
		}
	}

	return result, nil
}

// Discard undoes an Archive call: the file and its index row go away, and so
// does the class directory when that call created it and it is empty again.
func (s *ArchiverService) Discard(result *model.ArchiveResult) error {
	if result == nil {
		return nil
	}

	if err := os.Remove(result.Entry.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", result.Entry.Filename, err)
	}
	if s.repo != nil {
		if err := s.repo.DeleteByFilename(result.Entry.Filename); err != nil {
			s.logger.Warning("Could not remove index entry %s: %v", result.Entry.Filename, err)
		}
	}
	for _, class := range result.CreatedFolders {
		s.removeEmptyDir(filepath.Join(s.root, class))
	}
	return nil
}

// ensureClassDir reports whether this call created dir.
func (s *ArchiverService) ensureClassDir(dir, class string) (bool, error) {
	err := os.Mkdir(dir, 0755)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to create class directory %s: %w", class, err)
}

// removeEmptyDir leaves directories that gained files from other calls alone.
func (s *ArchiverService) removeEmptyDir(dir string) {
	if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) && !isNotEmpty(err) {
		s.logger.Warning("Could not remove empty class directory %s: %v", dir, err)
	}
}

func isNotEmpty(err error) bool {
	return errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST)
}

// writeExclusive never replaces an existing file.
func writeExclusive(path string, src io.Reader) (int64, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(file, src)
	if err != nil {
		file.Close()
		os.Remove(path)
		return 0, err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

// SanitizeClassName turns a model label into a single safe path element.
// Letters and digits of any script are kept, so are '-' and '_'; every other
// rune becomes '_'.
func SanitizeClassName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))

	if strings.Trim(cleaned, "_") == "" {
		return "unknown"
	}
	return cleaned
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	switch ext {
	case "jpeg":
		return "jpg"
	case "jpg", "png", "bmp", "webp", "tif", "tiff":
		return ext
	default:
		return "jpg"
	}
}
