package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ornament-detect/internal/model"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

// ScanDataset lists the images of a dataset tree laid out as <root>/<class>/<file>.
// Files directly under root and non-image files are returned in skipped.
func ScanDataset(root string) (entries []model.DatasetEntry, skipped []string, err error) {
	classDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	for _, classDir := range classDirs {
		if !classDir.IsDir() {
			skipped = append(skipped, classDir.Name())
			continue
		}

		class := classDir.Name()
		files, err := os.ReadDir(filepath.Join(root, class))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read class directory %s: %w", class, err)
		}

		for _, file := range files {
			rel := filepath.Join(class, file.Name())
			if file.IsDir() || !imageExts[strings.ToLower(filepath.Ext(file.Name()))] {
				skipped = append(skipped, rel)
				continue
			}

			info, err := file.Info()
			if err != nil {
				skipped = append(skipped, rel)
				continue
			}

			entries = append(entries, model.DatasetEntry{
				ClassName: class,
				Filename:  file.Name(),
				FilePath:  filepath.Join(root, rel),
				FileSize:  info.Size(),
				Source:    model.SourceUpload,
				CreatedAt: info.ModTime(),
			})
		}
	}
	return entries, skipped, nil
}
