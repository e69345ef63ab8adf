package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ornament-detect/internal/config"
	"ornament-detect/internal/model"
	"ornament-detect/internal/repository/sqlite"
	"ornament-detect/internal/service/storage"
)

func main() {
	cfg := config.Load()

	datasetDir := flag.String("dataset", cfg.DatasetDirectory, "Dataset directory (one subdirectory per class)")
	dbPath := flag.String("db", cfg.DatabasePath, "Database path")
	prune := flag.Bool("prune", false, "Remove index entries whose files no longer exist")
	flag.Parse()

	fmt.Printf("Indexing dataset %s into %s\n", *datasetDir, *dbPath)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	repo := sqlite.NewDatasetRepository(db)

	entries, skipped, err := storage.ScanDataset(*datasetDir)
	if err != nil {
		log.Fatalf("Failed to scan dataset: %v", err)
	}
	for _, name := range skipped {
		log.Printf("⚠️  Skipping %s", name)
	}

	if len(entries) == 0 {
		fmt.Println("No images found to index")
	} else {
		fmt.Printf("Indexing %d images...\n", len(entries))
		inserted, err := repo.InsertBatch(entries)
		if err != nil {
			log.Fatalf("Failed to index images: %v", err)
		}
		fmt.Printf("✅ Indexed %d new images (%d already present)\n", inserted, len(entries)-inserted)
	}

	if *prune {
		removed, err := pruneMissing(repo)
		if err != nil {
			log.Fatalf("Failed to prune index: %v", err)
		}
		fmt.Printf("🧹 Removed %d entries without files\n", removed)
	}

	stats, err := repo.GetStats()
	if err == nil {
		fmt.Printf("\n📊 Dataset Statistics:\n")
		fmt.Printf("   Total images: %d\n", stats.TotalImages)
		fmt.Printf("   Total size: %d bytes\n", stats.TotalSizeBytes)
		fmt.Printf("   Per class:\n")
		for class, count := range stats.PerClass {
			fmt.Printf("      - %s: %d images\n", class, count)
		}
	}
}

func pruneMissing(repo *sqlite.DatasetRepository) (int, error) {
	entries, err := repo.GetAll(&model.DatasetFilter{})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if _, err := os.Stat(e.FilePath); os.IsNotExist(err) {
			if err := repo.DeleteByFilename(e.Filename); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
