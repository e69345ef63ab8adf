package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ornament-detect/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "dataset_db_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	db, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func entry(class, filename string, created time.Time) *model.DatasetEntry {
	return &model.DatasetEntry{
		ClassName:  class,
		Filename:   filename,
		FilePath:   filepath.Join("Dataset", class, filename),
		FileSize:   100,
		Source:     model.SourceUpload,
		Confidence: 0.8,
		Box:        model.BoundingBox{X1: 1, Y1: 2, X2: 30, Y2: 40},
		CreatedAt:  created,
	}
}

// ========================================
// Insert / Get Tests
// ========================================

func TestDatasetRepository_InsertAndGetByFilename(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	e := entry("unity", "unity_a.jpg", time.Time{})
	id, err := repo.Insert(e)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id <= 0 || e.ID != id {
		t.Errorf("Expected positive ID stored on entry, got id=%d entry.ID=%d", id, e.ID)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be filled in on insert")
	}

	got, err := repo.GetByFilename("unity_a.jpg")
	if err != nil {
		t.Fatalf("GetByFilename failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected entry, got nil")
	}
	if got.ClassName != "unity" || got.Box != e.Box || got.Confidence != 0.8 {
		t.Errorf("Unexpected entry %+v", got)
	}
}

func TestDatasetRepository_GetByFilename_Missing(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	got, err := repo.GetByFilename("nope.jpg")
	if err != nil {
		t.Fatalf("GetByFilename failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing entry, got %+v", got)
	}
}

func TestDatasetRepository_DuplicateFilenameRejected(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	if _, err := repo.Insert(entry("unity", "dup.jpg", time.Now())); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if _, err := repo.Insert(entry("unity", "dup.jpg", time.Now())); err == nil {
		t.Error("Expected error inserting duplicate filename")
	}
}

func TestDatasetRepository_InsertBatchSkipsExisting(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	if _, err := repo.Insert(entry("sun", "sun_1.jpg", time.Now())); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	batch := []model.DatasetEntry{
		*entry("sun", "sun_1.jpg", time.Now()),
		*entry("sun", "sun_2.jpg", time.Now()),
		*entry("horns", "horns_1.jpg", time.Now()),
	}
	inserted, err := repo.InsertBatch(batch)
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("Expected 2 inserted rows, got %d", inserted)
	}
}

// ========================================
// Query Tests
// ========================================

func TestDatasetRepository_FilterAndPaging(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"u1.jpg", "u2.jpg", "u3.jpg"} {
		if _, err := repo.Insert(entry("unity", name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if _, err := repo.Insert(entry("sun", "s1.jpg", base)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	filter := &model.DatasetFilter{ClassName: "unity", Limit: 2}
	entries, err := repo.GetAll(filter)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Filename != "u3.jpg" {
		t.Errorf("Expected newest entry first, got %s", entries[0].Filename)
	}

	filter.Offset = 2
	entries, err = repo.GetAll(filter)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Filename != "u1.jpg" {
		t.Errorf("Expected u1.jpg on the second page, got %+v", entries)
	}

	count, err := repo.GetTotalCount(filter)
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected total count 3, got %d", count)
	}
}

func TestDatasetRepository_ClassesAndStats(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	for _, e := range []*model.DatasetEntry{
		entry("unity", "u1.jpg", time.Now()),
		entry("unity", "u2.jpg", time.Now()),
		entry("sun", "s1.jpg", time.Now()),
	} {
		if _, err := repo.Insert(e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	classes, err := repo.GetClasses()
	if err != nil {
		t.Fatalf("GetClasses failed: %v", err)
	}
	if len(classes) != 2 || classes[0] != "sun" || classes[1] != "unity" {
		t.Errorf("Unexpected classes %v", classes)
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalImages != 3 || stats.TotalSizeBytes != 300 {
		t.Errorf("Unexpected totals %+v", stats)
	}
	if stats.PerClass["unity"] != 2 || stats.PerClass["sun"] != 1 {
		t.Errorf("Unexpected per-class counts %v", stats.PerClass)
	}
}

func TestDatasetRepository_DeleteByFilename(t *testing.T) {
	repo := NewDatasetRepository(setupTestDB(t))

	if _, err := repo.Insert(entry("unity", "gone.jpg", time.Now())); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.DeleteByFilename("gone.jpg"); err != nil {
		t.Fatalf("DeleteByFilename failed: %v", err)
	}
	if err := repo.DeleteByFilename("gone.jpg"); err != nil {
		t.Errorf("Deleting a missing entry should not fail: %v", err)
	}

	count, err := repo.GetTotalCount(nil)
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty index, got %d", count)
	}
}
