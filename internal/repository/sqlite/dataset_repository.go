package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ornament-detect/internal/model"
)

const entryColumns = `id, class_name, filename, file_path, file_size, source, confidence, x1, y1, x2, y2, created_at`

// DatasetRepository implements repository.DatasetRepository for SQLite.
type DatasetRepository struct {
	db *DB
}

// NewDatasetRepository creates a new SQLite dataset repository.
func NewDatasetRepository(db *DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.DatasetEntry, error) {
	var e model.DatasetEntry
	err := row.Scan(&e.ID, &e.ClassName, &e.Filename, &e.FilePath, &e.FileSize, &e.Source,
		&e.Confidence, &e.Box.X1, &e.Box.Y1, &e.Box.X2, &e.Box.Y2, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Insert adds a new entry. A zero CreatedAt is set to the current time.
func (r *DatasetRepository) Insert(entry *model.DatasetEntry) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	result, err := r.db.Conn().Exec(`
		INSERT INTO dataset_entries (class_name, filename, file_path, file_size, source, confidence, x1, y1, x2, y2, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ClassName, entry.Filename, entry.FilePath, entry.FileSize, entry.Source, entry.Confidence,
		entry.Box.X1, entry.Box.Y1, entry.Box.X2, entry.Box.Y2, entry.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert dataset entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	entry.ID = id
	return id, nil
}

// InsertBatch adds entries in one transaction, skipping filenames that are
// already indexed. It returns the number of rows actually inserted.
func (r *DatasetRepository) InsertBatch(entries []model.DatasetEntry) (int, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO dataset_entries (class_name, filename, file_path, file_size, source, confidence, x1, y1, x2, y2, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		result, err := stmt.Exec(e.ClassName, e.Filename, e.FilePath, e.FileSize, e.Source, e.Confidence,
			e.Box.X1, e.Box.Y1, e.Box.X2, e.Box.Y2, createdAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", e.Filename, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

// GetByFilename retrieves an entry by its filename. It returns nil, nil when
// there is no such entry.
func (r *DatasetRepository) GetByFilename(filename string) (*model.DatasetEntry, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	entry, err := scanEntry(r.db.Conn().QueryRow(
		`SELECT `+entryColumns+` FROM dataset_entries WHERE filename = ?`, filename))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset entry: %w", err)
	}
	return entry, nil
}

func filterClause(filter *model.DatasetFilter) (string, []any) {
	clause := " WHERE 1=1"
	args := []any{}
	if filter == nil {
		return clause, args
	}

	if filter.ClassName != "" {
		clause += " AND class_name = ?"
		args = append(args, filter.ClassName)
	}
	if filter.Source != "" {
		clause += " AND source = ?"
		args = append(args, filter.Source)
	}
	return clause, args
}

// GetAll retrieves entries matching filter, newest first.
func (r *DatasetRepository) GetAll(filter *model.DatasetFilter) ([]model.DatasetEntry, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := filterClause(filter)
	query := `SELECT ` + entryColumns + ` FROM dataset_entries` + where + ` ORDER BY created_at DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset entries: %w", err)
	}
	defer rows.Close()

	entries := []model.DatasetEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// GetTotalCount returns the number of entries matching filter, ignoring paging.
func (r *DatasetRepository) GetTotalCount(filter *model.DatasetFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := filterClause(filter)
	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM dataset_entries`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count dataset entries: %w", err)
	}
	return count, nil
}

func (r *DatasetRepository) classCounts() (map[string]int, error) {
	rows, err := r.db.Conn().Query(`SELECT class_name, COUNT(*) FROM dataset_entries GROUP BY class_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query class counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var count int
		if err := rows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("failed to scan class count: %w", err)
		}
		counts[class] = count
	}
	return counts, rows.Err()
}

// GetClasses returns the distinct class names in alphabetical order.
func (r *DatasetRepository) GetClasses() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT class_name FROM dataset_entries ORDER BY class_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes := []string{}
	for rows.Next() {
		var class string
		if err := rows.Scan(&class); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// GetStats returns totals over the whole index.
func (r *DatasetRepository) GetStats() (*model.DatasetStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.DatasetStats{}
	err := r.db.Conn().QueryRow(`SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM dataset_entries`).
		Scan(&stats.TotalImages, &stats.TotalSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset totals: %w", err)
	}

	stats.PerClass, err = r.classCounts()
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteByFilename removes an entry. Missing entries are not an error.
func (r *DatasetRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM dataset_entries WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("failed to delete dataset entry: %w", err)
	}
	return nil
}
