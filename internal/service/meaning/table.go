// Package meaning holds the ornament meaning table loaded from CSV.
package meaning

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ornament-detect/internal/model"
)

// Table is immutable after Load and safe for concurrent reads.
type Table struct {
	entries []model.MeaningEntry
	index   map[string]int
	source  string
	loaded  bool
}

var columnAliases = map[string]string{
	"name":       "name",
	"ornament":   "name",
	"class":      "name",
	"kg":         "kg",
	"meaning_kg": "kg",
	"meaning-kg": "kg",
	"ky":         "kg",
	"ru":         "ru",
	"meaning_ru": "ru",
	"meaning-ru": "ru",
	"en":         "en",
	"meaning_en": "en",
	"meaning-en": "en",
	"meaning":    "en",
}

// Empty returns a table without entries. Every lookup misses.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// Load reads the CSV file at path.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open meanings file: %w", err)
	}
	defer file.Close()

	table, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	table.source = path
	return table, nil
}

// Parse builds a table from CSV content. The header row must name a "name"
// column; language columns that are absent read as empty meanings.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, err
	}

	columns := map[string]int{}
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("header %v has no name column", header)
	}

	cell := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	table := &Table{index: map[string]int{}, loaded: true}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		entry := model.MeaningEntry{
			Name:      cell(record, "name"),
			MeaningEN: cell(record, "en"),
			MeaningKG: cell(record, "kg"),
			MeaningRU: cell(record, "ru"),
		}
		if entry.Name == "" {
			continue
		}

		table.entries = append(table.entries, entry)
		key := normalize(entry.Name)
		if _, exists := table.index[key]; !exists {
			table.index[key] = len(table.entries) - 1
		}
	}
	return table, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the meaning of name in lang. The match ignores case and
// surrounding whitespace. ok is false only when no entry has that name; an
// entry with a blank cell yields "", true.
func (t *Table) Lookup(name string, lang model.Language) (string, bool) {
	entry, ok := t.Entry(name)
	if !ok {
		return "", false
	}
	return entry.Meaning(lang), true
}

// Entry returns the whole row for name.
func (t *Table) Entry(name string) (model.MeaningEntry, bool) {
	i, ok := t.index[normalize(name)]
	if !ok {
		return model.MeaningEntry{}, false
	}
	return t.entries[i], true
}

// Entries returns the rows in file order, duplicates included.
func (t *Table) Entries() []model.MeaningEntry {
	out := make([]model.MeaningEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the distinct ornament names in file order.
func (t *Table) Names() []string {
	positions := make([]int, 0, len(t.index))
	for _, i := range t.index {
		positions = append(positions, i)
	}
	sort.Ints(positions)

	names := make([]string, 0, len(positions))
	for _, i := range positions {
		names = append(names, t.entries[i].Name)
	}
	return names
}

// Len is the number of distinct names.
func (t *Table) Len() int { return len(t.index) }

// Loaded reports whether the table came from a readable file.
func (t *Table) Loaded() bool { return t.loaded }

// Source is the path the table was loaded from.
func (t *Table) Source() string { return t.source }
