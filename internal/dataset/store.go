package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go-jobpost-scraper/internal/models"
)

const utf8BOM = "\ufeff"

// Load reads a header-first CSV dataset from disk
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("📋 Loaded %d rows from %s", len(ds.Rows), path)
	return ds, nil
}

// Read parses a dataset. The header is taken from the input only when at
// least one data row follows it; otherwise the canonical header is used.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if len(records) < 2 {
		return New(), nil
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	ds := &Dataset{Header: header, Rows: make([]Row, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrMalformedDataset, i+2, len(rec), len(header))
		}
		row := make(Row, len(header))
		for j, name := range header {
			if j < len(rec) {
				row[name] = rec[j]
			} else {
				row[name] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	hasURL := false
	for _, name := range header {
		if seen[name] {
			return fmt.Errorf("%w: duplicate column %q", ErrMalformedDataset, name)
		}
		seen[name] = true
		if name == models.FieldURL {
			hasURL = true
		}
	}
	if !hasURL {
		return fmt.Errorf("%w: header has no %q column", ErrMalformedDataset, models.FieldURL)
	}
	return nil
}

// Write encodes the dataset as CSV, header first
func Write(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Header); err != nil {
		return err
	}
	record := make([]string, len(ds.Header))
	for _, row := range ds.Rows {
		for j, name := range ds.Header {
			record[j] = row[name]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save replaces the file at path with ds. The data goes to a temporary file
// in the same directory first and is renamed over path, so a crash never
// leaves a half-written dataset behind.
func Save(path string, ds *Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := Write(tmp, ds); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set dataset permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace dataset: %w", err)
	}

	log.Printf("💾 Saved %d rows to %s", len(ds.Rows), path)
	return nil
}
