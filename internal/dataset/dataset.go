package dataset

import (
	"errors"
	"strings"

	"go-jobpost-scraper/internal/models"
)

var (
	// ErrDatasetUnavailable means the dataset file could not be opened or read.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrMalformedDataset means the file is not a usable header-first CSV.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrDatasetBusy means another run holds the dataset lock.
	ErrDatasetBusy = errors.New("dataset is in use by another run")
)

// Row is one data row keyed by column name
type Row map[string]string

// Dataset is an ordered list of rows sharing one header
type Dataset struct {
	Header []string
	Rows   []Row
}

// New returns an empty dataset with the canonical job record header
func New() *Dataset {
	return &Dataset{Header: models.FieldNames()}
}

// NewSingleRecord builds the one-row dataset written in single-URL mode
func NewSingleRecord(rec models.JobRecord) *Dataset {
	ds := New()
	ds.Append(rec)
	return ds
}

// Append adds a record as a new row
func (d *Dataset) Append(rec models.JobRecord) {
	row := make(Row, len(d.Header))
	for _, name := range d.Header {
		row[name] = ""
	}
	rec.ApplyTo(row)
	d.Rows = append(d.Rows, row)
}

// HasColumn reports whether the header contains name
func (d *Dataset) HasColumn(name string) bool {
	for _, h := range d.Header {
		if h == name {
			return true
		}
	}
	return false
}

// EnsureColumns appends any of names missing from the header.
// Existing column order is left untouched.
func (d *Dataset) EnsureColumns(names ...string) {
	for _, name := range names {
		if d.HasColumn(name) {
			continue
		}
		d.Header = append(d.Header, name)
		for _, row := range d.Rows {
			if _, ok := row[name]; !ok {
				row[name] = ""
			}
		}
	}
}

// Records returns every row as a JobRecord
func (d *Dataset) Records() []models.JobRecord {
	out := make([]models.JobRecord, 0, len(d.Rows))
	for _, row := range d.Rows {
		out = append(out, models.RecordFromRow(row))
	}
	return out
}

// CSVPath appends the .csv extension when the name lacks it
func CSVPath(name string) string {
	if strings.HasSuffix(name, ".csv") {
		return name
	}
	return name + ".csv"
}
