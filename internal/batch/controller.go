package batch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go-jobpost-scraper/internal/dataset"
	"go-jobpost-scraper/internal/models"
	"go-jobpost-scraper/internal/scraper"
)

// Summary counts what one batch run did
type Summary struct {
	Total           int
	Selected        int
	SkippedComplete int
	SkippedNoURL    int
	Completed       int
	Partial         int
	Failed          int
	Cancelled       bool
	Duration        time.Duration
}

func (s Summary) String() string {
	msg := fmt.Sprintf("%d rows, %d extracted (%d complete, %d partial, %d failed), %d already complete, %d without url, took %s",
		s.Total, s.Selected, s.Completed, s.Partial, s.Failed, s.SkippedComplete, s.SkippedNoURL, s.Duration.Round(time.Millisecond))
	if s.Cancelled {
		msg += " (interrupted)"
	}
	return msg
}

// Controller completes a CSV dataset in place, one row at a time.
type Controller struct {
	extractor scraper.Extractor
}

func NewController(extractor scraper.Extractor) *Controller {
	return &Controller{extractor: extractor}
}

// NeedsExtraction is true when the row has a url and at least one of the
// job record columns in header is empty. Columns that are not job record
// fields are ignored. A header with no job record column besides url is a
// seed list, so every row with a url qualifies.
func NeedsExtraction(header []string, row dataset.Row) bool {
	if strings.TrimSpace(row[models.FieldURL]) == "" {
		return false
	}
	fields := trackedFields(header)
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if row[f] == "" {
			return true
		}
	}
	return false
}

// trackedFields lists the non-url job record columns present in header
func trackedFields(header []string) []string {
	var fields []string
	for _, col := range header {
		if col != models.FieldURL && models.IsField(col) {
			fields = append(fields, col)
		}
	}
	return fields
}

// Run loads the dataset at path, extracts every row that needs it and
// writes the dataset back. Only dataset faults abort a run; extraction
// faults are absorbed per row. When ctx is cancelled between rows the rows
// already extracted are still saved and the context error is returned.
func (c *Controller) Run(ctx context.Context, path string) (Summary, error) {
	start := time.Now()
	var sum Summary

	lock, err := dataset.Acquire(path)
	if err != nil {
		return sum, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Printf("⚠️ Failed to release lock on %s: %v", path, err)
		}
	}()

	ds, err := dataset.Load(path)
	if err != nil {
		return sum, fmt.Errorf("could not load dataset: %w", err)
	}
	sum.Total = len(ds.Rows)
	log.Printf("▶️ Starting %s batch on %s (%d rows)", c.extractor.Name(), path, sum.Total)

	for i, row := range ds.Rows {
		if ctx.Err() != nil {
			sum.Cancelled = true
			log.Printf("⏹️ Stopping before row %d: %v", i+1, ctx.Err())
			break
		}

		url := row[models.FieldURL]
		if strings.TrimSpace(url) == "" {
			sum.SkippedNoURL++
			continue
		}
		if !NeedsExtraction(ds.Header, row) {
			sum.SkippedComplete++
			continue
		}

		sum.Selected++
		log.Printf("🔎 [%d/%d] %s", i+1, sum.Total, url)
		rec, ok := c.extract(ctx, strings.TrimSpace(url))
		if !ok {
			sum.Failed++
			continue
		}

		// the url cell is the user's key and is written back untouched
		rec.URL = url
		rec.ApplyTo(row)
		if rec.IsComplete() {
			sum.Completed++
		} else {
			sum.Partial++
		}
	}

	// extracted rows carry every field, so the header has to hold them all
	if sum.Selected > 0 {
		ds.EnsureColumns(models.FieldNames()...)
		if err := dataset.Save(path, ds); err != nil {
			return sum, fmt.Errorf("could not save dataset: %w", err)
		}
	} else {
		log.Printf("✅ Nothing to update in %s", path)
	}

	sum.Duration = time.Since(start)
	log.Printf("📊 %s", sum)
	if sum.Cancelled {
		return sum, fmt.Errorf("batch interrupted: %w", ctx.Err())
	}
	return sum, nil
}

// extract runs one extraction. A panic leaves the row as it was.
func (c *Controller) extract(ctx context.Context, url string) (rec models.JobRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Extraction of %s crashed: %v", url, r)
			ok = false
		}
	}()
	return c.extractor.Extract(ctx, url), true
}
