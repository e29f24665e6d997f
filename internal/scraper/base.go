// Define an interface for all extractors
// Ensure consistency

package scraper

import (
	"context"

	"go-jobpost-scraper/internal/models"
)

// Extractor defines the interface a job page extractor must implement
type Extractor interface {
	// Extract never fails: whatever could not be read is left empty
	Extract(ctx context.Context, url string) models.JobRecord

	// Name is the site name (LinkedIn, ...)
	Name() string
}
