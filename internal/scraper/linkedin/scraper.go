package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go-jobpost-scraper/internal/browser"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/models"
	"go-jobpost-scraper/utils"

	"golang.org/x/text/unicode/norm"
)

const (
	readinessSelector   = "body"
	showMoreSelector    = ".show-more-less-html__button"
	descriptionSelector = ".show-more-less-html__markup"
)

type fieldRule struct {
	field     string
	selectors []string
}

// Short fields in extraction order. Selectors are tried in priority order.
var fieldRules = []fieldRule{
	{field: models.FieldTitle, selectors: []string{"h1", ".top-card-layout__title", ".job-details-jobs-unified-top-card__job-title"}},
	{field: models.FieldCompany, selectors: []string{".topcard__org-name-link", ".topcard__flavor", ".job-details-jobs-unified-top-card__company-name"}},
	{field: models.FieldLocation, selectors: []string{".topcard__flavor--bullet"}},
	{field: models.FieldPosted, selectors: []string{".posted-time-ago__text"}},
	{field: models.FieldApplicants, selectors: []string{".num-applicants__caption"}},
}

// Extractor reads the fields of one public LinkedIn job page.
type Extractor struct {
	opener browser.Opener

	ReadinessTimeout time.Duration
	SettleDelay      time.Duration

	// Sleep replaces the settle pause when set
	Sleep func(time.Duration)
	// Dump receives the indented JSON of every record; nil disables it
	Dump io.Writer
	// Screenshots captures the page when it never becomes ready; nil disables it
	Screenshots *utils.ScreenShotDebugger
}

// NewExtractor builds an extractor. A nil cfg uses the default timings.
func NewExtractor(opener browser.Opener, cfg *config.Config) *Extractor {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Extractor{
		opener:           opener,
		ReadinessTimeout: cfg.Extraction.ReadinessTimeout(),
		SettleDelay:      cfg.Extraction.SettleDelay(),
		Dump:             os.Stdout,
	}
	if cfg.Extraction.ScreenshotsDir != "" {
		e.Screenshots = utils.NewScreenShotDebugger(cfg.Extraction.ScreenshotsDir)
	}
	return e
}

func (e *Extractor) Name() string {
	return "LinkedIn"
}

// Extract opens a fresh session for url, reads the page and closes the
// session again. The returned record always carries all seven fields.
func (e *Extractor) Extract(ctx context.Context, url string) models.JobRecord {
	rec := e.scrape(ctx, url)
	e.dump(rec)
	return rec
}

func (e *Extractor) scrape(ctx context.Context, url string) (rec models.JobRecord) {
	rec = models.NewJobRecord(url)
	defer func() {
		if r := recover(); r != nil {
			logFault(url, fmt.Errorf("panic: %v", r))
		}
	}()

	log.Printf("🌐 Opening %s", url)
	session, err := e.opener.Open(ctx)
	if err != nil {
		logFault(url, err)
		return rec
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("⚠️ Failed to close page for %s: %v", url, err)
		}
	}()

	if err := session.Navigate(url); err != nil {
		logFault(url, err)
		return rec
	}
	return e.ExtractPage(ctx, session, url)
}

// ExtractPage reads the fields from a page that is already open at url.
// Each step tolerates failure on its own; a panic ends extraction and the
// fields read so far are returned.
func (e *Extractor) ExtractPage(ctx context.Context, session browser.Session, url string) (rec models.JobRecord) {
	rec = models.NewJobRecord(url)
	defer func() {
		if r := recover(); r != nil {
			logFault(url, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := session.WaitFor(readinessSelector, e.ReadinessTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			log.Printf("⚠️ Page not ready after %s: %s", e.ReadinessTimeout, url)
			if e.Screenshots != nil {
				_, _ = e.Screenshots.CaptureAndLog(session, "readiness_timeout", "Capturing page that never became ready")
			}
		} else {
			log.Printf("⚠️ Readiness check failed for %s: %v", url, err)
		}
	}

	for _, rule := range fieldRules {
		if value, ok := tryExtract(session, rule.selectors...); ok {
			_ = rec.Set(rule.field, value)
		}
	}

	// the description is lazy-loaded below the fold
	_ = session.ScrollToBottom()
	e.pause()

	if button, err := session.FindOne(showMoreSelector); err == nil {
		if err := button.Activate(); err != nil {
			log.Printf("⚠️ Could not expand description on %s: %v", url, err)
		}
		e.pause()
	}

	if markup, err := session.FindOne(descriptionSelector); err == nil {
		if text, err := markup.RenderedText(); err == nil {
			rec.JobDescription = cleanDescription(text)
		}
	}

	log.Printf("✅ Extracted %s (missing: %v)", url, rec.MissingFields())
	return rec
}

// tryExtract returns the trimmed visible text of the first element matched
// by selectors. Any failure is a miss.
func tryExtract(session browser.Session, selectors ...string) (string, bool) {
	el, err := session.FindOne(selectors...)
	if err != nil {
		return "", false
	}
	text, err := el.Text()
	if err != nil {
		return "", false
	}
	text = norm.NFC.String(strings.TrimSpace(text))
	return text, text != ""
}

func cleanDescription(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(strings.TrimSpace(text))
}

// pause waits for the page to settle. It always runs to completion; a
// started extraction is never cut short.
func (e *Extractor) pause() {
	if e.SettleDelay <= 0 {
		return
	}
	if e.Sleep != nil {
		e.Sleep(e.SettleDelay)
		return
	}
	time.Sleep(e.SettleDelay)
}

func (e *Extractor) dump(rec models.JobRecord) {
	if e.Dump == nil {
		return
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to encode record: %v", err)
		return
	}
	fmt.Fprintln(e.Dump, string(data))
}

func logFault(url string, err error) {
	log.Printf("⚠️ Error while scraping %s: %v", url, err)
}
