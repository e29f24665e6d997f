// Wiring shared by the scraper and resume commands

package cli

import (
	"context"
	"flag"
	"log"
	"sync"
	"time"

	"go-jobpost-scraper/internal/browser"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/database"
	"go-jobpost-scraper/internal/models"
	"go-jobpost-scraper/internal/reporter"
)

// SessionFlags are the browser flags both commands accept. A flag only
// overrides the config when it is given on the command line.
type SessionFlags struct {
	headless    *bool
	userDataDir *string
	profileDir  *string
}

func RegisterSessionFlags(fs *flag.FlagSet) *SessionFlags {
	return &SessionFlags{
		headless:    fs.Bool("headless", true, "run the browser without a window"),
		userDataDir: fs.String("user-data-dir", "", "browser user data directory (persistent profile)"),
		profileDir:  fs.String("profile-dir", "", "profile directory inside the user data directory"),
	}
}

// Apply copies the flags that were set onto cfg and validates the result
func (f *SessionFlags) Apply(fs *flag.FlagSet, cfg *config.Config) error {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "headless":
			cfg.Browser.Headless = *f.headless
		case "user-data-dir":
			cfg.Browser.UserDataDir = *f.userDataDir
		case "profile-dir":
			cfg.Browser.ProfileDirectory = *f.profileDir
		}
	})
	return cfg.Validate()
}

// lazyPlaywright starts the driver on the first Open so that runs which
// fail early never launch a browser.
type lazyPlaywright struct {
	cfg  browser.SessionConfig
	once sync.Once
	pm   *browser.PlaywrightManager
	err  error
}

func (l *lazyPlaywright) Open(ctx context.Context) (browser.Session, error) {
	l.once.Do(func() {
		log.Println("🚀 Starting Playwright...")
		l.pm, l.err = browser.NewPlaywright(l.cfg)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.pm.Open(ctx)
}

func (l *lazyPlaywright) Close() error {
	if l.pm == nil {
		return nil
	}
	return l.pm.Close()
}

// NewOpener serves the saved page at htmlPath when given, live pages otherwise.
// The returned func releases the browser driver.
func NewOpener(cfg *config.Config, htmlPath string) (browser.Opener, func(), error) {
	if htmlPath != "" {
		opener, err := browser.NewStaticOpenerFromFile(htmlPath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("📄 Replaying saved page %s", htmlPath)
		return opener, func() {}, nil
	}

	pw := &lazyPlaywright{cfg: cfg.Session()}
	return pw, func() {
		if err := pw.Close(); err != nil {
			log.Printf("⚠️ Failed to stop Playwright: %v", err)
		}
	}, nil
}

// NewReporter falls back to the log when Telegram cannot be reached
func NewReporter(cfg *config.Config) reporter.Reporter {
	r, err := reporter.New(cfg.Telegram)
	if err != nil {
		log.Printf("⚠️ %v. Reporting to log instead.", err)
		return reporter.LogReporter{}
	}
	if cfg.Telegram.Enabled() {
		log.Println("🤖 Telegram reporter initialized.")
	}
	return r
}

// Mirror copies records into Postgres when DATABASE_URL is configured.
// Failures are logged; the CSV dataset has already been written.
func Mirror(ctx context.Context, cfg *config.Config, recs []models.JobRecord) {
	if !cfg.Database.Enabled() || len(recs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.Database.URL)
	if err != nil {
		log.Printf("⚠️ Database mirror skipped: %v", err)
		return
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Printf("⚠️ Database mirror skipped: %v", err)
		return
	}
	if _, err := repo.MirrorRecords(ctx, recs); err != nil {
		log.Printf("⚠️ Database mirror interrupted: %v", err)
	}
}
