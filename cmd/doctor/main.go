package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobpost-scraper/internal/browser"
	"go-jobpost-scraper/internal/cli"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/database"
	"go-jobpost-scraper/internal/models"
	"go-jobpost-scraper/internal/scraper/linkedin"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config")
	htmlPath := fs.String("html", "", "check a saved HTML page instead of opening a browser")
	sessionFlags := cli.RegisterSessionFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: doctor [flags] [job-url]\n\nPrints the effective settings and, given a page, which selectors match.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	fmt.Fprintln(out, "🔧 Checking config...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	if err := sessionFlags.Apply(fs, cfg); err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	printConfig(out, cfg)

	if cfg.Browser.CookiesPath != "" {
		cookies, err := browser.LoadCookies(cfg.Browser.CookiesPath)
		if err != nil {
			fmt.Fprintf(out, "⚠️ Cookies: %v\n", err)
		} else {
			fmt.Fprintf(out, "🍪 Cookies: %d usable entries\n", len(cookies))
		}
	}

	if fs.NArg() == 0 && *htmlPath == "" {
		return 0
	}
	url := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if url != "" && cfg.Database.Enabled() {
		checkMirror(ctx, out, cfg.Database.URL, url)
	}
	if url == "" {
		url = "about:blank"
	}

	opener, release, err := cli.NewOpener(cfg, *htmlPath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	defer release()

	session, err := opener.Open(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Could not open page: %v\n", err)
		return 1
	}
	defer session.Close()

	fmt.Fprintf(out, "🌐 Checking selectors on %s\n", url)
	if err := session.Navigate(url); err != nil {
		fmt.Fprintf(out, "❌ Navigation failed: %v\n", err)
		return 1
	}
	if err := session.WaitFor("body", cfg.Extraction.ReadinessTimeout()); err != nil {
		fmt.Fprintf(out, "⚠️ %v\n", err)
	}

	matched := 0
	for _, m := range linkedin.MatchSelectors(session) {
		if m.Selector == "" {
			fmt.Fprintf(out, "   ❌ %-16s no selector matched\n", m.Field)
			continue
		}
		matched++
		fmt.Fprintf(out, "   ✅ %-16s %s → %q\n", m.Field, m.Selector, preview(m.Text))
	}
	fmt.Fprintf(out, "✨ %d selectors matched\n", matched)
	return 0
}

type recordLookup interface {
	GetJobRecord(ctx context.Context, url string) (models.JobRecord, error)
}

func checkMirror(ctx context.Context, out io.Writer, connString, url string) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, connString)
	if err != nil {
		fmt.Fprintf(out, "⚠️ Database: %v\n", err)
		return
	}
	defer repo.Close()
	printMirrored(ctx, out, repo, url)
}

// printMirrored shows what the database mirror holds for url
func printMirrored(ctx context.Context, out io.Writer, repo recordLookup, url string) {
	rec, err := repo.GetJobRecord(ctx, url)
	switch {
	case errors.Is(err, database.ErrRecordNotFound):
		fmt.Fprintf(out, "🗄️ Database: %s not mirrored yet\n", url)
	case err != nil:
		fmt.Fprintf(out, "⚠️ Database: %v\n", err)
	default:
		fmt.Fprintf(out, "🗄️ Database: %q at %q (missing: %v)\n", rec.Title, rec.Company, rec.MissingFields())
	}
}

func printConfig(out io.Writer, cfg *config.Config) {
	s := cfg.Session()
	fmt.Fprintf(out, "   Headless: %t\n", s.Headless)
	fmt.Fprintf(out, "   User data dir: %s\n", orNone(s.UserDataDir))
	fmt.Fprintf(out, "   Profile: %s\n", orNone(s.ProfileDirectory))
	fmt.Fprintf(out, "   Navigation timeout: %s\n", s.NavigationTimeout)
	fmt.Fprintf(out, "   Readiness timeout: %s, settle delay: %s\n",
		cfg.Extraction.ReadinessTimeout(), cfg.Extraction.SettleDelay().Round(time.Millisecond))
	fmt.Fprintf(out, "   Telegram: %t, database mirror: %t\n", cfg.Telegram.Enabled(), cfg.Database.Enabled())
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:60]) + "…"
	}
	return s
}
