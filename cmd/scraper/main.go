package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-jobpost-scraper/internal/cli"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/dataset"
	"go-jobpost-scraper/internal/models"
	"go-jobpost-scraper/internal/scraper/linkedin"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config")
	csvOut := fs.String("csv", "output.csv", "output CSV file (.csv is appended if missing)")
	htmlPath := fs.String("html", "", "read a saved HTML page instead of opening a browser")
	sessionFlags := cli.RegisterSessionFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: scraper [flags] <job-url>\n\nExtracts one LinkedIn job posting into a one-row CSV.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	url := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("❌ Failed to load config: %v", err)
		return 1
	}
	if err := sessionFlags.Apply(fs, cfg); err != nil {
		log.Printf("❌ Invalid browser settings: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opener, release, err := cli.NewOpener(cfg, *htmlPath)
	if err != nil {
		log.Printf("❌ %v", err)
		return 1
	}
	defer release()

	rec := linkedin.NewExtractor(opener, cfg).Extract(ctx, url)

	out := dataset.CSVPath(*csvOut)
	if err := dataset.Save(out, dataset.NewSingleRecord(rec)); err != nil {
		log.Printf("❌ Failed to write %s: %v", out, err)
		return 1
	}
	log.Printf("Saved CSV to %s", out)

	rep := cli.NewReporter(cfg)
	if err := rep.SendJob(rec); err != nil {
		log.Printf("⚠️ Failed to send report: %v", err)
	}
	cli.Mirror(ctx, cfg, []models.JobRecord{rec})
	return 0
}
