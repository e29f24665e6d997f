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

	"go-jobpost-scraper/internal/batch"
	"go-jobpost-scraper/internal/cli"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/dataset"
	"go-jobpost-scraper/internal/scraper/linkedin"
)

const datasetHint = `create a CSV with a "url" header and one job URL per row`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("resume", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config")
	sessionFlags := cli.RegisterSessionFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: resume [flags] <dataset.csv>\n\nFills in missing job fields of every incomplete row and rewrites the CSV.\n\n")
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
	path := fs.Arg(0)

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

	opener, release, err := cli.NewOpener(cfg, "")
	if err != nil {
		log.Printf("❌ %v", err)
		return 1
	}
	defer release()

	rep := cli.NewReporter(cfg)
	controller := batch.NewController(linkedin.NewExtractor(opener, cfg))

	summary, err := controller.Run(ctx, path)
	if err != nil {
		logRunError(path, err)
		if sendErr := rep.SendError(err); sendErr != nil {
			log.Printf("⚠️ Failed to send report: %v", sendErr)
		}
		return 1
	}

	if err := rep.SendStatus(fmt.Sprintf("✅ %s: %s", path, summary)); err != nil {
		log.Printf("⚠️ Failed to send report: %v", err)
	}

	if cfg.Database.Enabled() {
		ds, err := dataset.Load(path)
		if err != nil {
			log.Printf("⚠️ Database mirror skipped: %v", err)
			return 0
		}
		cli.Mirror(ctx, cfg, ds.Records())
	}
	return 0
}

func logRunError(path string, err error) {
	switch {
	case errors.Is(err, dataset.ErrDatasetUnavailable):
		log.Printf("❌ Cannot read dataset %s: %v", path, err)
		log.Printf("   Hint: %s", datasetHint)
	case errors.Is(err, dataset.ErrMalformedDataset):
		log.Printf("❌ %s is not a usable dataset: %v", path, err)
		log.Printf("   Hint: %s", datasetHint)
	case errors.Is(err, dataset.ErrDatasetBusy):
		log.Printf("❌ %s is being updated by another run: %v", path, err)
	case errors.Is(err, context.Canceled):
		log.Printf("⏹️ Run on %s interrupted; finished rows were saved", path)
	default:
		log.Printf("❌ Batch run on %s failed: %v", path, err)
	}
}
