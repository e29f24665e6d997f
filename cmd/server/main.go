package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go-jobpost-scraper/internal/cli"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/scraper"
	"go-jobpost-scraper/internal/scraper/linkedin"

	"github.com/gin-gonic/gin"
)

type extractRequest struct {
	URL string `json:"url" binding:"required"`
}

func main() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config")
	sessionFlags := cli.RegisterSessionFlags(fs)
	_ = fs.Parse(os.Args[1:])

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := sessionFlags.Apply(fs, cfg); err != nil {
		log.Fatalf("❌ Invalid browser settings: %v", err)
	}

	opener, release, err := cli.NewOpener(cfg, "")
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer release()

	extractor := linkedin.NewExtractor(opener, cfg)
	extractor.Dump = nil

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(extractor),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Server listening on port %s", port)
	if err := serve(ctx, srv); err != nil {
		log.Printf("❌ Server stopped: %v", err)
	}
}

// serve runs srv until ctx is done or the listener fails, then shuts it
// down. It returns the listener error, if any.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newRouter serves one extraction at a time; concurrent requests queue on
// the mutex so only one page is ever open.
func newRouter(extractor scraper.Extractor) *gin.Engine {
	r := gin.Default()
	var mu sync.Mutex

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Job posting extractor is running!",
			"status":  "healthy",
			"site":    extractor.Name(),
		})
	})

	r.POST("/extract", func(c *gin.Context) {
		var req extractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		u, err := url.Parse(req.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
			return
		}

		mu.Lock()
		rec := extractor.Extract(c.Request.Context(), req.URL)
		mu.Unlock()

		missing := rec.MissingFields()
		if missing == nil {
			missing = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"record":   rec,
			"complete": rec.IsComplete(),
			"missing":  missing,
		})
	})

	return r
}
