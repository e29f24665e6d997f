package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go-jobpost-scraper/internal/database"
	"go-jobpost-scraper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigOnly(t *testing.T) {
	for _, k := range []string{"SCRAPER_COOKIES_PATH", "SCRAPER_PROFILE_DIR", "SCRAPER_USER_DATA_DIR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer

	code := run([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, &out)

	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Headless: true")
	assert.Contains(t, out.String(), "Readiness timeout: 20s")
}

func TestRun_SelectorsOnSavedPage(t *testing.T) {
	for _, k := range []string{"SCRAPER_COOKIES_PATH", "SCRAPER_PROFILE_DIR", "SCRAPER_USER_DATA_DIR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body><h1>Go Dev</h1></body></html>`), 0o644))
	var out bytes.Buffer

	code := run([]string{"-config", filepath.Join(dir, "none.yaml"), "-html", page}, &out)

	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), `✅ title            h1 → "Go Dev"`)
	assert.Contains(t, out.String(), "❌ company          no selector matched")
	assert.Contains(t, out.String(), "✨ 1 selectors matched")
}

type fakeLookup struct {
	records map[string]models.JobRecord
	err     error
}

func (f *fakeLookup) GetJobRecord(_ context.Context, url string) (models.JobRecord, error) {
	if f.err != nil {
		return models.JobRecord{}, f.err
	}
	rec, ok := f.records[url]
	if !ok {
		return models.JobRecord{}, fmt.Errorf("%w: %s", database.ErrRecordNotFound, url)
	}
	return rec, nil
}

func TestPrintMirrored(t *testing.T) {
	repo := &fakeLookup{records: map[string]models.JobRecord{
		"https://x/1": {URL: "https://x/1", Title: "Go Dev", Company: "Acme"},
	}}

	tests := []struct {
		name string
		repo *fakeLookup
		url  string
		want string
	}{
		{name: "stored", repo: repo, url: "https://x/1", want: `🗄️ Database: "Go Dev" at "Acme" (missing: [location posted applicants job_description])`},
		{name: "not stored", repo: repo, url: "https://x/2", want: "🗄️ Database: https://x/2 not mirrored yet"},
		{name: "query error", repo: &fakeLookup{err: errors.New("connection reset")}, url: "https://x/1", want: "⚠️ Database: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printMirrored(context.Background(), &out, tt.repo, tt.url)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
