package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Usage(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"one.csv", "two.csv"}))
}

func TestRun_MissingDataset(t *testing.T) {
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATABASE_URL", "SCRAPER_PROFILE_DIR", "SCRAPER_USER_DATA_DIR"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()

	code := run([]string{"-config", filepath.Join(dir, "none.yaml"), filepath.Join(dir, "missing.csv")})
	assert.Equal(t, 1, code)
}
