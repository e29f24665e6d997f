// Load envs from .env
// Load YAML config on top of defaults
// Override with env vars
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"go-jobpost-scraper/internal/browser"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Browser    BrowserConfig    `yaml:"browser"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
}

type BrowserConfig struct {
	Headless            bool   `yaml:"headless" env:"SCRAPER_HEADLESS"`
	UserDataDir         string `yaml:"user_data_dir" env:"SCRAPER_USER_DATA_DIR"`
	ProfileDirectory    string `yaml:"profile_directory" env:"SCRAPER_PROFILE_DIR"`
	CookiesPath         string `yaml:"cookies_path" env:"SCRAPER_COOKIES_PATH"`
	UserAgent           string `yaml:"user_agent"`
	Stealth             bool   `yaml:"stealth"`
	NavigationTimeoutMS int    `yaml:"navigation_timeout_ms"`
}

type ExtractionConfig struct {
	ReadinessTimeoutMS int    `yaml:"readiness_timeout_ms"`
	SettleDelayMS      int    `yaml:"settle_delay_ms"`
	ScreenshotsDir     string `yaml:"screenshots_dir"`
}

// ReadinessTimeout is how long to wait for the page body
func (e ExtractionConfig) ReadinessTimeout() time.Duration {
	return time.Duration(e.ReadinessTimeoutMS) * time.Millisecond
}

// SettleDelay is the pause after scrolling and after expanding the description
func (e ExtractionConfig) SettleDelay() time.Duration {
	return time.Duration(e.SettleDelayMS) * time.Millisecond
}

type TelegramConfig struct {
	Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

// Enabled is true when both token and chat id are set
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:            true,
			NavigationTimeoutMS: 60000,
		},
		Extraction: ExtractionConfig{
			ReadinessTimeoutMS: 20000,
			SettleDelayMS:      1000,
		},
	}
}

// Load builds the config from .env, the YAML file at path and the environment.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("⚠️ Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCRAPER_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPER_HEADLESS: %w", err)
		}
		c.Browser.Headless = headless
	}
	if v := os.Getenv("SCRAPER_USER_DATA_DIR"); v != "" {
		c.Browser.UserDataDir = v
	}
	if v := os.Getenv("SCRAPER_PROFILE_DIR"); v != "" {
		c.Browser.ProfileDirectory = v
	}
	if v := os.Getenv("SCRAPER_COOKIES_PATH"); v != "" {
		c.Browser.CookiesPath = v
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.Token = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Extraction.ReadinessTimeoutMS <= 0 {
		return fmt.Errorf("extraction.readiness_timeout_ms must be positive, got %d", c.Extraction.ReadinessTimeoutMS)
	}
	if c.Extraction.SettleDelayMS < 0 {
		return fmt.Errorf("extraction.settle_delay_ms must not be negative, got %d", c.Extraction.SettleDelayMS)
	}
	if c.Browser.NavigationTimeoutMS < 0 {
		return fmt.Errorf("browser.navigation_timeout_ms must not be negative, got %d", c.Browser.NavigationTimeoutMS)
	}
	if c.Browser.ProfileDirectory != "" && c.Browser.UserDataDir == "" {
		return errors.New("browser.profile_directory requires browser.user_data_dir")
	}
	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		log.Printf("⚠️ Telegram needs both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID; reports go to the log")
	}
	return nil
}

// Session returns the browser settings as an immutable session config
func (c *Config) Session() browser.SessionConfig {
	return browser.SessionConfig{
		Headless:          c.Browser.Headless,
		UserDataDir:       c.Browser.UserDataDir,
		ProfileDirectory:  c.Browser.ProfileDirectory,
		CookiesPath:       c.Browser.CookiesPath,
		UserAgent:         c.Browser.UserAgent,
		Stealth:           c.Browser.Stealth,
		NavigationTimeout: time.Duration(c.Browser.NavigationTimeoutMS) * time.Millisecond,
	}
}
