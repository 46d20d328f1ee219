package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"QuoteDesk/internal/period"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"` // receives watchlist results
		APIURL   string `yaml:"api_url"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL  string `yaml:"base_url"` // vstrader; empty uses Yahoo
		APIKey   string `yaml:"api_key"`
		YahooURL string `yaml:"yahoo_url"`
	} `yaml:"data_source"`
	Watchlist struct {
		Symbols []string `yaml:"symbols"`
		Period  string   `yaml:"period"`
		Cron    string   `yaml:"cron"`
	} `yaml:"watchlist"`
	Cache struct {
		ResultTTL  time.Duration `yaml:"result_ttl"`
		SessionTTL time.Duration `yaml:"session_ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // empty disables query history
	} `yaml:"database"`
	Timezone string `yaml:"timezone"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("WATCHLIST_CRON"); v != "" {
		cfg.Watchlist.Cron = v
	}
	if v := os.Getenv("WATCHLIST_SYMBOLS"); v != "" {
		cfg.Watchlist.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if cfg.Watchlist.Period == "" {
		cfg.Watchlist.Period = string(period.OneMonth)
	}
	if cfg.Watchlist.Cron == "" {
		cfg.Watchlist.Cron = "0 30 16 * * 1-5"
	}
	if cfg.Cache.ResultTTL == 0 {
		cfg.Cache.ResultTTL = 5 * time.Minute
	}
	if cfg.Cache.SessionTTL == 0 {
		cfg.Cache.SessionTTL = 30 * time.Minute
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	sel, err := period.ParseSelection(c.Watchlist.Period)
	if err != nil {
		return fmt.Errorf("watchlist.period: %w", err)
	}
	if sel == period.Custom {
		return fmt.Errorf("watchlist.period must be a preset")
	}
	if len(c.Watchlist.Symbols) > 0 && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when a watchlist is configured")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// WatchlistSelection returns the parsed watchlist period. Call after Validate.
func (c *Config) WatchlistSelection() period.Selection {
	sel, _ := period.ParseSelection(c.Watchlist.Period)
	return sel
}

// Location returns the configured time zone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
