package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Tickers struct {
		File string `yaml:"file"`
	} `yaml:"tickers"`
	Metrics struct {
		MaxWorkers        int `yaml:"max_workers"`
		HistoryTTLSeconds int `yaml:"history_ttl_seconds"`
		RoundDigits       int `yaml:"round_digits"`
	} `yaml:"metrics"`
	Sort struct {
		Column    string `yaml:"column"`
		Ascending bool   `yaml:"ascending"`
	} `yaml:"sort"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file over the built-in defaults, then applies
// environment variable overrides. Defaults are seeded before parsing so an
// explicit zero (e.g. round_digits: 0) survives.
func Load(path string) (*Config, error) {
	cfg := defaults()

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
	if v := os.Getenv("TICKERS_FILE"); v != "" {
		cfg.Tickers.File = v
	}
	if v := os.Getenv("MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.MaxWorkers = n
		}
	}
	if v := os.Getenv("HISTORY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.HistoryTTLSeconds = n
		}
	}
	if v := os.Getenv("ROUND_DIGITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.RoundDigits = n
		}
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("DATASOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATASOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Tickers.File = "configs/tickers.txt"
	cfg.Metrics.MaxWorkers = 8
	cfg.Metrics.HistoryTTLSeconds = 300
	cfg.Metrics.RoundDigits = 2
	cfg.Sort.Column = "recover_ratio"
	cfg.Sort.Ascending = false
	cfg.Schedule.RefreshCron = "0 */5 * * * *"
	return cfg
}

// Validate checks that all required fields are sane.
func (c *Config) Validate() error {
	if c.Tickers.File == "" {
		return fmt.Errorf("tickers.file is required")
	}
	if c.Metrics.MaxWorkers <= 0 {
		return fmt.Errorf("metrics.max_workers must be positive")
	}
	if c.Metrics.HistoryTTLSeconds <= 0 {
		return fmt.Errorf("metrics.history_ttl_seconds must be positive")
	}
	if c.Metrics.RoundDigits < 0 {
		return fmt.Errorf("metrics.round_digits must not be negative")
	}
	if c.Schedule.RefreshCron == "" {
		return fmt.Errorf("schedule.refresh_cron is required")
	}
	return nil
}
