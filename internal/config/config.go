package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath    = "config/config.yaml"
	DefaultBaseURL = "http://localhost:5000"
)

type Config struct {
	Service struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"service"`
	Attempt struct {
		PollInterval       string `yaml:"poll_interval"`
		TickInterval       string `yaml:"tick_interval"`
		ViolationThreshold int    `yaml:"violation_threshold"`
		ForcedSubmitDelay  string `yaml:"forced_submit_delay"`
	} `yaml:"attempt"`
	Store struct {
		Driver  string `yaml:"driver"`
		Path    string `yaml:"path"`
		TTL     string `yaml:"ttl"`
		Session string `yaml:"session"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	UI struct {
		Mode   string `yaml:"mode"`
		Listen string `yaml:"listen"`
	} `yaml:"ui"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	var cfg Config
	cfg.Service.BaseURL = DefaultBaseURL
	cfg.Service.Timeout = "10s"
	cfg.Attempt.PollInterval = "3s"
	cfg.Attempt.TickInterval = "1s"
	cfg.Attempt.ViolationThreshold = 3
	cfg.Attempt.ForcedSubmitDelay = "2s"
	cfg.Store.Driver = "file"
	cfg.Store.TTL = "24h"
	cfg.Store.Session = "default"
	cfg.UI.Mode = "terminal"
	cfg.UI.Listen = ":8080"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
// QUIZ_API_URL and REDIS_ADDR override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("QUIZ_API_URL")); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "redis" && c.Redis.Addr == "" {
		return errors.New("store.driver redis needs redis.addr")
	}
	switch c.UI.Mode {
	case "terminal", "web":
	default:
		return fmt.Errorf("unknown ui.mode %q", c.UI.Mode)
	}
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return errors.New("service.base_url is empty")
	}
	return nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LogLevel maps log.level onto slog; unknown values mean info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
