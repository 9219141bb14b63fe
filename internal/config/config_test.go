package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("QUIZ_API_URL", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.BaseURL != DefaultBaseURL || cfg.Store.Driver != "file" || cfg.UI.Mode != "terminal" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Attempt.ViolationThreshold != 3 {
		t.Fatalf("threshold = %d", cfg.Attempt.ViolationThreshold)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
service:
  base_url: http://quiz.internal:5000
attempt:
  poll_interval: 500ms
  violation_threshold: 5
store:
  driver: redis
redis:
  addr: localhost:6379
  db: 2
ui:
  mode: web
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_API_URL", "http://override:9000")
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.BaseURL != "http://override:9000" {
		t.Fatalf("base url = %q", cfg.Service.BaseURL)
	}
	if cfg.Redis.Addr != "redis:6380" || cfg.Redis.DB != 2 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if got := Duration(cfg.Attempt.PollInterval, time.Second); got != 500*time.Millisecond {
		t.Fatalf("poll interval = %v", got)
	}
	// Keys absent from the file keep their defaults.
	if got := Duration(cfg.Attempt.TickInterval, 0); got != time.Second {
		t.Fatalf("tick interval = %v", got)
	}
	if cfg.Attempt.ViolationThreshold != 5 || cfg.UI.Mode != "web" {
		t.Fatalf("unexpected attempt/ui: %+v", cfg)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Fatalf("log level = %v", cfg.LogLevel())
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cases := map[string]string{
		"driver":   "store:\n  driver: sqlite\n",
		"ui":       "ui:\n  mode: gui\n",
		"redis":    "store:\n  driver: redis\n",
		"bad yaml": "service: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", 3*time.Second); got != 3*time.Second {
		t.Fatalf("empty: %v", got)
	}
	if got := Duration("nope", 3*time.Second); got != 3*time.Second {
		t.Fatalf("invalid: %v", got)
	}
	if got := Duration("250ms", 3*time.Second); got != 250*time.Millisecond {
		t.Fatalf("valid: %v", got)
	}
}
