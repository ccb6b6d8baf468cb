package config_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/foxxcyber/shopsmart/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "SUGGESTION_TIMEOUT_SECONDS", "EXPORT_URL_EXPIRY_MINUTES", "S3_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.DatabaseDriver != config.DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.SuggestionTimeout != 30*time.Second {
		t.Errorf("expected 30s suggestion timeout, got %v", cfg.SuggestionTimeout)
	}
	if cfg.ExportURLExpiry != time.Hour {
		t.Errorf("expected 1h export expiry, got %v", cfg.ExportURLExpiry)
	}
	if cfg.S3Enabled {
		t.Error("expected S3 disabled by default")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("SUGGESTION_TIMEOUT_SECONDS", "5")
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("S3_USE_SSL", "not-a-bool")

	cfg := config.Load()

	if cfg.DatabaseDriver != config.DriverSQLite {
		t.Errorf("expected sqlite driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.SQLitePath != "/tmp/test.db" {
		t.Errorf("expected sqlite path from env, got %s", cfg.SQLitePath)
	}
	if cfg.SuggestionTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.SuggestionTimeout)
	}
	if !cfg.S3Enabled {
		t.Error("expected S3 enabled")
	}
	if cfg.S3UseSSL {
		t.Error("expected unparseable bool to fall back to default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantKey string
	}{
		{name: "valid postgres", modify: func(c *config.Config) {}},
		{name: "valid postgresql scheme", modify: func(c *config.Config) { c.DatabaseURL = "postgresql://db/shop" }},
		{name: "valid sqlite", modify: func(c *config.Config) { c.DatabaseDriver = config.DriverSQLite }},
		{name: "unknown driver", modify: func(c *config.Config) { c.DatabaseDriver = "mysql" }, wantKey: "DATABASE_DRIVER"},
		{name: "missing url", modify: func(c *config.Config) { c.DatabaseURL = "" }, wantKey: "DATABASE_URL"},
		{name: "wrong scheme", modify: func(c *config.Config) { c.DatabaseURL = "mysql://db" }, wantKey: "DATABASE_URL"},
		{name: "missing sqlite path", modify: func(c *config.Config) {
			c.DatabaseDriver = config.DriverSQLite
			c.SQLitePath = ""
		}, wantKey: "SQLITE_PATH"},
		{name: "zero timeout", modify: func(c *config.Config) { c.SuggestionTimeout = 0 }, wantKey: "SUGGESTION_TIMEOUT_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				DatabaseDriver:    config.DriverPostgres,
				DatabaseURL:       "postgres://localhost/shop",
				SQLitePath:        "data/shopsmart.db",
				SuggestionTimeout: time.Second,
			}
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var cfgErr *config.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("expected key %s, got %s", tt.wantKey, cfgErr.Key)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for level, want := range tests {
		cfg := &config.Config{LogLevel: level}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}
