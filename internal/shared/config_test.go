package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://127.0.0.1:5260/api" {
			t.Errorf("expected base URL http://127.0.0.1:5260/api, got %s", config.API.BaseURL)
		}
		if config.API.Timeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.API.Timeout())
		}
		if config.API.CacheTTL() != 5*time.Minute {
			t.Errorf("expected 5m cache TTL, got %v", config.API.CacheTTL())
		}
		if config.Storage.Driver != "sqlite" {
			t.Errorf("expected sqlite storage driver, got %s", config.Storage.Driver)
		}
		if config.Server.Addr() != "127.0.0.1:5260" {
			t.Errorf("expected server addr 127.0.0.1:5260, got %s", config.Server.Addr())
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Storage.Path != defaultConfig.Storage.Path {
			t.Errorf("created config storage path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://api.example.com/api"
timeout_seconds = 3
rate_limit = 2.5

[storage]
driver = "redis"
redis_url = "redis://cache:6379/1"

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://api.example.com/api" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}
		if config.API.Timeout() != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.API.Timeout())
		}
		if config.API.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", config.API.RateLimit)
		}
		if config.API.CacheTTLSeconds != 300 {
			t.Errorf("expected default cache TTL to survive partial file, got %d", config.API.CacheTTLSeconds)
		}
		if config.Storage.Driver != "redis" {
			t.Errorf("expected redis driver, got %s", config.Storage.Driver)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected loaded config to be valid, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = "" }},
			{name: "zero timeout", mutate: func(c *Config) { c.API.TimeoutSeconds = 0 }},
			{name: "negative ttl", mutate: func(c *Config) { c.API.CacheTTLSeconds = -1 }},
			{name: "negative rate limit", mutate: func(c *Config) { c.API.RateLimit = -1 }},
			{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "etcd" }},
			{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Path = "" }},
			{name: "redis without url", mutate: func(c *Config) { c.Storage.Driver = "redis"; c.Storage.RedisURL = "" }},
			{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)

				err := config.Validate()
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
