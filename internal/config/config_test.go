package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8400" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.SessionTimeout != 30*time.Minute {
		t.Fatalf("session timeout = %v", cfg.Server.SessionTimeout)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Fixer.Enabled {
		t.Fatal("fixer enabled by default")
	}
	if cfg.Scheduler.NTPServer != "pool.ntp.org" {
		t.Fatalf("ntp server = %q", cfg.Scheduler.NTPServer)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab400.toml")
	content := `
[server]
addr = ":9999"
session_timeout = "5m"

[database]
path = "/data/lab400.db"

[fixer]
enabled = true
throttle_window = "2h"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" || cfg.Server.SessionTimeout != 5*time.Minute {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Database.Path != "/data/lab400.db" {
		t.Fatalf("db path = %q", cfg.Database.Path)
	}
	if !cfg.Fixer.Enabled || cfg.Fixer.ThrottleWindow != 2*time.Hour {
		t.Fatalf("fixer = %+v", cfg.Fixer)
	}
	// Untouched sections keep their defaults.
	if cfg.Worker.Concurrency != 10 {
		t.Fatalf("concurrency = %d", cfg.Worker.Concurrency)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LAB400_SERVER_ADDR", ":7001")
	t.Setenv("LAB400_REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7001" {
		t.Fatalf("addr = %q, want :7001", cfg.Server.Addr)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("redis = %q", cfg.Redis.Addr)
	}
}
