package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
telegram:
  token: abc
  poll_timeout: 30
bank:
  file: data/tickets.json
  images_dir: data
redis:
  addr: localhost:6379
  ttl: 15m
modes:
  express:
    questions: 5
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Telegram.Token != "abc" || cfg.Telegram.PollTimeout != 30 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Bank.File != "data/tickets.json" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected bank/redis config %+v", cfg)
	}
	if got := cfg.ModeTargets()["express"]; got != 5 {
		t.Fatalf("expected express override 5, got %d", got)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 15*time.Minute {
		t.Fatalf("expected 15m ttl, got %v", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", got)
	}
}
