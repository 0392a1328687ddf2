package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("venues: [binance_spot]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Snapshot.Depth != 1000 {
		t.Fatalf("Snapshot.Depth = %d, want default 1000", cfg.Snapshot.Depth)
	}
	if cfg.Stream.ReconnectInitialBackoff != 125*time.Millisecond {
		t.Fatalf("ReconnectInitialBackoff = %v, want 125ms default", cfg.Stream.ReconnectInitialBackoff)
	}
	if cfg.Stream.SubscriptionTimeout != 10*time.Second {
		t.Fatalf("SubscriptionTimeout = %v, want 10s default", cfg.Stream.SubscriptionTimeout)
	}
}

func TestLoadRejectsUnknownVenue(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("venues: [not_a_real_venue]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown venue")
	}
}

func TestLoadRejectsEmptyVenues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty venues list")
	}
}
