package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")
	cfg := Load()
	if cfg.ModelBackend != "local" {
		t.Fatalf("expected local backend, got %q", cfg.ModelBackend)
	}
	if cfg.ModelTimeout != 5*time.Second {
		t.Fatalf("unexpected model timeout %v", cfg.ModelTimeout)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.StatsEnabled || cfg.EventsEnabled {
		t.Fatal("stats and events should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "Remote")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STATS_ENABLED", "true")
	t.Setenv("MODEL_RETRIES", "not-a-number")
	cfg := Load()
	if cfg.ModelBackend != "remote" {
		t.Fatalf("expected remote backend, got %q", cfg.ModelBackend)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.StatsEnabled {
		t.Fatal("expected stats enabled")
	}
	if cfg.ModelRetries != 3 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.ModelRetries)
	}
}
