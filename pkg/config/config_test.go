package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "symbols:\n  - BTC\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Server.Port)
	}
	if cfg.Engine.BufferCapacity != 500 {
		t.Fatalf("default buffer capacity = %d", cfg.Engine.BufferCapacity)
	}
	if cfg.Engine.TrackHorizon != 24*time.Hour {
		t.Fatalf("default horizon = %v", cfg.Engine.TrackHorizon)
	}
	if cfg.Engine.DefaultStrategy != "regime" {
		t.Fatalf("default strategy = %q", cfg.Engine.DefaultStrategy)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("default cache ttl = %v", cfg.Cache.TTL)
	}
}

func TestLoadRejectsEmptySymbols(t *testing.T) {
	path := writeConfig(t, "environment: production\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for empty symbols")
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "symbols: [BTC]\nengine:\n  default_strategy: martingale\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown strategy")
	}
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	path := writeConfig(t, "symbols: [BTC]\nkafka:\n  enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for kafka without brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "symbols: [BTC]\n")
	t.Setenv("SYMBOLS", "ETH,SOL")
	t.Setenv("SNAPSHOT_PATH", "/tmp/snaps.json")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "ETH" {
		t.Fatalf("symbols override failed: %v", cfg.Symbols)
	}
	if cfg.Engine.SnapshotPath != "/tmp/snaps.json" {
		t.Fatalf("snapshot path override failed: %s", cfg.Engine.SnapshotPath)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("kafka override failed: %+v", cfg.Kafka)
	}
}
