package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"
)

func TestLoadUsesDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "READ_HEADER_TIMEOUT", "READ_TIMEOUT", "WRITE_TIMEOUT", "LOG_LEVEL", "BASE_URL", "KAFKA_BROKERS", "LOCAL_CACHE_ITEMS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Addr != ":9999" {
		t.Fatalf("Addr: got %q, want %q", cfg.Addr, ":9999")
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Fatalf("IdleTimeout: got %v, want %v", cfg.IdleTimeout, 60*time.Second)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout: got %v, want %v", cfg.ShutdownTimeout, 10*time.Second)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel: got %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.BaseURL != "" {
		t.Fatalf("BaseURL: got %q, want empty", cfg.BaseURL)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"localhost:9092"}) {
		t.Fatalf("KafkaBrokers: got %v", cfg.KafkaBrokers)
	}
	if cfg.LocalCacheItems != 100_000 {
		t.Fatalf("LocalCacheItems: got %d", cfg.LocalCacheItems)
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("ADDR", ":18080")
	t.Setenv("IDLE_TIMEOUT", "2m")
	t.Setenv("READ_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "Text")
	t.Setenv("BASE_URL", "https://s.example.com/")
	t.Setenv("TRACING_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("BLOOM_EXPECTED_ITEMS", "5000")

	cfg := Load()

	if cfg.Addr != ":18080" {
		t.Fatalf("Addr: got %q, want %q", cfg.Addr, ":18080")
	}
	if cfg.IdleTimeout != 2*time.Minute {
		t.Fatalf("IdleTimeout: got %v, want %v", cfg.IdleTimeout, 2*time.Minute)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("ReadTimeout: got %v, want %v", cfg.ReadTimeout, 5*time.Second)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel: got %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("LogFormat: got %q, want %q", cfg.LogFormat, "text")
	}
	if cfg.BaseURL != "https://s.example.com" {
		t.Fatalf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.TracingEnabled {
		t.Fatal("TracingEnabled: got true, want false")
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("RedisDB: got %d, want 3", cfg.RedisDB)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Fatalf("KafkaBrokers: got %v", cfg.KafkaBrokers)
	}
	if cfg.BloomExpectedItems != 5000 {
		t.Fatalf("BloomExpectedItems: got %d", cfg.BloomExpectedItems)
	}
}

func TestLoadBloomSafetyMargin(t *testing.T) {
	t.Setenv("BLOOM_SAFETY_MARGIN", "")
	if got := Load().BloomSafetyMargin; got != 10_000 {
		t.Fatalf("BloomSafetyMargin default: got %d, want 10000", got)
	}
	t.Setenv("BLOOM_SAFETY_MARGIN", "0")
	if got := Load().BloomSafetyMargin; got != 0 {
		t.Fatalf("BloomSafetyMargin: got %d, want 0", got)
	}
	t.Setenv("BLOOM_SAFETY_MARGIN", "-5")
	if got := Load().BloomSafetyMargin; got != 10_000 {
		t.Fatalf("BloomSafetyMargin negative: got %d, want default", got)
	}
}

func TestLoadIgnoresBadDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	cfg := Load()
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout: got %v, want default", cfg.ShutdownTimeout)
	}
}
