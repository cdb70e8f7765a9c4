package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestDefaultConfigAndValidate(t *testing.T) {
	cfg := DefaultConfig()

	// Basic defaults
	if cfg.Sink.Type != "console" {
		t.Fatalf("default sink.type = %q, want console", cfg.Sink.Type)
	}
	if cfg.Prometheus.Enable {
		t.Fatal("prometheus.enable should default to false")
	}
	if cfg.Engine.FlushInterval != 500*time.Millisecond {
		t.Fatalf("default engine.flush-interval = %v, want 500ms", cfg.Engine.FlushInterval)
	}

	// Validate should pass for defaults
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got error: %v", err)
	}
}

func TestValidate_SinkTypes(t *testing.T) {
	// Invalid sink.type should error
	cfg := DefaultConfig()
	cfg.Sink.Type = "does-not-exist"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid sink.type, got nil")
	}

	// File sink requires a path
	cfg2 := DefaultConfig()
	cfg2.Sink.Type = "file"
	cfg2.Sink.File.Path = ""
	if err := cfg2.Validate(); err == nil {
		t.Fatal("expected error when sink.type=file and sink.file.path is empty")
	}
	cfg2.Sink.File.Path = filepath.Join(t.TempDir(), "out.log")
	if err := cfg2.Validate(); err != nil {
		t.Fatalf("unexpected error for valid file sink: %v", err)
	}

	// Backend sinks require their connection settings
	cfg3 := DefaultConfig()
	cfg3.Sink.Type = "kafka"
	if err := cfg3.Validate(); err == nil {
		t.Fatal("expected error when sink.type=kafka with no brokers")
	}
	cfg3.Sink.Kafka.Brokers = []string{"localhost:9092"}
	cfg3.Sink.Kafka.Topic = "lines"
	if err := cfg3.Validate(); err != nil {
		t.Fatalf("unexpected error for valid kafka sink: %v", err)
	}
}

func TestValidate_Engine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.FlushInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero flush-interval")
	}

	cfg = DefaultConfig()
	cfg.Engine.BatchSize = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative batch-size")
	}
}

func TestValidate_Prometheus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prometheus.Enable = true
	cfg.Prometheus.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when prometheus enabled without addr")
	}
}

func TestLoadFromViper_WithConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[engine]
flush-interval = "2s"
batch-size = 50

[sink]
type = "sqlite"

[sink.sqlite]
path = "/tmp/journal.db"

[prometheus]
enable = true
addr = ":2199"
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ConfigFile = configPath
	cmd := &cobra.Command{Use: "batchq-test"}
	cfg.SetupFlags(cmd)

	if err := cfg.LoadFromViper(cmd); err != nil {
		t.Fatalf("LoadFromViper failed: %v", err)
	}

	if cfg.Engine.FlushInterval != 2*time.Second {
		t.Fatalf("engine.flush-interval = %v, want 2s", cfg.Engine.FlushInterval)
	}
	if cfg.Engine.BatchSize != 50 {
		t.Fatalf("engine.batch-size = %d, want 50", cfg.Engine.BatchSize)
	}
	if cfg.Sink.Type != "sqlite" {
		t.Fatalf("sink.type = %q, want sqlite", cfg.Sink.Type)
	}
	if cfg.Sink.SQLite.Path != "/tmp/journal.db" {
		t.Fatalf("sink.sqlite.path = %q", cfg.Sink.SQLite.Path)
	}
	if !cfg.Prometheus.Enable || cfg.Prometheus.Addr != ":2199" {
		t.Fatalf("prometheus config not loaded: %+v", cfg.Prometheus)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}
