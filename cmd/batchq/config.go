package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/loykin/batchq/cmd/batchq/metrics"
	"github.com/loykin/batchq/cmd/batchq/sink/clickhouse"
	"github.com/loykin/batchq/cmd/batchq/sink/console"
	"github.com/loykin/batchq/cmd/batchq/sink/kafka"
	"github.com/loykin/batchq/cmd/batchq/sink/opensearch"
	"github.com/loykin/batchq/cmd/batchq/sink/redis"
	"github.com/loykin/batchq/cmd/batchq/sink/sqlite"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EngineConfig holds the batching engine options.
type EngineConfig struct {
	FlushInterval time.Duration `mapstructure:"flush-interval"`
	BatchSize     int           `mapstructure:"batch-size"`
}

// SinkConfig selects and configures the publish backend.
type SinkConfig struct {
	Type    string            `mapstructure:"type"` // "console", "file", "clickhouse", "opensearch", "sqlite", "kafka", "redis"
	Include []string          `mapstructure:"include"`
	Exclude []string          `mapstructure:"exclude"`
	Host    string            `mapstructure:"host"`   // override host; default os.Hostname()
	Labels  map[string]string `mapstructure:"labels"` // optional key-value labels

	Console    console.Config     `mapstructure:"console"`
	File       console.FileConfig `mapstructure:"file"`
	ClickHouse clickhouse.Config  `mapstructure:"clickhouse"`
	OpenSearch opensearch.Config  `mapstructure:"opensearch"`
	SQLite     sqlite.Config      `mapstructure:"sqlite"`
	Kafka      kafka.Config       `mapstructure:"kafka"`
	Redis      redis.Config       `mapstructure:"redis"`
}

// LogConfig holds slog output options. When File is set, output goes
// through a size-rotated file instead of stderr.
type LogConfig struct {
	Level      string `mapstructure:"level"` // debug, info, warn, error
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
}

// Config holds all configuration options for the batchq application.
type Config struct {
	// Optional config file path (flag/env only)
	ConfigFile string
	// Batching engine configuration (nested)
	Engine EngineConfig `mapstructure:"engine"`
	// Publish sink (nested)
	Sink SinkConfig `mapstructure:"sink"`
	// Metrics/Prometheus options
	Prometheus metrics.Config `mapstructure:"prometheus"`
	// Logging options
	Log LogConfig `mapstructure:"log"`
}

// LoadFromViper binds flags to viper, reads file/env, and populates the Config fields via mapstructure.
func (c *Config) LoadFromViper(cmd *cobra.Command) error {
	v := viper.GetViper()
	v.SetEnvPrefix("BATCHQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind all flags
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Determine config file path: --config flag or BATCHQ_CONFIG env; no auto-defaults
	if c.ConfigFile == "" {
		// Viper AutomaticEnv binds BATCHQ_CONFIG to key "config"
		c.ConfigFile = v.GetString("config")
	}
	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into this Config using mapstructure with proper tagname and duration hooks
	if err := v.Unmarshal(c); err != nil {
		return err
	}
	return nil
}

// SetupFlags adds all command line flags to the provided cobra command
func (c *Config) SetupFlags(cmd *cobra.Command) {
	// Config file
	cmd.Flags().StringVar(&c.ConfigFile, "config", c.ConfigFile, "Path to config file (yaml/json/toml)")

	// Engine flags (write directly into nested struct)
	cmd.Flags().DurationVarP(&c.Engine.FlushInterval, "flush-interval", "i", c.Engine.FlushInterval, "Auto-flush cadence for buffered lines")
	cmd.Flags().IntVarP(&c.Engine.BatchSize, "batch-size", "b", c.Engine.BatchSize, "Max lines per publish (0 delivers everything drained in one call)")

	// Sink backend options are intentionally not exposed as command-line flags.
	// Configure the sink (type, filters, and backend credentials) via config
	// file (e.g., --config or BATCHQ_CONFIG) or environment variables
	// (BATCHQ_SINK_TYPE, BATCHQ_SINK_CLICKHOUSE_ADDR, etc.).
	cmd.Flags().StringVarP(&c.Sink.Type, "sink-type", "t", c.Sink.Type, "Sink backend (console, file, clickhouse, opensearch, sqlite, kafka, redis)")

	// Prometheus flags
	cmd.Flags().BoolVar(&c.Prometheus.Enable, "prometheus.enable", c.Prometheus.Enable, "Enable Prometheus metrics HTTP endpoint")
	cmd.Flags().StringVar(&c.Prometheus.Addr, "prometheus.addr", c.Prometheus.Addr, "Prometheus metrics listen address (e.g., :2112)")

	// Log flags
	cmd.Flags().StringVar(&c.Log.Level, "log.level", c.Log.Level, "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&c.Log.File, "log.file", c.Log.File, "Log file path (rotated); empty logs to stderr")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Engine validation
	if c.Engine.FlushInterval <= 0 {
		return fmt.Errorf("engine.flush-interval must be > 0")
	}
	if c.Engine.BatchSize < 0 {
		return fmt.Errorf("engine.batch-size must not be negative")
	}

	// Sink validation
	switch c.Sink.Type {
	case "console", "file", "clickhouse", "opensearch", "sqlite", "kafka", "redis":
		// ok
	default:
		return fmt.Errorf("invalid sink.type: %s", c.Sink.Type)
	}
	switch c.Sink.Type {
	case "console":
		if c.Sink.Console.Stream != "" && c.Sink.Console.Stream != "stdout" && c.Sink.Console.Stream != "stderr" {
			return fmt.Errorf("sink.console.stream must be 'stdout' or 'stderr'")
		}
	case "file":
		if err := c.Sink.File.Validate(); err != nil {
			return err
		}
	case "clickhouse":
		if err := c.Sink.ClickHouse.Validate(); err != nil {
			return err
		}
	case "opensearch":
		if err := c.Sink.OpenSearch.Validate(); err != nil {
			return err
		}
	case "sqlite":
		if err := c.Sink.SQLite.Validate(); err != nil {
			return err
		}
	case "kafka":
		if err := c.Sink.Kafka.Validate(); err != nil {
			return err
		}
	case "redis":
		if err := c.Sink.Redis.Validate(); err != nil {
			return err
		}
	}

	// Basic validation for prometheus addr if enabled
	if c.Prometheus.Enable && c.Prometheus.Addr == "" {
		return fmt.Errorf("prometheus.addr must be set when prometheus.enable is true")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}

	return nil
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			FlushInterval: 500 * time.Millisecond,
			BatchSize:     200,
		},
		Sink: SinkConfig{
			Type:    "console",
			Include: []string{},
			Exclude: []string{},
			Labels:  map[string]string{},
			Console: console.Config{Stream: "stdout"},
		},
		Prometheus: metrics.Config{Enable: false, Addr: ":2112"},
		Log:        LogConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3},
	}
}
