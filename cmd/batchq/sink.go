package main

import (
	"fmt"
	"os"

	"github.com/loykin/batchq/cmd/batchq/sink/clickhouse"
	"github.com/loykin/batchq/cmd/batchq/sink/common"
	"github.com/loykin/batchq/cmd/batchq/sink/console"
	"github.com/loykin/batchq/cmd/batchq/sink/kafka"
	"github.com/loykin/batchq/cmd/batchq/sink/opensearch"
	"github.com/loykin/batchq/cmd/batchq/sink/redis"
	"github.com/loykin/batchq/cmd/batchq/sink/sqlite"
)

// Publisher is the common sink interface from subpackages.
type Publisher = common.Publisher

// buildSink constructs a publisher based on Config.
func buildSink(cfg *Config) (Publisher, error) {
	host := cfg.Sink.Host
	if host == "" {
		if h, err := os.Hostname(); err == nil {
			host = h
		}
	}
	switch cfg.Sink.Type {
	case "console":
		return console.New(cfg.Sink.Console), nil
	case "file":
		return console.NewFile(cfg.Sink.File)
	case "clickhouse":
		return clickhouse.New(cfg.Sink.ClickHouse, host, cfg.Sink.Labels)
	case "opensearch":
		return opensearch.New(cfg.Sink.OpenSearch, host, cfg.Sink.Labels)
	case "sqlite":
		return sqlite.New(cfg.Sink.SQLite, host)
	case "kafka":
		return kafka.New(cfg.Sink.Kafka, host)
	case "redis":
		return redis.New(cfg.Sink.Redis)
	default:
		return nil, fmt.Errorf("unsupported sink: %s", cfg.Sink.Type)
	}
}
