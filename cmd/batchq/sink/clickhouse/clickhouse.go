package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/loykin/batchq/cmd/batchq/sink/common"
)

// Publisher inserts batches into a ClickHouse table. Each Publish call
// maps to one prepared INSERT batch; transient send failures are retried
// with exponential backoff before the batch is reported failed.
type Publisher struct {
	conn     ch.Conn
	database string
	table    string
	host     string
	labels   map[string]string
}

func New(cfg Config, host string, labels map[string]string) (common.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Build options: support HTTP and native
	var opts ch.Options
	if strings.Contains(cfg.Addr, "://") {
		u, err := url.Parse(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid ch addr: %w", err)
		}
		secure := u.Scheme == "https"
		opts = ch.Options{Addr: []string{u.Host}, Protocol: ch.HTTP, Auth: ch.Auth{Username: cfg.User, Password: cfg.Password, Database: cfg.Database}}
		if secure {
			opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	} else {
		opts = ch.Options{Addr: []string{cfg.Addr}, Auth: ch.Auth{Username: cfg.User, Password: cfg.Password, Database: cfg.Database}}
	}
	// Run embedded migrations to ensure table exists
	if err := runMigrations(&opts, cfg.Database, cfg.Table); err != nil {
		return nil, err
	}
	// Open insert connection
	conn, err := ch.Open(&opts)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		conn:     conn,
		database: cfg.Database,
		table:    cfg.Table,
		host:     host,
		labels:   labels,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, lines []string) error {
	insert := func() error {
		return p.insert(ctx, lines)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	return backoff.Retry(insert, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}

func (p *Publisher) insert(ctx context.Context, lines []string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	tbl := p.table
	if p.database != "" && !strings.Contains(tbl, ".") {
		tbl = p.database + "." + p.table
	}
	batch, err := p.conn.PrepareBatch(ctx, "INSERT INTO "+tbl+" (ts, host, labels, message)")
	if err != nil {
		return err
	}
	for _, ln := range lines {
		if err := batch.Append(time.Now(), p.host, p.labels, ln); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
