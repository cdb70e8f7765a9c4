// Package redis provides a publisher appending batches to a Redis list.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/loykin/batchq/cmd/batchq/sink/common"
	goredis "github.com/redis/go-redis/v9"
)

// Publisher pushes every line of a batch onto a Redis list with a single
// pipelined RPUSH, so one batch costs one round trip.
type Publisher struct {
	client *goredis.Client
	key    string
}

func New(cfg Config) (common.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Publisher{client: client, key: cfg.Key}, nil
}

func (p *Publisher) Publish(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	vals := make([]interface{}, len(lines))
	for i, ln := range lines {
		vals[i] = ln
	}
	pipe := p.client.Pipeline()
	pipe.RPush(ctx, p.key, vals...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis rpush failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
