package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/loykin/batchq/cmd/batchq/sink/common"
	osclient "github.com/opensearch-project/opensearch-go"
	"github.com/opensearch-project/opensearch-go/opensearchutil"
)

// Publisher bulk-indexes batches into an OpenSearch index. Transient bulk
// failures are retried with exponential backoff before the batch is
// reported failed.
type Publisher struct {
	client *osclient.Client
	index  string
	host   string
	labels map[string]string
}

func New(cfg Config, host string, labels map[string]string) (common.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clientCfg := osclient.Config{Addresses: []string{cfg.URL}}
	if cfg.User != "" {
		clientCfg.Username = cfg.User
		clientCfg.Password = cfg.Password
	}
	cli, err := osclient.NewClient(clientCfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		client: cli,
		index:  cfg.Index,
		host:   host,
		labels: labels,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, lines []string) error {
	bulk := func() error {
		return p.bulk(ctx, lines)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	return backoff.Retry(bulk, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}

func (p *Publisher) bulk(ctx context.Context, lines []string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
		Client: p.client,
		Index:  p.index,
	})
	if err != nil {
		return err
	}
	for _, ln := range lines {
		doc := map[string]any{
			"@timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"message":    ln,
			"host":       p.host,
			"labels":     p.labels,
		}
		b, _ := json.Marshal(doc)
		err = bi.Add(ctx, opensearchutil.BulkIndexerItem{
			Action: "index",
			Body:   bytes.NewReader(b),
			OnFailure: func(ctx context.Context, item opensearchutil.BulkIndexerItem, resp opensearchutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Error("opensearch bulk item error", "error", err)
					return
				}
				slog.Error("opensearch bulk item failed", "status", resp.Status, "error", resp.Error)
			},
		})
		if err != nil {
			return err
		}
	}
	if err := bi.Close(ctx); err != nil {
		return err
	}
	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("opensearch bulk failed items: %d", stats.NumFailed)
	}
	return nil
}

func (p *Publisher) Close() error { return nil }
