// Package kafka provides a publisher producing batches to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/loykin/batchq/cmd/batchq/sink/common"
)

// Publisher produces one Kafka message per line; a whole batch is handed
// to the broker in a single SendMessages round trip. Sarama's own retry
// settings cover transient broker failures.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	host     string
}

func New(cfg Config, host string) (common.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Retry.Backoff = 250 * time.Millisecond
	if cfg.ClientID != "" {
		saramaConfig.ClientID = cfg.ClientID
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Publisher{producer: producer, topic: cfg.Topic, host: host}, nil
}

// newWithProducer is used by tests to inject a mock producer.
func newWithProducer(producer sarama.SyncProducer, topic, host string) *Publisher {
	return &Publisher{producer: producer, topic: topic, host: host}
}

func (p *Publisher) Publish(_ context.Context, lines []string) error {
	msgs := make([]*sarama.ProducerMessage, 0, len(lines))
	for _, ln := range lines {
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(p.host),
			Value: sarama.StringEncoder(ln),
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("kafka batch send failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
