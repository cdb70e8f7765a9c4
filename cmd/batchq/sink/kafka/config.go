package kafka

import "fmt"

// Config holds Kafka sink connection settings.
type Config struct {
	Brokers  []string `mapstructure:"brokers"` // host:9092 list
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client-id"`
}

func (c Config) Validate() error {
	if len(c.Brokers) == 0 || c.Topic == "" {
		return fmt.Errorf("sink.kafka requires brokers and topic")
	}
	return nil
}
