package redis

import "fmt"

// Config holds Redis sink connection settings.
type Config struct {
	Addr     string `mapstructure:"addr"` // host:6379
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"` // list key receiving lines
}

func (c Config) Validate() error {
	if c.Addr == "" || c.Key == "" {
		return fmt.Errorf("sink.redis requires addr and key")
	}
	return nil
}
