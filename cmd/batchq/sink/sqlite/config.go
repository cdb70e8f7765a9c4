package sqlite

import "fmt"

// Config holds the sqlite journal sink settings.
type Config struct {
	Path string `mapstructure:"path"`
}

func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sink.sqlite.path must be set when sink.type is 'sqlite'")
	}
	return nil
}
