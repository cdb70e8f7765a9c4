// Package console provides publishers writing batches to stdout, stderr,
// or a plain file.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loykin/batchq/cmd/batchq/sink/common"
)

type Config struct {
	Stream string `mapstructure:"stream"` // stdout or stderr
}

// FileConfig holds the file publisher settings.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

func (c FileConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sink.file.path must be set when sink.type is 'file'")
	}
	return nil
}

type writerPublisher struct {
	w io.Writer
	c io.Closer
}

// New returns a console publisher writing to stdout or stderr depending on stream.
// stream: "stdout" (default) or "stderr".
func New(cfg Config) common.Publisher {
	w := os.Stdout
	if strings.ToLower(cfg.Stream) == "stderr" {
		w = os.Stderr
	}
	return &writerPublisher{w: w}
}

// NewFile creates a publisher appending batches to a file.
func NewFile(cfg FileConfig) (common.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &writerPublisher{w: f, c: f}, nil
}

// newWriter is used by tests to publish into an arbitrary writer.
func newWriter(w io.Writer) common.Publisher {
	return &writerPublisher{w: w}
}

func (p *writerPublisher) Publish(_ context.Context, lines []string) error {
	var errs []error
	for _, ln := range lines {
		if _, err := fmt.Fprintln(p.w, ln); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *writerPublisher) Close() error {
	if p.c != nil {
		return p.c.Close()
	}
	return nil
}
