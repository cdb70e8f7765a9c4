package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loykin/batchq"
	cmdmetrics "github.com/loykin/batchq/cmd/batchq/metrics"
	"github.com/loykin/batchq/cmd/batchq/sink/common"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spf13/cobra"
)

func main() {
	config := DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "batchq",
		Short: "A batching forwarder that reads lines and publishes them in bulk",
		Long: `batchq reads lines from standard input, buffers them in an in-process
batching engine, and publishes each drained batch to a configured sink.

Examples:
  # Forward stdin to stdout in batches of up to 100 lines every second
  tail -f app.log | batchq --batch-size 100 --flush-interval 1s

  # Journal batches into a local sqlite database
  batchq --sink-type sqlite --config config.toml

  # Publish to Kafka with a metrics endpoint
  batchq --sink-type kafka --prometheus.enable --config config.toml`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadFromViper(cmd); err != nil {
				return err
			}
			return config.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForwarder(config)
		},
	}

	// Setup flags from config
	config.SetupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func runForwarder(config *Config) error {
	setupLogging(config.Log)

	// Optionally start Prometheus metrics endpoint
	var metricsStop = func() error { return nil }
	if config.Prometheus.Enable {
		// Register our metrics explicitly to the default registry to avoid library init-time side effects
		if err := cmdmetrics.Register(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("failed to register prometheus metrics: %w", err)
		}
		stop, err := batchq.StartMetrics(config.Prometheus.Addr)
		if err != nil {
			return fmt.Errorf("failed to start prometheus endpoint: %w", err)
		}
		metricsStop = stop
	}

	sink, err := buildSink(config)
	if err != nil {
		_ = metricsStop()
		return fmt.Errorf("error creating sink: %w", err)
	}

	sinkName := config.Sink.Type
	engine, err := batchq.New[string](batchq.Config{
		FlushInterval: config.Engine.FlushInterval,
		BatchSize:     config.Engine.BatchSize,
		OnError: func(err error) {
			slog.Error("publish failed", "sink", sinkName, "error", err)
		},
	})
	if err != nil {
		_ = metricsStop()
		return fmt.Errorf("error creating engine: %w", err)
	}

	engine.RegisterHandler(func(ctx context.Context, lines []string) error {
		start := time.Now()
		err := sink.Publish(ctx, lines)
		cmdmetrics.SinkFlushObserve(sinkName, len(lines), time.Since(start), err == nil)
		return err
	})

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	filter := &common.Filter{Includes: config.Sink.Include, Excludes: config.Sink.Exclude}

	// Read stdin until EOF on its own goroutine; producers never block.
	eofCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !filter.Allow(line) {
				cmdmetrics.SinkDropped(sinkName, "filtered")
				continue
			}
			engine.Add(line)
			cmdmetrics.SinkEnqueued(sinkName)
		}
		eofCh <- scanner.Err()
	}()

	select {
	case <-sigCh:
		slog.Info("shutting down on signal")
	case err := <-eofCh:
		if err != nil {
			slog.Error("stdin read failed", "error", err)
		}
	}

	// Deliver anything still buffered, then stop the timer and the sink.
	engine.Flush(context.Background())
	engine.StopAutoFlush()
	if err := sink.Close(); err != nil {
		slog.Error("sink close failed", "error", err)
	}
	return metricsStop()
}
