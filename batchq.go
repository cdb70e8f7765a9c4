// Package batchq provides a simplified, stable root-level API for external users.
//
// Instead of importing internal subpackages, consumers can just:
//
//	import "github.com/loykin/batchq"
//
// and then use batchq.New and batchq.Config directly.
//
// An Engine accumulates items and delivers them, in submission order, to a
// single registered handler: periodically via the auto-flush timer, or on
// demand via Flush. Handler failures are routed to the configured error
// observer and never interrupt later deliveries.
package batchq

import (
	"github.com/loykin/batchq/internal/engine"
	"github.com/loykin/batchq/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Config re-exports engine.Config for convenient use from the module root.
// This is a type alias, so it's fully compatible with the underlying type.
type Config = engine.Config

// Engine re-exports engine.Engine so callers can keep the concrete type
// when using the root-level constructor.
type Engine[T any] = engine.Engine[T]

// Handler re-exports the handler callback shape.
type Handler[T any] = engine.Handler[T]

// DefaultFlushInterval is the auto-flush cadence used when the config
// leaves FlushInterval unset.
const DefaultFlushInterval = engine.DefaultFlushInterval

// New constructs a new Engine for items of type T using the provided
// configuration. It is a thin wrapper around engine.New.
func New[T any](cfg Config) (*Engine[T], error) {
	return engine.New[T](cfg)
}

// StartMetrics registers batchq metrics on the default Prometheus registry and starts an HTTP server.
// It returns a stop function to gracefully shut down the metrics server.
func StartMetrics(addr string) (func() error, error) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}
	srv, err := metrics.Start(addr)
	if err != nil {
		return nil, err
	}
	return srv.Stop, nil
}
