package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	addedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "batchq",
		Name:      "items_added_total",
		Help:      "Total number of items appended to engine buffers.",
	})
	flushTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "batchq",
		Name:      "flush_total",
		Help:      "Total number of handler invocations with at least one item.",
	})
	flushFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "batchq",
		Name:      "flush_failures_total",
		Help:      "Total number of handler invocations that returned an error.",
	})
	batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "batchq",
		Name:      "flush_batch_size",
		Help:      "Number of items per handler invocation.",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	flushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "batchq",
		Name:      "flush_duration_seconds",
		Help:      "Duration of handler invocations in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register registers all batchq engine metrics to the provided Prometheus
// registerer. It is safe to call multiple times; AlreadyRegisteredError
// will be ignored.
func Register(r prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		addedTotal, flushTotal, flushFailuresTotal, batchSize, flushDuration,
	}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			var alreadyRegisteredError prometheus.AlreadyRegisteredError
			if errors.As(err, &alreadyRegisteredError) {
				continue
			}
			return err
		}
	}
	return nil
}

// IncAdded increments the appended items counter by n.
func IncAdded(n int) {
	if n > 0 {
		addedTotal.Add(float64(n))
	}
}

// FlushObserve records one handler invocation: batch size, duration,
// and success or failure.
func FlushObserve(size int, dur time.Duration, success bool) {
	if size > 0 {
		batchSize.Observe(float64(size))
		flushTotal.Inc()
	}
	flushDuration.Observe(dur.Seconds())
	if !success {
		flushFailuresTotal.Inc()
	}
}
