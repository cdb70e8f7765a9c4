package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// getMetric returns the value of a metric by its fully-qualified name from gathered families.
func getMetric(mfs []*dto.MetricFamily, name string) float64 {
	for _, mf := range mfs {
		if mf.GetName() == name {
			if len(mf.Metric) > 0 {
				m := mf.Metric[0]
				switch mf.GetType() {
				case dto.MetricType_COUNTER:
					return m.GetCounter().GetValue()
				case dto.MetricType_HISTOGRAM:
					return float64(m.GetHistogram().GetSampleCount())
				}
			}
		}
	}
	return 0
}

func TestRegisterAndCounters(t *testing.T) {
	reg := prometheus.NewRegistry()

	// First registration should succeed
	if err := Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	// Second registration should be idempotent (ignore AlreadyRegistered)
	if err := Register(reg); err != nil {
		t.Fatalf("Register (second) failed: %v", err)
	}

	// Capture baseline values (collectors are globals; use deltas for assertions)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	baseAdded := getMetric(mfs, "batchq_items_added_total")
	baseFlush := getMetric(mfs, "batchq_flush_total")
	baseFailures := getMetric(mfs, "batchq_flush_failures_total")
	baseSizes := getMetric(mfs, "batchq_flush_batch_size")

	IncAdded(3)
	IncAdded(0) // no-op
	FlushObserve(2, 5*time.Millisecond, true)
	FlushObserve(1, time.Millisecond, false)
	FlushObserve(0, time.Millisecond, true) // empty invocation: duration only

	mfs2, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather 2 failed: %v", err)
	}

	if got := getMetric(mfs2, "batchq_items_added_total") - baseAdded; got != 3 {
		t.Fatalf("items_added_total delta = %v, want 3", got)
	}
	if got := getMetric(mfs2, "batchq_flush_total") - baseFlush; got != 2 {
		t.Fatalf("flush_total delta = %v, want 2", got)
	}
	if got := getMetric(mfs2, "batchq_flush_failures_total") - baseFailures; got != 1 {
		t.Fatalf("flush_failures_total delta = %v, want 1", got)
	}
	if got := getMetric(mfs2, "batchq_flush_batch_size") - baseSizes; got != 2 {
		t.Fatalf("flush_batch_size sample delta = %v, want 2", got)
	}
}
