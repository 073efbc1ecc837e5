// Package metrics keeps local operational counters in an embedded
// time-series store under the application workdir.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

const (
	MetricApiRequests      = "api_requests"
	MetricScaffoldRuns     = "scaffold_runs"
	MetricEmailsSent       = "emails_sent"
	MetricRateLimitRejects = "ratelimit_rejects"
	MetricVendorErrors     = "vendor_errors"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the embedded store under workdir/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// Inc records one occurrence of metric at the current time. A no-op before
// InitMetrics succeeds, so callers never need to guard.
func Inc(metric string) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    metric,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: 1},
	}})
}

// Range returns the raw data points for metric between start and end (unix
// seconds).
func Range(metric string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(metric, nil, start, end)
	if err == tstorage.ErrNoDataPoints {
		return nil, nil
	}
	return points, err
}

// Close flushes and closes the store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
