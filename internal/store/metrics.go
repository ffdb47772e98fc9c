package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filecabinet_store_operations_total",
		Help: "Store operations by backend, operation and outcome",
	}, []string{"backend", "op", "status"})

	findDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filecabinet_store_find_duration_seconds",
		Help:    "Time spent answering Find",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"backend"})

	findCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filecabinet_store_find_cache_total",
		Help: "Memory store query cache lookups by result",
	}, []string{"result"})

	purgedSlotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filecabinet_store_purged_slots_total",
		Help: "Deleted slots reclaimed by Purge",
	})

	restoreFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filecabinet_store_restore_failures_total",
		Help: "Records rejected during Restore",
	})
)

func observe(backend, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operationsTotal.WithLabelValues(backend, op, status).Inc()
}
