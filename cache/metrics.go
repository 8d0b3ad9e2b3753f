package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters of a FitCache.
type Metrics struct {
	Hits         prometheus.Counter
	Misses       prometheus.Counter
	Errors       *prometheus.CounterVec
	PayloadBytes prometheus.Histogram
}

// NewMetrics creates the cache metrics and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "enbfit",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Analyses served from the cache",
		}),
		Misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "enbfit",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Analyses computed because no cached entry was found",
		}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enbfit",
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Cache store or payload failures by operation",
		}, []string{"op"}),
		PayloadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "enbfit",
			Subsystem: "cache",
			Name:      "payload_bytes",
			Help:      "Size of stored payloads after compression",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}),
	}
}
