package tracelib

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "tracemap"

// Metrics is a set of prometheus collectors for the resolution
// pipeline. A nil *Metrics is valid and does nothing.
type Metrics struct {
	providerLookups *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	hopsResolved    *prometheus.CounterVec
	traceDuration   prometheus.Histogram
}

func (m *Metrics) providerLookup(name string, err error) {
	if m == nil {
		return
	}

	var rateLimitErr *RateLimitError

	result := "success"

	switch {
	case errors.As(err, &rateLimitErr):
		result = "rate_limited"
	case err != nil:
		result = "failure"
	}

	m.providerLookups.WithLabelValues(name, result).Inc()
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}

	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) hopResolved(strategy string) {
	if m == nil {
		return
	}

	m.hopsResolved.WithLabelValues(strategy).Inc()
}

func (m *Metrics) traceResolved(started time.Time) {
	if m == nil {
		return
	}

	m.traceDuration.Observe(time.Since(started).Seconds())
}

// Register registers all collectors in the given registerer.
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.providerLookups,
		m.cacheLookups,
		m.hopsResolved,
		m.traceDuration,
	}

	for _, v := range collectors {
		if err := registerer.Register(v); err != nil {
			return err
		}
	}

	return nil
}

// NewMetrics creates a new set of collectors. They are not registered
// anywhere yet.
func NewMetrics() *Metrics {
	return &Metrics{
		providerLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_lookups_total",
			Help:      "Number of geolocation provider calls by result.",
		}, []string{"provider", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Number of address cache lookups.",
		}, []string{"result"}),
		hopsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "hops_resolved_total",
			Help:      "Number of hops by a strategy which has located them.",
		}, []string{"strategy"}),
		traceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "trace_resolve_duration_seconds",
			Help:      "Time spent to resolve a whole trace.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}
