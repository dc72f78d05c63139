// Package metrics exposes Prometheus instrumentation for the in-memory caches.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics holds the counters of one named cache.
// A nil *CacheMetrics is valid and records nothing.
type CacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	evictions prometheus.Counter
	failures  prometheus.Counter
	size      prometheus.Gauge
}

// NewCacheMetrics creates the metrics for the cache called name and registers
// them with reg. Registering the same name twice reuses the existing collectors.
func NewCacheMetrics(reg prometheus.Registerer, name string) *CacheMetrics {
	labels := prometheus.Labels{"cache": name}
	m := &CacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "contentrest",
			Subsystem:   "cache",
			Name:        "hits_total",
			ConstLabels: labels,
			Help:        "Total number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "contentrest",
			Subsystem:   "cache",
			Name:        "misses_total",
			ConstLabels: labels,
			Help:        "Total number of cache misses",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "contentrest",
			Subsystem:   "cache",
			Name:        "sets_total",
			ConstLabels: labels,
			Help:        "Total number of cache writes",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "contentrest",
			Subsystem:   "cache",
			Name:        "evictions_total",
			ConstLabels: labels,
			Help:        "Total number of entries evicted after expiry",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "contentrest",
			Subsystem:   "cache",
			Name:        "fill_failures_total",
			ConstLabels: labels,
			Help:        "Total number of lookups whose fill could not be cached",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "contentrest",
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of entries in cache",
		}),
	}

	m.hits = register(reg, m.hits)
	m.misses = register(reg, m.misses)
	m.sets = register(reg, m.sets)
	m.evictions = register(reg, m.evictions)
	m.failures = register(reg, m.failures)
	m.size = register(reg, m.size)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Hit records a cache hit.
func (m *CacheMetrics) Hit() {
	if m != nil {
		m.hits.Inc()
	}
}

// Miss records a cache miss.
func (m *CacheMetrics) Miss() {
	if m != nil {
		m.misses.Inc()
	}
}

// Set records a write and the resulting size.
func (m *CacheMetrics) Set(size int) {
	if m != nil {
		m.sets.Inc()
		m.size.Set(float64(size))
	}
}

// Evict records n evictions and the resulting size.
func (m *CacheMetrics) Evict(n, size int) {
	if m != nil {
		m.evictions.Add(float64(n))
		m.size.Set(float64(size))
	}
}

// Failure records a fill that was not cached.
func (m *CacheMetrics) Failure() {
	if m != nil {
		m.failures.Inc()
	}
}

// Resize records the current size.
func (m *CacheMetrics) Resize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
