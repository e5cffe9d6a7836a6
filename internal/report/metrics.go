package report

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/psantana5/vaultmod/pkg/models"
)

// Metrics counts type resolutions and coercions. It satisfies both
// typeresolve.Recorder and coerce.Recorder.
//
// Counters live in a private prometheus registry so several instances can
// coexist in one process.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	coercions   *prometheus.CounterVec
	cacheSize   prometheus.GaugeFunc

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	coerced     atomic.Uint64
	failed      atomic.Uint64
}

// NewMetrics creates and registers the counters. cacheSize may be nil.
func NewMetrics(cacheSize func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultmod_type_resolutions_total",
				Help: "Wrapper type resolutions by cache result",
			},
			[]string{"result"}, // "hit", "miss"
		),
		coercions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultmod_coercions_total",
				Help: "Literal coercions by path and outcome",
			},
			[]string{"path", "outcome"}, // outcome: "ok" or an error kind
		),
	}
	m.registry.MustRegister(m.resolutions, m.coercions)

	if cacheSize != nil {
		m.cacheSize = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "vaultmod_type_cache_entries",
				Help: "Resolved wrapper types held in the type cache",
			},
			cacheSize,
		)
		m.registry.MustRegister(m.cacheSize)
	}
	return m
}

// RecordResolution implements typeresolve.Recorder
func (m *Metrics) RecordResolution(hit bool) {
	if hit {
		m.cacheHits.Add(1)
		m.resolutions.WithLabelValues("hit").Inc()
		return
	}
	m.cacheMisses.Add(1)
	m.resolutions.WithLabelValues("miss").Inc()
}

// RecordCoercion implements coerce.Recorder
func (m *Metrics) RecordCoercion(path string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = models.ErrorTypeOf(err).String()
		m.failed.Add(1)
	} else {
		m.coerced.Add(1)
	}
	m.coercions.WithLabelValues(path, outcome).Inc()
}

// Registry returns the gatherer holding the counters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot returns current counter values
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"cache_hits":   m.cacheHits.Load(),
		"cache_misses": m.cacheMisses.Load(),
		"coerced":      m.coerced.Load(),
		"failed":       m.failed.Load(),
	}
}

// Export renders all counters in the Prometheus text format
func (m *Metrics) Export() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return "", fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return buf.String(), nil
}
