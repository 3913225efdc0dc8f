// Package metrics provides Prometheus metrics for the settings subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gym"

// Collector holds the settings metrics.
type Collector struct {
	Resolutions     *prometheus.CounterVec
	StoreErrors     *prometheus.CounterVec
	DecryptFailures *prometheus.CounterVec
	Writes          *prometheus.CounterVec
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_resolutions_total",
				Help:      "Settings reads by category and the scope level that answered them",
			},
			[]string{"category", "source"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_store_errors_total",
				Help:      "Settings store failures swallowed on the read path",
			},
			[]string{"operation"},
		),
		DecryptFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_decrypt_failures_total",
				Help:      "Sensitive fields returned undecrypted because decryption failed",
			},
			[]string{"category"},
		),
		Writes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_writes_total",
				Help:      "Settings update attempts by category and result",
			},
			[]string{"category", "result"},
		),
	}
}

// RecordResolution counts a read answered at the given level.
func (c *Collector) RecordResolution(category, source string) {
	if c == nil {
		return
	}
	c.Resolutions.WithLabelValues(category, source).Inc()
}

// RecordStoreError counts a swallowed store failure.
func (c *Collector) RecordStoreError(operation string) {
	if c == nil {
		return
	}
	c.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordDecryptFailure counts a field left as stored ciphertext.
func (c *Collector) RecordDecryptFailure(category string) {
	if c == nil {
		return
	}
	c.DecryptFailures.WithLabelValues(category).Inc()
}

// RecordWrite counts an update attempt; result is "ok", "denied" or "error".
func (c *Collector) RecordWrite(category, result string) {
	if c == nil {
		return
	}
	c.Writes.WithLabelValues(category, result).Inc()
}
