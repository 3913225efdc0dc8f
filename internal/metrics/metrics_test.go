package metrics_test

import (
	"testing"

	"gym_backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RecordResolution("sms", "global")
	m.RecordResolution("sms", "global")
	m.RecordResolution("sms", "default")
	m.RecordStoreError("find")
	m.RecordDecryptFailure("email")
	m.RecordWrite("email", "denied")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("sms", "global")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("sms", "default")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("find")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecryptFailures.WithLabelValues("email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Writes.WithLabelValues("email", "denied")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestNilCollectorIsSafe(t *testing.T) {
	var m *metrics.Collector
	assert.NotPanics(t, func() {
		m.RecordResolution("sms", "global")
		m.RecordStoreError("find")
		m.RecordDecryptFailure("sms")
		m.RecordWrite("sms", "ok")
	})
}
