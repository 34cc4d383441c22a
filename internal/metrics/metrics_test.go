package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	r := NewRegistry()
	c := r.Counter("test_ops_total", "Test operations")

	c.Inc()
	c.Add(4)
	assert.Equal(t, int64(5), c.Value())

	// Same name returns the same instrument.
	again := r.Counter("test_ops_total", "Test operations")
	again.Inc()
	assert.Equal(t, int64(6), c.Value())
}

func TestGauge(t *testing.T) {
	r := NewRegistry()
	g := r.Gauge("test_depth", "Test depth")

	g.Set(2.5)
	assert.InDelta(t, 2.5, g.Get(), 1e-9)
	g.Add(-1.0)
	assert.InDelta(t, 1.5, g.Get(), 1e-9)
}

func TestCounterConcurrency(t *testing.T) {
	r := NewRegistry()
	c := r.Counter("test_concurrent_total", "Concurrent increments")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8000), c.Value())
}

func TestExportFormat(t *testing.T) {
	r := NewRegistry()
	r.Counter("test_a_total", "Counter A").Add(3)
	r.Gauge("test_b", "Gauge B").Set(1.5)
	h := r.Histogram("test_c_seconds", "Histogram C", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)

	out := r.Export()

	assert.Contains(t, out, "# HELP test_a_total Counter A")
	assert.Contains(t, out, "# TYPE test_a_total counter")
	assert.Contains(t, out, "test_a_total 3")
	assert.Contains(t, out, "# TYPE test_b gauge")
	assert.Contains(t, out, "# TYPE test_c_seconds histogram")
	assert.Contains(t, out, `test_c_seconds_bucket{le="0.1"} 1`)
	assert.Contains(t, out, `test_c_seconds_bucket{le="1"} 2`)
	assert.Contains(t, out, `test_c_seconds_bucket{le="+Inf"} 3`)
	assert.Contains(t, out, "test_c_seconds_count 3")

	// Runtime gauges ride along.
	assert.Contains(t, out, "go_goroutines")
	assert.Contains(t, out, "process_uptime_seconds")
}

func TestExportDeterministicOrder(t *testing.T) {
	r := NewRegistry()
	r.Counter("test_z_total", "Z").Inc()
	r.Counter("test_a_total", "A").Inc()
	r.Counter("test_m_total", "M").Inc()

	out := r.Export()
	ia := strings.Index(out, "test_a_total")
	im := strings.Index(out, "test_m_total")
	iz := strings.Index(out, "test_z_total")
	require.True(t, ia >= 0 && im >= 0 && iz >= 0)
	assert.Less(t, ia, im)
	assert.Less(t, im, iz)
}

func TestDefaultInstrumentsRegistered(t *testing.T) {
	out := Default().Export()
	for _, name := range []string{
		"aerowake_simulation_runs_total",
		"aerowake_pinch_events_total",
		"aerowake_http_requests_total",
		"aerowake_simulation_latency_seconds",
		"aerowake_airports_registered",
	} {
		assert.Contains(t, out, name)
	}
}
