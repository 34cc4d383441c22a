// Package metrics implements a small Prometheus-text-format registry:
// counters, gauges, and histograms with atomic updates, plus runtime
// sections, exported over the /metrics endpoint.
package metrics

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Registry holds all application metrics. Instrument lookups are
// get-or-create, so handlers can call Counter(...) on the hot path.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	histos   map[string]*Histogram

	startTime time.Time
}

// NewRegistry creates an empty metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Counter),
		gauges:    make(map[string]*Gauge),
		histos:    make(map[string]*Histogram),
		startTime: time.Now(),
	}
}

// Counter returns or creates a counter metric.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{name: name, help: help}
	r.counters[name] = c
	return c
}

// Gauge returns or creates a gauge metric.
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: name, help: help}
	r.gauges[name] = g
	return g
}

// Histogram returns or creates a histogram metric with the given buckets.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.histos[name]; ok {
		return h
	}
	h := NewHistogram(name, help, buckets)
	r.histos[name] = h
	return h
}

// Export renders the registry in Prometheus text format. Instruments are
// emitted in name order so successive scrapes diff cleanly.
func (r *Registry) Export() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	writeGaugeLine(&b, "go_memstats_alloc_bytes", "Number of bytes allocated and still in use.", float64(memStats.Alloc))
	writeGaugeLine(&b, "go_memstats_heap_inuse_bytes", "Number of heap bytes in use.", float64(memStats.HeapInuse))
	writeGaugeLine(&b, "go_memstats_sys_bytes", "Number of bytes obtained from system.", float64(memStats.Sys))
	writeGaugeLine(&b, "go_gc_duration_seconds", "Total GC pause duration.", float64(memStats.PauseTotalNs)/1e9)
	writeGaugeLine(&b, "go_goroutines", "Number of goroutines.", float64(runtime.NumGoroutine()))
	writeGaugeLine(&b, "process_uptime_seconds", "Time since process start.", time.Since(r.startTime).Seconds())

	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.name, c.help, c.name, c.name, c.value.Load())
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %f\n", g.name, g.help, g.name, g.name, g.Get())
	}
	for _, name := range sortedKeys(r.histos) {
		r.histos[name].export(&b)
	}

	return b.String()
}

func writeGaugeLine(b *strings.Builder, name, help string, v float64) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s gauge\n%s %f\n", name, help, name, name, v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---------------------------------------------------------------------------
// Counter
// ---------------------------------------------------------------------------

// Counter is a monotonically increasing metric.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds the given value to the counter.
func (c *Counter) Add(v int64) {
	c.value.Add(v)
}

// Value returns the current counter value.
func (c *Counter) Value() int64 {
	return c.value.Load()
}

// ---------------------------------------------------------------------------
// Gauge
// ---------------------------------------------------------------------------

// Gauge is a metric that can go up and down. The float value lives in an
// atomic uint64 via math.Float64bits.
type Gauge struct {
	name string
	help string
	bits atomic.Uint64
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Add adds the given value to the gauge.
func (g *Gauge) Add(v float64) {
	for {
		old := g.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + v)
		if g.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Get returns the current gauge value.
func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// Histogram tracks value distributions with cumulative buckets.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	counts  []atomic.Int64
	sum     atomic.Int64
	count   atomic.Int64
}

// NewHistogram creates a histogram with the given bucket upper bounds.
func NewHistogram(name, help string, buckets []float64) *Histogram {
	return &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]atomic.Int64, len(buckets)),
	}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	for i, bound := range h.buckets {
		if v <= bound {
			h.counts[i].Add(1)
		}
	}
	h.sum.Add(int64(v * 1e6)) // microsecond fixed-point
	h.count.Add(1)
}

func (h *Histogram) export(b *strings.Builder) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	for i, bound := range h.buckets {
		fmt.Fprintf(b, "%s_bucket{le=\"%g\"} %d\n", h.name, bound, h.counts[i].Load())
	}
	fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", h.name, h.count.Load())
	fmt.Fprintf(b, "%s_sum %f\n", h.name, float64(h.sum.Load())/1e6)
	fmt.Fprintf(b, "%s_count %d\n", h.name, h.count.Load())
}

// ---------------------------------------------------------------------------
// Default registry and application instruments
// ---------------------------------------------------------------------------

var defaultRegistry = NewRegistry()

// Default returns the default metrics registry.
func Default() *Registry {
	return defaultRegistry
}

var (
	// Simulation metrics
	SimulationRuns    = defaultRegistry.Counter("aerowake_simulation_runs_total", "Total roster simulations")
	SimulationErrors  = defaultRegistry.Counter("aerowake_simulation_errors_total", "Total failed simulations")
	DutiesSimulated   = defaultRegistry.Counter("aerowake_duties_simulated_total", "Total duties simulated")
	PinchEvents       = defaultRegistry.Counter("aerowake_pinch_events_total", "Total pinch events detected")
	CriticalDuties    = defaultRegistry.Counter("aerowake_critical_duties_total", "Duties classified critical or worse")
	SimulationLatency = defaultRegistry.Histogram("aerowake_simulation_latency_seconds", "Roster simulation latency", []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})

	// Storage metrics
	AnalysesStored = defaultRegistry.Counter("aerowake_analyses_stored_total", "Analyses written to storage")
	StoreErrors    = defaultRegistry.Counter("aerowake_store_errors_total", "Storage operation failures")

	// HTTP metrics
	HTTPRequests = defaultRegistry.Counter("aerowake_http_requests_total", "Total HTTP requests")
	HTTPLatency  = defaultRegistry.Histogram("aerowake_http_latency_seconds", "HTTP request latency", []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})

	// Registry metrics
	AirportsRegistered = defaultRegistry.Gauge("aerowake_airports_registered", "Airports in the registry")
)
