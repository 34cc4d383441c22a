// Package airports provides a thread-safe airport registry: IATA code to
// timezone and coordinate resolution for roster parsing and body-clock
// arithmetic.
//
// Concurrency: sync.RWMutex — Register takes a write lock, lookups take a
// read lock. Lookup returns a copy; callers never hold registry internals.
package airports

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cianfru/aerowake/pkg/models"
)

// Registry resolves IATA codes to airport records.
type Registry struct {
	mu    sync.RWMutex
	byIdx map[string]models.Airport
}

// New creates a Registry pre-seeded with the built-in airport table.
func New() *Registry {
	r := &Registry{byIdx: make(map[string]models.Airport, len(seed))}
	for _, a := range seed {
		r.byIdx[a.Code] = a
	}
	return r
}

// Register adds or replaces an airport record. The code is upper-cased.
func (r *Registry) Register(a models.Airport) error {
	a.Code = strings.ToUpper(strings.TrimSpace(a.Code))
	if len(a.Code) != 3 {
		return fmt.Errorf("airports: invalid IATA code %q", a.Code)
	}
	if a.UTCOffsetHours < -12 || a.UTCOffsetHours > 14 {
		return fmt.Errorf("airports: %s: offset %.1f out of range", a.Code, a.UTCOffsetHours)
	}
	r.mu.Lock()
	r.byIdx[a.Code] = a
	r.mu.Unlock()
	return nil
}

// Lookup resolves a code; ok is false for unknown airports.
func (r *Registry) Lookup(code string) (models.Airport, bool) {
	r.mu.RLock()
	a, ok := r.byIdx[strings.ToUpper(strings.TrimSpace(code))]
	r.mu.RUnlock()
	return a, ok
}

// Resolve is Lookup with an error for unknown codes, for parse paths that
// must fail loudly.
func (r *Registry) Resolve(code string) (models.Airport, error) {
	a, ok := r.Lookup(code)
	if !ok {
		return models.Airport{}, fmt.Errorf("airports: unknown code %q", code)
	}
	return a, nil
}

// List returns all registered airports sorted by code.
func (r *Registry) List() []models.Airport {
	r.mu.RLock()
	out := make([]models.Airport, 0, len(r.byIdx))
	for _, a := range r.byIdx {
		out = append(out, a)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of registered airports.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdx)
}

// seed covers the long-haul network the engine is exercised against.
// Offsets are standard time; rosters that care about DST should Register
// corrected records for the affected ports.
var seed = []models.Airport{
	{Code: "DOH", Timezone: "Asia/Qatar", UTCOffsetHours: 3, Latitude: 25.27, Longitude: 51.61},
	{Code: "DXB", Timezone: "Asia/Dubai", UTCOffsetHours: 4, Latitude: 25.25, Longitude: 55.36},
	{Code: "AUH", Timezone: "Asia/Dubai", UTCOffsetHours: 4, Latitude: 24.43, Longitude: 54.65},
	{Code: "LHR", Timezone: "Europe/London", UTCOffsetHours: 0, Latitude: 51.47, Longitude: -0.46},
	{Code: "MAN", Timezone: "Europe/London", UTCOffsetHours: 0, Latitude: 53.35, Longitude: -2.28},
	{Code: "CDG", Timezone: "Europe/Paris", UTCOffsetHours: 1, Latitude: 49.01, Longitude: 2.55},
	{Code: "FRA", Timezone: "Europe/Berlin", UTCOffsetHours: 1, Latitude: 50.04, Longitude: 8.56},
	{Code: "AMS", Timezone: "Europe/Amsterdam", UTCOffsetHours: 1, Latitude: 52.31, Longitude: 4.76},
	{Code: "MAD", Timezone: "Europe/Madrid", UTCOffsetHours: 1, Latitude: 40.47, Longitude: -3.57},
	{Code: "IST", Timezone: "Europe/Istanbul", UTCOffsetHours: 3, Latitude: 41.26, Longitude: 28.74},
	{Code: "JFK", Timezone: "America/New_York", UTCOffsetHours: -5, Latitude: 40.64, Longitude: -73.78},
	{Code: "ORD", Timezone: "America/Chicago", UTCOffsetHours: -6, Latitude: 41.97, Longitude: -87.91},
	{Code: "DFW", Timezone: "America/Chicago", UTCOffsetHours: -6, Latitude: 32.90, Longitude: -97.04},
	{Code: "LAX", Timezone: "America/Los_Angeles", UTCOffsetHours: -8, Latitude: 33.94, Longitude: -118.41},
	{Code: "SFO", Timezone: "America/Los_Angeles", UTCOffsetHours: -8, Latitude: 37.62, Longitude: -122.38},
	{Code: "GRU", Timezone: "America/Sao_Paulo", UTCOffsetHours: -3, Latitude: -23.43, Longitude: -46.47},
	{Code: "JNB", Timezone: "Africa/Johannesburg", UTCOffsetHours: 2, Latitude: -26.14, Longitude: 28.25},
	{Code: "CAI", Timezone: "Africa/Cairo", UTCOffsetHours: 2, Latitude: 30.12, Longitude: 31.41},
	{Code: "DEL", Timezone: "Asia/Kolkata", UTCOffsetHours: 5.5, Latitude: 28.57, Longitude: 77.10},
	{Code: "BOM", Timezone: "Asia/Kolkata", UTCOffsetHours: 5.5, Latitude: 19.09, Longitude: 72.87},
	{Code: "BKK", Timezone: "Asia/Bangkok", UTCOffsetHours: 7, Latitude: 13.69, Longitude: 100.75},
	{Code: "SIN", Timezone: "Asia/Singapore", UTCOffsetHours: 8, Latitude: 1.36, Longitude: 103.99},
	{Code: "HKG", Timezone: "Asia/Hong_Kong", UTCOffsetHours: 8, Latitude: 22.31, Longitude: 113.91},
	{Code: "PVG", Timezone: "Asia/Shanghai", UTCOffsetHours: 8, Latitude: 31.14, Longitude: 121.81},
	{Code: "NRT", Timezone: "Asia/Tokyo", UTCOffsetHours: 9, Latitude: 35.77, Longitude: 140.39},
	{Code: "HND", Timezone: "Asia/Tokyo", UTCOffsetHours: 9, Latitude: 35.55, Longitude: 139.78},
	{Code: "ICN", Timezone: "Asia/Seoul", UTCOffsetHours: 9, Latitude: 37.46, Longitude: 126.44},
	{Code: "SYD", Timezone: "Australia/Sydney", UTCOffsetHours: 10, Latitude: -33.95, Longitude: 151.18},
	{Code: "MEL", Timezone: "Australia/Melbourne", UTCOffsetHours: 10, Latitude: -37.67, Longitude: 144.84},
	{Code: "PER", Timezone: "Australia/Perth", UTCOffsetHours: 8, Latitude: -31.94, Longitude: 115.97},
	{Code: "AKL", Timezone: "Pacific/Auckland", UTCOffsetHours: 12, Latitude: -37.01, Longitude: 174.79},
}
