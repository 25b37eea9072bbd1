package metrics

import (
	"sync"
	"time"
)

// Metrics tracks in-process counters and gauges.
type Metrics struct {
	mu        sync.RWMutex
	startTime time.Time
	counters  map[string]int64
	gauges    map[string]float64
}

// New creates a new metrics instance.
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),
		counters:  make(map[string]int64),
		gauges:    make(map[string]float64),
	}
}

// IncCounter increments a counter metric.
func (m *Metrics) IncCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter adds a value to a counter metric.
func (m *Metrics) AddCounter(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

// GetCounter returns the current value of a counter.
func (m *Metrics) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// SetGauge sets a gauge metric.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// GetGauge returns the current value of a gauge.
func (m *Metrics) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[name]
}

// Uptime returns the time elapsed since the metrics instance was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot returns a copy of all counters and gauges.
func (m *Metrics) Snapshot() (map[string]int64, map[string]float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}
	return counters, gauges
}
