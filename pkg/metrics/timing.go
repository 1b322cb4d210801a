// Package metrics provides timing instrumentation for the chart pipeline.
//
// Each pipeline stage (CSV parsing, aggregation, reconciliation, rendering)
// records its duration into an in-memory TimingMetric. Metrics use atomic
// counters so the file watcher and export goroutines can record safely.
// Collection is enabled by default but can be disabled via TV_METRICS=0.
//
// Usage:
//
//	func aggregatePass() {
//	    defer metrics.Timer(metrics.Aggregate)()
//	    // ... operation code
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("TV_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named stage.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)

	for {
		cur := m.max.Load()
		if ns <= cur || m.max.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := m.min.Load()
		if cur != 0 && ns >= cur {
			break
		}
		if m.min.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string {
	return m.name
}

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 {
	return m.count.Load()
}

// Stats returns a consistent-enough snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.total.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		AvgMs:   float64(avg) / 1e6,
		MaxMs:   float64(m.max.Load()) / 1e6,
		MinMs:   float64(m.min.Load()) / 1e6,
	}
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records elapsed time when called.
//
//	defer metrics.Timer(metrics.Reconcile)()
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// TimerWithCallback is like Timer but also hands the duration to cb,
// typically debug.LogTiming.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Pipeline timing metrics.
var (
	CSVParse  = newTimingMetric("csv_parse")
	Filter    = newTimingMetric("filter")
	Aggregate = newTimingMetric("aggregate")
	Reconcile = newTimingMetric("reconcile")
	RenderSVG = newTimingMetric("render_svg")
	RenderPNG = newTimingMetric("render_png")
	ExportDB  = newTimingMetric("export_sqlite")
	UIRender  = newTimingMetric("ui_render")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{CSVParse, Filter, Aggregate, Reconcile, RenderSVG, RenderPNG, ExportDB, UIRender}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for metrics that have at least one sample.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
