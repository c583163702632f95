package metrics

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Metric types
const (
	TypeCounter   = "counter"
	TypeGauge     = "gauge"
	TypeHistogram = "histogram"
)

// Metric names recorded by the preparation pipeline.
const (
	ItemsTotal        = "dataprep_items_total"
	ItemDuration      = "dataprep_item_duration_seconds"
	BytesWritten      = "dataprep_bytes_written_total"
	InstancesPerMask  = "dataprep_mask_instances"
	RunDuration       = "dataprep_run_duration_seconds"
	WorkersConfigured = "dataprep_workers"
)

// Collector aggregates counters, gauges and histograms in memory.
type Collector struct {
	metrics map[string]*Metric
	mu      sync.RWMutex
}

// Metric is one labelled series. Histograms keep count, sum, min and max.
type Metric struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Count     int64             `json:"count,omitempty"`
	Sum       float64           `json:"sum,omitempty"`
	Min       float64           `json:"min,omitempty"`
	Max       float64           `json:"max,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Mean returns the average observation of a histogram.
func (m *Metric) Mean() float64 {
	if m.Count == 0 {
		return 0
	}
	return m.Sum / float64(m.Count)
}

func NewCollector() *Collector {
	return &Collector{
		metrics: make(map[string]*Metric),
	}
}

// IncCounter adds one to a counter.
func (c *Collector) IncCounter(name string, labels map[string]string) {
	c.AddCounter(name, 1, labels)
}

// AddCounter adds value to a counter.
func (c *Collector) AddCounter(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.series(name, TypeCounter, labels)
	m.Value += value
	m.Timestamp = time.Now().Unix()
}

// SetGauge sets a gauge.
func (c *Collector) SetGauge(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.series(name, TypeGauge, labels)
	m.Value = value
	m.Timestamp = time.Now().Unix()
}

// ObserveHistogram records one observation.
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.series(name, TypeHistogram, labels)
	if m.Count == 0 || value < m.Min {
		m.Min = value
	}
	if m.Count == 0 || value > m.Max {
		m.Max = value
	}
	m.Count++
	m.Sum += value
	m.Value = value
	m.Timestamp = time.Now().Unix()
}

// RecordItem records the outcome of one processed item.
func (c *Collector) RecordItem(modality, outcome string, duration time.Duration, bytes int64) {
	labels := map[string]string{"modality": modality, "outcome": outcome}
	c.IncCounter(ItemsTotal, labels)
	c.ObserveHistogram(ItemDuration, duration.Seconds(), map[string]string{"modality": modality})
	if bytes > 0 {
		c.AddCounter(BytesWritten, float64(bytes), map[string]string{"modality": modality})
	}
}

// RecordInstances records the number of instances found in one mask.
func (c *Collector) RecordInstances(n int) {
	c.ObserveHistogram(InstancesPerMask, float64(n), nil)
}

// series returns the metric for name and labels, creating it. Callers hold c.mu.
func (c *Collector) series(name, typ string, labels map[string]string) *Metric {
	key := buildKey(name, labels)
	if m, ok := c.metrics[key]; ok {
		return m
	}
	m := &Metric{Name: name, Type: typ, Labels: maps.Clone(labels)}
	c.metrics[key] = m
	return m
}

// buildKey renders name{k="v",...} with labels sorted by key.
func buildKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	pairs := make([]string, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return name + "{" + strings.Join(pairs, ",") + "}"
}

// GetMetric returns a copy of one series, or nil.
func (c *Collector) GetMetric(name string, labels map[string]string) *Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.metrics[buildKey(name, labels)]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

// Value returns the current value of a counter or gauge, or zero.
func (c *Collector) Value(name string, labels map[string]string) float64 {
	if m := c.GetMetric(name, labels); m != nil {
		return m.Value
	}
	return 0
}

// Sum adds the values of every series named name across all labels.
func (c *Collector) Sum(name string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, m := range c.metrics {
		if m.Name == name {
			total += m.Value
		}
	}
	return total
}

// Snapshot returns copies of all series ordered by key.
func (c *Collector) Snapshot() []Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(c.metrics))
	out := make([]Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, *c.metrics[k])
	}
	return out
}

// Reset drops every series.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]*Metric)
}

// PrometheusFormat renders all series in the Prometheus text exposition format.
// Histograms are exported as _count, _sum, _min and _max series.
func (c *Collector) PrometheusFormat() string {
	var sb strings.Builder
	for _, m := range c.Snapshot() {
		switch m.Type {
		case TypeHistogram:
			fmt.Fprintf(&sb, "%s %d\n", buildKey(m.Name+"_count", m.Labels), m.Count)
			fmt.Fprintf(&sb, "%s %g\n", buildKey(m.Name+"_sum", m.Labels), m.Sum)
			fmt.Fprintf(&sb, "%s %g\n", buildKey(m.Name+"_min", m.Labels), m.Min)
			fmt.Fprintf(&sb, "%s %g\n", buildKey(m.Name+"_max", m.Labels), m.Max)
		default:
			fmt.Fprintf(&sb, "%s %g\n", buildKey(m.Name, m.Labels), m.Value)
		}
	}
	return sb.String()
}
