package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterAndGauge(t *testing.T) {
	c := NewCollector()
	labels := map[string]string{"modality": "mask", "outcome": "ok"}

	c.IncCounter(ItemsTotal, labels)
	c.AddCounter(ItemsTotal, 2, map[string]string{"outcome": "ok", "modality": "mask"})
	assert.Equal(t, 3.0, c.Value(ItemsTotal, labels))

	c.SetGauge(WorkersConfigured, 8, nil)
	c.SetGauge(WorkersConfigured, 4, nil)
	assert.Equal(t, 4.0, c.Value(WorkersConfigured, nil))
	assert.Zero(t, c.Value("missing", nil))
}

func TestHistogram(t *testing.T) {
	c := NewCollector()
	for _, v := range []float64{3, 1, 2} {
		c.ObserveHistogram(InstancesPerMask, v, nil)
	}

	m := c.GetMetric(InstancesPerMask, nil)
	require.NotNil(t, m)
	assert.Equal(t, int64(3), m.Count)
	assert.Equal(t, 1.0, m.Min)
	assert.Equal(t, 3.0, m.Max)
	assert.Equal(t, 2.0, m.Mean())
}

func TestRecordItem(t *testing.T) {
	c := NewCollector()
	c.RecordItem("rgb", "ok", 10*time.Millisecond, 100)
	c.RecordItem("mask", "ok", 20*time.Millisecond, 50)
	c.RecordItem("mask", "failed", time.Millisecond, 0)
	c.RecordInstances(4)

	assert.Equal(t, 3.0, c.Sum(ItemsTotal))
	assert.Equal(t, 150.0, c.Sum(BytesWritten))
	assert.Equal(t, 1.0, c.Value(ItemsTotal, map[string]string{"modality": "mask", "outcome": "failed"}))
	assert.Equal(t, int64(2), c.GetMetric(ItemDuration, map[string]string{"modality": "mask"}).Count)
}

func TestConcurrentUpdates(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordItem("depth", "ok", time.Millisecond, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50.0, c.Sum(ItemsTotal))
	assert.Equal(t, 50.0, c.Sum(BytesWritten))
}

func TestPrometheusFormatIsSorted(t *testing.T) {
	c := NewCollector()
	c.IncCounter(ItemsTotal, map[string]string{"outcome": "ok", "modality": "rgb"})
	c.ObserveHistogram(InstancesPerMask, 2, nil)

	out := c.PrometheusFormat()
	assert.Equal(t, strings.Join([]string{
		`dataprep_items_total{modality="rgb",outcome="ok"} 1`,
		`dataprep_mask_instances_count 1`,
		`dataprep_mask_instances_sum 2`,
		`dataprep_mask_instances_min 2`,
		`dataprep_mask_instances_max 2`,
	}, "\n")+"\n", out)
}

func TestSnapshotAndReset(t *testing.T) {
	c := NewCollector()
	c.IncCounter("b", nil)
	c.IncCounter("a", nil)

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Name)

	c.Reset()
	assert.Empty(t, c.Snapshot())
}
