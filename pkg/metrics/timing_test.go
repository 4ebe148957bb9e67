package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordTracksCountMinMax(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(6 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	assert.Equal(t, "test", s.Name)
	assert.Equal(t, int64(3), s.Count)
	assert.InDelta(t, 12.0, s.TotalMs, 0.001)
	assert.InDelta(t, 4.0, s.AvgMs, 0.001)
	assert.InDelta(t, 6.0, s.MaxMs, 0.001)
	assert.InDelta(t, 2.0, s.MinMs, 0.001)

	m.Reset()
	assert.Equal(t, TimingStats{Name: "test"}, m.Stats())
}

func TestRecordConcurrent(t *testing.T) {
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Record(time.Duration(n) * time.Microsecond)
		}(i)
	}
	wg.Wait()

	s := m.Stats()
	assert.Equal(t, int64(50), s.Count)
	assert.InDelta(t, 0.050, s.MaxMs, 0.0001)
	assert.InDelta(t, 0.001, s.MinMs, 0.0001)
}

func TestDisabledSkipsRecording(t *testing.T) {
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(true) })

	m := newTimingMetric("off")
	m.Record(time.Second)
	Timer(m)()
	assert.Zero(t, m.Count())
}

func TestTimerAndAllStats(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	t.Cleanup(ResetAll)

	Timer(StoreRead)()
	Timer(nil)()

	stats := AllStats()
	if assert.Len(t, stats, 1) {
		assert.Equal(t, "store_read", stats[0].Name)
		assert.Equal(t, int64(1), stats[0].Count)
	}
}
