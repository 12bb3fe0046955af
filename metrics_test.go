package work

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("test", reg)
	require.NoError(t, err)

	pool := NewPool[Nothing, int](nil, Options{Workers: 2, Logger: quietLogger(), Metrics: m})
	for i := 0; i < 10; i++ {
		AddFunc(pool, func(_ Nothing, i int) int {
			time.Sleep(time.Millisecond)
			return i
		}, i)
	}
	pool.Wait()
	// Counters are updated after the runnable is marked finished; joining the
	// workers makes them final.
	pool.Close()

	assert.Equal(t, 10.0, testutil.ToFloat64(m.submitted))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.finished))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pending))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.active))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	count, err := testutil.GatherAndCount(reg, "test_tasks_submitted_total", "test_steals_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetricsRegisteredTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics("", reg)
	require.NoError(t, err)
	second, err := NewMetrics("", reg)
	require.NoError(t, err)

	second.taskSubmitted()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.submitted))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.taskSubmitted()
		m.taskStarted()
		m.taskFinished(time.Second)
		m.taskStolen()
		m.placementFallback()
	})
}
