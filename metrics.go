package work

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Pool. A nil *Metrics
// records nothing.
type Metrics struct {
	submitted prometheus.Counter
	finished  prometheus.Counter
	steals    prometheus.Counter
	fallbacks prometheus.Counter
	pending   prometheus.Gauge
	active    prometheus.Gauge
	duration  prometheus.Histogram
}

// Creates the pool collectors under namespace and registers them with reg,
// or with the default registerer if reg is nil. Registering twice with the
// same registry reuses the collectors already there.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "work"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks added to the pool.",
		}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Total number of tasks which ran to completion.",
		}),
		steals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steals_total",
			Help:      "Total number of tasks a worker took from another worker's queue.",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placement_fallback_total",
			Help:      "Total number of submissions placed round robin because every queue was locked.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_pending",
			Help:      "Number of tasks submitted but not finished.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Number of workers currently running a task.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Task execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	var err error
	if m.submitted, err = registerCollector(reg, m.submitted); err != nil {
		return nil, err
	}
	if m.finished, err = registerCollector(reg, m.finished); err != nil {
		return nil, err
	}
	if m.steals, err = registerCollector(reg, m.steals); err != nil {
		return nil, err
	}
	if m.fallbacks, err = registerCollector(reg, m.fallbacks); err != nil {
		return nil, err
	}
	if m.pending, err = registerCollector(reg, m.pending); err != nil {
		return nil, err
	}
	if m.active, err = registerCollector(reg, m.active); err != nil {
		return nil, err
	}
	if m.duration, err = registerCollector(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) taskSubmitted() {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.pending.Inc()
}

func (m *Metrics) taskStarted() {
	if m == nil {
		return
	}
	m.active.Inc()
}

func (m *Metrics) taskFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.active.Dec()
	m.pending.Dec()
	m.finished.Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) taskStolen() {
	if m == nil {
		return
	}
	m.steals.Inc()
}

func (m *Metrics) placementFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func registerCollector[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}
	return collector, err
}
