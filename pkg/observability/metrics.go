package observability

import (
	"context"
	"errors"

	"github.com/aretw0/scribe/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scribe"

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the run and step collectors.
type Metrics struct {
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	running      *prometheus.GaugeVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered by a previous call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of finished workflow runs",
		}, []string{"flow", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of workflow runs",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"flow"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Number of workflow runs currently executing",
		}, []string{"flow"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of executed steps",
		}, []string{"flow", "step", "kind", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of step executions",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"flow", "step"}),
	}

	var err error
	if m.runs, err = register(reg, m.runs); err != nil {
		return nil, err
	}
	if m.runDuration, err = register(reg, m.runDuration); err != nil {
		return nil, err
	}
	if m.running, err = register(reg, m.running); err != nil {
		return nil, err
	}
	if m.steps, err = register(reg, m.steps); err != nil {
		return nil, err
	}
	if m.stepDuration, err = register(reg, m.stepDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.running.WithLabelValues(e.Flow).Inc()
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			m.running.WithLabelValues(e.Flow).Dec()
			m.runs.WithLabelValues(e.Flow, status(e.Err)).Inc()
			m.runDuration.WithLabelValues(e.Flow).Observe(e.Took.Seconds())
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(e.Flow, e.Step, e.Kind, status(e.Err)).Inc()
			m.stepDuration.WithLabelValues(e.Flow, e.Step).Observe(e.Took.Seconds())
		},
	}
}
