// Package observability exposes engine lifecycle data as Prometheus metrics.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/gantry/pkg/domain"
)

// Metrics holds the Prometheus collectors for the engine. Wire it into an
// engine via Hooks() and serve it through promhttp.
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	jobsTotal    *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	runsInFlight prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "runs_total",
			Help:      "Completed runs by pipeline and terminal status.",
		}, []string{"pipeline", "status"}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "jobs_total",
			Help:      "Completed jobs by pipeline, job ID and terminal status.",
		}, []string{"pipeline", "job", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gantry",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of executed steps.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"pipeline", "job"}),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gantry",
			Name:      "runs_in_flight",
			Help:      "Runs currently executing.",
		}),
	}
	reg.MustRegister(m.runsTotal, m.jobsTotal, m.stepDuration, m.runsInFlight)
	return m
}

// InFlight exposes the in-flight gauge, mainly for tests.
func (m *Metrics) InFlight() prometheus.Gauge {
	return m.runsInFlight
}

// Hooks returns lifecycle hooks that feed the collectors. Merge them with any
// application hooks before handing them to the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, ev *domain.RunEvent) {
			m.runsInFlight.Inc()
		},
		OnRunFinish: func(_ context.Context, ev *domain.RunEvent) {
			m.runsInFlight.Dec()
			m.runsTotal.WithLabelValues(ev.Pipeline, string(ev.Status)).Inc()
		},
		OnJobFinish: func(_ context.Context, ev *domain.JobEvent) {
			m.jobsTotal.WithLabelValues(ev.Pipeline, ev.JobID, string(ev.Status)).Inc()
		},
		OnStepFinish: func(_ context.Context, ev *domain.StepEvent) {
			m.stepDuration.WithLabelValues(ev.Pipeline, ev.JobID).Observe(ev.Duration.Seconds())
		},
	}
}
