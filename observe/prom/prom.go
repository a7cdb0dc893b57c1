// Package prom exports scope and join lifecycle events as Prometheus
// metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer implements scope.Observer on top of Prometheus collectors.
type Observer struct {
	scopesCreated   prometheus.Counter
	scopesCancelled prometheus.Counter
	joinsTotal      *prometheus.CounterVec
	joinWait        prometheus.Histogram
	tasksActive     prometheus.Gauge
	tasksTotal      *prometheus.CounterVec
	taskDuration    prometheus.Histogram
}

// New creates an Observer and registers its collectors with reg.
func New(reg prometheus.Registerer) *Observer {
	o := &Observer{
		scopesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fx", Name: "scopes_created_total",
			Help: "Cancellation scopes created.",
		}),
		scopesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fx", Name: "scopes_cancelled_total",
			Help: "Cancellation scopes cancelled.",
		}),
		joinsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fx", Name: "joins_total",
			Help: "Completed joins by outcome.",
		}, []string{"outcome"}),
		joinWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fx", Name: "join_wait_seconds",
			Help:    "Time a join waited for both sides.",
			Buckets: prometheus.DefBuckets,
		}),
		tasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fx", Name: "tasks_active",
			Help: "Computations currently running.",
		}),
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fx", Name: "tasks_total",
			Help: "Finished computations by result.",
		}, []string{"result"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fx", Name: "task_duration_seconds",
			Help:    "Computation run time.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		o.scopesCreated, o.scopesCancelled,
		o.joinsTotal, o.joinWait,
		o.tasksActive, o.tasksTotal, o.taskDuration,
	)
	return o
}

func (o *Observer) ScopeCreated(_ context.Context) {
	o.scopesCreated.Inc()
}

func (o *Observer) ScopeCancelled(_ context.Context, _ error) {
	o.scopesCancelled.Inc()
}

func (o *Observer) JoinFinished(_ context.Context, wait time.Duration, err error) {
	if err != nil {
		o.joinsTotal.WithLabelValues("failure").Inc()
	} else {
		o.joinsTotal.WithLabelValues("success").Inc()
	}
	o.joinWait.Observe(wait.Seconds())
}

func (o *Observer) TaskStarted(_ context.Context) {
	o.tasksActive.Inc()
}

func (o *Observer) TaskFinished(_ context.Context, dur time.Duration, err error, panicked bool) {
	o.tasksActive.Dec()
	switch {
	case panicked:
		o.tasksTotal.WithLabelValues("panic").Inc()
	case err != nil:
		o.tasksTotal.WithLabelValues("error").Inc()
	default:
		o.tasksTotal.WithLabelValues("ok").Inc()
	}
	o.taskDuration.Observe(dur.Seconds())
}
