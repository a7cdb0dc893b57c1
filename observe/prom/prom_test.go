package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounts(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	o := New(reg)
	ctx := context.Background()

	o.ScopeCreated(ctx)
	o.ScopeCreated(ctx)
	o.ScopeCancelled(ctx, errors.New("stop"))

	o.TaskStarted(ctx)
	o.TaskStarted(ctx)
	o.TaskFinished(ctx, 5*time.Millisecond, nil, false)
	o.TaskFinished(ctx, 5*time.Millisecond, errors.New("boom"), false)

	o.JoinFinished(ctx, 10*time.Millisecond, nil)
	o.JoinFinished(ctx, 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(o.scopesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.scopesCancelled))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.tasksActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.tasksTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.tasksTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.joinsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.joinsTotal.WithLabelValues("failure")))
}

func TestObserverRegistersCollectors(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	New(reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	// Histograms and gauges gather even before first observation;
	// label-less counters do too.
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fx_scopes_created_total")
	assert.Contains(t, names, "fx_join_wait_seconds")
	assert.Contains(t, names, "fx_tasks_active")
	assert.Contains(t, names, "fx_task_duration_seconds")
}

func TestObserverPanicCounted(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	o := New(reg)
	o.TaskStarted(context.Background())
	o.TaskFinished(context.Background(), time.Millisecond, errors.New("panic: boom"), true)
	assert.Equal(t, 1.0, testutil.ToFloat64(o.tasksTotal.WithLabelValues("panic")))
}
