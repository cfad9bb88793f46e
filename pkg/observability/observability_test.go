package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/dsl"
	"github.com/aretw0/scribe/pkg/observability"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, hooks domain.LifecycleHooks) *scribe.Engine {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.DefineAll(
		registry.Step{
			Name:   "load",
			Output: "text",
			Logic:  func(context.Context, registry.Inputs) (any, error) { return "hello", nil },
		},
		registry.Step{
			Name:   "check",
			Inputs: []registry.Input{registry.In("text"), registry.Opt("fail")},
			Output: "checked",
			Logic: func(_ context.Context, in registry.Inputs) (any, error) {
				if fail, _ := in.BoolOr("fail", false); fail {
					return nil, errors.New("boom")
				}
				return true, nil
			},
		},
	))
	g, err := dsl.New(reg).Entry("load").Sequence("load", "check").Build()
	require.NoError(t, err)
	eng, err := scribe.New(g, reg, scribe.WithName("demo"), scribe.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	return eng
}

func TestMetrics_Hooks(t *testing.T) {
	promReg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(promReg)
	require.NoError(t, err)

	eng := newEngine(t, metrics.Hooks())
	ctx := context.Background()

	_, err = eng.Run(ctx, nil)
	require.NoError(t, err)
	_, err = eng.Run(ctx, map[string]any{"fail": true})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(promReg, "scribe_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := promReg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() == "scribe_runs_in_flight" {
			for _, m := range mf.GetMetric() {
				assert.Zero(t, m.GetGauge().GetValue())
			}
		}
		if mf.GetName() != "scribe_steps_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			values[labels["step"]+"/"+labels["status"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, values["load/ok"])
	assert.Equal(t, 1.0, values["check/ok"])
	assert.Equal(t, 1.0, values["check/error"])
}

func TestMetrics_RegisterTwice(t *testing.T) {
	promReg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(promReg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(promReg)
	require.NoError(t, err)

	newEngine(t, first.Hooks()).Run(context.Background(), nil)
	newEngine(t, second.Hooks()).Run(context.Background(), nil)

	count, err := testutil.GatherAndCount(promReg, "scribe_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTrail(t *testing.T) {
	trail := observability.NewTrail()
	eng := newEngine(t, trail.Hooks())

	_, err := eng.RunWithID(context.Background(), "run-1", map[string]any{"fail": true})
	require.Error(t, err)

	assert.Equal(t, []string{"load", "check"}, trail.Visited("run-1"))
	assert.Empty(t, trail.Visited("other"))

	trail.Forget("run-1")
	assert.Empty(t, trail.Visited("run-1"))
}
