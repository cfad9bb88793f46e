package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/scribe/internal/runtime"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/dsl"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constant defines a step that writes value under output.
func constant(name, output string, value any, inputs ...registry.Input) registry.Step {
	return registry.Step{
		Name:   name,
		Inputs: inputs,
		Output: output,
		Logic:  func(context.Context, registry.Inputs) (any, error) { return value, nil },
	}
}

func newRegistry(t *testing.T, steps ...registry.Step) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.DefineAll(steps...))
	return reg
}

func TestEngine_Sequence(t *testing.T) {
	reg := newRegistry(t,
		constant("a", "x", 1),
		constant("b", "y", 2, registry.In("x")),
	)
	g, err := dsl.New(reg).Entry("a").Sequence("a", "b").Build()
	require.NoError(t, err)

	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	initial := map[string]any{"seed": true}
	out, err := engine.Run(context.Background(), initial)
	require.NoError(t, err)

	assert.Equal(t, domain.Context{"seed": true, "x": 1, "y": 2}, out)
	assert.Len(t, initial, 1, "caller map must not be mutated")
}

func TestEngine_FirstMatchingGuardWins(t *testing.T) {
	reg := newRegistry(t,
		constant("s", "ran_s", true),
		constant("t1", "picked", "t1"),
		constant("t2", "picked", "t2"),
	)
	yes := dsl.Check("always", func(domain.Context) bool { return true })
	g, err := dsl.New(reg).
		Entry("s").
		Branch("s", dsl.When("t1", yes), dsl.When("t2", yes)).
		Build()
	require.NoError(t, err)

	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	out, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "t1", out["picked"])
}

func TestEngine_NoMatchingGuardStopsCleanly(t *testing.T) {
	reg := newRegistry(t,
		constant("check", "file_type", "docx"),
		constant("pdf", "converted", true),
		constant("text", "read", true),
	)
	g, err := dsl.New(reg).
		Entry("check").
		Branch("check",
			dsl.When("pdf", dsl.Equals("file_type", "pdf")),
			dsl.When("text", dsl.OneOf("file_type", "text", "markdown")),
		).
		Build()
	require.NoError(t, err)

	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	out, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Context{"file_type": "docx"}, out)
}

func TestEngine_ErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	after := false
	reg := newRegistry(t,
		constant("a", "x", 1),
		registry.Step{
			Name:   "b",
			Output: "y",
			Logic:  func(context.Context, registry.Inputs) (any, error) { return nil, boom },
		},
		registry.Step{
			Name:   "c",
			Output: "z",
			Logic: func(context.Context, registry.Inputs) (any, error) {
				after = true
				return nil, nil
			},
		},
	)
	g, err := dsl.New(reg).Entry("a").Sequence("a", "b", "c").Build()
	require.NoError(t, err)
	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	out, err := engine.Run(context.Background(), nil)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrStepExecution)
	assert.Equal(t, "b", domain.FailedStep(err))
	assert.False(t, after)
}

func TestEngine_GuardPanicFailsRun(t *testing.T) {
	reg := newRegistry(t,
		constant("a", "x", 1),
		constant("b", "y", 2),
	)
	isPDF := dsl.Check("is pdf", func(c domain.Context) bool {
		return c["file_type"].(string) == "pdf"
	})
	g, err := dsl.New(reg).Entry("a").Branch("a", dsl.When("b", isPDF)).Build()
	require.NoError(t, err)

	var finished []error
	engine, err := runtime.NewEngine(g, reg, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) { finished = append(finished, e.Err) },
	}))
	require.NoError(t, err)

	var out domain.Context
	require.NotPanics(t, func() {
		out, err = engine.Run(context.Background(), nil)
	})
	assert.Nil(t, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStepExecution)
	assert.Equal(t, "a", domain.FailedStep(err))
	assert.Contains(t, err.Error(), `guard "is pdf": panic`)
	require.Len(t, finished, 1)
	assert.Error(t, finished[0])
}

func TestEngine_MissingInputAborts(t *testing.T) {
	reg := newRegistry(t, constant("a", "x", 1, registry.In("file_path")))
	g, err := dsl.New(reg).Entry("a").Build()
	require.NoError(t, err)
	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrMissingInput)
	assert.Equal(t, "a", domain.FailedStep(err))
}

func TestEngine_RejectsDanglingTarget(t *testing.T) {
	reg := newRegistry(t, constant("a", "x", 1))
	g := domain.NewGraph("a", map[string][]domain.Route{"a": {{Target: "ghost"}}})

	engine, err := runtime.NewEngine(g, reg)
	assert.Nil(t, engine)
	assert.ErrorIs(t, err, domain.ErrGraphConfiguration)
	assert.Contains(t, err.Error(), "ghost")

	_, err = runtime.NewEngine(nil, reg)
	assert.ErrorIs(t, err, domain.ErrGraphConfiguration)
}

func TestEngine_UsesRegistrySnapshot(t *testing.T) {
	reg := newRegistry(t, constant("a", "x", "before"))
	g, err := dsl.New(reg).Entry("a").Build()
	require.NoError(t, err)
	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	require.NoError(t, reg.Define(constant("b", "y", 1)))
	assert.False(t, engine.Steps().Has("b"))
	assert.True(t, reg.Has("b"))
}

func TestEngine_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := newRegistry(t,
		registry.Step{
			Name:   "a",
			Output: "x",
			Logic: func(context.Context, registry.Inputs) (any, error) {
				cancel()
				return 1, nil
			},
		},
		constant("b", "y", 2),
	)
	g, err := dsl.New(reg).Entry("a").Sequence("a", "b").Build()
	require.NoError(t, err)
	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	out, err := engine.Run(ctx, nil)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "'b'")
}

func TestEngine_MaxSteps(t *testing.T) {
	reg := newRegistry(t, constant("a", "x", 1), constant("b", "y", 2), constant("c", "z", 3))
	g, err := dsl.New(reg).Entry("a").Sequence("a", "b", "c").Build()
	require.NoError(t, err)

	engine, err := runtime.NewEngine(g, reg, runtime.WithMaxSteps(2))
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)

	unlimited, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)
	_, err = unlimited.Run(context.Background(), nil)
	assert.NoError(t, err)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	reg := newRegistry(t, constant("a", "x", 1), constant("b", "y", 2))
	g, err := dsl.New(reg).Entry("a").Sequence("a", "b").Build()
	require.NoError(t, err)

	var events []string
	var runIDs []string
	hooks := domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			events = append(events, "start")
			runIDs = append(runIDs, e.RunID)
		},
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			events = append(events, "enter:"+e.Step)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			events = append(events, fmt.Sprintf("leave:%s:%s", e.Step, e.Output))
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			events = append(events, fmt.Sprintf("finish:%d", e.Steps))
			runIDs = append(runIDs, e.RunID)
			assert.Equal(t, "demo", e.Flow)
		},
	}

	engine, err := runtime.NewEngine(g, reg, runtime.WithLifecycleHooks(hooks), runtime.WithFlowName("demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo", engine.Flow())

	_, err = engine.RunWithID(context.Background(), "run-1", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "enter:a", "leave:a:x", "enter:b", "leave:b:y", "finish:2"}, events)
	assert.Equal(t, []string{"run-1", "run-1"}, runIDs)
}

func TestEngine_ConcurrentRunsAreIsolated(t *testing.T) {
	reg := newRegistry(t, registry.Step{
		Name:   "double",
		Inputs: []registry.Input{registry.In("n")},
		Output: "out",
		Logic: func(_ context.Context, in registry.Inputs) (any, error) {
			n, err := in.Int("n")
			return n * 2, err
		},
	})
	g, err := dsl.New(reg).Entry("double").Build()
	require.NoError(t, err)
	engine, err := runtime.NewEngine(g, reg)
	require.NoError(t, err)

	results := make(chan int, 20)
	for i := 0; i < 20; i++ {
		go func(n int) {
			out, err := engine.Run(context.Background(), map[string]any{"n": n})
			if err != nil {
				results <- -1
				return
			}
			results <- out["out"].(int) - 2*n
		}(i)
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, 0, <-results)
	}
}
