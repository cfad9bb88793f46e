package runtime

import (
	"context"
	"time"

	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/registry"
)

func (e *Engine) base(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		RunID:     runID,
		Flow:      e.flow,
	}
}

func (e *Engine) emitRunStart(ctx context.Context, runID string) {
	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &domain.RunEvent{EventBase: e.base(domain.EventRunStart, runID)})
	}
}

func (e *Engine) emitRunFinish(ctx context.Context, runID string, steps int, took time.Duration, err error) {
	if e.hooks.OnRunFinish != nil {
		e.hooks.OnRunFinish(ctx, &domain.RunEvent{
			EventBase: e.base(domain.EventRunFinish, runID),
			Steps:     steps,
			Took:      took,
			Err:       err,
		})
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, runID string, step registry.Step) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStepEnter, runID),
			Step:      step.Name,
			Kind:      string(step.Kind),
			Output:    step.Output,
		})
	}
}

func (e *Engine) emitStepLeave(ctx context.Context, runID string, step registry.Step, took time.Duration, err error) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStepLeave, runID),
			Step:      step.Name,
			Kind:      string(step.Kind),
			Output:    step.Output,
			Took:      took,
			Err:       err,
		})
	}
}
