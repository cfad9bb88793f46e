package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunFinish EventType = "run_finish"
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Flow      string    `json:"flow,omitempty"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Step   string        `json:"step"`
	Kind   string        `json:"kind,omitempty"`
	Output string        `json:"output,omitempty"` // Context key written by the step
	Took   time.Duration `json:"took,omitempty"`   // Only set on leave
	Err    error         `json:"-"`                // Only set on leave
}

// RunEvent represents the start or the end of a run.
type RunEvent struct {
	EventBase
	Steps int           `json:"steps,omitempty"` // Steps executed, set on finish
	Took  time.Duration `json:"took,omitempty"`
	Err   error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunFinish func(context.Context, *RunEvent)
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
}

// ChainHooks combines several hook sets; callbacks run in argument order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range sets {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnRunFinish: func(ctx context.Context, e *RunEvent) {
			for _, h := range sets {
				if h.OnRunFinish != nil {
					h.OnRunFinish(ctx, e)
				}
			}
		},
		OnStepEnter: func(ctx context.Context, e *StepEvent) {
			for _, h := range sets {
				if h.OnStepEnter != nil {
					h.OnStepEnter(ctx, e)
				}
			}
		},
		OnStepLeave: func(ctx context.Context, e *StepEvent) {
			for _, h := range sets {
				if h.OnStepLeave != nil {
					h.OnStepLeave(ctx, e)
				}
			}
		},
	}
}
