package observability

import (
	"context"
	"sync"

	"github.com/aretw0/scribe/pkg/domain"
)

// Trail records the steps visited by each run, keyed by run ID.
// Entries stay until Forget is called.
type Trail struct {
	mu   sync.RWMutex
	runs map[string][]string
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{runs: make(map[string][]string)}
}

// Hooks returns lifecycle hooks that append entered steps.
func (t *Trail) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			t.mu.Lock()
			t.runs[e.RunID] = append(t.runs[e.RunID], e.Step)
			t.mu.Unlock()
		},
	}
}

// Visited returns the steps entered by runID, in order.
func (t *Trail) Visited(runID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	steps := t.runs[runID]
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// Forget drops the record of runID.
func (t *Trail) Forget(runID string) {
	t.mu.Lock()
	delete(t.runs, runID)
	t.mu.Unlock()
}
