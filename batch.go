package scribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/scribe/pkg/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Job is one independent run of a batch.
type Job struct {
	// Name identifies the job in results, e.g. the input file.
	Name    string
	Context map[string]any
}

// Outcome is the result of one Job. Exactly one of Context and Err is set.
type Outcome struct {
	Job     Job
	RunID   string
	Context domain.Context
	Err     error
}

// Batch runs jobs concurrently, at most parallel at a time (parallel <= 0
// means one per job). Each run owns its own context; a failing job does not
// stop the others. The returned error joins every job failure.
func (e *Engine) Batch(ctx context.Context, jobs []Job, parallel int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, job := range jobs {
		g.Go(func() error {
			runID := uuid.NewString()
			out, err := e.RunWithID(ctx, runID, job.Context)
			outcomes[i] = Outcome{Job: job, RunID: runID, Context: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Job.Name, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}
