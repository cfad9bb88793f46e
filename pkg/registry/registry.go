package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/scribe/pkg/domain"
)

// ErrUnknownStep is returned by Invoke for names that were never defined.
var ErrUnknownStep = errors.New("unknown step")

// Registry holds step definitions by name.
// Definitions are immutable once registered.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// Define registers a step. It rejects empty names, missing outputs, nil
// logic, duplicate input names and names already in use.
func (r *Registry) Define(step Step) error {
	if step.Name == "" {
		return fmt.Errorf("%w: step name is required", domain.ErrGraphConfiguration)
	}
	if step.Output == "" {
		return fmt.Errorf("%w: step '%s' declares no output key", domain.ErrGraphConfiguration, step.Name)
	}
	if step.Logic == nil {
		return fmt.Errorf("%w: step '%s' has no logic", domain.ErrGraphConfiguration, step.Name)
	}
	seen := make(map[string]bool, len(step.Inputs))
	for _, in := range step.Inputs {
		if in.Name == "" {
			return fmt.Errorf("%w: step '%s' declares an unnamed input", domain.ErrGraphConfiguration, step.Name)
		}
		if seen[in.Name] {
			return fmt.Errorf("%w: step '%s' declares input '%s' twice", domain.ErrGraphConfiguration, step.Name, in.Name)
		}
		seen[in.Name] = true
	}
	if step.Kind == "" {
		step.Kind = KindPlain
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.steps[step.Name]; exists {
		return fmt.Errorf("%w: step '%s' is already defined", domain.ErrGraphConfiguration, step.Name)
	}
	r.steps[step.Name] = step.clone()
	return nil
}

// DefineAll registers every step and reports all failures together.
func (r *Registry) DefineAll(steps ...Step) error {
	var errs []error
	for _, s := range steps {
		if err := r.Define(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Lookup returns a copy of the named step definition.
func (r *Registry) Lookup(name string) (Step, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.steps[name]
	if !ok {
		return Step{}, false
	}
	return s.clone(), true
}

// Has reports whether a step is defined.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.steps[name]
	return ok
}

// Names returns the defined step names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns an independent copy. Later definitions on either
// registry are not visible to the other.
func (r *Registry) Snapshot() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := New()
	for name, s := range r.steps {
		snap.steps[name] = s
	}
	return snap
}

// Resolve collects the step's inputs from c. Every missing required key is
// reported in a single MissingInputError.
func (r *Registry) Resolve(name string, c domain.Context) (Inputs, error) {
	step, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}
	return resolve(step, c)
}

func resolve(step Step, c domain.Context) (Inputs, error) {
	in := make(Inputs, len(step.Inputs))
	var missing []string
	for _, decl := range step.Inputs {
		v, ok := c.Lookup(decl.Key())
		if !ok {
			if !decl.Optional {
				missing = append(missing, decl.Key())
			}
			continue
		}
		in[decl.Name] = v
	}
	if len(missing) > 0 {
		return nil, &domain.MissingInputError{Step: step.Name, Keys: missing}
	}
	return in, nil
}

// Invoke runs the named step against c. On success exactly the step's
// output key is written; on any failure c is left untouched.
func (r *Registry) Invoke(ctx context.Context, name string, c domain.Context) error {
	step, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}

	in, err := resolve(step, c)
	if err != nil {
		return err
	}

	out, err := call(ctx, step, in)
	if err != nil {
		return &domain.StepExecutionError{Step: step.Name, Err: err}
	}

	c.Set(step.Output, out)
	return nil
}

// call runs the logic, converting panics into errors.
func call(ctx context.Context, step Step, in Inputs) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return step.Logic(ctx, in)
}
