package registry

import (
	"context"
	"fmt"
)

// Kind classifies a step by the collaborator it relies on.
type Kind string

const (
	// KindPlain steps run arbitrary local computation.
	KindPlain Kind = "plain"
	// KindGenerative steps call a language model.
	KindGenerative Kind = "generative"
)

// Logic is the body of a step. It receives the resolved inputs keyed by
// their declared names and returns the value stored under the step output.
type Logic func(ctx context.Context, in Inputs) (any, error)

// Input declares one context key a step reads.
type Input struct {
	// Name is the key the logic uses to address the value.
	Name string
	// From, when set, is the context key the value is read from.
	From string
	// Optional inputs may be absent; the logic sees them as missing.
	Optional bool
}

// In declares a required input read from the context key of the same name.
func In(name string) Input {
	return Input{Name: name}
}

// Opt declares an optional input.
func Opt(name string) Input {
	return Input{Name: name, Optional: true}
}

// FromKey remaps the input to read a different context key.
func (i Input) FromKey(key string) Input {
	i.From = key
	return i
}

// Key returns the context key the input is resolved from.
func (i Input) Key() string {
	if i.From != "" {
		return i.From
	}
	return i.Name
}

// Step is a named unit of work: it reads its inputs from the context and
// writes exactly one output key.
type Step struct {
	Name        string
	Inputs      []Input
	Output      string
	Kind        Kind
	Description string
	Logic       Logic
}

func (s Step) clone() Step {
	inputs := make([]Input, len(s.Inputs))
	copy(inputs, s.Inputs)
	s.Inputs = inputs
	return s
}

// Keys returns the context keys the step reads, in declaration order.
func (s Step) Keys() []string {
	keys := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		keys[i] = in.Key()
	}
	return keys
}

// Inputs carries the resolved values handed to a step's logic.
type Inputs map[string]any

// Has reports whether the input was resolved.
func (in Inputs) Has(name string) bool {
	_, ok := in[name]
	return ok
}

// Value returns the raw value of an input.
func (in Inputs) Value(name string) (any, error) {
	v, ok := in[name]
	if !ok {
		return nil, fmt.Errorf("input %q is not set", name)
	}
	return v, nil
}

// String returns a string input. fmt.Stringer values are accepted.
func (in Inputs) String(name string) (string, error) {
	v, err := in.Value(name)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("input %q: expected string, got %T", name, v)
	}
}

// StringOr returns a string input, or def when it is absent.
func (in Inputs) StringOr(name, def string) (string, error) {
	if !in.Has(name) {
		return def, nil
	}
	return in.String(name)
}

// Int returns an integer input. Whole float64 values, as produced by JSON
// decoding, are accepted.
func (in Inputs) Int(name string) (int, error) {
	v, err := in.Value(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("input %q: expected int, got %T", name, v)
}

// Bool returns a boolean input.
func (in Inputs) Bool(name string) (bool, error) {
	v, err := in.Value(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("input %q: expected bool, got %T", name, v)
	}
	return b, nil
}

// BoolOr returns a boolean input, or def when it is absent.
func (in Inputs) BoolOr(name string, def bool) (bool, error) {
	if !in.Has(name) {
		return def, nil
	}
	return in.Bool(name)
}
