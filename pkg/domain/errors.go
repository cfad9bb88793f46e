package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for the error taxonomy. Every typed error below matches its
// sentinel through errors.Is.
var (
	// ErrMissingKey is returned by Context.Get when a key is absent.
	ErrMissingKey = errors.New("missing context key")

	// ErrMissingInput marks a step invocation that could not resolve its inputs.
	ErrMissingInput = errors.New("missing step input")

	// ErrStepExecution marks a failure raised by a step's own logic.
	ErrStepExecution = errors.New("step execution failed")

	// ErrStructuredOutputMismatch marks a generative result that does not fit its declared shape.
	ErrStructuredOutputMismatch = errors.New("structured output mismatch")

	// ErrGraphConfiguration marks an invalid graph or registry definition (build time only).
	ErrGraphConfiguration = errors.New("graph configuration error")

	// ErrUnrecognizedResponseShape marks a collaborator response the normalizer cannot read.
	ErrUnrecognizedResponseShape = errors.New("unrecognized response shape")

	// ErrStepLimitExceeded is returned when a run exceeds the caller-imposed step cap.
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

// MissingInputError reports required context keys that could not be resolved
// before invoking a step. The step's logic never ran.
type MissingInputError struct {
	Step string
	Keys []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("step '%s' requires context keys that are missing: %v", e.Step, e.Keys)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// StepExecutionError wraps an error raised by a step's logic.
type StepExecutionError struct {
	Step string
	Err  error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step '%s' failed: %v", e.Step, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

func (e *StepExecutionError) Is(target error) bool { return target == ErrStepExecution }

// StructuredOutputMismatchError reports a generative result that could not be
// coerced into the declared shape.
type StructuredOutputMismatchError struct {
	Shape  string // Human-readable shape, e.g. "{title: string, authors: [string]}"
	Raw    string // The normalized collaborator output
	Reason error
}

func (e *StructuredOutputMismatchError) Error() string {
	return fmt.Sprintf("output does not match shape %s: %v", e.Shape, e.Reason)
}

func (e *StructuredOutputMismatchError) Unwrap() error { return e.Reason }

func (e *StructuredOutputMismatchError) Is(target error) bool {
	return target == ErrStructuredOutputMismatch
}

// GraphConfigurationError aggregates every problem found while validating a graph.
type GraphConfigurationError struct {
	Problems []string
}

func (e *GraphConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid graph: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid graph, found %d problems:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *GraphConfigurationError) Is(target error) bool { return target == ErrGraphConfiguration }

// UnrecognizedResponseShapeError reports a collaborator response of a type the
// normalizer does not understand.
type UnrecognizedResponseShapeError struct {
	Type string
}

func (e *UnrecognizedResponseShapeError) Error() string {
	return fmt.Sprintf("unrecognized response shape: %s", e.Type)
}

func (e *UnrecognizedResponseShapeError) Is(target error) bool {
	return target == ErrUnrecognizedResponseShape
}

// FailedStep returns the name of the step an error originated from, or "" if
// the error carries no step identity.
func FailedStep(err error) string {
	var missing *MissingInputError
	if errors.As(err, &missing) {
		return missing.Step
	}
	var exec *StepExecutionError
	if errors.As(err, &exec) {
		return exec.Step
	}
	return ""
}
