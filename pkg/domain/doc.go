/*
Package domain contains the core domain models of the scribe pipeline engine.
It defines the fundamental entities shared by the registry, the graph builder
and the runtime. This package is kept pure and free of external dependencies
like I/O or persistence.

# Key Entities

  - Context: The string-keyed store threaded through every step of one run.
  - Graph / Route: The immutable transition table, with optional guards.
  - LifecycleHooks: Observability callbacks fired around runs and steps.
  - Errors: The run-time and build-time error taxonomy (MissingInputError,
    StepExecutionError, StructuredOutputMismatchError, GraphConfigurationError,
    UnrecognizedResponseShapeError).
*/
package domain
