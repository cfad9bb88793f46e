// Package registry declares pipeline steps and invokes them against a
// run's context.
//
// A step names the context keys it reads, the single key it writes and the
// logic that produces the value. Inputs can be remapped to other context
// keys with FromKey, and marked optional with Opt.
package registry
