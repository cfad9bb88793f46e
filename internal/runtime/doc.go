// Package runtime executes validated step graphs.
//
// An Engine binds a graph to a snapshot of the step registry. Each Run
// owns a fresh context and executes steps strictly in sequence, following
// the first applicable route after every step until none applies.
package runtime
