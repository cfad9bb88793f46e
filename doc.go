/*
Package scribe is a step-graph pipeline engine for document-to-artifact workflows.

A workflow is a directed graph of named steps sharing one context per run.
Each step reads the context keys it declares and writes exactly one output key.
Routes between steps are either unconditional or ordered guarded alternatives
evaluated against the updated context; the first matching guard wins, and a run
ends cleanly when no route applies.

# Concept

Steps are declared once in a registry (package registry), wired together with the
fluent builder (package dsl) and executed by the Engine. External work such as
PDF conversion, subprocess export or language generation is performed by steps
through collaborators; the engine never sees it.

# Usage

	reg := registry.New()
	_ = reg.Define(registry.Step{
		Name:   "shout",
		Inputs: []registry.Input{registry.In("text")},
		Output: "loud",
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			s, err := in.String("text")
			return strings.ToUpper(s), err
		},
	})

	g, err := dsl.New(reg).Entry("shout").Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := scribe.New(g, reg)
	if err != nil {
		log.Fatal(err)
	}

	out, err := eng.Run(ctx, map[string]any{"text": "hello"})
	// out["loud"] == "HELLO"

Ready-made workflows live in package flows.
*/
package scribe
