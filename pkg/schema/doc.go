// Package schema declares the shapes of structured records produced by
// generative steps and validates decoded values against them.
//
// A Shape is an ordered list of typed fields:
//
//	info := schema.Of(
//	    schema.F("title", schema.String()),
//	    schema.F("authors", schema.Slice(schema.String())),
//	)
//
//	info.String() // {title: string, authors: [string]}
//
// Validate collects every failing field into an AggregateError, and
// Instruction tells a model how to format its answer.
//
// The package has no dependencies beyond the standard library.
package schema
