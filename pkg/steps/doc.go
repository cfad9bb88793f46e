// Package steps holds the plain document steps shared by the flows: file
// classification, reading, PDF conversion, artifact saving, text clean-up,
// clipboard copy and DOCX export.
//
// Steps are built from a Library, which carries the tool runner and the PDF
// converter they delegate to:
//
//	lib := steps.New(steps.WithTools(runner), steps.WithConverter(conv))
//	reg.DefineAll(lib.CheckFileType(), lib.ReadText())
//
// Writes always overwrite, so re-running a step with the same context leaves
// the file system in the same state.
package steps
