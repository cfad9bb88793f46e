/*
Package dsl assembles registered steps into an executable graph.

Calls are recorded and validated together when Build is invoked, so a
misconfigured graph is reported in full before any run starts.

Example usage:

	reg := registry.New()
	// ... reg.Define(...) for every step

	g, err := dsl.New(reg).
		Entry("check_file_type").
		Branch("check_file_type",
			dsl.When("convert_pdf", dsl.Equals("file_type", "pdf")),
			dsl.When("read_text", dsl.OneOf("file_type", "text", "markdown")),
		).
		Link("convert_pdf", "save_markdown").
		Link("read_text", "save_markdown").
		Build()

Build rejects unknown steps, a step that mixes an unconditional link with a
branch, cycles and a missing entry step. Steps that cannot be reached from
the entry are logged as warnings.
*/
package dsl
