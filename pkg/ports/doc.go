/*
Package ports defines the driven ports (interfaces) of the scribe engine.

These interfaces decouple steps and surfaces from concrete implementations,
so the same workflow can run against real collaborators or test fakes.

# Key Interfaces

  - ResponseCache: memoizes language model responses (memory or Redis).
  - ToolRunner: executes allow-listed external commands (pdftotext, pandoc, clipboard).
  - Workflow and WorkflowCatalog: runnable named graphs served by the HTTP and MCP adapters.
*/
package ports
