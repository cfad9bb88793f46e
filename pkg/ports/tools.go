package ports

import "context"

// ToolCall asks a ToolRunner to execute one registered command.
type ToolCall struct {
	// Name is the registered tool name.
	Name string
	// Args fill the tool's argument placeholders and are exported as environment variables.
	Args map[string]any
	// Extra arguments are appended after the configured ones.
	Extra []string
	// Stdin, when non-empty, is written to the process standard input.
	Stdin string
}

// ToolResult is the outcome of a successful execution.
type ToolResult struct {
	// Output is the trimmed standard output.
	Output string
	// Value is Output decoded as JSON when it looks like JSON, otherwise Output itself.
	Value any
}

// ToolRunner executes allow-listed external commands.
type ToolRunner interface {
	Execute(ctx context.Context, call ToolCall) (ToolResult, error)
}
