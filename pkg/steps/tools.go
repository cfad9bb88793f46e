package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/scribe/pkg/adapters/process"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/registry"
)

// Clipboard status values.
const (
	ClipboardCopied  = "Content copied to clipboard"
	ClipboardSkipped = "Clipboard copying skipped"
)

// CopyToClipboard copies the input key when do_copy is true and reports the
// outcome in the output key.
func (l *Library) CopyToClipboard(name, input, output string) registry.Step {
	return registry.Step{
		Name:        name,
		Description: "Copy text to the system clipboard",
		Inputs:      []registry.Input{registry.In("text").FromKey(input), registry.Opt("do_copy")},
		Output:      output,
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			doCopy, err := in.BoolOr("do_copy", false)
			if err != nil {
				return nil, err
			}
			if !doCopy {
				return ClipboardSkipped, nil
			}
			text, err := in.String("text")
			if err != nil {
				return nil, err
			}
			if l.tools == nil {
				return nil, fmt.Errorf("no tool runner configured for clipboard copy")
			}
			if _, err := l.tools.Execute(ctx, ports.ToolCall{Name: process.ToolClipboard, Stdin: text}); err != nil {
				return nil, fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			l.logger.InfoContext(ctx, "copied to clipboard", "chars", len(text))
			return ClipboardCopied, nil
		},
	}
}

// ExportDOCX converts markdown_path to docx_path with pandoc. The optional
// reference_doc and resource_dir inputs map to pandoc flags.
func (l *Library) ExportDOCX(name string) registry.Step {
	return registry.Step{
		Name:        name,
		Description: "Convert markdown to DOCX with pandoc",
		Inputs: []registry.Input{
			registry.In("markdown_path"),
			registry.In("docx_path"),
			registry.Opt("title"),
			registry.Opt("reference_doc"),
			registry.Opt("resource_dir"),
		},
		Output: "docx_file_path",
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			if l.tools == nil {
				return nil, fmt.Errorf("no tool runner configured for DOCX export")
			}
			input, err := in.String("markdown_path")
			if err != nil {
				return nil, err
			}
			output, err := in.String("docx_path")
			if err != nil {
				return nil, err
			}
			title, err := in.StringOr("title", "Document")
			if err != nil {
				return nil, err
			}

			ref, err := in.StringOr("reference_doc", "")
			if err != nil {
				return nil, err
			}
			dir, err := in.StringOr("resource_dir", "")
			if err != nil {
				return nil, err
			}

			var extra []string
			if ref != "" {
				extra = append(extra, "--reference-doc="+ExpandPath(ref))
			}
			if dir != "" {
				extra = append(extra, "--resource-path="+ExpandPath(dir))
			}

			output = ExpandPath(output)
			if err := ensureParent(output); err != nil {
				return nil, err
			}
			_, err = l.tools.Execute(ctx, ports.ToolCall{
				Name:  process.ToolPandoc,
				Args:  map[string]any{"input": ExpandPath(input), "output": output, "title": title},
				Extra: extra,
			})
			if err != nil {
				return nil, fmt.Errorf("pandoc conversion failed: %w", err)
			}
			l.logger.InfoContext(ctx, "exported DOCX", "input", input, "output", output)
			return output, nil
		},
	}
}
