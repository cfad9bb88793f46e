package steps

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/scribe/pkg/adapters/process"
	"github.com/aretw0/scribe/pkg/generate"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/registry"
	eschema "github.com/cloudwego/eino/schema"
)

// DefaultPDFSystemPrompt instructs the model that rewrites each PDF page.
const DefaultPDFSystemPrompt = "Convert the PDF page to a clean, well-formatted Markdown document. " +
	"Preserve structure, headings, and any code or mathematical notation. " +
	"For images and charts, create a literal description of what is visible. " +
	"Return only pure Markdown content, excluding any metadata or non-Markdown elements."

// ConvertRequest describes one PDF conversion.
type ConvertRequest struct {
	Path         string
	Model        string // empty keeps the raw text layer
	SystemPrompt string
	Pages        []int // 1-based; empty selects every page
}

// Converter turns a PDF into a response the Normalizer understands.
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) (any, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, req ConvertRequest) (any, error)

func (f ConverterFunc) Convert(ctx context.Context, req ConvertRequest) (any, error) {
	return f(ctx, req)
}

// Completer sends chat messages to a model and returns the text reply.
type Completer interface {
	Complete(ctx context.Context, modelID string, msgs []*eschema.Message) (string, error)
}

// PDFConverter extracts the text layer with the pdftotext tool and, when a
// model is requested, rewrites every page as markdown.
type PDFConverter struct {
	tools  ports.ToolRunner
	models Completer
	tool   string
	logger *slog.Logger
}

// PDFOption configures a PDFConverter.
type PDFOption func(*PDFConverter)

// WithTextTool overrides the tool used to extract the text layer.
func WithTextTool(name string) PDFOption {
	return func(c *PDFConverter) {
		c.tool = name
	}
}

// WithConverterLogger sets the converter logger.
func WithConverterLogger(logger *slog.Logger) PDFOption {
	return func(c *PDFConverter) {
		c.logger = logger
	}
}

// NewPDFConverter creates a converter. models may be nil, in which case
// requests naming a model fail.
func NewPDFConverter(tools ports.ToolRunner, models Completer, opts ...PDFOption) *PDFConverter {
	c := &PDFConverter{
		tools:  tools,
		models: models,
		tool:   process.ToolPDFToText,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert returns generate.Pages, one entry per selected page.
func (c *PDFConverter) Convert(ctx context.Context, req ConvertRequest) (any, error) {
	if c.tools == nil {
		return nil, fmt.Errorf("no tool runner configured for PDF conversion")
	}
	res, err := c.tools.Execute(ctx, ports.ToolCall{
		Name: c.tool,
		Args: map[string]any{"input": ExpandPath(req.Path)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}

	pages, err := SelectPages(SplitPages(res.Output), req.Pages)
	if err != nil {
		return nil, err
	}
	if req.Model == "" {
		return pages, nil
	}
	if c.models == nil {
		return nil, fmt.Errorf("model %q requested but no model client is configured", req.Model)
	}

	system := req.SystemPrompt
	if system == "" {
		system = DefaultPDFSystemPrompt
	}
	for i, p := range pages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		c.logger.DebugContext(ctx, "converting page", "page", p.Number, "model", req.Model)
		text, err := c.models.Complete(ctx, req.Model, []*eschema.Message{
			eschema.SystemMessage(system),
			eschema.UserMessage(p.Content),
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number, err)
		}
		pages[i].Content = text
	}
	return pages, nil
}

// SplitPages splits pdftotext output on form feeds. A trailing empty page
// left by the final form feed is dropped.
func SplitPages(text string) generate.Pages {
	raw := strings.Split(text, "\f")
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	pages := make(generate.Pages, len(raw))
	for i, content := range raw {
		pages[i] = generate.Page{Number: i + 1, Content: strings.TrimSpace(content)}
	}
	return pages
}

// SelectPages keeps the numbered pages in the order requested.
func SelectPages(pages generate.Pages, numbers []int) (generate.Pages, error) {
	if len(numbers) == 0 {
		return pages, nil
	}
	out := make(generate.Pages, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > len(pages) {
			return nil, fmt.Errorf("page %d out of range (document has %d)", n, len(pages))
		}
		out = append(out, pages[n-1])
	}
	return out, nil
}

// ParsePages reads a page selection: an int, a list of numbers or a string
// such as "1,3-5".
func ParsePages(v any) ([]int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		return []int{t}, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("page %v is not a whole number", t)
		}
		return []int{int(t)}, nil
	case []int:
		return t, nil
	case []any:
		var out []int
		for _, item := range t {
			pages, err := ParsePages(item)
			if err != nil {
				return nil, err
			}
			out = append(out, pages...)
		}
		return out, nil
	case string:
		return parsePageRanges(t)
	default:
		return nil, fmt.Errorf("unsupported page selection of type %T", v)
	}
}

func parsePageRanges(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || to < from {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
	}
	return out, nil
}

// ConvertPDF converts file_path to markdown_content. The model is read from
// modelKey; an empty or absent model keeps the raw text layer.
func (l *Library) ConvertPDF(name, modelKey string) registry.Step {
	return registry.Step{
		Name:        name,
		Description: "Convert a PDF into markdown",
		Inputs: []registry.Input{
			registry.In("file_path"),
			registry.Opt("model").FromKey(modelKey),
			registry.Opt("custom_system_prompt"),
			registry.Opt("select_pages"),
		},
		Output: "markdown_content",
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			if l.converter == nil {
				return nil, fmt.Errorf("no PDF converter configured")
			}
			path, err := in.String("file_path")
			if err != nil {
				return nil, err
			}
			modelID, err := in.StringOr("model", "")
			if err != nil {
				return nil, err
			}
			system, err := in.StringOr("custom_system_prompt", "")
			if err != nil {
				return nil, err
			}
			pages, err := ParsePages(in["select_pages"])
			if err != nil {
				return nil, err
			}

			resp, err := l.converter.Convert(ctx, ConvertRequest{
				Path:         path,
				Model:        modelID,
				SystemPrompt: system,
				Pages:        pages,
			})
			if err != nil {
				return nil, err
			}
			text, err := l.normalizer.Normalize(resp)
			if err != nil {
				return nil, err
			}
			l.logger.InfoContext(ctx, "converted PDF", "path", path, "model", modelID, "chars", len(text))
			return text, nil
		},
	}
}
