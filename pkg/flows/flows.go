package flows

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/dsl"
	"github.com/aretw0/scribe/pkg/generate"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/aretw0/scribe/pkg/steps"
)

// Flow names.
const (
	FlowPost    = "post"
	FlowPDF2MD  = "pdf2md"
	FlowMD2DOCX = "md2docx"
)

// Deps carries the collaborators shared by every flow.
type Deps struct {
	Steps     *steps.Library
	Generator *generate.Generator
	Logger    *slog.Logger
	Options   []scribe.Option
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}

func (d Deps) bind(name string, g *domain.Graph, reg *registry.Registry) (*scribe.Engine, error) {
	opts := make([]scribe.Option, 0, len(d.Options)+2)
	opts = append(opts, scribe.WithLogger(d.logger()))
	opts = append(opts, d.Options...)
	opts = append(opts, scribe.WithName(name))
	eng, err := scribe.New(g, reg, opts...)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", name, err)
	}
	return eng, nil
}

func (d Deps) library() *steps.Library {
	if d.Steps == nil {
		return steps.New(steps.WithLogger(d.logger()))
	}
	return d.Steps
}

// Post builds the file to LinkedIn post workflow.
//
//	check_file_type ─┬─ pdf ──────────── convert_pdf_to_markdown ─┐
//	                 └─ text|markdown ── read_text_or_markdown ───┴─ save_markdown_content
//	  → extract_first_100_lines → extract_paper_info → extract_title_str
//	  → extract_authors_str → generate_linkedin_post → save_draft_post_content
//	  → format_linkedin_post → clean_markdown_syntax → copy_to_clipboard
//	  → save_post (only when do_save is set)
func Post(d Deps) (*scribe.Engine, error) {
	if d.Generator == nil {
		return nil, fmt.Errorf("flow %s: a generator is required", FlowPost)
	}
	lib := d.library()
	gen := d.Generator

	reg := registry.New()
	err := reg.DefineAll(
		lib.CheckFileType(),
		lib.ConvertPDF("convert_pdf_to_markdown", "text_extraction_model"),
		lib.ReadText(),
		lib.SaveArtifact(steps.Artifact{
			Name:    "save_markdown_content",
			Content: "markdown_content",
			Source:  "file_path",
			Suffix:  ".extracted.md",
			Output:  "markdown_file_path",
		}),
		lib.FirstLines("extract_first_100_lines", "markdown_content", "first_100_lines", 100),
		gen.Step(generate.Spec{
			Name:         "extract_paper_info",
			Description:  "Extract the title and authors",
			Output:       "paper_info",
			Model:        registry.In("model").FromKey("cleaning_model"),
			Inputs:       []registry.Input{registry.In("first_100_lines")},
			SystemPrompt: paperInfoSystemPrompt,
			Template:     paperInfoTemplate,
			Shape:        steps.PaperInfoShape,
		}),
		lib.ExtractTitle(),
		lib.ExtractAuthors(),
		gen.Step(generate.Spec{
			Name:        "generate_linkedin_post",
			Description: "Write the draft post",
			Output:      "draft_post_content",
			Model:       registry.In("model").FromKey("writing_model"),
			Inputs: []registry.Input{
				registry.In("title_str"),
				registry.In("authors_str"),
				registry.In("markdown_content"),
				registry.In("max_character_count"),
			},
			SystemPrompt: draftSystemPrompt,
			Template:     draftTemplate,
		}),
		lib.SaveArtifact(steps.Artifact{
			Name:    "save_draft_post_content",
			Content: "draft_post_content",
			Source:  "file_path",
			Suffix:  ".draft.md",
			Output:  "draft_post_file_path",
		}),
		gen.Step(generate.Spec{
			Name:         "format_linkedin_post",
			Description:  "Format the draft for publishing",
			Output:       "post_content",
			Model:        registry.In("model").FromKey("cleaning_model"),
			Inputs:       []registry.Input{registry.In("draft_post_content")},
			SystemPrompt: formatSystemPrompt,
			Template:     formatTemplate,
		}),
		lib.CleanMarkdown("clean_markdown_syntax", "post_content", "cleaned_post_content"),
		lib.CopyToClipboard("copy_to_clipboard", "post_content", "clipboard_status"),
		lib.SaveArtifact(steps.Artifact{
			Name:     "save_post",
			Content:  "post_content",
			Source:   "file_path",
			Suffix:   ".md",
			Fallback: ".post.md",
			Output:   "post_file_path",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", FlowPost, err)
	}

	g, err := dsl.New(reg, dsl.WithLogger(d.logger())).
		Entry("check_file_type").
		Branch("check_file_type",
			dsl.When("convert_pdf_to_markdown", dsl.Equals("file_type", steps.FileTypePDF)),
			dsl.When("read_text_or_markdown", dsl.OneOf("file_type", steps.FileTypeText, steps.FileTypeMarkdown)),
		).
		Link("convert_pdf_to_markdown", "save_markdown_content").
		Sequence(
			"read_text_or_markdown",
			"save_markdown_content",
			"extract_first_100_lines",
			"extract_paper_info",
			"extract_title_str",
			"extract_authors_str",
			"generate_linkedin_post",
			"save_draft_post_content",
			"format_linkedin_post",
			"clean_markdown_syntax",
			"copy_to_clipboard",
		).
		Branch("copy_to_clipboard", dsl.When("save_post", dsl.Truthy("do_save"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", FlowPost, err)
	}
	return d.bind(FlowPost, g, reg)
}

// PDF2MD builds the PDF to markdown workflow: convert_pdf → save_markdown.
func PDF2MD(d Deps) (*scribe.Engine, error) {
	lib := d.library()

	reg := registry.New()
	err := reg.DefineAll(
		lib.ConvertPDF("convert_pdf", "model"),
		lib.SaveFile("save_markdown", "markdown_content", "output_md", "output_path"),
	)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", FlowPDF2MD, err)
	}

	g, err := dsl.New(reg, dsl.WithLogger(d.logger())).
		Entry("convert_pdf").
		Sequence("convert_pdf", "save_markdown").
		Build()
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", FlowPDF2MD, err)
	}
	return d.bind(FlowPDF2MD, g, reg)
}

// MD2DOCX builds the markdown to DOCX workflow.
func MD2DOCX(d Deps) (*scribe.Engine, error) {
	lib := d.library()

	reg := registry.New()
	if err := reg.Define(lib.ExportDOCX("export_docx")); err != nil {
		return nil, fmt.Errorf("flow %s: %w", FlowMD2DOCX, err)
	}

	g, err := dsl.New(reg, dsl.WithLogger(d.logger())).
		Entry("export_docx").
		Build()
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", FlowMD2DOCX, err)
	}
	return d.bind(FlowMD2DOCX, g, reg)
}
