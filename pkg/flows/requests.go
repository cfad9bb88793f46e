package flows

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/steps"
	"github.com/mitchellh/mapstructure"
)

// PostRequest is the input of one post run.
type PostRequest struct {
	FilePath          string
	Models            Models
	OutputDir         string // defaults to the input's directory
	Copy              bool
	Save              bool
	MaxCharacterCount int
}

// Context builds the initial run context.
func (r PostRequest) Context() map[string]any {
	path := steps.ExpandPath(r.FilePath)
	outDir := steps.ExpandPath(r.OutputDir)
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	maxChars := r.MaxCharacterCount
	if maxChars <= 0 {
		maxChars = DefaultMaxCharacterCount
	}
	models := r.Models.Or(DefaultModels())

	return map[string]any{
		"file_path":             path,
		"text_extraction_model": models.TextExtraction,
		"cleaning_model":        models.Cleaning,
		"writing_model":         models.Writing,
		"output_dir":            outDir,
		"do_copy":               r.Copy,
		"do_save":               r.Save,
		"max_character_count":   maxChars,
	}
}

// PostResult is the typed view of a finished post run.
type PostResult struct {
	PostContent        string `mapstructure:"post_content" json:"post_content"`
	CleanedPostContent string `mapstructure:"cleaned_post_content" json:"cleaned_post_content"`
	Title              string `mapstructure:"title_str" json:"title"`
	Authors            string `mapstructure:"authors_str" json:"authors"`
	MarkdownFilePath   string `mapstructure:"markdown_file_path" json:"markdown_file_path"`
	DraftPostFilePath  string `mapstructure:"draft_post_file_path" json:"draft_post_file_path"`
	PostFilePath       string `mapstructure:"post_file_path" json:"post_file_path,omitempty"`
	ClipboardStatus    string `mapstructure:"clipboard_status" json:"clipboard_status"`
}

// DecodePostResult reads a PostResult from a final context. A run that
// produced no post content fails with scribe.ErrNoResult.
func DecodePostResult(c domain.Context) (PostResult, error) {
	var res PostResult
	if err := mapstructure.Decode(map[string]any(c), &res); err != nil {
		return PostResult{}, fmt.Errorf("failed to decode post result: %w", err)
	}
	if res.PostContent == "" {
		return PostResult{}, fmt.Errorf("%w: workflow completed but no post content was generated", scribe.ErrNoResult)
	}
	return res, nil
}

// PDF2MDRequest is the input of one pdf2md run.
type PDF2MDRequest struct {
	Input        string
	Output       string // defaults to the input with a .md extension
	Model        string
	SystemPrompt string
	Pages        string // e.g. "1,3-5"; empty converts every page
}

// Context builds the initial run context.
func (r PDF2MDRequest) Context() map[string]any {
	in := steps.ExpandPath(r.Input)
	out := steps.ExpandPath(r.Output)
	if out == "" {
		out = steps.ArtifactPath(in, ".md", "")
	}
	c := map[string]any{
		"file_path": in,
		"output_md": out,
		"model":     r.Model,
	}
	if r.SystemPrompt != "" {
		c["custom_system_prompt"] = r.SystemPrompt
	}
	if r.Pages != "" {
		c["select_pages"] = r.Pages
	}
	return c
}

// MD2DOCXRequest is the input of one md2docx run.
type MD2DOCXRequest struct {
	Input        string
	Output       string
	Title        string
	ReferenceDoc string
	ResourceDir  string
}

// Context builds the initial run context.
func (r MD2DOCXRequest) Context() map[string]any {
	c := map[string]any{
		"markdown_path": steps.ExpandPath(r.Input),
		"docx_path":     steps.ExpandPath(r.Output),
	}
	if r.Title != "" {
		c["title"] = r.Title
	}
	if r.ReferenceDoc != "" {
		c["reference_doc"] = r.ReferenceDoc
	}
	if r.ResourceDir != "" {
		c["resource_dir"] = r.ResourceDir
	}
	return c
}
