package flows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/adapters/process"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/generate"
	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/steps"
	"github.com/cloudwego/eino/components/model"
	eschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel answers according to the system prompt of each call.
type scriptedModel struct {
	mu        sync.Mutex
	paperInfo string
	models    []string
}

func (m *scriptedModel) Generate(_ context.Context, msgs []*eschema.Message, _ ...model.Option) (*eschema.Message, error) {
	system := msgs[0].Content
	switch {
	case strings.Contains(system, "extracting the title"):
		return eschema.AssistantMessage(m.paperInfo, nil), nil
	case strings.Contains(system, "formatter"):
		return eschema.AssistantMessage("## Final post\n**Why** it matters", nil), nil
	default:
		return eschema.AssistantMessage("draft about "+msgs[1].Content[:20], nil), nil
	}
}

func (m *scriptedModel) Stream(context.Context, []*eschema.Message, ...model.Option) (*eschema.StreamReader[*eschema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedModel) resolver() generate.ModelResolver {
	return generate.ResolverFunc(func(_ context.Context, id string) (model.BaseChatModel, error) {
		m.mu.Lock()
		m.models = append(m.models, id)
		m.mu.Unlock()
		return m, nil
	})
}

type recordingTools struct {
	mu    sync.Mutex
	calls []ports.ToolCall
}

func (r *recordingTools) Execute(_ context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return ports.ToolResult{}, nil
}

type trail struct {
	mu    sync.Mutex
	steps []string
}

func (tr *trail) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			tr.mu.Lock()
			tr.steps = append(tr.steps, e.Step)
			tr.mu.Unlock()
		},
	}
}

type fixture struct {
	model *scriptedModel
	tools *recordingTools
	trail *trail
	conv  []steps.ConvertRequest
	deps  Deps
}

func newFixture() *fixture {
	f := &fixture{
		model: &scriptedModel{paperInfo: `{"title": "Attention Is All You Need", "authors": ["Vaswani", "Shazeer"]}`},
		tools: &recordingTools{},
		trail: &trail{},
	}
	conv := steps.ConverterFunc(func(_ context.Context, req steps.ConvertRequest) (any, error) {
		f.conv = append(f.conv, req)
		return generate.Pages{{Number: 1, Content: "# Attention"}, {Number: 2, Content: "Vaswani, Shazeer"}}, nil
	})
	f.deps = Deps{
		Steps:     steps.New(steps.WithTools(f.tools), steps.WithConverter(conv)),
		Generator: generate.New(f.model.resolver()),
		Options:   []scribe.Option{scribe.WithLifecycleHooks(f.trail.hooks())},
	}
	return f
}

func TestPost_TextInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello"), 0o644))

	f := newFixture()
	eng, err := Post(f.deps)
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), PostRequest{FilePath: path}.Context())
	require.NoError(t, err)

	assert.Equal(t, "text", final["file_type"])
	assert.Equal(t, "Hello", final["markdown_content"])
	assert.Equal(t, filepath.Join(dir, "report.extracted.md"), final["markdown_file_path"])
	assert.NotContains(t, f.trail.steps, "convert_pdf_to_markdown")
	assert.Empty(t, f.conv)

	res, err := DecodePostResult(final)
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", res.Title)
	assert.Equal(t, "Vaswani, Shazeer", res.Authors)
	assert.Equal(t, "## Final post\n**Why** it matters", res.PostContent)
	assert.Equal(t, "Final post\nWhy it matters", res.CleanedPostContent)
	assert.Equal(t, steps.ClipboardSkipped, res.ClipboardStatus)
	assert.Equal(t, filepath.Join(dir, "report.draft.md"), res.DraftPostFilePath)
	assert.Empty(t, res.PostFilePath)

	assert.Equal(t, []string{DefaultCleaningModel, DefaultWritingModel, DefaultCleaningModel}, f.model.models)
}

func TestPost_PDFInputConverges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	f := newFixture()
	eng, err := Post(f.deps)
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), PostRequest{
		FilePath: path,
		Models:   Models{TextExtraction: "ollama/llava"},
		Copy:     true,
		Save:     true,
	}.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"check_file_type",
		"convert_pdf_to_markdown",
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
		"save_post",
	}, f.trail.steps)

	require.Len(t, f.conv, 1)
	assert.Equal(t, "ollama/llava", f.conv[0].Model)
	assert.Equal(t, "# Attention\n\nVaswani, Shazeer", final["markdown_content"])
	assert.Equal(t, filepath.Join(dir, "paper.extracted.md"), final["markdown_file_path"])

	res, err := DecodePostResult(final)
	require.NoError(t, err)
	assert.Equal(t, steps.ClipboardCopied, res.ClipboardStatus)
	assert.Equal(t, filepath.Join(dir, "paper.md"), res.PostFilePath)
	saved, err := os.ReadFile(res.PostFilePath)
	require.NoError(t, err)
	assert.Equal(t, res.PostContent, string(saved))

	require.Len(t, f.tools.calls, 1)
	assert.Equal(t, process.ToolClipboard, f.tools.calls[0].Name)
}

func TestPost_StructuredOutputMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes"), 0o644))

	f := newFixture()
	f.model.paperInfo = "The title is Notes and there are no authors."
	eng, err := Post(f.deps)
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), PostRequest{FilePath: path}.Context())
	require.Error(t, err)
	assert.Nil(t, final)
	assert.ErrorIs(t, err, domain.ErrStructuredOutputMismatch)
	assert.Equal(t, "extract_paper_info", domain.FailedStep(err))
	assert.NotContains(t, f.trail.steps, "extract_title_str")
}

func TestPost_UnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slides.pptx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	f := newFixture()
	eng, err := Post(f.deps)
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), PostRequest{FilePath: path}.Context())
	require.ErrorIs(t, err, domain.ErrStepExecution)
	assert.Equal(t, "check_file_type", domain.FailedStep(err))
}

func TestPost_NoSaveStopsCleanly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello"), 0o644))

	f := newFixture()
	eng, err := Post(f.deps)
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), PostRequest{FilePath: path, Save: false}.Context())
	require.NoError(t, err)
	assert.Equal(t, "copy_to_clipboard", f.trail.steps[len(f.trail.steps)-1])
	assert.False(t, final.Has("post_file_path"))
	assert.NoFileExists(t, filepath.Join(dir, "report.md"))
}

func TestPost_RequiresGenerator(t *testing.T) {
	_, err := Post(Deps{})
	assert.ErrorContains(t, err, "generator is required")
}

func TestPostRequest_Context(t *testing.T) {
	c := PostRequest{FilePath: "/data/paper.pdf", Models: Models{Writing: "openai/gpt-4o-mini"}}.Context()

	assert.Equal(t, "/data/paper.pdf", c["file_path"])
	assert.Equal(t, "/data", c["output_dir"])
	assert.Equal(t, DefaultTextExtractionModel, c["text_extraction_model"])
	assert.Equal(t, "openai/gpt-4o-mini", c["writing_model"])
	assert.Equal(t, DefaultMaxCharacterCount, c["max_character_count"])
	assert.Equal(t, false, c["do_copy"])
}

func TestDecodePostResult_NoContent(t *testing.T) {
	_, err := DecodePostResult(domain.NewContext(map[string]any{"clipboard_status": "x"}))
	assert.ErrorIs(t, err, scribe.ErrNoResult)
}

func TestPDF2MD(t *testing.T) {
	dir := t.TempDir()
	f := newFixture()
	eng, err := PDF2MD(f.deps)
	require.NoError(t, err)

	in := filepath.Join(dir, "scan.pdf")
	final, err := eng.Run(context.Background(), PDF2MDRequest{
		Input:        in,
		Model:        "gemini/gemini-2.0-flash",
		SystemPrompt: "keep tables",
		Pages:        "2",
	}.Context())
	require.NoError(t, err)

	out := filepath.Join(dir, "scan.md")
	assert.Equal(t, out, final["output_path"])
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Attention\n\nVaswani, Shazeer", string(data))

	require.Len(t, f.conv, 1)
	assert.Equal(t, steps.ConvertRequest{
		Path:         in,
		Model:        "gemini/gemini-2.0-flash",
		SystemPrompt: "keep tables",
		Pages:        []int{2},
	}, f.conv[0])
}

func TestMD2DOCX(t *testing.T) {
	dir := t.TempDir()
	f := newFixture()
	eng, err := MD2DOCX(f.deps)
	require.NoError(t, err)

	out := filepath.Join(dir, "doc.docx")
	final, err := eng.Run(context.Background(), MD2DOCXRequest{
		Input:        "doc.md",
		Output:       out,
		ReferenceDoc: "ref.docx",
	}.Context())
	require.NoError(t, err)
	assert.Equal(t, out, final["docx_file_path"])

	require.Len(t, f.tools.calls, 1)
	assert.Equal(t, process.ToolPandoc, f.tools.calls[0].Name)
	assert.Equal(t, []string{"--reference-doc=ref.docx"}, f.tools.calls[0].Extra)
}

func TestCatalog(t *testing.T) {
	cat, err := NewCatalog(newFixture().deps)
	require.NoError(t, err)

	assert.Equal(t, []string{FlowMD2DOCX, FlowPDF2MD, FlowPost}, cat.Names())

	wf, ok := cat.Workflow(FlowPost)
	require.True(t, ok)
	assert.Equal(t, "check_file_type", wf.Graph().Entry())

	_, ok = cat.Workflow("missing")
	assert.False(t, ok)
}
