package generate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/scribe/pkg/adapters/memory"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/aretw0/scribe/pkg/schema"
	"github.com/cloudwego/eino/components/model"
	eschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel answers every call with reply and records the prompts it saw.
type fakeModel struct {
	mu    sync.Mutex
	reply string
	err   error
	seen  [][]*eschema.Message
}

func (f *fakeModel) Generate(_ context.Context, input []*eschema.Message, _ ...model.Option) (*eschema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, input)
	if f.err != nil {
		return nil, f.err
	}
	return eschema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeModel) Stream(context.Context, []*eschema.Message, ...model.Option) (*eschema.StreamReader[*eschema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func resolverFor(m model.BaseChatModel, ids *[]string) ModelResolver {
	return ResolverFunc(func(_ context.Context, id string) (model.BaseChatModel, error) {
		if ids != nil {
			*ids = append(*ids, id)
		}
		return m, nil
	})
}

func define(t *testing.T, step registry.Step) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Define(step))
	return reg
}

func TestStep_TextOutput(t *testing.T) {
	fm := &fakeModel{reply: "A great post"}
	var ids []string
	gen := New(resolverFor(fm, &ids))

	step := gen.Step(Spec{
		Name:         "write",
		Output:       "draft",
		Model:        registry.In("model").FromKey("writing_model"),
		Inputs:       []registry.Input{registry.In("title_str"), registry.In("max_character_count")},
		SystemPrompt: "You write posts.",
		Template:     "Introduce {{title_str}} in under {{max_character_count}} characters.",
	})
	assert.Equal(t, registry.KindGenerative, step.Kind)

	reg := define(t, step)
	c := domain.NewContext(map[string]any{
		"title_str":           "Attention",
		"max_character_count": 3000,
		"writing_model":       "openrouter/deepseek/deepseek-r1",
	})
	require.NoError(t, reg.Invoke(context.Background(), "write", c))

	assert.Equal(t, "A great post", c["draft"])
	assert.Equal(t, []string{"openrouter/deepseek/deepseek-r1"}, ids)

	require.Len(t, fm.seen, 1)
	msgs := fm.seen[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, eschema.System, msgs[0].Role)
	assert.Equal(t, "You write posts.", msgs[0].Content)
	assert.Equal(t, "Introduce Attention in under 3000 characters.", msgs[1].Content)
}

func TestStep_StructuredOutput(t *testing.T) {
	shape := schema.Of(schema.F("title", schema.String()), schema.F("authors", schema.Slice(schema.String())))

	tests := []struct {
		name    string
		reply   string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "fenced json",
			reply: "```json\n{\"title\": \"T\", \"authors\": [\"A\", \"B\"], \"year\": 2017}\n```",
			want:  map[string]any{"title": "T", "authors": []any{"A", "B"}},
		},
		{
			name:  "json inside prose",
			reply: "Sure! Here it is: {\"title\": \"T\", \"authors\": [\"A\"]} Hope it helps.",
			want:  map[string]any{"title": "T", "authors": []any{"A"}},
		},
		{
			name:    "plain text",
			reply:   "The paper is called T and was written by A.",
			wantErr: true,
		},
		{
			name:    "wrong field type",
			reply:   `{"title": "T", "authors": "A"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := &fakeModel{reply: tt.reply}
			reg := define(t, New(resolverFor(fm, nil)).Step(Spec{
				Name:     "extract",
				Output:   "paper_info",
				Inputs:   []registry.Input{registry.In("first_100_lines")},
				Template: "{{first_100_lines}}",
				Shape:    shape,
			}))

			c := domain.NewContext(map[string]any{"first_100_lines": "# T", "model": "m"})
			err := reg.Invoke(context.Background(), "extract", c)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrStructuredOutputMismatch)
				assert.ErrorIs(t, err, domain.ErrStepExecution)
				assert.Equal(t, "extract", domain.FailedStep(err))
				assert.False(t, c.Has("paper_info"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c["paper_info"])
			assert.Contains(t, fm.seen[0][0].Content, `"authors"`)
		})
	}
}

func TestStep_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	reg := define(t, New(resolverFor(&fakeModel{err: boom}, nil)).Step(Spec{
		Name:     "write",
		Output:   "draft",
		Template: "hi",
	}))

	err := reg.Invoke(context.Background(), "write", domain.NewContext(map[string]any{"model": "m"}))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrStepExecution)
}

func TestStep_MissingModelInput(t *testing.T) {
	reg := define(t, New(resolverFor(&fakeModel{}, nil)).Step(Spec{
		Name:     "write",
		Output:   "draft",
		Model:    registry.In("model").FromKey("writing_model"),
		Template: "hi",
	}))

	err := reg.Invoke(context.Background(), "write", domain.NewContext(nil))
	var missing *domain.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"writing_model"}, missing.Keys)
}

func TestGenerator_Cache(t *testing.T) {
	fm := &fakeModel{reply: "cached answer"}
	cache := memory.NewCache()
	gen := New(resolverFor(fm, nil), WithCache(cache))

	msgs := []*eschema.Message{eschema.UserMessage("same prompt")}
	for i := 0; i < 3; i++ {
		text, err := gen.Complete(context.Background(), "m", msgs)
		require.NoError(t, err)
		assert.Equal(t, "cached answer", text)
	}
	assert.Equal(t, 1, fm.calls())

	_, err := gen.Complete(context.Background(), "other-model", msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, fm.calls())
	assert.Equal(t, 2, cache.Len())
}

func TestGenerator_CustomNormalizer(t *testing.T) {
	refuse := NormalizerFunc(func(any) (string, error) {
		return "", &domain.UnrecognizedResponseShapeError{Type: "anything"}
	})
	gen := New(resolverFor(&fakeModel{reply: "x"}, nil), WithNormalizer(refuse))

	_, err := gen.Complete(context.Background(), "m", []*eschema.Message{eschema.UserMessage("p")})
	assert.ErrorIs(t, err, domain.ErrUnrecognizedResponseShape)
}
