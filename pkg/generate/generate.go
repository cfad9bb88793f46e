package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/scribe/pkg/ports"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/aretw0/scribe/pkg/schema"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	eschema "github.com/cloudwego/eino/schema"
)

// ModelResolver maps a model identifier such as "gemini/gemini-2.0-flash"
// to a chat model.
type ModelResolver interface {
	ChatModel(ctx context.Context, id string) (model.BaseChatModel, error)
}

// ResolverFunc adapts a function to the ModelResolver interface.
type ResolverFunc func(ctx context.Context, id string) (model.BaseChatModel, error)

func (f ResolverFunc) ChatModel(ctx context.Context, id string) (model.BaseChatModel, error) {
	return f(ctx, id)
}

// Spec describes a generative step.
type Spec struct {
	Name        string
	Description string
	// Output is the context key the result is written to.
	Output string
	// Model is the input carrying the model identifier. Defaults to In("model").
	Model registry.Input
	// Inputs are exposed to the templates under their names.
	Inputs []registry.Input
	// SystemPrompt and Template are Jinja2 templates.
	SystemPrompt string
	Template     string
	// Shape, when set, turns the response into a validated record.
	Shape schema.Shape
}

// Generator builds generative steps that share one model resolver, cache
// and normalizer.
type Generator struct {
	models     ModelResolver
	cache      ports.ResponseCache
	normalizer Normalizer
	logger     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithCache memoizes responses by model and rendered prompt.
func WithCache(cache ports.ResponseCache) Option {
	return func(g *Generator) {
		g.cache = cache
	}
}

// WithNormalizer replaces DefaultNormalizer.
func WithNormalizer(n Normalizer) Option {
	return func(g *Generator) {
		g.normalizer = n
	}
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a Generator.
func New(models ModelResolver, opts ...Option) *Generator {
	g := &Generator{
		models:     models,
		normalizer: DefaultNormalizer,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Step turns a Spec into a registry step of kind generative.
func (g *Generator) Step(spec Spec) registry.Step {
	modelIn := spec.Model
	if modelIn.Name == "" {
		modelIn = registry.In("model")
	}

	inputs := make([]registry.Input, 0, len(spec.Inputs)+1)
	inputs = append(inputs, spec.Inputs...)
	inputs = append(inputs, modelIn)

	system := spec.SystemPrompt
	if len(spec.Shape) > 0 {
		system += "\n\n" + spec.Shape.Instruction()
	}
	tmpl := prompt.FromMessages(eschema.Jinja2,
		eschema.SystemMessage(system),
		eschema.UserMessage(spec.Template),
	)

	return registry.Step{
		Name:        spec.Name,
		Description: spec.Description,
		Inputs:      inputs,
		Output:      spec.Output,
		Kind:        registry.KindGenerative,
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			modelID, err := in.String(modelIn.Name)
			if err != nil {
				return nil, err
			}

			vars := make(map[string]any, len(spec.Inputs))
			for _, decl := range spec.Inputs {
				if v, ok := in[decl.Name]; ok {
					vars[decl.Name] = v
				}
			}

			msgs, err := tmpl.Format(ctx, vars)
			if err != nil {
				return nil, fmt.Errorf("failed to render prompt: %w", err)
			}

			text, err := g.Complete(ctx, modelID, msgs)
			if err != nil {
				return nil, err
			}

			if len(spec.Shape) == 0 {
				return text, nil
			}
			return Coerce(text, spec.Shape)
		},
	}
}

// Complete sends msgs to the model and returns the normalized text,
// consulting the cache first when one is configured.
func (g *Generator) Complete(ctx context.Context, modelID string, msgs []*eschema.Message) (string, error) {
	key := cacheKey(modelID, msgs)
	if g.cache != nil {
		cached, err := g.cache.Get(ctx, key)
		switch {
		case err == nil:
			g.logger.DebugContext(ctx, "response cache hit", "model", modelID)
			return cached, nil
		case !errors.Is(err, ports.ErrCacheMiss):
			g.logger.WarnContext(ctx, "response cache unavailable", "model", modelID, "error", err)
		}
	}

	cm, err := g.models.ChatModel(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve model %q: %w", modelID, err)
	}

	g.logger.DebugContext(ctx, "calling model", "model", modelID, "messages", len(msgs))
	resp, err := cm.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("model %q: %w", modelID, err)
	}

	text, err := g.normalizer.Normalize(resp)
	if err != nil {
		return "", err
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, text); err != nil {
			g.logger.WarnContext(ctx, "failed to cache response", "model", modelID, "error", err)
		}
	}
	return text, nil
}

func cacheKey(modelID string, msgs []*eschema.Message) string {
	h := sha256.New()
	io.WriteString(h, modelID)
	for _, m := range msgs {
		h.Write([]byte{0})
		io.WriteString(h, string(m.Role))
		h.Write([]byte{0})
		io.WriteString(h, m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
