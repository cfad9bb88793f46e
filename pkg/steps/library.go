package steps

import (
	"io"
	"log/slog"

	"github.com/aretw0/scribe/pkg/generate"
	"github.com/aretw0/scribe/pkg/ports"
)

// Library builds the document steps around shared collaborators.
type Library struct {
	tools      ports.ToolRunner
	converter  Converter
	normalizer generate.Normalizer
	logger     *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithTools sets the runner used for clipboard and DOCX export.
func WithTools(tools ports.ToolRunner) Option {
	return func(l *Library) {
		l.tools = tools
	}
}

// WithConverter sets the PDF converter.
func WithConverter(c Converter) Option {
	return func(l *Library) {
		l.converter = c
	}
}

// WithNormalizer sets how converter responses are turned into text.
func WithNormalizer(n generate.Normalizer) Option {
	return func(l *Library) {
		l.normalizer = n
	}
}

// WithLogger sets the logger used by step logic.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// New creates a step library.
func New(opts ...Option) *Library {
	l := &Library{
		normalizer: generate.DefaultNormalizer,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
