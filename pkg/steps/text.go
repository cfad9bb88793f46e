package steps

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/scribe/pkg/registry"
)

// FirstLines keeps the first n lines of the input key.
func (l *Library) FirstLines(name, input, output string, n int) registry.Step {
	return registry.Step{
		Name:        name,
		Description: "Keep the leading lines of a document",
		Inputs:      []registry.Input{registry.In("text").FromKey(input)},
		Output:      output,
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			text, err := in.String("text")
			if err != nil {
				return nil, err
			}
			head, count := Head(text, n)
			l.logger.DebugContext(ctx, "extracted leading lines", "lines", count)
			return head, nil
		},
	}
}

// Head returns the first n lines of text and how many were kept.
func Head(text string, n int) (string, int) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n"), len(lines)
}

type rewrite struct {
	re   *regexp.Regexp
	with string
}

var markdownRewrites = []rewrite{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile(`_(.*?)_`), "$1"},
	{regexp.MustCompile(`(?m)^#+\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`), "\n"},
	{regexp.MustCompile("(?s)```[^\\n]*\\n(.*?)\\n```"), "$1"},
	{regexp.MustCompile("`([^`]*)`"), "$1"},
	{regexp.MustCompile(`(?m)^>\s+`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

// StripMarkdown removes emphasis, headings, rules, code, quotes, links and
// HTML tags, keeping the visible text.
func StripMarkdown(s string) string {
	for _, r := range markdownRewrites {
		s = r.re.ReplaceAllString(s, r.with)
	}
	return strings.TrimSpace(s)
}

// CleanMarkdown strips markdown syntax from the input key.
func (l *Library) CleanMarkdown(name, input, output string) registry.Step {
	return registry.Step{
		Name:        name,
		Description: "Remove markdown syntax",
		Inputs:      []registry.Input{registry.In("text").FromKey(input)},
		Output:      output,
		Logic: func(_ context.Context, in registry.Inputs) (any, error) {
			text, err := in.String("text")
			if err != nil {
				return nil, err
			}
			return StripMarkdown(text), nil
		},
	}
}
