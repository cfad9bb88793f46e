package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/scribe/pkg/registry"
	"github.com/aretw0/scribe/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// PaperInfo is the structured metadata extracted from a paper.
type PaperInfo struct {
	Title   string   `mapstructure:"title" json:"title"`
	Authors []string `mapstructure:"authors" json:"authors"`
}

// PaperInfoShape declares PaperInfo for generative steps.
var PaperInfoShape = schema.Of(
	schema.F("title", schema.String()),
	schema.F("authors", schema.Slice(schema.String())),
)

// DecodePaperInfo reads a PaperInfo from a coerced record or passes one through.
func DecodePaperInfo(v any) (PaperInfo, error) {
	switch p := v.(type) {
	case PaperInfo:
		return p, nil
	case *PaperInfo:
		if p == nil {
			return PaperInfo{}, fmt.Errorf("paper info is nil")
		}
		return *p, nil
	}
	var info PaperInfo
	if err := mapstructure.Decode(v, &info); err != nil {
		return PaperInfo{}, fmt.Errorf("failed to decode paper info: %w", err)
	}
	return info, nil
}

func (l *Library) paperField(name, output, description string, pick func(PaperInfo) string) registry.Step {
	return registry.Step{
		Name:        name,
		Description: description,
		Inputs:      []registry.Input{registry.In("paper_info")},
		Output:      output,
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			v, err := in.Value("paper_info")
			if err != nil {
				return nil, err
			}
			info, err := DecodePaperInfo(v)
			if err != nil {
				return nil, err
			}
			value := pick(info)
			l.logger.InfoContext(ctx, "extracted paper field", "field", output, "value", value)
			return value, nil
		},
	}
}

// ExtractTitle writes the paper title to title_str.
func (l *Library) ExtractTitle() registry.Step {
	return l.paperField("extract_title_str", "title_str", "Take the title from paper_info",
		func(p PaperInfo) string { return p.Title })
}

// ExtractAuthors writes the comma-separated authors to authors_str.
func (l *Library) ExtractAuthors() registry.Step {
	return l.paperField("extract_authors_str", "authors_str", "Join the authors from paper_info",
		func(p PaperInfo) string { return strings.Join(p.Authors, ", ") })
}
