package generate

import (
	"fmt"
	"strings"

	"github.com/aretw0/scribe/pkg/domain"
	eschema "github.com/cloudwego/eino/schema"
)

// Page is one page of a converted document.
type Page struct {
	Number  int
	Content string
}

// Pages is the result shape of page-oriented converters.
type Pages []Page

// Normalizer turns a collaborator response into plain text.
// Responses of unknown types fail with an UnrecognizedResponseShapeError.
type Normalizer interface {
	Normalize(response any) (string, error)
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(response any) (string, error)

func (f NormalizerFunc) Normalize(response any) (string, error) { return f(response) }

// DefaultNormalizer understands chat messages, strings, byte slices, Pages
// and string slices. Page contents are joined by a blank line; empty pages
// are skipped.
var DefaultNormalizer Normalizer = NormalizerFunc(normalize)

func normalize(response any) (string, error) {
	switch r := response.(type) {
	case *eschema.Message:
		if r == nil {
			return "", &domain.UnrecognizedResponseShapeError{Type: "nil message"}
		}
		return r.Content, nil
	case eschema.Message:
		return r.Content, nil
	case string:
		return r, nil
	case []byte:
		return string(r), nil
	case Pages:
		parts := make([]string, 0, len(r))
		for _, p := range r {
			if p.Content != "" {
				parts = append(parts, p.Content)
			}
		}
		return strings.Join(parts, "\n\n"), nil
	case []string:
		parts := make([]string, 0, len(r))
		for _, s := range r {
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n\n"), nil
	case nil:
		return "", &domain.UnrecognizedResponseShapeError{Type: "nil"}
	default:
		return "", &domain.UnrecognizedResponseShapeError{Type: fmt.Sprintf("%T", response)}
	}
}
