package generate

import (
	"errors"
	"strings"

	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/schema"
	"github.com/tidwall/gjson"
)

var (
	errNoObject    = errors.New("no JSON object found")
	errInvalidJSON = errors.New("invalid JSON")
	errNotObject   = errors.New("top-level JSON value is not an object")
)

// Coerce extracts the JSON object embedded in text, tolerating code fences
// and surrounding prose, and validates it against shape. The returned record
// holds only the declared fields.
func Coerce(text string, shape schema.Shape) (map[string]any, error) {
	mismatch := func(reason error) error {
		return &domain.StructuredOutputMismatchError{Shape: shape.String(), Raw: text, Reason: reason}
	}

	raw, ok := extractObject(text)
	if !ok {
		return nil, mismatch(errNoObject)
	}
	if !gjson.Valid(raw) {
		return nil, mismatch(errInvalidJSON)
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil, mismatch(errNotObject)
	}
	record, ok := parsed.Value().(map[string]any)
	if !ok {
		return nil, mismatch(errNotObject)
	}

	if err := shape.Validate(record); err != nil {
		return nil, mismatch(err)
	}

	out := make(map[string]any, len(shape))
	for _, name := range shape.Names() {
		out[name] = record[name]
	}
	return out, nil
}

func extractObject(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
