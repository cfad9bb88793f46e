package schema

import (
	"fmt"
	"strings"
)

// Field is one named, typed entry of a Shape.
type Field struct {
	Name string
	Type Type
}

// F is shorthand for declaring a Field.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// Shape declares the expected structure of a record produced by a
// generative step. Field order is preserved for descriptions and prompts.
type Shape []Field

// Of builds a Shape from the given fields.
func Of(fields ...Field) Shape {
	return Shape(fields)
}

// String renders the shape as "{title: string, authors: [string]}".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.Name())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Names returns the declared field names in order.
func (s Shape) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Validate checks that record carries every declared field with a value of
// the declared type. Extra keys are ignored. All failures are collected
// into an AggregateError.
func (s Shape) Validate(record map[string]any) error {
	var errs []error
	for _, f := range s {
		value, ok := record[f.Name]
		if !ok {
			errs = append(errs, &ValidationError{Key: f.Name, Reason: "missing required field"})
			continue
		}
		if err := f.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: f.Name, Reason: err.Error(), Value: value})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Instruction returns a short sentence telling a language model how to
// format its answer so that it can be coerced into this shape.
func (s Shape) Instruction() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = fmt.Sprintf("%q: %s", f.Name, example(f.Type))
	}
	return "Respond only with a JSON object of the form {" + strings.Join(parts, ", ") + "}."
}

func example(t Type) string {
	switch v := t.(type) {
	case list:
		return "[" + example(v.elem) + ", ...]"
	case scalar:
		return v.sample
	default:
		return "<" + t.Name() + ">"
	}
}
