package schema

import (
	"fmt"
	"reflect"
)

// Type is a field type a Shape can declare.
type Type interface {
	// Name returns the type as written in shape descriptions, e.g. "[string]".
	Name() string
	// Validate reports whether value fits the type.
	Validate(value any) error
}

// scalar is a leaf type checked by a predicate over the decoded value.
type scalar struct {
	name   string
	sample string // placeholder shown to models in Shape.Instruction
	accept func(any) error
}

func (s scalar) Name() string { return s.name }

func (s scalar) Validate(value any) error { return s.accept(value) }

// list is a homogeneous slice of elem.
type list struct {
	elem Type
}

func (l list) Name() string { return "[" + l.elem.Name() + "]" }

func (l list) Validate(value any) error {
	if value == nil {
		return fmt.Errorf("expected %s, got null", l.Name())
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", l.Name(), value)
	}
	for i := range rv.Len() {
		if err := l.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// String declares a text field.
func String() Type {
	return scalar{name: "string", sample: `"..."`, accept: func(v any) error {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		return nil
	}}
}

// Int declares a whole-number field. Decoded JSON numbers arrive as float64
// and are accepted when they carry no fraction.
func Int() Type {
	return scalar{name: "int", sample: "0", accept: func(v any) error {
		switch n := v.(type) {
		case int, int32, int64:
			return nil
		case float64:
			if n == float64(int64(n)) {
				return nil
			}
			return fmt.Errorf("expected int, got fractional number %v", n)
		}
		return fmt.Errorf("expected int, got %T", v)
	}}
}

// Float declares a numeric field.
func Float() Type {
	return scalar{name: "float", sample: "0.0", accept: func(v any) error {
		switch v.(type) {
		case float32, float64, int, int32, int64:
			return nil
		}
		return fmt.Errorf("expected float, got %T", v)
	}}
}

// Bool declares a boolean field.
func Bool() Type {
	return scalar{name: "bool", sample: "true", accept: func(v any) error {
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		return nil
	}}
}

// Slice declares a list field whose elements are all of elem.
func Slice(elem Type) Type {
	return list{elem: elem}
}
