package dsl

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/scribe/pkg/domain"
)

// Condition is a labeled guard.
type Condition struct {
	Guard domain.Guard
	Label string
}

// RouteSpec is one alternative of a Branch.
type RouteSpec struct {
	target string
	cond   Condition
}

// When routes to target when cond holds.
func When(target string, cond Condition) RouteSpec {
	return RouteSpec{target: target, cond: cond}
}

// Check wraps an arbitrary guard with a label for diagrams.
func Check(label string, guard domain.Guard) Condition {
	return Condition{Guard: guard, Label: label}
}

// Equals holds when the context value under key equals value.
func Equals(key string, value any) Condition {
	return Condition{
		Label: fmt.Sprintf("%s == %s", key, literal(value)),
		Guard: func(c domain.Context) bool {
			v, ok := c.Lookup(key)
			return ok && reflect.DeepEqual(v, value)
		},
	}
}

// OneOf holds when the context value under key equals any of values.
func OneOf(key string, values ...any) Condition {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(v)
	}
	return Condition{
		Label: fmt.Sprintf("%s in [%s]", key, strings.Join(parts, ", ")),
		Guard: func(c domain.Context) bool {
			v, ok := c.Lookup(key)
			if !ok {
				return false
			}
			for _, want := range values {
				if reflect.DeepEqual(v, want) {
					return true
				}
			}
			return false
		},
	}
}

// IsSet holds when key is present in the context.
func IsSet(key string) Condition {
	return Condition{
		Label: key + " is set",
		Guard: func(c domain.Context) bool { return c.Has(key) },
	}
}

// Truthy holds when key holds the boolean true.
func Truthy(key string) Condition {
	return Condition{
		Label: key,
		Guard: func(c domain.Context) bool {
			v, _ := c.Lookup(key)
			b, _ := v.(bool)
			return b
		},
	}
}

// Not negates a condition.
func Not(cond Condition) Condition {
	return Condition{
		Label: "not " + cond.Label,
		Guard: func(c domain.Context) bool { return !cond.Guard(c) },
	}
}

func literal(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
