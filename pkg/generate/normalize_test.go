package generate

import (
	"testing"

	"github.com/aretw0/scribe/pkg/domain"
	eschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNormalizer(t *testing.T) {
	var nilMsg *eschema.Message

	tests := []struct {
		name     string
		response any
		want     string
		wantErr  bool
	}{
		{"message pointer", eschema.AssistantMessage("hello", nil), "hello", false},
		{"message value", *eschema.UserMessage("value"), "value", false},
		{"string", "plain", "plain", false},
		{"bytes", []byte("raw"), "raw", false},
		{"pages skip empty", Pages{{1, "one"}, {2, ""}, {3, "three"}}, "one\n\nthree", false},
		{"string slice", []string{"a", "b"}, "a\n\nb", false},
		{"nil", nil, "", true},
		{"nil message", nilMsg, "", true},
		{"unknown", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultNormalizer.Normalize(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrUnrecognizedResponseShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnrecognizedShapeNamesType(t *testing.T) {
	_, err := DefaultNormalizer.Normalize(struct{ X int }{1})
	assert.EqualError(t, err, "unrecognized response shape: struct { X int }")
}
