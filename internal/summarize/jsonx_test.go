package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"clean object", `{"a": 1}`, true},
		{"markdown fence", "```json\n{\"a\": 1}\n```", true},
		{"fence without language", "```\n{\"a\": 1}\n```", true},
		{"leading prose", `Here is the JSON you asked for: {"a": 1}`, true},
		{"trailing commentary", `{"a": 1} I hope this helps!`, true},
		{"single element array", `[{"a": 1}]`, true},
		{"multi element array", `[{"a": 1}, {"b": 2}]`, false},
		{"bare string", `"just a string"`, false},
		{"no json at all", `I cannot produce a summary.`, false},
		{"empty", ``, false},
		{"truncated object", `{"a": 1, "b":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := recoverJSONObject(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				require.NotNil(t, obj)
				assert.EqualValues(t, 1, obj["a"])
			}
		})
	}
}

func TestStringListField(t *testing.T) {
	tests := []struct {
		name     string
		obj      map[string]any
		expected []string
	}{
		{
			name:     "json array",
			obj:      map[string]any{"k": []any{"one", " two ", ""}},
			expected: []string{"one", "two"},
		},
		{
			name:     "comma separated string",
			obj:      map[string]any{"k": "one, two, three"},
			expected: []string{"one", "two", "three"},
		},
		{
			name:     "newline bulleted string",
			obj:      map[string]any{"k": "- one\n- two"},
			expected: []string{"one", "two"},
		},
		{
			name:     "missing key",
			obj:      map[string]any{},
			expected: nil,
		},
		{
			name:     "wrong type",
			obj:      map[string]any{"k": 42},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stringListField(tt.obj, "k"))
		})
	}
}
