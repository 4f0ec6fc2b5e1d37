package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitGroups(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{"tech;news", []string{"tech", "news"}},
		{"tech, news", []string{"tech", "news"}},
		{"tech|news", []string{"tech", "news"}},
		{"tech; ;news;", []string{"tech", "news"}},
		{"", nil},
		{" ; ; ", nil},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SplitGroups(tt.raw), "input %q", tt.raw)
	}
}

func TestSerializeGroups(t *testing.T) {
	assert.Equal(t, "tech;news", SerializeGroups([]string{"tech", " news "}))
	assert.Equal(t, "", SerializeGroups(nil))
	assert.Equal(t, "one", SerializeGroups([]string{"", "one", " "}))
}
