package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims whitespace", input: []string{"  CC-1  ", "CC-2  "}, expected: []string{"CC-1", "CC-2"}},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"CC-2", "CC-1", "CC-2", "CC-3", "CC-1"},
			expected: []string{"CC-2", "CC-1", "CC-3"},
		},
		{name: "removes blanks", input: []string{"CC-1", "", "  ", "CC-2"}, expected: []string{"CC-1", "CC-2"}},
		{name: "preserves case", input: []string{"cc-1", "CC-1"}, expected: []string{"cc-1", "CC-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "Asha Devi", JoinNonEmpty(" ", "Asha", "", " Devi "))
	assert.Equal(t, "", JoinNonEmpty(" ", "", "  "))
}
