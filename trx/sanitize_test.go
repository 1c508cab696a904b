package trx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name unchanged",
			input:    "Simple test name",
			expected: "Simple test name",
		},
		{
			name:     "tag and comma removed",
			input:    "Section [tag1] Name, extra",
			expected: "Section Name extra",
		},
		{
			name:     "adjacent tags collapse doubled space",
			input:    "foo [x] [y] bar",
			expected: "foo bar",
		},
		{
			name:     "leading tag trimmed",
			input:    "[fast] quick case",
			expected: "quick case",
		},
		{
			name:     "only commas removed",
			input:    "a,b,c",
			expected: "abc",
		},
		{
			name:     "tag at end trimmed",
			input:    "case name [slow]",
			expected: "case name",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeName_UnclosedBracket(t *testing.T) {
	_, err := SanitizeName("broken [tag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed [tag]")
}
