package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionTraversal_IsOk(t *testing.T) {
	tests := []struct {
		name       string
		assertions []AssertionRecord
		completed  bool
		expected   bool
	}{
		{
			name:       "no assertions is ok",
			assertions: nil,
			completed:  true,
			expected:   true,
		},
		{
			name: "all passed",
			assertions: []AssertionRecord{
				{Kind: AssertionPassed},
				{Kind: AssertionPassed},
			},
			completed: true,
			expected:  true,
		},
		{
			name: "expression failure",
			assertions: []AssertionRecord{
				{Kind: AssertionPassed},
				{Kind: AssertionExpressionFailed},
			},
			completed: true,
			expected:  false,
		},
		{
			name: "exception",
			assertions: []AssertionRecord{
				{Kind: AssertionThrewException},
			},
			completed: true,
			expected:  false,
		},
		{
			name: "explicit failure",
			assertions: []AssertionRecord{
				{Kind: AssertionExplicitFailure},
			},
			completed: true,
			expected:  false,
		},
		{
			name:       "incomplete traversal is never ok",
			assertions: []AssertionRecord{{Kind: AssertionPassed}},
			completed:  false,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &SectionTraversal{Assertions: tt.assertions, Completed: tt.completed}
			assert.Equal(t, tt.expected, tr.IsOk())
		})
	}
}

func TestSectionTraversal_RootName(t *testing.T) {
	tr := &SectionTraversal{}
	assert.Equal(t, "", tr.RootName())

	tr.Sections = []SectionInfo{{Name: "Outer"}, {Name: "Inner"}}
	assert.Equal(t, "Outer", tr.RootName())
	assert.Equal(t, "Outer/Inner", tr.SectionPath())
}
