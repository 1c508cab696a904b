package types

import (
	"strings"
	"time"
)

// AssertionKind classifies the outcome of a single recorded assertion.
type AssertionKind string

const (
	AssertionPassed           AssertionKind = "passed"
	AssertionExpressionFailed AssertionKind = "expression-failed"
	AssertionThrewException   AssertionKind = "threw-exception"
	AssertionExplicitFailure  AssertionKind = "explicit-failure"
)

// SourceInfo identifies a location in the test source.
type SourceInfo struct {
	File string
	Line int
}

// SectionInfo describes one nesting level of a section traversal.
type SectionInfo struct {
	Name   string
	Source SourceInfo
}

// Tag is a test tag as captured by the harness. Original preserves the
// literal spelling, brackets included (e.g. "[fast]").
type Tag struct {
	Original string
}

// AssertionRecord is one assertion observed during a traversal, together
// with the expanded form of its expression at evaluation time.
type AssertionRecord struct {
	Kind              AssertionKind
	Expression        string // captured expression text, e.g. "x == 1"
	ExpressionInMacro string // full macro invocation, e.g. "REQUIRE( x == 1 )"
	MacroName         string // e.g. "REQUIRE"
	Expanded          string // expanded expression text, e.g. "2 == 1"
	Message           string
	Source            SourceInfo
}

// IsOk reports whether the assertion passed.
func (a AssertionRecord) IsOk() bool {
	return a.Kind == AssertionPassed
}

// SectionTraversal is one complete execution path through a nested test
// structure, root section to deepest section. It is a passive record
// produced by the event-generation side; consumers treat it as
// read-only after ingestion.
type SectionTraversal struct {
	Sections   []SectionInfo
	Assertions []AssertionRecord
	RunName    string // name of the binary/run the traversal belongs to
	Tags       []Tag

	Stdout string
	Stderr string

	StartTime  time.Time
	FinishTime time.Time

	// FatalSignal is set when the process terminated abnormally mid-traversal.
	FatalSignal       string
	FatalSignalSource SourceInfo

	// Completed is false when the traversal never reached its terminal
	// teardown, e.g. a crash.
	Completed bool
}

// IsOk reports whether the traversal completed with every assertion
// passing. A completed traversal with no assertions is OK; an
// incomplete one never is.
func (t *SectionTraversal) IsOk() bool {
	if !t.Completed {
		return false
	}
	for _, a := range t.Assertions {
		if !a.IsOk() {
			return false
		}
	}
	return true
}

// RootName returns the name of the outermost section, or "" when the
// traversal captured no section hierarchy.
func (t *SectionTraversal) RootName() string {
	if len(t.Sections) == 0 {
		return ""
	}
	return t.Sections[0].Name
}

// SectionPath returns the section names joined with "/", mainly for
// logging and summary display.
func (t *SectionTraversal) SectionPath() string {
	names := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		names = append(names, s.Name)
	}
	return strings.Join(names, "/")
}
