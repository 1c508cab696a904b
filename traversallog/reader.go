// Package traversallog reads the section-traversal log produced by the
// test-execution harness: a JSON Lines file, one traversal object per
// line, appended to as execution proceeds. Reading a partially written
// log is expected (incremental emission re-reads the "so far" state);
// a malformed line is a hard error carrying its line number.
package traversallog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/trxkit/trx-emitter/types"
)

// wire structs mirror the harness's JSON shape; they exist so the
// exported data model stays free of serialization tags.

type wireSource struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

type wireSection struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`
}

type wireAssertion struct {
	Kind              string `json:"kind"`
	Expression        string `json:"expression,omitempty"`
	ExpressionInMacro string `json:"expressionInMacro,omitempty"`
	Macro             string `json:"macro,omitempty"`
	Expanded          string `json:"expanded,omitempty"`
	Message           string `json:"message,omitempty"`
	File              string `json:"file"`
	Line              int    `json:"line"`
}

type wireTraversal struct {
	Sections    []wireSection   `json:"sections"`
	Assertions  []wireAssertion `json:"assertions"`
	RunName     string          `json:"runName"`
	Tags        []string        `json:"tags,omitempty"`
	Stdout      string          `json:"stdout,omitempty"`
	Stderr      string          `json:"stderr,omitempty"`
	StartTime   time.Time       `json:"startTime"`
	FinishTime  time.Time       `json:"finishTime"`
	FatalSignal string          `json:"fatalSignal,omitempty"`
	FatalSource *wireSource     `json:"fatalSource,omitempty"`
	Completed   bool            `json:"completed"`
}

// Read decodes a traversal log from r. Blank lines are skipped; the
// order of the log is preserved.
func Read(r io.Reader) ([]*types.SectionTraversal, error) {
	scanner := bufio.NewScanner(r)
	// Captured stdout can make individual lines large.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var traversals []*types.SectionTraversal
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var wt wireTraversal
		if err := json.Unmarshal([]byte(line), &wt); err != nil {
			return nil, fmt.Errorf("traversal log line %d: %w", lineNo, err)
		}
		traversals = append(traversals, fromWire(&wt))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading traversal log: %w", err)
	}
	return traversals, nil
}

// ReadFile reads a traversal log from disk.
func ReadFile(path string) ([]*types.SectionTraversal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening traversal log: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func fromWire(wt *wireTraversal) *types.SectionTraversal {
	t := &types.SectionTraversal{
		RunName:     wt.RunName,
		Stdout:      wt.Stdout,
		Stderr:      wt.Stderr,
		StartTime:   wt.StartTime,
		FinishTime:  wt.FinishTime,
		FatalSignal: wt.FatalSignal,
		Completed:   wt.Completed,
	}
	if wt.FatalSource != nil {
		t.FatalSignalSource = types.SourceInfo{File: wt.FatalSource.File, Line: wt.FatalSource.Line}
	}
	for _, s := range wt.Sections {
		t.Sections = append(t.Sections, types.SectionInfo{
			Name:   s.Name,
			Source: types.SourceInfo{File: s.File, Line: s.Line},
		})
	}
	for _, a := range wt.Assertions {
		t.Assertions = append(t.Assertions, types.AssertionRecord{
			Kind:              assertionKind(a.Kind),
			Expression:        a.Expression,
			ExpressionInMacro: a.ExpressionInMacro,
			MacroName:         a.Macro,
			Expanded:          a.Expanded,
			Message:           a.Message,
			Source:            types.SourceInfo{File: a.File, Line: a.Line},
		})
	}
	for _, tag := range wt.Tags {
		t.Tags = append(t.Tags, types.Tag{Original: tag})
	}
	return t
}

// assertionKind maps a wire kind onto the data model. Unknown kinds are
// treated as explicit failures rather than dropped, so a newer harness
// never makes a failing assertion invisible.
func assertionKind(kind string) types.AssertionKind {
	switch types.AssertionKind(kind) {
	case types.AssertionPassed,
		types.AssertionExpressionFailed,
		types.AssertionThrewException,
		types.AssertionExplicitFailure:
		return types.AssertionKind(kind)
	default:
		return types.AssertionExplicitFailure
	}
}
