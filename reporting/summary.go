// Package reporting renders the console summary shown after each
// emission. The TRX file is the machine-readable artifact; this table
// is for the human watching the run.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/trxkit/trx-emitter/results"
	"github.com/trxkit/trx-emitter/types"
)

// ConsoleSummary prints a per-result outcome table.
type ConsoleSummary struct {
	out          io.Writer
	showDataRows bool
}

// NewConsoleSummary creates a summary writer. When showDataRows is set,
// data-driven results also list one row per member traversal.
func NewConsoleSummary(out io.Writer, showDataRows bool) *ConsoleSummary {
	return &ConsoleSummary{out: out, showDataRows: showDataRows}
}

// Print renders the summary table for one emission.
func (s *ConsoleSummary) Print(rs []*results.Result, elapsed time.Duration) error {
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetTitle(fmt.Sprintf("TRX Emission Summary (%s)", elapsed.Round(time.Millisecond)))

	t.AppendHeader(table.Row{
		"Test", "Rows", "Assertions", "Duration", "Status", "Failure",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Rows", Align: text.AlignRight},
		{Name: "Assertions", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Failure", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	runOk := true
	for _, r := range rs {
		if !r.IsOk() {
			runOk = false
		}
		t.AppendRow(table.Row{
			displayName(r),
			len(r.Traversals),
			assertionCount(r),
			formatElapsed(resultDuration(r)),
			statusGlyph(r.IsOk()),
			firstFailureLine(r),
		})
		if s.showDataRows && r.IsDataDriven() {
			for i, tr := range r.Traversals {
				prefix := "├──"
				if i == len(r.Traversals)-1 {
					prefix = "└──"
				}
				t.AppendRow(table.Row{
					fmt.Sprintf("%s row %d", prefix, i+1),
					"",
					len(tr.Assertions),
					formatElapsed(tr.FinishTime.Sub(tr.StartTime)),
					statusGlyph(tr.IsOk()),
					traversalFailureLine(tr),
				})
			}
		}
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", "", statusGlyph(runOk), ""})

	if runOk {
		t.SetStyle(table.StyleColoredGreenWhiteOnBlack)
	} else {
		t.SetStyle(table.StyleColoredRedWhiteOnBlack)
	}
	t.Render()
	return nil
}

func displayName(r *results.Result) string {
	if name := r.RootTestName(); name != "" {
		return name
	}
	return "(unnamed)"
}

func assertionCount(r *results.Result) int {
	n := 0
	for _, tr := range r.Traversals {
		n += len(tr.Assertions)
	}
	return n
}

func resultDuration(r *results.Result) time.Duration {
	if len(r.Traversals) == 0 {
		return 0
	}
	return r.FinishTime().Sub(r.StartTime())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond).String()
}

func statusGlyph(ok bool) string {
	if ok {
		return "✓ pass"
	}
	return "✗ fail"
}

func firstFailureLine(r *results.Result) string {
	for _, tr := range r.Traversals {
		if line := traversalFailureLine(tr); line != "" {
			return line
		}
	}
	return ""
}

// traversalFailureLine extracts a one-line reason for the Failure
// column. Captured output may contain ANSI color from the test binary;
// strip it so the table stays aligned.
func traversalFailureLine(t *types.SectionTraversal) string {
	if t.FatalSignal != "" {
		return "fatal: " + t.FatalSignal
	}
	if !t.Completed {
		return "terminated unexpectedly"
	}
	for _, a := range t.Assertions {
		if a.IsOk() {
			continue
		}
		switch a.Kind {
		case types.AssertionExpressionFailed:
			return firstLine(a.ExpressionInMacro)
		case types.AssertionThrewException:
			return "exception: " + firstLine(a.Message)
		default:
			return firstLine(a.Message)
		}
	}
	if !t.IsOk() && t.Stderr != "" {
		return firstLine(t.Stderr)
	}
	return ""
}

func firstLine(s string) string {
	s = stripansi.Strip(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
