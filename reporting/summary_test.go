package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trxkit/trx-emitter/results"
	"github.com/trxkit/trx-emitter/types"
)

func passingTraversal(root string) *types.SectionTraversal {
	return &types.SectionTraversal{
		Sections:   []types.SectionInfo{{Name: root}},
		Assertions: []types.AssertionRecord{{Kind: types.AssertionPassed}},
		RunName:    "tests.exe",
		StartTime:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		FinishTime: time.Date(2024, 6, 1, 10, 0, 1, 0, time.UTC),
		Completed:  true,
	}
}

func renderSummary(t *testing.T, rs []*results.Result, showDataRows bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewConsoleSummary(&buf, showDataRows).Print(rs, 250*time.Millisecond))
	return stripansi.Strip(buf.String())
}

func TestPrint_PassingRun(t *testing.T) {
	rs := results.NewAggregator().Aggregate([]*types.SectionTraversal{
		passingTraversal("Alpha"),
		passingTraversal("Beta"),
	})

	out := renderSummary(t, rs, true)

	assert.Contains(t, out, "TRX Emission Summary")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.Contains(t, out, "✓ pass")
	assert.NotContains(t, out, "✗ fail")
}

func TestPrint_FailingRunShowsReason(t *testing.T) {
	bad := passingTraversal("Broken")
	bad.Assertions = append(bad.Assertions, types.AssertionRecord{
		Kind:              types.AssertionExpressionFailed,
		ExpressionInMacro: "REQUIRE( x == 1 )",
	})

	rs := results.NewAggregator().Aggregate([]*types.SectionTraversal{bad})
	out := renderSummary(t, rs, true)

	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "REQUIRE( x == 1 )")
}

func TestPrint_DataDrivenRows(t *testing.T) {
	rs := results.NewAggregator().Aggregate([]*types.SectionTraversal{
		passingTraversal("Param"),
		passingTraversal("Param"),
		passingTraversal("Param"),
	})
	require.Len(t, rs, 1)
	require.True(t, rs[0].IsDataDriven())

	withRows := renderSummary(t, rs, true)
	assert.Contains(t, withRows, "├── row 1")
	assert.Contains(t, withRows, "├── row 2")
	assert.Contains(t, withRows, "└── row 3")

	withoutRows := renderSummary(t, rs, false)
	assert.NotContains(t, withoutRows, "row 1")
}

func TestPrint_UnnamedResult(t *testing.T) {
	tr := passingTraversal("")
	tr.Sections = nil

	rs := results.NewAggregator().Aggregate([]*types.SectionTraversal{tr})
	out := renderSummary(t, rs, true)

	assert.Contains(t, out, "(unnamed)")
}

func TestTraversalFailureLine(t *testing.T) {
	fatal := passingTraversal("A")
	fatal.FatalSignal = "SIGSEGV"
	fatal.Completed = false
	assert.Equal(t, "fatal: SIGSEGV", traversalFailureLine(fatal))

	incomplete := passingTraversal("A")
	incomplete.Completed = false
	assert.Equal(t, "terminated unexpectedly", traversalFailureLine(incomplete))

	threw := passingTraversal("A")
	threw.Assertions = []types.AssertionRecord{{
		Kind:    types.AssertionThrewException,
		Message: "boom\nwith details",
	}}
	assert.Equal(t, "exception: boom", traversalFailureLine(threw))

	colored := passingTraversal("A")
	colored.Assertions = []types.AssertionRecord{{
		Kind:    types.AssertionExplicitFailure,
		Message: "\x1b[31mred failure\x1b[0m",
	}}
	assert.Equal(t, "red failure", traversalFailureLine(colored))

	assert.Equal(t, "", traversalFailureLine(passingTraversal("A")))
}
