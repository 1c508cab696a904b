// Package trx serializes aggregated results into a Visual Studio TRX
// document (the TeamTest 2010 schema consumed by vstest-compatible
// tooling). Emission is a single forward pass: each structural block is
// written before the next begins, so a fresh document can be regenerated
// wholesale on every emission without diffing.
package trx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/trxkit/trx-emitter/guid"
	"github.com/trxkit/trx-emitter/results"
	"github.com/trxkit/trx-emitter/types"
	"github.com/trxkit/trx-emitter/xmlwriter"
)

const (
	computerName        = "localhost"
	vsTestTypeID        = "13cdc9d9-ddb5-4fa4-a97d-d965ccfc6d4b"
	teamTestNamespace   = "http://microsoft.com/schemas/VisualStudio/TeamTest/2010"
	adapterTypeName     = "executor://mstestadapter/v2"
	testClassName       = "Catch2.Test"
	defaultTestListName = "Default test list"
	runUser             = "trx-emitter"

	incompleteNotice = "Test execution terminated unexpectedly before this test completed. Please see redirected output, if available, for more details.\n"
)

// Document is the transient state of one serialization pass. It treats
// the aggregated results as read-only and is discarded once the
// document has been written.
type Document struct {
	xml               *xmlwriter.Writer
	results           []*results.Result
	sourcePrefix      string
	attachments       []string
	defaultTestListID string
	newID             func() string
	now               func() time.Time
}

// Option customizes a serialization pass.
type Option func(*Document)

// WithIDGenerator overrides identifier generation, mainly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(d *Document) { d.newID = gen }
}

// WithClock overrides the wall clock used when no result supplies a
// usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Document) { d.now = now }
}

// Serialize writes a complete TRX document for the given results.
// sourcePathPrefix is stripped from source file paths when rendering
// stack lines; attachmentPaths become ResultFile entries in the
// summary. The only data-dependent failure is an unsanitizable display
// name (unclosed bracket); sink write errors surface from the final
// flush.
func Serialize(out io.Writer, rs []*results.Result, sourcePathPrefix string, attachmentPaths []string, opts ...Option) error {
	d := &Document{
		xml:          xmlwriter.New(out),
		results:      rs,
		sourcePrefix: sourcePathPrefix,
		attachments:  attachmentPaths,
		newID:        guid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.defaultTestListID = d.newID()

	d.startTestRun()
	d.writeTimes()
	if err := d.writeResults(); err != nil {
		return err
	}
	d.writeTestDefinitions()
	d.writeTestLists()
	d.writeTestEntries()
	d.writeSummary()
	return d.xml.Finish() // TestRun
}

func outcome(ok bool) string {
	if ok {
		return "Passed"
	}
	return "Failed"
}

func (d *Document) startTestRun() {
	var runName string
	if len(d.results) > 0 && len(d.results[0].Traversals) > 0 {
		runName = d.results[0].Traversals[0].RunName
	}
	d.xml.StartElement("TestRun").
		WriteAttribute("id", d.newID()).
		WriteAttribute("name", runName).
		WriteAttribute("runUser", runUser).
		WriteAttribute("xmlns", teamTestNamespace)
}

func (d *Document) writeTimes() {
	now := d.now()
	start, finish := now, now
	if len(d.results) > 0 && len(d.results[0].Traversals) > 0 {
		start = d.results[0].StartTime()
		finish = d.results[len(d.results)-1].FinishTime()
	}
	d.xml.Scoped("Times").
		WriteAttribute("creation", FormatTimestamp(start)).
		WriteAttribute("queuing", FormatTimestamp(start)).
		WriteAttribute("start", FormatTimestamp(start)).
		WriteAttribute("finish", FormatTimestamp(finish)).
		Close()
}

func (d *Document) writeResults() error {
	d.xml.StartElement("Results")
	for _, r := range d.results {
		if len(r.Traversals) == 0 {
			continue
		}
		if err := d.writeTopLevelResult(r); err != nil {
			return err
		}
	}
	d.xml.EndElement() // Results
	return nil
}

func (d *Document) writeTopLevelResult(r *results.Result) error {
	d.startTestResult(r.TestID, r.ExecutionID, r.RootTestName())
	d.writeTimestampAttributes(r.StartTime(), r.FinishTime())
	d.xml.WriteAttribute("outcome", outcome(r.IsOk()))

	if !r.IsDataDriven() {
		d.writeTraversalOutput(r.Traversals[0])
	} else {
		d.xml.WriteAttribute("resultType", "DataDrivenTest")
		for _, t := range r.Traversals {
			if err := d.writeInnerResult(r, t); err != nil {
				return err
			}
		}
	}

	d.xml.EndElement() // UnitTestResult
	return nil
}

// writeInnerResult emits one data row of a data-driven result. Each row
// gets fresh identifiers and back-references the group's execution id.
func (d *Document) writeInnerResult(r *results.Result, t *types.SectionTraversal) error {
	name, err := d.fullTestName(t)
	if err != nil {
		return err
	}
	d.startTestResult(d.newID(), d.newID(), name)
	d.xml.WriteAttribute("parentExecutionId", r.ExecutionID)
	d.xml.WriteAttribute("resultType", "DataDrivenDataRow")
	d.writeTimestampAttributes(t.StartTime, t.FinishTime)
	d.xml.WriteAttribute("outcome", outcome(t.IsOk()))
	d.writeTraversalOutput(t)
	d.xml.EndElement() // UnitTestResult
	return nil
}

func (d *Document) startTestResult(testID, executionID, testName string) {
	d.xml.StartElement("UnitTestResult").
		WriteAttribute("executionId", executionID).
		WriteAttribute("testId", testID).
		WriteAttribute("testName", testName).
		WriteAttribute("computerName", computerName).
		WriteAttribute("testType", vsTestTypeID).
		WriteAttribute("testListId", d.defaultTestListID)
}

func (d *Document) writeTimestampAttributes(start, finish time.Time) {
	d.xml.WriteAttribute("startTime", FormatTimestamp(start))
	d.xml.WriteAttribute("endTime", FormatTimestamp(finish))
	d.xml.WriteAttribute("duration", FormatDuration(finish.Sub(start)))
}

// writeTraversalOutput emits the Output/ErrorInfo block for one
// traversal. Nothing is written for a passing traversal that produced
// no output. Captured stdout/stderr of an incomplete traversal is
// always emitted, even when empty, since it may be the only evidence of
// what happened before the crash.
func (d *Document) writeTraversalOutput(t *types.SectionTraversal) {
	if t.IsOk() && t.Stdout == "" && t.Stderr == "" {
		return
	}
	writeIfPresent := func(element, value string, always bool) {
		if always || value != "" {
			d.xml.Scoped(element).WriteText(value, xmlwriter.Newline).Close()
		}
	}

	output := d.xml.Scoped("Output")
	writeIfPresent("StdOut", t.Stdout, !t.Completed)
	writeIfPresent("StdErr", t.Stderr, !t.Completed)

	errorMessage := d.errorMessage(t)
	stackMessage := d.stackMessage(t)
	if errorMessage != "" || stackMessage != "" {
		errorInfo := d.xml.Scoped("ErrorInfo")
		writeIfPresent("Message", errorMessage, false)
		writeIfPresent("StackTrace", stackMessage, false)
		errorInfo.Close()
	}
	output.Close()
}

func (d *Document) writeTestDefinitions() {
	defs := d.xml.Scoped("TestDefinitions")
	for _, r := range d.results {
		unit := d.xml.Scoped("UnitTest").
			WriteAttribute("name", r.RootTestName()).
			WriteAttribute("storage", r.RootRunName()).
			WriteAttribute("id", r.TestID)
		if tags := r.RootTags(); len(tags) > 0 {
			categories := d.xml.Scoped("TestCategory")
			for _, tag := range tags {
				d.xml.Scoped("TestCategoryItem").
					WriteAttribute("TestCategory", tag.Original).
					Close()
			}
			categories.Close()
		}
		d.xml.Scoped("Execution").
			WriteAttribute("id", r.ExecutionID).
			Close()
		d.xml.Scoped("TestMethod").
			WriteAttribute("codeBase", r.RootRunName()).
			WriteAttribute("adapterTypeName", adapterTypeName).
			WriteAttribute("className", testClassName).
			WriteAttribute("name", r.RootTestName()).
			Close()
		unit.Close()
	}
	defs.Close()
}

func (d *Document) writeTestLists() {
	lists := d.xml.Scoped("TestLists")
	d.xml.Scoped("TestList").
		WriteAttribute("name", defaultTestListName).
		WriteAttribute("id", d.defaultTestListID).
		Close()
	lists.Close()
}

func (d *Document) writeTestEntries() {
	entries := d.xml.Scoped("TestEntries")
	for _, r := range d.results {
		d.xml.Scoped("TestEntry").
			WriteAttribute("testId", r.TestID).
			WriteAttribute("executionId", r.ExecutionID).
			WriteAttribute("testListId", d.defaultTestListID).
			Close()
	}
	entries.Close()
}

func (d *Document) writeSummary() {
	summary := d.xml.Scoped("ResultSummary")
	runOk := true
	for _, r := range d.results {
		if !r.IsOk() {
			runOk = false
			break
		}
	}
	summary.WriteAttribute("outcome", outcome(runOk))

	if len(d.attachments) > 0 {
		files := d.xml.Scoped("ResultFiles")
		for _, path := range d.attachments {
			d.xml.Scoped("ResultFile").
				WriteAttribute("path", path).
				Close()
		}
		files.Close()
	}
	summary.Close()
}

// errorMessage builds the human-readable failure message for one
// traversal: the terminated-unexpectedly notice for incomplete runs,
// one line per non-passing assertion, and a fatal-signal trailer.
func (d *Document) errorMessage(t *types.SectionTraversal) string {
	var sb strings.Builder
	if !t.Completed {
		sb.WriteString(incompleteNotice)
	}
	for _, a := range t.Assertions {
		switch {
		case a.Kind == types.AssertionExpressionFailed:
			// The failure plus its expanded form, e.g.:
			//  REQUIRE( x == 1 ) as REQUIRE ( 2 == 1 )
			sb.WriteString(a.ExpressionInMacro)
			if a.Expression != a.Expanded {
				fmt.Fprintf(&sb, " as %s ( %s ) \n", a.MacroName, a.Expanded)
			}
		case a.Kind == types.AssertionThrewException:
			sb.WriteString("Exception: " + a.Message + "\n")
		case !a.IsOk():
			sb.WriteString("Failed: " + a.Message + "\n")
		}
	}
	if t.FatalSignal != "" {
		sb.WriteString("Fatal error: " + t.FatalSignal + " at ")
		d.writeSourceLine(&sb, t.FatalSignalSource)
	}
	return sb.String()
}

// stackMessage builds the stack-trace stand-in: one rendered source
// location per assertion, plus the last known section's location when
// the traversal never completed.
func (d *Document) stackMessage(t *types.SectionTraversal) string {
	var sb strings.Builder
	for _, a := range t.Assertions {
		d.writeSourceLine(&sb, a.Source)
	}
	if !t.Completed && len(t.Sections) > 0 {
		d.writeSourceLine(&sb, t.Sections[len(t.Sections)-1].Source)
	}
	return sb.String()
}

// writeSourceLine renders one stack line. The source prefix is a
// literal byte-wise prefix compare with no stripping fallback; path
// boundaries and case are deliberately not considered.
func (d *Document) writeSourceLine(sb *strings.Builder, src types.SourceInfo) {
	file := src.File
	if strings.HasPrefix(file, d.sourcePrefix) {
		file = file[len(d.sourcePrefix):]
	}
	file = strings.ReplaceAll(file, `\`, "/")
	fmt.Fprintf(sb, "at Catch.Module.Method() in %s:line %d\n", file, src.Line)
}

// fullTestName joins every section level's sanitized name with " / ",
// producing the display name of one data row.
func (d *Document) fullTestName(t *types.SectionTraversal) (string, error) {
	names := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		name, err := SanitizeName(s.Name)
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	return strings.Join(names, " / "), nil
}
