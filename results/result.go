// Package results folds an ordered traversal log into the flat, grouped
// result records a TRX document is built from. Consecutive traversals
// sharing a root section name collapse into one Result, representing
// the data rows of a single logical (data-driven) test.
package results

import (
	"time"

	"github.com/trxkit/trx-emitter/guid"
	"github.com/trxkit/trx-emitter/types"
)

// Result groups one or more traversals that share a root section name
// and appeared consecutively in the input log. It references the
// traversals, it does not copy them; the traversal log must outlive the
// Result. Immutable after aggregation.
type Result struct {
	// TestID and ExecutionID are process-local pseudo-random identifiers,
	// not required to be globally unique.
	TestID      string
	ExecutionID string

	Traversals []*types.SectionTraversal

	// now is inherited from the Aggregator's clock; it backs the
	// wall-clock substitution in StartTime/FinishTime.
	now func() time.Time
}

func (r *Result) wallClock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// IsOk reports whether every member traversal is OK.
func (r *Result) IsOk() bool {
	for _, t := range r.Traversals {
		if !t.IsOk() {
			return false
		}
	}
	return true
}

// IsDataDriven reports whether the result groups multiple data rows.
func (r *Result) IsDataDriven() bool {
	return len(r.Traversals) > 1
}

// RootTestName returns the first member's root section name, or "" when
// absent.
func (r *Result) RootTestName() string {
	if len(r.Traversals) == 0 {
		return ""
	}
	return r.Traversals[0].RootName()
}

// RootRunName returns the first member's run/storage name, or "" when
// absent.
func (r *Result) RootRunName() string {
	if len(r.Traversals) == 0 {
		return ""
	}
	return r.Traversals[0].RunName
}

// RootTags returns the first member's tag set, or nil when absent.
func (r *Result) RootTags() []types.Tag {
	if len(r.Traversals) == 0 {
		return nil
	}
	return r.Traversals[0].Tags
}

// StartTime returns the first member's start time. An absent or
// incomplete first traversal has no trustworthy start, so the current
// wall-clock time substitutes.
func (r *Result) StartTime() time.Time {
	if len(r.Traversals) == 0 || !r.Traversals[0].Completed {
		return r.wallClock()
	}
	return r.Traversals[0].StartTime
}

// FinishTime returns the last member's finish time, with the same
// wall-clock substitution as StartTime.
func (r *Result) FinishTime() time.Time {
	if len(r.Traversals) == 0 || !r.Traversals[len(r.Traversals)-1].Completed {
		return r.wallClock()
	}
	return r.Traversals[len(r.Traversals)-1].FinishTime
}

// Aggregator produces Results from a traversal log. It holds no state
// across calls; each Aggregate is a fresh pass, so incremental emission
// modes simply re-aggregate the log snapshot.
type Aggregator struct {
	newID func() string
	now   func() time.Time
}

// NewAggregator creates an Aggregator with the default identifier
// generator and wall clock.
func NewAggregator() *Aggregator {
	return &Aggregator{newID: guid.NewString, now: time.Now}
}

// WithIDGenerator overrides identifier generation, mainly for tests.
func (a *Aggregator) WithIDGenerator(gen func() string) *Aggregator {
	a.newID = gen
	return a
}

// WithClock overrides the wall clock the produced Results substitute
// for missing timestamps, mainly for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Aggregate scans the traversal log left to right, grouping consecutive
// traversals with the same root section name into one Result. A
// traversal starts a new group when no group is open, when either side
// of the comparison has no recorded root section, or when the root
// names differ. Output order matches order of first appearance; no
// group is ever empty.
func (a *Aggregator) Aggregate(traversals []*types.SectionTraversal) []*Result {
	var results []*Result
	var open *Result
	for _, t := range traversals {
		if open == nil || startsNewRoot(open, t) {
			open = &Result{
				TestID:      a.newID(),
				ExecutionID: a.newID(),
				now:         a.now,
			}
			results = append(results, open)
		}
		open.Traversals = append(open.Traversals, t)
	}
	return results
}

func startsNewRoot(open *Result, t *types.SectionTraversal) bool {
	last := open.Traversals[len(open.Traversals)-1]
	return len(last.Sections) == 0 ||
		len(t.Sections) == 0 ||
		last.Sections[0].Name != t.Sections[0].Name
}
