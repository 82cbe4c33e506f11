// Package coverage reconciles the constraints a schema declares with what one
// validation run exercised.
//
// A constraint is one independently checkable rule, identified by its
// absolute keyword location. After a run every declared constraint is in
// exactly one bucket: violated (an error entry points at it), unvalidated
// (the instance omitted the property that would have reached it) or
// validated (everything else).
package coverage

import (
	"fmt"
	"math"
)

// Report is the outcome of one run.
type Report struct {
	Total       int     `json:"totalConstraints"`
	Validated   int     `json:"validatedConstraints"`
	Violated    int     `json:"violatedConstraints"`
	Unvalidated int     `json:"unvalidatedConstraints"`
	Percentage  float64 `json:"coveragePercentage"`
}

func (r Report) String() string {
	return fmt.Sprintf("%d constraints: %d validated, %d violated, %d unvalidated (%.2f%%)",
		r.Total, r.Validated, r.Violated, r.Unvalidated, r.Percentage)
}

// Tracker accumulates one run. It is not safe for concurrent use; give every
// run its own Tracker.
type Tracker struct {
	declared    map[string]struct{}
	violated    map[string]struct{}
	unvalidated int
}

// NewTracker starts a run over the given declared constraint locations.
func NewTracker(declared []string) *Tracker {
	t := &Tracker{declared: make(map[string]struct{}, len(declared))}
	for _, d := range declared {
		t.declared[d] = struct{}{}
	}
	t.Reset()
	return t
}

// Reset clears the run state, keeping the declared constraints.
func (t *Tracker) Reset() {
	t.violated = map[string]struct{}{}
	t.unvalidated = 0
}

// Total is the number of declared constraints.
func (t *Tracker) Total() int { return len(t.declared) }

// Violated records a failing keyword location. It reports whether the
// location is a declared constraint; other locations are ignored.
func (t *Tracker) Violated(location string) bool {
	if _, ok := t.declared[location]; !ok {
		return false
	}
	t.violated[location] = struct{}{}
	return true
}

// Unvalidated adds n constraints the instance never reached.
func (t *Tracker) Unvalidated(n int) {
	if n > 0 {
		t.unvalidated += n
	}
}

// Report reconciles the counters so Validated+Violated+Unvalidated equals
// Total. Unvalidated is capped by what violations leave over.
func (t *Tracker) Report() Report {
	r := Report{Total: len(t.declared), Violated: len(t.violated)}
	r.Unvalidated = min(t.unvalidated, r.Total-r.Violated)
	r.Validated = r.Total - r.Violated - r.Unvalidated
	r.Percentage = Percentage(r.Validated, r.Total)
	return r
}

// Percentage returns 100*validated/total rounded to two decimals, and 0 for
// an empty total.
func Percentage(validated, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(validated)*10000/float64(total)) / 100
}
