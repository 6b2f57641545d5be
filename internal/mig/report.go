package mig

import (
	"fmt"
	"sort"
	"sync"
)

// StatusCounts aggregates per-status totals for a run.
type StatusCounts struct {
	Total     int
	Applied   int
	Simulated int
	Skipped   int
	Failed    int
}

// Summary is the final report of a restore run: per-status counts plus
// every outcome in manifest order.
type Summary struct {
	Counts   StatusCounts
	Canceled bool
	Outcomes []Outcome
}

// Failures returns the failed and skipped outcomes in manifest order,
// for operator diagnosis and corrective re-runs.
func (s *Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusSkippedNotFound {
			out = append(out, o)
		}
	}
	return out
}

// String renders the one-line batch summary.
func (s *Summary) String() string {
	line := fmt.Sprintf("total=%d applied=%d simulated=%d skipped=%d failed=%d",
		s.Counts.Total, s.Counts.Applied, s.Counts.Simulated, s.Counts.Skipped, s.Counts.Failed)
	if s.Canceled {
		line += " (canceled)"
	}
	return line
}

// Reporter accumulates one Outcome per manifest record. It is safe for
// concurrent use; outcomes carry their manifest index, so the final
// report is deterministic regardless of completion order on the pool.
type Reporter struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Add records one outcome. Never fails.
func (r *Reporter) Add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

// Summarize sorts outcomes back into manifest order and counts them.
// total is the number of records in the manifest; when a run is
// canceled before completion the counts cover only processed records.
func (r *Reporter) Summarize(total int, canceled bool) *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcomes := make([]Outcome, len(r.outcomes))
	copy(outcomes, r.outcomes)
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	s := &Summary{
		Counts:   StatusCounts{Total: total},
		Canceled: canceled,
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case StatusApplied:
			s.Counts.Applied++
		case StatusSimulated:
			s.Counts.Simulated++
		case StatusSkippedNotFound:
			s.Counts.Skipped++
		case StatusFailed:
			s.Counts.Failed++
		}
	}
	return s
}
