package mig

import (
	"sync"
	"testing"
)

func TestReporterSummarize(t *testing.T) {
	r := NewReporter()
	r.Add(Outcome{Index: 2, Status: StatusFailed})
	r.Add(Outcome{Index: 0, Status: StatusApplied})
	r.Add(Outcome{Index: 3, Status: StatusSkippedNotFound})
	r.Add(Outcome{Index: 1, Status: StatusSimulated})

	s := r.Summarize(4, false)

	if s.Counts.Total != 4 || s.Counts.Applied != 1 || s.Counts.Simulated != 1 ||
		s.Counts.Skipped != 1 || s.Counts.Failed != 1 {
		t.Errorf("unexpected counts: %+v", s.Counts)
	}

	for i, o := range s.Outcomes {
		if o.Index != i {
			t.Errorf("outcome %d has index %d, want manifest order", i, o.Index)
		}
	}

	if got, want := s.String(), "total=4 applied=1 simulated=1 skipped=1 failed=1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestReporterConcurrentAdd(t *testing.T) {
	r := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add(Outcome{Index: i, Status: StatusApplied})
		}(i)
	}
	wg.Wait()

	s := r.Summarize(100, false)
	if s.Counts.Applied != 100 {
		t.Errorf("applied = %d, want 100", s.Counts.Applied)
	}
	for i, o := range s.Outcomes {
		if o.Index != i {
			t.Fatalf("outcome %d has index %d after sort", i, o.Index)
		}
	}
}

func TestSummaryFailures(t *testing.T) {
	s := &Summary{
		Outcomes: []Outcome{
			{Index: 0, Status: StatusApplied},
			{Index: 1, Status: StatusFailed},
			{Index: 2, Status: StatusSkippedNotFound},
			{Index: 3, Status: StatusSimulated},
		},
	}

	failures := s.Failures()
	if len(failures) != 2 {
		t.Fatalf("got %d failures, want 2", len(failures))
	}
	if failures[0].Index != 1 || failures[1].Index != 2 {
		t.Errorf("failures out of order: %v", failures)
	}
}

func TestSummaryStringCanceled(t *testing.T) {
	s := &Summary{Counts: StatusCounts{Total: 3}, Canceled: true}
	if got := s.String(); got != "total=3 applied=0 simulated=0 skipped=0 failed=0 (canceled)" {
		t.Errorf("String() = %q", got)
	}
}
