package testutil

import (
	"context"
	"sync"

	"mig-go/internal/mig"
)

// TransferCall records one invocation of the RecordingRunner.
type TransferCall struct {
	Direction string
	Src       string
	Dst       string
	Opts      mig.TransferOptions
}

// RecordingRunner is a mig.Runner that records calls instead of
// spawning a subprocess. Err, when set, is returned from every call.
type RecordingRunner struct {
	mu    sync.Mutex
	calls []TransferCall

	Err error
}

var _ mig.Runner = (*RecordingRunner)(nil)

func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

func (r *RecordingRunner) Push(_ context.Context, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	return r.record("push", src, dst, opts)
}

func (r *RecordingRunner) Pull(_ context.Context, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	return r.record("pull", src, dst, opts)
}

func (r *RecordingRunner) record(direction, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, TransferCall{Direction: direction, Src: src, Dst: dst, Opts: opts})
	if r.Err != nil {
		return &mig.TransferResult{ExitCode: 1}, r.Err
	}
	return &mig.TransferResult{ExitCode: 0}, nil
}

// Calls returns a copy of the recorded calls.
func (r *RecordingRunner) Calls() []TransferCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TransferCall{}, r.calls...)
}
