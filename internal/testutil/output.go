package testutil

import "sync"

// RecordingOutput is an output capability that remembers every invocation.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingOutput struct {
	mu    sync.Mutex
	calls []bool
}

// NewRecordingOutput creates an empty recorder.
func NewRecordingOutput() *RecordingOutput {
	return &RecordingOutput{}
}

// Invoke records value. Implements graph.Output.
func (r *RecordingOutput) Invoke(value bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, value)
}

// Calls returns a copy of every recorded value, oldest first.
func (r *RecordingOutput) Calls() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of invocations.
func (r *RecordingOutput) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Drain returns the recorded values and forgets them.
func (r *RecordingOutput) Drain() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.calls
	r.calls = nil
	return out
}
