package engine

import "time"

// Recorder receives editor telemetry. metrics.Registry implements it.
type Recorder interface {
	Tick()
	ModeTransition(from, to string)
	Connection(result string)
	OutputInvocations(policy string, n uint64)
	Nodes(n int)
	Sweep(d time.Duration)
}

// Connection results reported to Recorder.
const (
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
	ConnectionFailed   = "failed"
	ConnectionCleared  = "cleared"
)

// Output policies reported to Recorder.
const (
	PolicyCached = "cached"
	PolicyDirect = "direct"
)

type nopRecorder struct{}

func (nopRecorder) Tick()                            {}
func (nopRecorder) ModeTransition(string, string)    {}
func (nopRecorder) Connection(string)                {}
func (nopRecorder) OutputInvocations(string, uint64) {}
func (nopRecorder) Nodes(int)                        {}
func (nopRecorder) Sweep(time.Duration)              {}
