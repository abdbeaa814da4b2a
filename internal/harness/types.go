package harness

import (
	"image"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/trace"
)

// Trace event types.
const (
	EventMode       = "mode"
	EventConnect    = "connect"
	EventReject     = "reject"
	EventError      = "error"
	EventDisconnect = "disconnect"
	EventRemove     = "remove"
	EventToggle     = "toggle"
	EventSelection  = "selection"
	EventOutput     = "output"
	EventSet        = "set"
	EventBackground = "background"
	EventForce      = "force"
)

// NodeState is a live node at the end of a run.
type NodeState struct {
	Kind    graph.Kind
	Enabled bool
	Bounds  image.Rectangle // relative to the container
	Inputs  []string        // source ref per slot, "" when unset
	Display string
}

// State is the editor at the end of a run.
type State struct {
	Mode      string
	Selection []string
	Container image.Rectangle
	Nodes     map[string]NodeState
	Outputs   map[string][]bool
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Trace lists what every tick changed, in order.
	Trace trace.Trace

	// Errors holds assertion failures.
	Errors []string

	// Final is the editor state after the last step.
	Final State
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  trace.Trace{},
		Errors: []string{},
		Final: State{
			Nodes:   map[string]NodeState{},
			Outputs: map[string][]bool{},
		},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) emit(tick int64, typ string, fields trace.Object) {
	r.Trace = append(r.Trace, trace.Event{Tick: tick, Type: typ, Fields: fields})
}
