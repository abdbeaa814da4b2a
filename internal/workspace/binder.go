package workspace

import "github.com/roach88/logicflow/internal/graph"

// Binder supplies what a snapshot cannot store: gate functions by name and
// the Output capability of each output node.
type Binder interface {
	Gate(name string) (graph.Gate, error)
	Output(id graph.NodeID, label string) graph.Output
}

// TableBinder binds gates from a table and outputs through a factory.
// A nil Outputs leaves every output unbound.
type TableBinder struct {
	Gates   graph.Gates
	Outputs func(id graph.NodeID, label string) graph.Output
}

// StandardBinder binds the standard gates and leaves outputs unbound.
func StandardBinder() TableBinder {
	return TableBinder{Gates: graph.StandardGates()}
}

// Gate implements Binder.
func (b TableBinder) Gate(name string) (graph.Gate, error) {
	return b.Gates.Lookup(name)
}

// Output implements Binder.
func (b TableBinder) Output(id graph.NodeID, label string) graph.Output {
	if b.Outputs == nil {
		return nil
	}
	return b.Outputs(id, label)
}
