package graph

// EvaluateOutputs pulls every live output once, in insertion order, so that
// output side effects fire. Returns the number of outputs evaluated.
func (s *Store) EvaluateOutputs() int {
	outs := s.Outputs()
	for _, o := range outs {
		o.Value(s)
	}
	return len(outs)
}

// ForceUpdate drives every live output with its current upstream value,
// bypassing caches.
func (s *Store) ForceUpdate() {
	for _, o := range s.Outputs() {
		o.ForceUpdate(s)
	}
}

// Display is the visual state of a node.
type Display int

const (
	DisplayFalse Display = iota
	DisplayTrue
	DisplayDisabled
)

// String implements fmt.Stringer.
func (d Display) String() string {
	switch d {
	case DisplayTrue:
		return "true"
	case DisplayDisabled:
		return "disabled"
	default:
		return "false"
	}
}

// DisplayOf computes the visual state of id. Outputs report their last
// observed value so that drawing never fires a side effect.
func (s *Store) DisplayOf(id NodeID) Display {
	n, ok := s.nodes[id]
	if !ok || !n.Enabled() {
		return DisplayDisabled
	}
	var v bool
	if o, isOut := n.(*OutputNode); isOut {
		v, _ = o.LastValue()
	} else {
		v = n.Value(s)
	}
	if v {
		return DisplayTrue
	}
	return DisplayFalse
}
