package graph

import "fmt"

// CanConnect reports whether feeding source into target keeps the graph acyclic.
func (s *Store) CanConnect(target, source NodeID) bool {
	if target == source {
		return false
	}
	return !s.inInputTree(source, target)
}

// Connect sets input slot of target to source.
//
// Returns ErrNodeNotFound if either node is missing, ErrSlotOutOfRange for a
// bad slot, and a *CycleError if the edge would be a self-loop or if target
// already lies in the input tree of source. On error nothing changes.
func (s *Store) Connect(target NodeID, slot int, source NodeID) error {
	t, ok := s.nodes[target]
	if !ok {
		return fmt.Errorf("connect target %d: %w", target, ErrNodeNotFound)
	}
	b := t.base()
	if slot < 0 || slot >= len(b.inputs) {
		return fmt.Errorf("connect %d input %d of %d: %w", target, slot, len(b.inputs), ErrSlotOutOfRange)
	}
	if _, ok := s.nodes[source]; !ok {
		return fmt.Errorf("connect source %d: %w", source, ErrNodeNotFound)
	}
	if !s.CanConnect(target, source) {
		return &CycleError{Target: target, Slot: slot, Source: source}
	}
	b.inputs[slot] = Ref(source)
	return nil
}

// Disconnect clears input slot of target. Missing nodes and bad slots are ignored.
func (s *Store) Disconnect(target NodeID, slot int) {
	t, ok := s.nodes[target]
	if !ok {
		return
	}
	b := t.base()
	if slot < 0 || slot >= len(b.inputs) {
		return
	}
	b.inputs[slot] = InputRef{}
}
