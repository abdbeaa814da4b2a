package graph

// InputTree returns every node reachable from root by following input slots,
// in breadth-first discovery order, each id once. The root is not included
// (it cannot be reached from itself in an acyclic graph). Stale inputs are
// skipped. A missing root yields nil.
func (s *Store) InputTree(root NodeID) []NodeID {
	n, ok := s.nodes[root]
	if !ok {
		return nil
	}
	var out []NodeID
	seen := make(map[NodeID]bool)
	queue := s.upstreamIDs(n)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		queue = append(queue, s.upstreamIDs(s.nodes[id])...)
	}
	return out
}

// inInputTree reports whether target is reachable from root via inputs,
// stopping as soon as it is found.
func (s *Store) inInputTree(root, target NodeID) bool {
	n, ok := s.nodes[root]
	if !ok {
		return false
	}
	seen := make(map[NodeID]bool)
	stack := s.upstreamIDs(n)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, s.upstreamIDs(s.nodes[id])...)
	}
	return false
}

// NodeNetwork returns the connected component around start, walking edges in
// both directions. Nodes with no input slots are collected but not expanded
// through, so two circuits sharing a source stay separate networks. The start
// node itself is always expanded and is excluded from the result.
func (s *Store) NodeNetwork(start NodeID) []NodeID {
	if _, ok := s.nodes[start]; !ok {
		return nil
	}
	down := s.downstreamIndex()
	seen := map[NodeID]bool{start: true}
	var out []NodeID
	queue := []NodeID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		neighbours := append(s.upstreamIDs(s.nodes[id]), down[id]...)
		for _, nb := range neighbours {
			if seen[nb] {
				continue
			}
			seen[nb] = true
			out = append(out, nb)
			if Arity(s.nodes[nb]) > 0 {
				queue = append(queue, nb)
			}
		}
	}
	return out
}

// upstreamIDs returns the live ids referenced by n's set input slots, in slot order.
func (s *Store) upstreamIDs(n Node) []NodeID {
	b := n.base()
	var ids []NodeID
	for _, in := range b.inputs {
		if !in.Valid {
			continue
		}
		if _, ok := s.nodes[in.Source]; ok {
			ids = append(ids, in.Source)
		}
	}
	return ids
}

// downstreamIndex maps each id to the live nodes that read it, in insertion order.
func (s *Store) downstreamIndex() map[NodeID][]NodeID {
	idx := make(map[NodeID][]NodeID)
	for _, id := range s.order {
		for _, up := range s.upstreamIDs(s.nodes[id]) {
			idx[up] = append(idx[up], id)
		}
	}
	return idx
}
