package graph

import "slices"

// Store owns every node in a graph, keyed by id.
type Store struct {
	nodes   map[NodeID]Node
	order   []NodeID
	retired map[NodeID]struct{}
	keys    KeyAllocator
}

// NewStore creates an empty store that mints ids from keys.
// A nil allocator defaults to SequentialKeys.
func NewStore(keys KeyAllocator) *Store {
	if keys == nil {
		keys = NewSequentialKeys()
	}
	return &Store{
		nodes:   make(map[NodeID]Node),
		retired: make(map[NodeID]struct{}),
		keys:    keys,
	}
}

// Insert assigns n a fresh negative id and stores it.
// Inserting a node that is already live in this store returns its id.
func (s *Store) Insert(n Node) NodeID {
	if cur, ok := s.nodes[n.ID()]; ok && cur == n {
		return n.ID()
	}
	id := s.mint()
	s.put(id, n)
	return id
}

// InsertWithID stores n under a caller-chosen id. Used when restoring a graph.
// A node that is already live in this store is rejected under its current id.
func (s *Store) InsertWithID(id NodeID, n Node) (NodeID, error) {
	if _, ok := s.nodes[id]; ok {
		return 0, &DuplicateIDError{ID: id}
	}
	if cur, ok := s.nodes[n.ID()]; ok && cur == n {
		return 0, &DuplicateIDError{ID: n.ID()}
	}
	delete(s.retired, id)
	s.put(id, n)
	return id, nil
}

func (s *Store) mint() NodeID {
	for {
		id := s.keys.Next()
		if id >= 0 {
			continue
		}
		if _, live := s.nodes[id]; live {
			continue
		}
		if _, used := s.retired[id]; used {
			continue
		}
		return id
	}
}

func (s *Store) put(id NodeID, n Node) {
	n.base().id = id
	s.nodes[id] = n
	s.order = append(s.order, id)
}

// Remove deletes a node. Inputs elsewhere that reference it are left stale.
// Returns false if the id was not live.
func (s *Store) Remove(id NodeID) bool {
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	delete(s.nodes, id)
	s.retired[id] = struct{}{}
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Get returns the node with the given id.
func (s *Store) Get(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Contains reports whether id is live.
func (s *Store) Contains(id NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// IDs returns live ids in insertion order.
func (s *Store) IDs() []NodeID {
	return slices.Clone(s.order)
}

// All returns live nodes in insertion order.
func (s *Store) All() []Node {
	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// Len returns the number of live nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Outputs returns the live output nodes in insertion order.
func (s *Store) Outputs() []*OutputNode {
	var out []*OutputNode
	for _, id := range s.order {
		if o, ok := s.nodes[id].(*OutputNode); ok {
			out = append(out, o)
		}
	}
	return out
}
