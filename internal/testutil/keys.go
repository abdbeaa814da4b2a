package testutil

import (
	"sync"

	"github.com/roach88/logicflow/internal/graph"
)

// FixedKeys replays a scripted list of candidate node ids.
//
// Scripting collisions lets tests exercise the store's retry path.
// Panics when exhausted, to catch tests that mint more ids than expected.
type FixedKeys struct {
	mu  sync.Mutex
	ids []graph.NodeID
	idx int
}

// NewFixedKeys creates an allocator that returns ids in order.
func NewFixedKeys(ids ...graph.NodeID) *FixedKeys {
	return &FixedKeys{ids: ids}
}

// Next returns the next scripted id. Implements graph.KeyAllocator.
func (k *FixedKeys) Next() graph.NodeID {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.idx >= len(k.ids) {
		panic("FixedKeys: all ids exhausted")
	}
	id := k.ids[k.idx]
	k.idx++
	return id
}
