package graph

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
)

// NodeID identifies a node within a Store. Minted ids are always negative.
type NodeID int64

// InputRef is one input slot of a node: either unset, or the id of the
// upstream node. A set ref may be stale if its node has been removed.
type InputRef struct {
	Source NodeID
	Valid  bool
}

// Ref returns a set input ref pointing at id.
func Ref(id NodeID) InputRef {
	return InputRef{Source: id, Valid: true}
}

// KeyAllocator produces candidate node ids for a Store.
// Candidates may collide; the Store retries until it finds a free one.
type KeyAllocator interface {
	Next() NodeID
}

// RandomKeys draws ids uniformly from [-MaxInt64, -1] using a seeded PCG source.
// The same seed yields the same id sequence.
type RandomKeys struct {
	rng *rand.Rand
}

// NewRandomKeys creates a random allocator seeded with seed.
func NewRandomKeys(seed uint64) *RandomKeys {
	return &RandomKeys{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns the next random negative id.
func (k *RandomKeys) Next() NodeID {
	return NodeID(-(k.rng.Int64N(math.MaxInt64) + 1))
}

// SequentialKeys hands out -1, -2, -3, ...
type SequentialKeys struct {
	n atomic.Int64
}

// NewSequentialKeys creates a counter starting at -1.
func NewSequentialKeys() *SequentialKeys {
	return &SequentialKeys{}
}

// Next returns the next id in the sequence.
func (k *SequentialKeys) Next() NodeID {
	return NodeID(-k.n.Add(1))
}
