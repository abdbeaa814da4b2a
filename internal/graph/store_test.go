package graph

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewSequentialKeys())
}

// fixedKeys replays a scripted list of candidates.
type fixedKeys struct {
	ids []NodeID
	idx int
}

func (k *fixedKeys) Next() NodeID {
	if k.idx >= len(k.ids) {
		panic("fixedKeys: exhausted")
	}
	id := k.ids[k.idx]
	k.idx++
	return id
}

func TestStore_InsertAssignsNegativeIDs(t *testing.T) {
	s := newTestStore(t)

	a := s.Insert(NewSource("a", false))
	b := s.Insert(NewSource("b", false))

	assert.Equal(t, NodeID(-1), a)
	assert.Equal(t, NodeID(-2), b)
	assert.Equal(t, 2, s.Len())
}

func TestStore_InsertRetriesOnCollision(t *testing.T) {
	s := NewStore(&fixedKeys{ids: []NodeID{-5, -5, 3, -7}})

	first := s.Insert(NewSource("a", false))
	second := s.Insert(NewSource("b", false))

	assert.Equal(t, NodeID(-5), first)
	assert.Equal(t, NodeID(-7), second, "collision and non-negative candidates are skipped")
}

func TestStore_InsertIsIdempotentForLiveNode(t *testing.T) {
	s := newTestStore(t)
	n := NewSource("a", false)

	id := s.Insert(n)
	again := s.Insert(n)

	assert.Equal(t, id, again)
	assert.Equal(t, 1, s.Len())
}

func TestStore_InsertWithID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertWithID(-42, NewSource("a", false))
	require.NoError(t, err)
	assert.Equal(t, NodeID(-42), id)

	_, err = s.InsertWithID(-42, NewSource("b", false))
	require.Error(t, err)
	assert.True(t, IsDuplicateIDError(err))
	assert.Contains(t, err.Error(), "DUPLICATE_ID")
}

func TestStore_InsertWithIDRejectsLiveNode(t *testing.T) {
	s := newTestStore(t)
	a := NewSource("a", false)
	id := s.Insert(a)

	_, err := s.InsertWithID(-42, a)
	require.Error(t, err)
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, id, dup.ID)
	assert.Equal(t, id, a.ID(), "id is not rewritten")
	assert.False(t, s.Contains(-42))
	assert.Equal(t, 1, s.Len())
}

func TestStore_RemovedIDsAreNotReminted(t *testing.T) {
	s := NewStore(&fixedKeys{ids: []NodeID{-1, -1, -2}})

	id := s.Insert(NewSource("a", false))
	require.True(t, s.Remove(id))

	next := s.Insert(NewSource("b", false))
	assert.Equal(t, NodeID(-2), next)
}

func TestStore_RemoveLeavesStaleInputs(t *testing.T) {
	s := newTestStore(t)
	src := s.Insert(NewSource("src", true))
	out := NewOutput("out", nil)
	outID := s.Insert(out)
	require.NoError(t, s.Connect(outID, 0, src))

	assert.True(t, s.Remove(src))
	assert.False(t, s.Remove(src))

	assert.Equal(t, []InputRef{Ref(src)}, out.Inputs(), "removal does not cascade")
	assert.False(t, out.Value(s), "stale input evaluates to false")
}

func TestStore_AllPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	a := s.Insert(NewSource("a", false))
	b := s.Insert(NewSource("b", false))
	c := s.Insert(NewSource("c", false))
	s.Remove(b)

	var got []NodeID
	for _, n := range s.All() {
		got = append(got, n.ID())
	}
	assert.Equal(t, []NodeID{a, c}, got)
	assert.Equal(t, []NodeID{a, c}, s.IDs())
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.Get(-99)
	assert.False(t, ok)
	assert.False(t, s.Contains(-99))
}

func TestNode_LabelIsNFCNormalized(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	n := NewSource("cafe\u0301", false)
	assert.Equal(t, "caf\u00e9", n.Label())
}

func TestNode_BoundsAreCanonical(t *testing.T) {
	n := NewSource("a", false, WithBounds(image.Rect(50, 40, 10, 20)))
	assert.Equal(t, image.Rect(10, 20, 50, 40), n.Bounds())
}

func TestRandomKeys_DeterministicAndNegative(t *testing.T) {
	a := NewRandomKeys(7)
	b := NewRandomKeys(7)
	for i := 0; i < 100; i++ {
		x, y := a.Next(), b.Next()
		assert.Equal(t, x, y)
		assert.Less(t, int64(x), int64(0))
	}
}
