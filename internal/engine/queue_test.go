package engine

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicflow/internal/interaction"
)

func pointerAt(x int) interaction.Event {
	return interaction.Event{Pointer: image.Pt(x, 0), Action: interaction.ActionMove}
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()
	for x := 1; x <= 3; x++ {
		require.True(t, q.Enqueue(pointerAt(x)))
	}

	for x := 1; x <= 3; x++ {
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, x, e.Pointer.X)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_EnqueueAfterClose(t *testing.T) {
	q := newEventQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(pointerAt(1)))
	assert.True(t, q.Drained())
}

func TestEventQueue_WaitFiresOnEnqueue(t *testing.T) {
	q := newEventQueue()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(pointerAt(7))
	}()

	select {
	case <-q.Wait():
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, 7, e.Pointer.X)
	case <-time.After(time.Second):
		t.Fatal("wait did not fire")
	}
}

func TestEventQueue_DrainedOnlyWhenClosedAndEmpty(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(pointerAt(1))
	q.Close()

	assert.False(t, q.Drained())
	assert.Equal(t, 1, q.Len())
	q.TryDequeue()
	assert.True(t, q.Drained())
}

func TestEventQueue_ThreadSafe(t *testing.T) {
	q := newEventQueue()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Enqueue(pointerAt(i))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.Len())
}
