package threadlet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskQueueFIFOOrder(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	tasks := make([]*Task, 5)
	for i := range tasks {
		tasks[i] = &Task{ID: uint64(i)}
		q.Enqueue(tasks[i])
	}

	for i := range tasks {
		got, ok := q.Dequeue()
		require.True(t, ok)
		require.Same(t, tasks[i], got)
	}

	_, ok := q.Dequeue()
	require.False(t, ok)
}

func TestTaskQueueGrowsWhenFull(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	n := taskQueueInitialCap + 10
	tasks := make([]*Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = &Task{ID: uint64(i)}
		q.Enqueue(tasks[i])
	}
	require.Equal(t, n, q.Count())

	for i := 0; i < n; i++ {
		got, ok := q.Dequeue()
		require.True(t, ok)
		require.Same(t, tasks[i], got)
	}
}

func TestTaskQueueWrapAroundThenGrow(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	// Dequeue and re-enqueue repeatedly to advance head around the ring
	// before forcing growth, exercising the wraparound copy in grow().
	for i := 0; i < taskQueueInitialCap/2; i++ {
		q.Enqueue(&Task{ID: uint64(i)})
	}
	for i := 0; i < taskQueueInitialCap/2; i++ {
		q.Dequeue()
	}
	extra := taskQueueInitialCap + 1
	for i := 0; i < extra; i++ {
		q.Enqueue(&Task{ID: uint64(1000 + i)})
	}
	require.Equal(t, extra, q.Count())
	for i := 0; i < extra; i++ {
		got, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, uint64(1000+i), got.ID)
	}
}
