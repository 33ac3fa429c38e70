package threadlet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimeoutHeapOrdersByDeadline(t *testing.T) {
	t.Parallel()

	h := NewTimeoutHeap()
	h.Add(3, 300)
	h.Add(1, 100)
	h.Add(2, 200)

	fd, deadline, ok := h.Pop()
	require.True(t, ok)
	require.Equal(t, 1, fd)
	require.Equal(t, int64(100), deadline)

	fd, deadline, ok = h.Pop()
	require.True(t, ok)
	require.Equal(t, 2, fd)
	require.Equal(t, int64(200), deadline)

	fd, deadline, ok = h.Pop()
	require.True(t, ok)
	require.Equal(t, 3, fd)
	require.Equal(t, int64(300), deadline)

	require.True(t, h.Empty())
}

func TestTimeoutHeapTiesBrokenByInsertionOrder(t *testing.T) {
	t.Parallel()

	h := NewTimeoutHeap()
	h.Add(10, 500)
	h.Add(20, 500)
	h.Add(30, 500)

	var order []int
	for !h.Empty() {
		fd, _, _ := h.Pop()
		order = append(order, fd)
	}
	require.Equal(t, []int{10, 20, 30}, order)
}

func TestTimeoutHeapAddReplacesExisting(t *testing.T) {
	t.Parallel()

	h := NewTimeoutHeap()
	h.Add(1, 1000)
	h.Add(1, 50)
	require.Equal(t, 1, h.Len())

	fd, deadline, ok := h.Peek()
	require.True(t, ok)
	require.Equal(t, 1, fd)
	require.Equal(t, int64(50), deadline)
}

func TestTimeoutHeapRemove(t *testing.T) {
	t.Parallel()

	h := NewTimeoutHeap()
	h.Add(1, 100)
	h.Add(2, 200)

	require.True(t, h.Remove(1))
	require.False(t, h.Remove(1))
	require.Equal(t, 1, h.Len())

	fd, _, ok := h.Peek()
	require.True(t, ok)
	require.Equal(t, 2, fd)
}
