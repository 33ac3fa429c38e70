package threadlet

import "container/heap"

// timeoutEntry is one (fd, deadline_ms) pair in the timeout heap (§3, §4.2).
type timeoutEntry struct {
	fd         int
	deadlineMs int64
	seq        uint64 // insertion order, breaks deadline ties
	index      int    // position in the heap slice, maintained by container/heap
}

// timeoutHeapImpl is the array-backed binary min-heap container/heap drives.
// At most one entry per fd; TimeoutHeap keeps an fd-indexed map of entries
// so remove-by-fd finds its entry directly and costs O(log n).
type timeoutHeapImpl []*timeoutEntry

func (h timeoutHeapImpl) Len() int { return len(h) }

func (h timeoutHeapImpl) Less(i, j int) bool {
	if h[i].deadlineMs != h[j].deadlineMs {
		return h[i].deadlineMs < h[j].deadlineMs
	}
	return h[i].seq < h[j].seq
}

func (h timeoutHeapImpl) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timeoutHeapImpl) Push(x any) {
	e := x.(*timeoutEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timeoutHeapImpl) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// TimeoutHeap is the C2 component: a min-heap of (fd, deadline_ms) entries
// ordered by deadline, ties broken by insertion order.
type TimeoutHeap struct {
	h       timeoutHeapImpl
	byFD    map[int]*timeoutEntry
	nextSeq uint64
}

// NewTimeoutHeap constructs an empty timeout heap.
func NewTimeoutHeap() *TimeoutHeap {
	return &TimeoutHeap{byFD: make(map[int]*timeoutEntry)}
}

// Add inserts or replaces the deadline entry for fd.
func (t *TimeoutHeap) Add(fd int, deadlineMs int64) {
	if old, ok := t.byFD[fd]; ok {
		heap.Remove(&t.h, old.index)
		delete(t.byFD, fd)
	}
	e := &timeoutEntry{fd: fd, deadlineMs: deadlineMs, seq: t.nextSeq}
	t.nextSeq++
	heap.Push(&t.h, e)
	t.byFD[fd] = e
}

// Remove deletes the entry for fd, if any. Returns true if one existed.
func (t *TimeoutHeap) Remove(fd int) bool {
	e, ok := t.byFD[fd]
	if !ok {
		return false
	}
	heap.Remove(&t.h, e.index)
	delete(t.byFD, fd)
	return true
}

// Peek returns the earliest-deadline entry without removing it.
func (t *TimeoutHeap) Peek() (fd int, deadlineMs int64, ok bool) {
	if len(t.h) == 0 {
		return 0, 0, false
	}
	top := t.h[0]
	return top.fd, top.deadlineMs, true
}

// Pop removes and returns the earliest-deadline entry.
func (t *TimeoutHeap) Pop() (fd int, deadlineMs int64, ok bool) {
	if len(t.h) == 0 {
		return 0, 0, false
	}
	e := heap.Pop(&t.h).(*timeoutEntry)
	delete(t.byFD, e.fd)
	return e.fd, e.deadlineMs, true
}

// NextDeadline returns the earliest pending deadline, if any.
func (t *TimeoutHeap) NextDeadline() (deadlineMs int64, ok bool) {
	_, d, ok := t.Peek()
	return d, ok
}

// Empty reports whether the heap holds no entries.
func (t *TimeoutHeap) Empty() bool { return len(t.h) == 0 }

// Len reports the number of pending entries.
func (t *TimeoutHeap) Len() int { return len(t.h) }
