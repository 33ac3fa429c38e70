package threadlet

// Buffer is a contiguous byte region with an enclosed [start, end) live
// window inside a capacity (§3 Buffer data model). Socket recv advances
// end; socket send advances start. Ownership transfers into and out of the
// socket adapter by pointer move: once handed to an adapter call, the
// caller's reference should be treated as consumed.
type Buffer struct {
	data  []byte
	start int
	end   int
}

// NewBuffer allocates a buffer with the given capacity, empty window.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// WrapBuffer constructs a buffer around an existing, already-populated
// slice, with the live window spanning the whole slice.
func WrapBuffer(data []byte) *Buffer {
	return &Buffer{data: data, start: 0, end: len(data)}
}

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Start returns the current start offset of the live window.
func (b *Buffer) Start() int { return b.start }

// End returns the current end offset of the live window.
func (b *Buffer) End() int { return b.end }

// Len returns the number of live bytes, end - start.
func (b *Buffer) Len() int { return b.end - b.start }

// Remaining returns the writable capacity after end, capacity - end.
func (b *Buffer) Remaining() int { return len(b.data) - b.end }

// Bytes returns the live [start, end) window. The returned slice aliases
// the buffer's backing array; callers must not retain it past the next
// mutation of the buffer.
func (b *Buffer) Bytes() []byte { return b.data[b.start:b.end] }

// writable returns the [end, capacity) window send/recv write new bytes
// into.
func (b *Buffer) writable() []byte { return b.data[b.end:] }

// advanceStart moves start forward by n bytes consumed by a send; it never
// touches end (§8 Laws, buffer accounting).
func (b *Buffer) advanceStart(n int) {
	b.start += n
	if b.start > b.end {
		b.start = b.end
	}
}

// advanceEnd moves end forward by n bytes written by a recv.
func (b *Buffer) advanceEnd(n int) {
	b.end += n
	if b.end > len(b.data) {
		b.end = len(b.data)
	}
}

// Full reports whether the live window has reached capacity.
func (b *Buffer) Full() bool { return b.end >= len(b.data) }

// Drained reports whether the live window has been fully consumed by send.
func (b *Buffer) Drained() bool { return b.start >= b.end }

// Reset clears the buffer to an empty window without reallocating.
func (b *Buffer) Reset() {
	b.start = 0
	b.end = 0
}
