package threadlet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAdvanceEndThenStart(t *testing.T) {
	t.Parallel()

	b := NewBuffer(16)
	require.Equal(t, 16, b.Cap())
	require.Equal(t, 0, b.Len())
	require.Equal(t, 16, b.Remaining())

	copy(b.writable(), "hello world")
	b.advanceEnd(11)
	require.Equal(t, 11, b.Len())
	require.Equal(t, "hello world", string(b.Bytes()))
	require.False(t, b.Drained())

	b.advanceStart(5)
	require.Equal(t, " world", string(b.Bytes()))
	require.Equal(t, 5, b.Start())
	require.Equal(t, 11, b.End())

	b.advanceStart(100)
	require.True(t, b.Drained())
	require.Equal(t, b.End(), b.Start())
}

func TestBufferAdvanceEndClampsToCapacity(t *testing.T) {
	t.Parallel()

	b := NewBuffer(4)
	b.advanceEnd(100)
	require.True(t, b.Full())
	require.Equal(t, 4, b.End())
}

func TestWrapBuffer(t *testing.T) {
	t.Parallel()

	data := []byte("payload")
	b := WrapBuffer(data)
	require.Equal(t, "payload", string(b.Bytes()))
	require.True(t, b.Full())
	require.False(t, b.Drained())
}

func TestBufferReset(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8)
	b.advanceEnd(8)
	b.advanceStart(8)
	b.Reset()
	require.Equal(t, 0, b.Start())
	require.Equal(t, 0, b.End())
	require.Equal(t, 8, b.Remaining())
}
