package threadlet

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormattingWithAndWithoutCause(t *testing.T) {
	t.Parallel()

	plain := New(Timeout, "deadline exceeded")
	require.Equal(t, "timeout: deadline exceeded", plain.Error())

	wrapped := Wrap(NetworkError, "recv failed", io.ErrClosedPipe)
	require.Contains(t, wrapped.Error(), "network_error")
	require.Contains(t, wrapped.Error(), "recv failed")
	require.Contains(t, wrapped.Error(), io.ErrClosedPipe.Error())
	require.ErrorIs(t, wrapped, io.ErrClosedPipe)
}

func TestCodeOfClassifiesThreadletAndForeignErrors(t *testing.T) {
	t.Parallel()

	require.Equal(t, Ok, CodeOf(nil))
	require.Equal(t, ConnectionRefused, CodeOf(New(ConnectionRefused, "refused")))
	require.Equal(t, NetworkError, CodeOf(io.ErrUnexpectedEOF))
}

func TestErrorIsMatchesOnKindNotIdentity(t *testing.T) {
	t.Parallel()

	a := New(Closed, "socket closed during recv")
	b := New(Closed, "a different message, same kind")
	c := New(Timeout, "unrelated kind")

	require.True(t, errors.Is(a, b))
	require.False(t, errors.Is(a, c))
}

func TestCodeStringCoversKnownValues(t *testing.T) {
	t.Parallel()

	cases := map[Code]string{
		Ok:                "ok",
		InvalidParam:      "invalid_param",
		NullPtr:           "null_ptr",
		NoResources:       "no_resources",
		NetworkError:      "network_error",
		AddressInUse:      "address_in_use",
		ConnectionRefused: "connection_refused",
		HostUnreachable:   "host_unreachable",
		Closed:            "closed",
		Timeout:           "timeout",
		WouldBlock:        "would_block",
		Aborted:           "aborted",
	}
	for code, want := range cases {
		require.Equal(t, want, code.String())
	}
	require.Equal(t, "unknown", Code(999).String())
}
