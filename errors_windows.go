//go:build windows

package threadlet

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// classifyErrno maps a raw syscall.Errno (or wrapped Winsock error) onto the
// flat Code taxonomy. Values not named in §7 fall back to NetworkError.
func classifyErrno(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return Wrap(NetworkError, op, err)
	}
	switch errno {
	case windows.WSAEWOULDBLOCK, windows.WSAEINTR, windows.WSAEINPROGRESS, windows.ERROR_IO_PENDING:
		return Wrap(WouldBlock, op, err)
	case windows.WSAEADDRINUSE:
		return Wrap(AddressInUse, op, err)
	case windows.WSAECONNREFUSED:
		return Wrap(ConnectionRefused, op, err)
	case windows.WSAEHOSTUNREACH, windows.WSAENETUNREACH:
		return Wrap(HostUnreachable, op, err)
	case windows.WSAECONNRESET, windows.WSAESHUTDOWN:
		return Wrap(Closed, op, err)
	case windows.WSAEMFILE, windows.WSA_NOT_ENOUGH_MEMORY:
		return Wrap(NoResources, op, err)
	case windows.WSAEINVAL:
		return Wrap(InvalidParam, op, err)
	default:
		return Wrap(NetworkError, op, err)
	}
}

// isRetryable reports whether err represents a condition the socket adapter
// recovers from locally rather than surfacing to the caller, per §7. Sockets
// here are plain nonblocking Winsock sockets (FIONBIO), so WSAEWOULDBLOCK is
// the ordinary retry signal; ERROR_IO_PENDING is kept defensively in case a
// handle elsewhere in the process happens to be set up for overlapped I/O.
func isRetryable(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case windows.WSAEWOULDBLOCK, windows.WSAEINTR, windows.WSAEINPROGRESS, windows.ERROR_IO_PENDING:
		return true
	default:
		return false
	}
}
