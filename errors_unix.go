//go:build linux || darwin

package threadlet

import (
	"errors"

	"golang.org/x/sys/unix"
)

// classifyErrno maps a raw unix.Errno (or wrapped syscall error) onto the
// flat Code taxonomy. Values not named in §7 fall back to NetworkError.
func classifyErrno(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return Wrap(NetworkError, op, err)
	}
	switch errno {
	case unix.EAGAIN, unix.EWOULDBLOCK, unix.EINTR, unix.EINPROGRESS:
		return Wrap(WouldBlock, op, err)
	case unix.EADDRINUSE:
		return Wrap(AddressInUse, op, err)
	case unix.ECONNREFUSED:
		return Wrap(ConnectionRefused, op, err)
	case unix.EHOSTUNREACH, unix.ENETUNREACH:
		return Wrap(HostUnreachable, op, err)
	case unix.EPIPE, unix.ECONNRESET:
		return Wrap(Closed, op, err)
	case unix.ENOMEM, unix.EMFILE, unix.ENFILE:
		return Wrap(NoResources, op, err)
	case unix.EINVAL:
		return Wrap(InvalidParam, op, err)
	default:
		return Wrap(NetworkError, op, err)
	}
}

// isRetryable reports whether err represents a condition the socket adapter
// recovers from locally (EAGAIN/EWOULDBLOCK/EINTR/EINPROGRESS) rather than
// surfacing to the caller, per §7.
func isRetryable(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.EAGAIN, unix.EWOULDBLOCK, unix.EINTR, unix.EINPROGRESS:
		return true
	default:
		return false
	}
}
