//go:build windows

package threadlet

import (
	"golang.org/x/sys/windows"
)

// closeFD closes a socket handle on Windows. Unlike Linux/Darwin, Windows
// has no wake-fd analogue in this package (poller wakeup uses a loopback
// UDP socket pair, not a pipe descriptor), so this is used only for real
// socket handles created by the socket adapter (§4.7).
func closeFD(fd int) error {
	return windows.Closesocket(windows.Handle(fd))
}

// readFD performs a synchronous, non-overlapped recv, the same plain Win32
// socket call every other Windows adapter function in this package uses
// (§4.7 TCP recv).
func readFD(fd int, buf []byte) (int, error) {
	return windows.Read(windows.Handle(fd), buf)
}

// writeFD performs a synchronous, non-overlapped send.
func writeFD(fd int, buf []byte) (int, error) {
	return windows.Write(windows.Handle(fd), buf)
}
