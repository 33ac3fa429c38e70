//go:build linux

package threadlet

import (
	"golang.org/x/sys/unix"
)

// createWakeFd creates an eventfd for cross-thread wakeup (C10, Linux).
// The same descriptor serves as both read and write end.
func createWakeFd() (readFd, writeFd int, err error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return -1, -1, err
	}
	return fd, fd, nil
}

func closeWakeFd(readFd, writeFd int) error {
	if readFd >= 0 {
		return unix.Close(readFd)
	}
	return nil
}

// writeWakeFd posts one wake event.
func writeWakeFd(writeFd int) error {
	var buf [8]byte
	buf[7] = 1
	_, err := unix.Write(writeFd, buf[:])
	return err
}

// drainWakeFd consumes all pending wake events so a level-triggered poller
// does not keep reporting the wake descriptor as ready.
func drainWakeFd(readFd int) {
	var buf [8]byte
	for {
		_, err := unix.Read(readFd, buf[:])
		if err != nil {
			return
		}
	}
}
