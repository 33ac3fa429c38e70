//go:build darwin

package threadlet

import (
	"syscall"
)

// createWakeFd creates a self-pipe for cross-thread wakeup (C10, Darwin/BSD).
func createWakeFd() (readFd, writeFd int, err error) {
	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		return -1, -1, err
	}
	syscall.CloseOnExec(fds[0])
	syscall.CloseOnExec(fds[1])
	if err := syscall.SetNonblock(fds[0], true); err != nil {
		syscall.Close(fds[0])
		syscall.Close(fds[1])
		return -1, -1, err
	}
	if err := syscall.SetNonblock(fds[1], true); err != nil {
		syscall.Close(fds[0])
		syscall.Close(fds[1])
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}

func closeWakeFd(readFd, writeFd int) error {
	if readFd >= 0 {
		_ = syscall.Close(readFd)
	}
	if writeFd >= 0 && writeFd != readFd {
		_ = syscall.Close(writeFd)
	}
	return nil
}

func writeWakeFd(writeFd int) error {
	_, err := syscall.Write(writeFd, []byte{1})
	return err
}

func drainWakeFd(readFd int) {
	var buf [64]byte
	for {
		_, err := syscall.Read(readFd, buf[:])
		if err != nil {
			return
		}
	}
}
