//go:build linux || darwin

package threadlet

import (
	"golang.org/x/sys/unix"
)

const (
	sockStream = unix.SOCK_STREAM
	sockDgram  = unix.SOCK_DGRAM
)

func addrToSockaddr(a Addr) *unix.SockaddrInet4 {
	return &unix.SockaddrInet4{Addr: a.IP, Port: int(a.Port)}
}

func sockaddrToAddr(sa unix.Sockaddr) Addr {
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		return Addr{IP: in4.Addr, Port: uint16(in4.Port)}
	}
	return Addr{}
}

// newNonblockingSocket creates a nonblocking, close-on-exec socket of the
// given type (unix.SOCK_STREAM or unix.SOCK_DGRAM).
func newNonblockingSocket(sockType int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, sockType|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, classifyErrno("socket", err)
	}
	return fd, nil
}

func setReuseAddr(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return classifyErrno("setsockopt(SO_REUSEADDR)", err)
	}
	return nil
}

func setBroadcast(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
		return classifyErrno("setsockopt(SO_BROADCAST)", err)
	}
	return nil
}

func bindFD(fd int, addr Addr) error {
	if err := unix.Bind(fd, addrToSockaddr(addr)); err != nil {
		return classifyErrno("bind", err)
	}
	return nil
}

func listenFD(fd int, backlog int) error {
	if err := unix.Listen(fd, backlog); err != nil {
		return classifyErrno("listen", err)
	}
	return nil
}

// acceptFD performs one nonblocking accept attempt. A WouldBlock-classified
// error means the caller should park on READ and retry.
func acceptFD(fd int) (int, Addr, error) {
	nfd, sa, err := unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, Addr{}, classifyErrno("accept", err)
	}
	return nfd, sockaddrToAddr(sa), nil
}

// connectFD performs one nonblocking connect attempt. A nil error means the
// connection completed synchronously; a WouldBlock-classified error wrapping
// EINPROGRESS means the caller should park on WRITE and then check
// getSockError.
func connectFD(fd int, remote Addr) error {
	err := unix.Connect(fd, addrToSockaddr(remote))
	if err == nil {
		return nil
	}
	if err == unix.EINPROGRESS {
		return Wrap(WouldBlock, "connect", err)
	}
	return classifyErrno("connect", err)
}

// getSockError reads and clears SO_ERROR, the standard way to discover
// whether an async connect completed successfully.
func getSockError(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return classifyErrno("getsockopt(SO_ERROR)", err)
	}
	if errno == 0 {
		return nil
	}
	return classifyErrno("connect", unix.Errno(errno))
}

// writevFD gathers multiple buffer windows into one vectored write.
func writevFD(fd int, bufs [][]byte) (int, error) {
	iovecs := make([][]byte, 0, len(bufs))
	for _, b := range bufs {
		if len(b) > 0 {
			iovecs = append(iovecs, b)
		}
	}
	if len(iovecs) == 0 {
		return 0, nil
	}
	n, err := unix.Writev(fd, iovecs)
	if err != nil {
		return n, classifyErrno("writev", err)
	}
	return n, nil
}

func sendToFD(fd int, buf []byte, dest Addr) (int, error) {
	err := unix.Sendto(fd, buf, 0, addrToSockaddr(dest))
	if err != nil {
		return 0, classifyErrno("sendto", err)
	}
	return len(buf), nil
}

func recvFromFD(fd int, buf []byte) (int, Addr, error) {
	n, sa, err := unix.Recvfrom(fd, buf, 0)
	if err != nil {
		return 0, Addr{}, classifyErrno("recvfrom", err)
	}
	return n, sockaddrToAddr(sa), nil
}

func shutdownFD(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_RDWR)
}

// getSockName reads back the address the kernel actually bound, needed when
// the caller asked for an ephemeral port (port 0) and wants the assigned one.
func getSockName(fd int) (Addr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return Addr{}, classifyErrno("getsockname", err)
	}
	return sockaddrToAddr(sa), nil
}
