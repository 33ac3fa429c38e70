//go:build windows

package threadlet

import (
	"golang.org/x/sys/windows"
)

const (
	sockStream = windows.SOCK_STREAM
	sockDgram  = windows.SOCK_DGRAM
)

func addrToSockaddr(a Addr) *windows.SockaddrInet4 {
	return &windows.SockaddrInet4{Addr: a.IP, Port: int(a.Port)}
}

func sockaddrToAddr(sa windows.Sockaddr) Addr {
	if in4, ok := sa.(*windows.SockaddrInet4); ok {
		return Addr{IP: in4.Addr, Port: uint16(in4.Port)}
	}
	return Addr{}
}

func newNonblockingSocket(sockType int) (int, error) {
	fd, err := windows.Socket(windows.AF_INET, sockType, 0)
	if err != nil {
		return -1, classifyErrno("socket", err)
	}
	var mode uint32 = 1
	if err := windows.IoctlSocket(fd, windows.FIONBIO, &mode); err != nil {
		windows.Closesocket(fd)
		return -1, classifyErrno("ioctlsocket(FIONBIO)", err)
	}
	return int(fd), nil
}

func setReuseAddr(fd int) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return classifyErrno("setsockopt(SO_REUSEADDR)", err)
	}
	return nil
}

func setBroadcast(fd int) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_BROADCAST, 1); err != nil {
		return classifyErrno("setsockopt(SO_BROADCAST)", err)
	}
	return nil
}

func bindFD(fd int, addr Addr) error {
	if err := windows.Bind(windows.Handle(fd), addrToSockaddr(addr)); err != nil {
		return classifyErrno("bind", err)
	}
	return nil
}

func listenFD(fd int, backlog int) error {
	if err := windows.Listen(windows.Handle(fd), backlog); err != nil {
		return classifyErrno("listen", err)
	}
	return nil
}

// acceptFD performs one nonblocking accept attempt, per §6's allowance for
// the Windows adapter to differ in the exact retry mechanics while
// preserving the same observable outcomes.
func acceptFD(fd int) (int, Addr, error) {
	nfd, sa, err := windows.Accept(windows.Handle(fd))
	if err != nil {
		return -1, Addr{}, classifyErrno("accept", err)
	}
	var mode uint32 = 1
	_ = windows.IoctlSocket(nfd, windows.FIONBIO, &mode)
	return int(nfd), sockaddrToAddr(sa), nil
}

func connectFD(fd int, remote Addr) error {
	err := windows.Connect(windows.Handle(fd), addrToSockaddr(remote))
	if err == nil {
		return nil
	}
	if err == windows.WSAEWOULDBLOCK {
		return Wrap(WouldBlock, "connect", err)
	}
	return classifyErrno("connect", err)
}

func getSockError(fd int) error {
	errno, err := windows.GetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_ERROR)
	if err != nil {
		return classifyErrno("getsockopt(SO_ERROR)", err)
	}
	if errno == 0 {
		return nil
	}
	return classifyErrno("connect", windows.Errno(errno))
}

// writevFD has no native scatter/gather equivalent wired here; buffers are
// written sequentially, which is observationally identical for a stream
// socket (§4.7 send semantics only require every buffer's window drained).
func writevFD(fd int, bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := writeFD(fd, b)
		total += n
		if err != nil {
			return total, classifyErrno("write", err)
		}
		if n < len(b) {
			return total, nil
		}
	}
	return total, nil
}

func sendToFD(fd int, buf []byte, dest Addr) (int, error) {
	if err := windows.Sendto(windows.Handle(fd), buf, 0, addrToSockaddr(dest)); err != nil {
		return 0, classifyErrno("sendto", err)
	}
	return len(buf), nil
}

func recvFromFD(fd int, buf []byte) (int, Addr, error) {
	n, sa, err := windows.Recvfrom(windows.Handle(fd), buf, 0)
	if err != nil {
		return 0, Addr{}, classifyErrno("recvfrom", err)
	}
	return n, sockaddrToAddr(sa), nil
}

func shutdownFD(fd int) error {
	return windows.Shutdown(windows.Handle(fd), windows.SD_BOTH)
}

// getSockName reads back the address the kernel actually bound, needed when
// the caller asked for an ephemeral port (port 0) and wants the assigned one.
func getSockName(fd int) (Addr, error) {
	sa, err := windows.Getsockname(windows.Handle(fd))
	if err != nil {
		return Addr{}, classifyErrno("getsockname", err)
	}
	return sockaddrToAddr(sa), nil
}
