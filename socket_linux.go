//go:build linux

package threadlet

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func htons(port uint16) uint16 {
	return (port << 8) | (port >> 8)
}

func rawSockaddr(a Addr) unix.RawSockaddrInet4 {
	return unix.RawSockaddrInet4{
		Family: unix.AF_INET,
		Port:   htons(a.Port),
		Addr:   a.IP,
	}
}

// sendmmsgBatch sends up to sendmmsgBatchSize UDP datagrams to the same
// destination in one syscall (§4.7: "a Linux-specialised path uses
// sendmmsg/recvmmsg to batch multi-packet UDP ops"). Semantics match
// repeated sendToFD calls; only the syscall count differs. Returns the
// number of messages actually sent.
func sendmmsgBatch(fd int, bufs [][]byte, dest Addr) (int, error) {
	if len(bufs) == 0 {
		return 0, nil
	}
	sa := rawSockaddr(dest)
	msgs := make([]unix.Mmsghdr, len(bufs))
	for i, b := range bufs {
		msgs[i].Hdr.Name = (*byte)(unsafe.Pointer(&sa))
		msgs[i].Hdr.Namelen = unix.SizeofSockaddrInet4
		if len(b) > 0 {
			iov := unix.Iovec{Base: &b[0]}
			iov.SetLen(len(b))
			msgs[i].Hdr.Iov = &iov
			msgs[i].Hdr.SetIovlen(1)
		}
	}
	n, err := unix.Sendmmsg(fd, msgs, 0)
	if err != nil {
		return n, classifyErrno("sendmmsg", err)
	}
	return n, nil
}

// recvmmsgBatch receives up to sendmmsgBatchSize UDP datagrams in one
// syscall, writing each into its own entry of bufs. Returns the number of
// datagrams received and, for each, the byte count and sender address.
func recvmmsgBatch(fd int, bufs [][]byte) (int, []int, []Addr, error) {
	if len(bufs) == 0 {
		return 0, nil, nil, nil
	}
	msgs := make([]unix.Mmsghdr, len(bufs))
	sas := make([]unix.RawSockaddrInet4, len(bufs))
	for i, b := range bufs {
		msgs[i].Hdr.Name = (*byte)(unsafe.Pointer(&sas[i]))
		msgs[i].Hdr.Namelen = unix.SizeofSockaddrInet4
		if len(b) > 0 {
			iov := unix.Iovec{Base: &b[0]}
			iov.SetLen(len(b))
			msgs[i].Hdr.Iov = &iov
			msgs[i].Hdr.SetIovlen(1)
		}
	}
	n, err := unix.Recvmmsg(fd, msgs, 0, nil)
	if err != nil {
		return n, nil, nil, classifyErrno("recvmmsg", err)
	}
	counts := make([]int, n)
	addrs := make([]Addr, n)
	for i := 0; i < n; i++ {
		counts[i] = int(msgs[i].Len)
		addrs[i] = Addr{IP: sas[i].Addr, Port: htons(sas[i].Port)}
	}
	return n, counts, addrs, nil
}
