//go:build !linux

package threadlet

// sendmmsgBatch and recvmmsgBatch are only available as real batched
// syscalls on Linux (§4.7: "a Linux-specialised path uses sendmmsg/recvmmsg
// to batch multi-packet UDP ops"). Elsewhere the portable per-packet path
// is used directly; these exist only so socket.go can call the batch
// helpers unconditionally, dispatching to the one-packet-at-a-time syscalls
// with identical semantics.

func sendmmsgBatch(fd int, bufs [][]byte, dest Addr) (int, error) {
	sent := 0
	for _, b := range bufs {
		if _, err := sendToFD(fd, b, dest); err != nil {
			if sent > 0 {
				return sent, nil
			}
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func recvmmsgBatch(fd int, bufs [][]byte) (int, []int, []Addr, error) {
	counts := make([]int, 0, len(bufs))
	addrs := make([]Addr, 0, len(bufs))
	for _, b := range bufs {
		n, addr, err := recvFromFD(fd, b)
		if err != nil {
			if len(counts) > 0 {
				return len(counts), counts, addrs, nil
			}
			return 0, nil, nil, err
		}
		counts = append(counts, n)
		addrs = append(addrs, addr)
	}
	return len(counts), counts, addrs, nil
}
