package threadlet

// sendmmsgBatchSize bounds how many UDP datagrams one batched send/receive
// syscall handles (§4.7: "the batch size is 16").
const sendmmsgBatchSize = 16

// tcpRecvBufferSize is the fixed allocation size for a fresh TCP recv
// buffer (§4.7 TCP recv: "allocate a fresh 4 KiB (TCP) buffer").
const tcpRecvBufferSize = 4096

// udpRecvBufferSize is the fixed per-packet allocation size for UDP
// recv_from (§4.7: "allocate 65 535-byte buffer per packet").
const udpRecvBufferSize = 65535

// SocketKind distinguishes the three socket roles the adapter creates.
type SocketKind int

const (
	TCPListener SocketKind = iota
	TCPClient
	UDPSocket
)

// Socket is the C7 component: a task-level blocking API laid directly over
// a nonblocking file descriptor. Every method that can block must be
// called from inside the task that owns it; it parks via Loop.WaitFD and
// resumes when the loop observes readiness or a deadline.
type Socket struct {
	fd     int
	kind   SocketKind
	loop   *Loop
	local  Addr
	remote Addr
	closed bool
}

func newSocket(loop *Loop, fd int, kind SocketKind) *Socket {
	return &Socket{fd: fd, kind: kind, loop: loop}
}

// Kind reports the socket's role.
func (s *Socket) Kind() SocketKind { return s.kind }

// LocalAddr returns the address the socket is bound to, if known.
func (s *Socket) LocalAddr() Addr { return s.local }

// RemoteAddr returns the peer address, valid for TCPClient sockets and UDP
// packets most recently received via RecvFrom.
func (s *Socket) RemoteAddr() Addr { return s.remote }

// TCPListen creates a nonblocking TCP listening socket bound to addr with
// the given backlog (§4.7 TCP listen). It never parks.
func TCPListen(loop *Loop, addr Addr, backlog int) (*Socket, *Error) {
	fd, err := newNonblockingSocket(sockStream)
	if err != nil {
		return nil, err.(*Error)
	}
	if e := setReuseAddr(fd); e != nil {
		closeFD(fd)
		return nil, e.(*Error)
	}
	if e := bindFD(fd, addr); e != nil {
		closeFD(fd)
		return nil, e.(*Error)
	}
	if e := listenFD(fd, backlog); e != nil {
		closeFD(fd)
		return nil, e.(*Error)
	}
	s := newSocket(loop, fd, TCPListener)
	s.local = addr
	if bound, e := getSockName(fd); e == nil {
		s.local = bound
	}
	return s, nil
}

// Accept blocks the calling task until a connection arrives or timeoutMs
// elapses (§4.7 TCP accept).
func (s *Socket) Accept(t *Task, timeoutMs int64) (*Socket, *Error) {
	for {
		nfd, remote, err := acceptFD(s.fd)
		if err == nil {
			client := newSocket(s.loop, nfd, TCPClient)
			client.remote = remote
			client.local = s.local
			return client, nil
		}
		te := err.(*Error)
		if te.Kind != WouldBlock {
			return nil, te
		}
		reason := s.loop.WaitFD(t, s.fd, InterestRead, timeoutMs)
		switch reason {
		case WakeReady:
			continue
		case WakeTimeout:
			return nil, New(Timeout, "accept timed out")
		case WakeAborted:
			return nil, New(Aborted, "accept aborted")
		}
	}
}

// TCPConnect creates a nonblocking TCP socket and connects it to remote,
// parking on WRITE readiness if the connect does not complete synchronously
// (§4.7 TCP connect).
func TCPConnect(loop *Loop, t *Task, remote Addr, timeoutMs int64) (*Socket, *Error) {
	fd, err := newNonblockingSocket(sockStream)
	if err != nil {
		return nil, err.(*Error)
	}
	cerr := connectFD(fd, remote)
	if cerr == nil {
		s := newSocket(loop, fd, TCPClient)
		s.remote = remote
		return s, nil
	}
	ce := cerr.(*Error)
	if ce.Kind != WouldBlock {
		closeFD(fd)
		return nil, ce
	}
	reason := loop.WaitFD(t, fd, InterestWrite, timeoutMs)
	switch reason {
	case WakeTimeout:
		closeFD(fd)
		return nil, New(Timeout, "connect timed out")
	case WakeAborted:
		closeFD(fd)
		return nil, New(Aborted, "connect aborted")
	}
	if serr := getSockError(fd); serr != nil {
		closeFD(fd)
		return nil, serr.(*Error)
	}
	s := newSocket(loop, fd, TCPClient)
	s.remote = remote
	return s, nil
}

// Send gather-writes every live buffer window in bufs, advancing each
// buffer's start as bytes are consumed, parking on WRITE readiness between
// attempts (§4.7 TCP send). It returns once every buffer is drained or an
// error/timeout intervenes.
func (s *Socket) Send(t *Task, bufs []*Buffer, timeoutMs int64) *Error {
	deadline := deadlineFor(s.loop, timeoutMs)
	for {
		live := liveWindows(bufs)
		if len(live) == 0 {
			return nil
		}
		n, err := writevFD(s.fd, live)
		consumeSent(bufs, n)
		if err != nil {
			if te, ok := err.(*Error); ok && te.Kind == WouldBlock {
				remaining := remainingMs(s.loop, deadline, timeoutMs)
				reason := s.loop.WaitFD(t, s.fd, InterestWrite, remaining)
				switch reason {
				case WakeReady:
					continue
				case WakeTimeout:
					return New(Timeout, "send timed out")
				case WakeAborted:
					return New(Aborted, "send aborted")
				}
			}
			return err.(*Error)
		}
	}
}

// Recv allocates a fresh tcpRecvBufferSize buffer and reads into it. If
// waitAll is false it returns as soon as any data arrives; otherwise it
// keeps reading until the buffer is full or the deadline elapses (§4.7 TCP
// recv). A zero-length read (peer closed) returns any buffered data, or
// Closed if none was collected.
func (s *Socket) Recv(t *Task, waitAll bool, timeoutMs int64) (*Buffer, *Error) {
	buf := NewBuffer(tcpRecvBufferSize)
	deadline := deadlineFor(s.loop, timeoutMs)
	for {
		n, err := readFD(s.fd, buf.writable())
		if err == nil {
			if n == 0 {
				if buf.Len() > 0 {
					return buf, nil
				}
				return nil, New(Closed, "peer closed connection")
			}
			buf.advanceEnd(n)
			if !waitAll || buf.Full() {
				return buf, nil
			}
			continue
		}
		if isRetryable(err) {
			remaining := remainingMs(s.loop, deadline, timeoutMs)
			reason := s.loop.WaitFD(t, s.fd, InterestRead, remaining)
			switch reason {
			case WakeReady:
				continue
			case WakeTimeout:
				if buf.Len() > 0 {
					return buf, nil
				}
				return nil, New(Timeout, "recv timed out")
			case WakeAborted:
				return nil, New(Aborted, "recv aborted")
			}
		}
		return nil, classifyErrno("recv", err)
	}
}

// UDPCreate creates a nonblocking UDP socket, optionally binding it to
// localAddr and/or enabling SO_BROADCAST (§4.7 UDP create). An unbound
// socket is send-only.
func UDPCreate(loop *Loop, localAddr *Addr, broadcast bool) (*Socket, *Error) {
	fd, err := newNonblockingSocket(sockDgram)
	if err != nil {
		return nil, err.(*Error)
	}
	if broadcast {
		if e := setBroadcast(fd); e != nil {
			closeFD(fd)
			return nil, e.(*Error)
		}
	}
	s := newSocket(loop, fd, UDPSocket)
	if localAddr != nil {
		if e := bindFD(fd, *localAddr); e != nil {
			closeFD(fd)
			return nil, e.(*Error)
		}
		s.local = *localAddr
		if bound, e := getSockName(fd); e == nil {
			s.local = bound
		}
	}
	return s, nil
}

// SendTo sends one datagram to dest, parking on WRITE readiness on EAGAIN
// (§4.7 UDP send_to).
func (s *Socket) SendTo(t *Task, buf *Buffer, dest Addr, timeoutMs int64) *Error {
	deadline := deadlineFor(s.loop, timeoutMs)
	for {
		n, err := sendToFD(s.fd, buf.Bytes(), dest)
		if err == nil {
			buf.advanceStart(n)
			return nil
		}
		te := err.(*Error)
		if te.Kind != WouldBlock {
			return te
		}
		remaining := remainingMs(s.loop, deadline, timeoutMs)
		reason := s.loop.WaitFD(t, s.fd, InterestWrite, remaining)
		switch reason {
		case WakeReady:
			continue
		case WakeTimeout:
			return New(Timeout, "send_to timed out")
		case WakeAborted:
			return New(Aborted, "send_to aborted")
		}
	}
}

// SendToBatch sends multiple datagrams to the same destination using the
// platform batch path where available (§4.7: Linux sendmmsg batching, up to
// sendmmsgBatchSize messages per syscall; elsewhere, one syscall per
// datagram with identical observable semantics). Parks on WRITE readiness
// between batches when the socket is not ready to accept more.
func (s *Socket) SendToBatch(t *Task, bufs []*Buffer, dest Addr, timeoutMs int64) *Error {
	deadline := deadlineFor(s.loop, timeoutMs)
	sent := 0
	for sent < len(bufs) {
		end := sent + sendmmsgBatchSize
		if end > len(bufs) {
			end = len(bufs)
		}
		raw := make([][]byte, end-sent)
		for i := range raw {
			raw[i] = bufs[sent+i].Bytes()
		}
		n, err := sendmmsgBatch(s.fd, raw, dest)
		for i := 0; i < n; i++ {
			b := bufs[sent+i]
			b.advanceStart(b.Len())
		}
		sent += n
		if err == nil {
			continue
		}
		te, ok := err.(*Error)
		if !ok {
			te = Wrap(NetworkError, "sendmmsg", err)
		}
		if te.Kind != WouldBlock {
			return te
		}
		remaining := remainingMs(s.loop, deadline, timeoutMs)
		reason := s.loop.WaitFD(t, s.fd, InterestWrite, remaining)
		switch reason {
		case WakeReady:
			continue
		case WakeTimeout:
			return New(Timeout, "send_to_batch timed out")
		case WakeAborted:
			return New(Aborted, "send_to_batch aborted")
		}
	}
	return nil
}

// RecvFrom collects one or more datagrams. If collectAll is false it
// returns after the first batch of packets read in one attempt; otherwise
// it keeps collecting, using the platform batch path where available. With
// a positive timeoutMs, collection continues until the deadline, and the
// packets gathered so far are then returned with a nil error (Timeout only
// if none arrived); with timeoutMs == 0 it returns at the first EAGAIN
// after at least one packet (§4.7 UDP recv_from).
func (s *Socket) RecvFrom(t *Task, collectAll bool, timeoutMs int64) ([]*Buffer, Addr, *Error) {
	var packets []*Buffer
	var lastSender Addr
	deadline := deadlineFor(s.loop, timeoutMs)
	for {
		bufs := make([][]byte, sendmmsgBatchSize)
		for i := range bufs {
			bufs[i] = make([]byte, udpRecvBufferSize)
		}
		n, counts, addrs, err := recvmmsgBatch(s.fd, bufs)
		if err == nil && n > 0 {
			for i := 0; i < n; i++ {
				packets = append(packets, WrapBuffer(bufs[i][:counts[i]]))
				lastSender = addrs[i]
			}
			s.remote = lastSender
			if !collectAll {
				return packets, lastSender, nil
			}
			continue
		}
		if err != nil {
			if te, ok := err.(*Error); ok && te.Kind == WouldBlock {
				if len(packets) > 0 && collectAll {
					remaining := remainingMs(s.loop, deadline, timeoutMs)
					if remaining == 0 {
						return packets, lastSender, nil
					}
				}
				remaining := remainingMs(s.loop, deadline, timeoutMs)
				reason := s.loop.WaitFD(t, s.fd, InterestRead, remaining)
				switch reason {
				case WakeReady:
					continue
				case WakeTimeout:
					if len(packets) > 0 {
						return packets, lastSender, nil
					}
					return nil, Addr{}, New(Timeout, "recv_from timed out")
				case WakeAborted:
					return nil, Addr{}, New(Aborted, "recv_from aborted")
				}
			}
			return nil, Addr{}, err.(*Error)
		}
		return packets, lastSender, nil
	}
}

// Close aborts any task parked on this socket's fd, removes its poller and
// registry entries, shuts down both directions, and closes the descriptor
// (§4.7 Close).
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.loop.SignalFD(s.fd, WakeAborted)
	_ = shutdownFD(s.fd)
	return closeFD(s.fd)
}

func liveWindows(bufs []*Buffer) [][]byte {
	out := make([][]byte, 0, len(bufs))
	for _, b := range bufs {
		if !b.Drained() {
			out = append(out, b.Bytes())
		}
	}
	return out
}

func consumeSent(bufs []*Buffer, n int) {
	for _, b := range bufs {
		if n <= 0 {
			return
		}
		live := b.Len()
		if live == 0 {
			continue
		}
		take := live
		if take > n {
			take = n
		}
		b.advanceStart(take)
		n -= take
	}
}

func deadlineFor(loop *Loop, timeoutMs int64) int64 {
	if timeoutMs <= 0 {
		return 0
	}
	return loop.nowMs() + timeoutMs
}

func remainingMs(loop *Loop, deadline int64, timeoutMs int64) int64 {
	if timeoutMs <= 0 {
		return timeoutMs
	}
	r := deadline - loop.nowMs()
	if r < 0 {
		return 0
	}
	return r
}
