//go:build windows

package threadlet

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Dynamically linked WSAPoll: golang.org/x/sys/windows does not export a
// typed wrapper for it, so it is loaded the same way other Winsock calls
// without native x/sys bindings are: a lazy DLL proc.
var (
	ws2_32      = windows.NewLazySystemDLL("ws2_32.dll")
	procWSAPoll = ws2_32.NewProc("WSAPoll")
)

// WSAPoll event bits, from winsock2.h.
const (
	pollRDNORM = int16(0x0100)
	pollWRNORM = int16(0x0010)
	pollERR    = int16(0x0001)
	pollHUP    = int16(0x0002)
)

// wsaPollFD mirrors WSAPOLLFD.
type wsaPollFD struct {
	Fd      uintptr
	Events  int16
	Revents int16
}

// windowsPoller implements Poller by polling the registered sockets
// directly with WSAPoll rather than through IOCP overlapped completions
// (§4.1, §6 Platform expectations). The socket adapter in this package
// issues plain synchronous Win32 socket calls, not overlapped I/O, and an
// IOCP completion port only ever fires for an explicitly-submitted
// overlapped operation (AcceptEx/ConnectEx/WSASend/WSARecv) — associating a
// handle with a port is not enough on its own. A WSAPoll-based backend
// mirrors epoll/kqueue's readiness model exactly, so the rest of the loop
// (waiter registry, timeout heap, wait_fd/signal_fd) needs no Windows
// special-casing.
type windowsPoller struct {
	mu        sync.Mutex
	interests map[int]InterestMask

	wakeRead  int
	wakeWrite int
	wakeDest  Addr
}

// NewPoller allocates a WSAPoll-backed poller with a loopback UDP pair used
// to interrupt an in-flight Wait from Wake().
func NewPoller(maxEvents int) (Poller, error) {
	rd, wr, dest, err := newWakeSocketPair()
	if err != nil {
		return nil, Wrap(NoResources, "create wake socket pair", err)
	}
	return &windowsPoller{
		interests: make(map[int]InterestMask),
		wakeRead:  rd,
		wakeWrite: wr,
		wakeDest:  dest,
	}, nil
}

func newWakeSocketPair() (read int, write int, dest Addr, err error) {
	rd, serr := newNonblockingSocket(sockDgram)
	if serr != nil {
		return -1, -1, Addr{}, serr
	}
	if e := bindFD(rd, NewAddr(127, 0, 0, 1, 0)); e != nil {
		closeFD(rd)
		return -1, -1, Addr{}, e
	}
	local, e := getSockName(rd)
	if e != nil {
		closeFD(rd)
		return -1, -1, Addr{}, e
	}
	wr, serr := newNonblockingSocket(sockDgram)
	if serr != nil {
		closeFD(rd)
		return -1, -1, Addr{}, serr
	}
	return rd, wr, local, nil
}

func (p *windowsPoller) Add(fd int, mask InterestMask) error {
	p.mu.Lock()
	p.interests[fd] = mask
	p.mu.Unlock()
	return nil
}

func (p *windowsPoller) Remove(fd int) error {
	p.mu.Lock()
	delete(p.interests, fd)
	p.mu.Unlock()
	return nil
}

func (p *windowsPoller) Wait(timeoutMs int, out []ReadyEvent) (int, error) {
	p.mu.Lock()
	fds := make([]wsaPollFD, 0, len(p.interests)+1)
	order := make([]int, 0, len(p.interests))
	for fd, mask := range p.interests {
		var events int16
		if mask&InterestRead != 0 {
			events |= pollRDNORM
		}
		if mask&InterestWrite != 0 {
			events |= pollWRNORM
		}
		fds = append(fds, wsaPollFD{Fd: uintptr(fd), Events: events})
		order = append(order, fd)
	}
	wakeIdx := len(fds)
	fds = append(fds, wsaPollFD{Fd: uintptr(p.wakeRead), Events: pollRDNORM})
	p.mu.Unlock()

	n, err := wsaPoll(fds, timeoutMs)
	if err != nil {
		return 0, classifyErrno("WSAPoll", err)
	}
	if n <= 0 {
		return 0, nil
	}

	count := 0
	for i := range fds {
		if fds[i].Revents == 0 {
			continue
		}
		if i == wakeIdx {
			drainWakeSocket(p.wakeRead)
			continue
		}
		if count >= len(out) {
			continue
		}
		var mask InterestMask
		if fds[i].Revents&(pollRDNORM|pollHUP|pollERR) != 0 {
			mask |= InterestRead
		}
		if fds[i].Revents&pollWRNORM != 0 {
			mask |= InterestWrite
		}
		out[count] = ReadyEvent{FD: order[i], Mask: mask}
		count++
	}
	return count, nil
}

func wsaPoll(fds []wsaPollFD, timeoutMs int) (int, error) {
	if len(fds) == 0 {
		return 0, nil
	}
	r1, _, e1 := procWSAPoll.Call(
		uintptr(unsafe.Pointer(&fds[0])),
		uintptr(uint32(len(fds))),
		uintptr(int32(timeoutMs)),
	)
	n := int(int32(r1))
	if n < 0 {
		return -1, e1
	}
	return n, nil
}

func drainWakeSocket(fd int) {
	buf := make([]byte, 64)
	for {
		if _, _, err := recvFromFD(fd, buf); err != nil {
			return
		}
	}
}

// Wake posts one byte to the wake socket pair, causing an in-flight Wait to
// return promptly; safe to call from any goroutine.
func (p *windowsPoller) Wake() error {
	_, err := sendToFD(p.wakeWrite, []byte{0}, p.wakeDest)
	return err
}

func (p *windowsPoller) Close() error {
	closeFD(p.wakeRead)
	closeFD(p.wakeWrite)
	return nil
}
