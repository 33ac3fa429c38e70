//go:build linux

package threadlet

import (
	"golang.org/x/sys/unix"
)

// linuxPoller implements Poller on epoll (§4.1, §6 Platform expectations:
// "Linux: epoll with EPOLLRDHUP/EPOLLERR/EPOLLHUP, eventfd for wakeup").
type linuxPoller struct {
	epfd         int
	wakeReadFD   int
	wakeWriteFD  int
	registered   map[int]struct{}
	eventBuf     []unix.EpollEvent
}

// NewPoller allocates an epoll instance plus a readiness event buffer of
// maxEvents, and registers the internal eventfd wakeup descriptor (§4.1
// create).
func NewPoller(maxEvents int) (Poller, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, Wrap(NoResources, "epoll_create1", err)
	}
	readFD, writeFD, err := createWakeFd()
	if err != nil {
		unix.Close(epfd)
		return nil, Wrap(NoResources, "create wake eventfd", err)
	}
	p := &linuxPoller{
		epfd:        epfd,
		wakeReadFD:  readFD,
		wakeWriteFD: writeFD,
		registered:  make(map[int]struct{}),
		eventBuf:    make([]unix.EpollEvent, maxEvents),
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(readFD)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, readFD, ev); err != nil {
		p.Close()
		return nil, Wrap(NoResources, "register wake eventfd", err)
	}
	return p, nil
}

func (p *linuxPoller) Add(fd int, mask InterestMask) error {
	ev := &unix.EpollEvent{Events: eventsToEpoll(mask), Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if _, ok := p.registered[fd]; ok {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(p.epfd, op, fd, ev); err != nil {
		return classifyErrno("epoll_ctl", err)
	}
	p.registered[fd] = struct{}{}
	return nil
}

func (p *linuxPoller) Remove(fd int) error {
	if _, ok := p.registered[fd]; !ok {
		return nil
	}
	delete(p.registered, fd)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT {
		return classifyErrno("epoll_ctl del", err)
	}
	return nil
}

func (p *linuxPoller) Wait(timeoutMs int, out []ReadyEvent) (int, error) {
	for {
		n, err := unix.EpollWait(p.epfd, p.eventBuf, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, classifyErrno("epoll_wait", err)
		}
		count := 0
		for i := 0; i < n && count < len(out); i++ {
			fd := int(p.eventBuf[i].Fd)
			if fd == p.wakeReadFD {
				drainWakeFd(p.wakeReadFD)
				continue
			}
			out[count] = ReadyEvent{FD: fd, Mask: epollToEvents(p.eventBuf[i].Events)}
			count++
		}
		return count, nil
	}
}

func (p *linuxPoller) Wake() error {
	return writeWakeFd(p.wakeWriteFD)
}

func (p *linuxPoller) Close() error {
	closeWakeFd(p.wakeReadFD, p.wakeWriteFD)
	return unix.Close(p.epfd)
}

func eventsToEpoll(mask InterestMask) uint32 {
	var e uint32
	if mask&InterestRead != 0 {
		e |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if mask&InterestWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToEvents(e uint32) InterestMask {
	var m InterestMask
	if e&unix.EPOLLIN != 0 {
		m |= InterestRead
	}
	if e&unix.EPOLLOUT != 0 {
		m |= InterestWrite
	}
	if e&unix.EPOLLERR != 0 {
		m |= InterestError
	}
	if e&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		m |= InterestHangup
	}
	return m
}
