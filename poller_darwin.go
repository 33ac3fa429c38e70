//go:build darwin

package threadlet

import (
	"golang.org/x/sys/unix"
)

// darwinPoller implements Poller on kqueue (§4.1, §6 Platform expectations:
// "BSD/macOS: kqueue, self-pipe wakeup").
type darwinPoller struct {
	kq          int
	wakeReadFD  int
	wakeWriteFD int
	eventBuf    []unix.Kevent_t
}

// NewPoller allocates a kqueue instance plus a readiness event buffer of
// maxEvents, and registers the internal self-pipe wakeup descriptor.
func NewPoller(maxEvents int) (Poller, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, Wrap(NoResources, "kqueue", err)
	}
	unix.CloseOnExec(kq)
	readFD, writeFD, err := createWakeFd()
	if err != nil {
		unix.Close(kq)
		return nil, Wrap(NoResources, "create wake pipe", err)
	}
	p := &darwinPoller{
		kq:          kq,
		wakeReadFD:  readFD,
		wakeWriteFD: writeFD,
		eventBuf:    make([]unix.Kevent_t, maxEvents),
	}
	wakeEv := unix.Kevent_t{Ident: uint64(readFD), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{wakeEv}, nil, nil); err != nil {
		p.Close()
		return nil, Wrap(NoResources, "register wake pipe", err)
	}
	return p, nil
}

func (p *darwinPoller) Add(fd int, mask InterestMask) error {
	changes := eventsToKevents(fd, mask, unix.EV_ADD|unix.EV_ENABLE)
	// Clear the complementary filter so Add acts as modify-in-place: a
	// second Add with a narrower mask must not leave a stale filter armed.
	clears := eventsToKevents(fd, (InterestRead|InterestWrite)&^mask, unix.EV_DELETE)
	if len(clears) > 0 {
		unix.Kevent(p.kq, clears, nil, nil) // best-effort, fd may not have had it
	}
	if len(changes) == 0 {
		return nil
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return classifyErrno("kevent add", err)
	}
	return nil
}

func (p *darwinPoller) Remove(fd int) error {
	changes := eventsToKevents(fd, InterestRead|InterestWrite, unix.EV_DELETE)
	unix.Kevent(p.kq, changes, nil, nil) // idempotent: ignore ENOENT-like errors
	return nil
}

func (p *darwinPoller) Wait(timeoutMs int, out []ReadyEvent) (int, error) {
	for {
		var ts *unix.Timespec
		if timeoutMs >= 0 {
			ts = &unix.Timespec{Sec: int64(timeoutMs / 1000), Nsec: int64((timeoutMs % 1000) * 1000000)}
		}
		n, err := unix.Kevent(p.kq, nil, p.eventBuf, ts)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, classifyErrno("kevent wait", err)
		}
		count := 0
		for i := 0; i < n && count < len(out); i++ {
			ev := &p.eventBuf[i]
			fd := int(ev.Ident)
			if fd == p.wakeReadFD {
				drainWakeFd(p.wakeReadFD)
				continue
			}
			out[count] = ReadyEvent{FD: fd, Mask: keventToEvents(ev)}
			count++
		}
		return count, nil
	}
}

func (p *darwinPoller) Wake() error {
	return writeWakeFd(p.wakeWriteFD)
}

func (p *darwinPoller) Close() error {
	closeWakeFd(p.wakeReadFD, p.wakeWriteFD)
	return unix.Close(p.kq)
}

func eventsToKevents(fd int, mask InterestMask, flags uint16) []unix.Kevent_t {
	var kevents []unix.Kevent_t
	if mask&InterestRead != 0 {
		kevents = append(kevents, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if mask&InterestWrite != 0 {
		kevents = append(kevents, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	return kevents
}

func keventToEvents(kev *unix.Kevent_t) InterestMask {
	var m InterestMask
	switch kev.Filter {
	case unix.EVFILT_READ:
		m |= InterestRead
	case unix.EVFILT_WRITE:
		m |= InterestWrite
	}
	if kev.Flags&unix.EV_ERROR != 0 {
		m |= InterestError
	}
	if kev.Flags&unix.EV_EOF != 0 {
		m |= InterestHangup
	}
	return m
}
