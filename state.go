package threadlet

import (
	"sync/atomic"
)

// Status is a task's lifecycle state (§3 Task data model).
type Status uint32

const (
	// StatusReady means the task is enqueued on the ready queue awaiting its
	// turn to run.
	StatusReady Status = iota
	// StatusRunning means the task is the loop's current_task.
	StatusRunning
	// StatusWaiting means the task has parked via wait_fd and appears in at
	// most one waiter registry entry and at most one timeout heap entry.
	StatusWaiting
	// StatusFinished means the task's entry function returned normally.
	StatusFinished
	// StatusAborted means the task's entry function panicked instead of
	// returning, so it never reached FINISHED.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusWaiting:
		return "waiting"
	case StatusFinished:
		return "finished"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// fastStatus is a lock-free state machine with cache-line padding, grounded
// on the teacher's FastState: a bare atomic word with CAS transitions, no
// internal mutex. One lives on every task (§4.4) and guards its Status.
type fastStatus struct { // betteralign:ignore
	_ [sizeOfCacheLine]byte // cache-line padding (before value)
	v atomic.Uint32         // Status value
	_ [sizeOfCacheLine - 4]byte
}

func newFastStatus(initial Status) *fastStatus {
	s := &fastStatus{}
	s.v.Store(uint32(initial))
	return s
}

func (s *fastStatus) Load() Status {
	return Status(s.v.Load())
}

func (s *fastStatus) Store(status Status) {
	s.v.Store(uint32(status))
}

func (s *fastStatus) TryTransition(from, to Status) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// WakeReason is attached to a task at the moment it is unparked (glossary).
type WakeReason int

const (
	WakeNone WakeReason = iota
	WakeReady
	WakeTimeout
	WakeAborted
)

func (w WakeReason) String() string {
	switch w {
	case WakeReady:
		return "ready"
	case WakeTimeout:
		return "timeout"
	case WakeAborted:
		return "aborted"
	default:
		return "none"
	}
}

// runState is the event loop's running_flag (§3 Event loop data model),
// a cache-line-padded atomic like fastStatus rather than a mutex-guarded
// bool, since it is read by Run on the loop's goroutine and written from
// Stop(), which may run on any goroutine.
type runState struct {
	_ [sizeOfCacheLine]byte
	v atomic.Bool
	_ [sizeOfCacheLine - 1]byte
}

func (r *runState) setRunning(v bool) { r.v.Store(v) }
func (r *runState) running() bool     { return r.v.Load() }
