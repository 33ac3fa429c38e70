package threadlet

import (
	"runtime"
)

var loopIDSeq paddedSeqCounter

// Loop is the C6 component: the per-OS-thread driver. It owns the platform
// Poller, the ready TaskQueue, the WaiterRegistry, and the TimeoutHeap, and
// runs the tick algorithm of §4.5 until stopped and drained.
//
// A Loop must run on one goroutine for its entire life; Run locks that
// goroutine to its OS thread with runtime.LockOSThread, matching the
// "per OS thread" requirement of §1. The only method safe to call from
// another goroutine is Stop.
type Loop struct {
	id     uint64
	poller Poller
	logger *Logger

	ready    *TaskQueue
	waiters  *WaiterRegistry
	timeouts *TimeoutHeap

	currentTask *Task
	running     *runState

	cachedNowMs    int64
	syntheticFDSeq int

	scratch []ReadyEvent

	tickCount   uint64
	tasksRun    uint64
	wakesReady  uint64
	wakesTime   uint64
}

// Stats is a point-in-time snapshot of loop activity counters, the one
// feature this runtime adds beyond the exported surface named in §6. It is
// a deliberately thin cousin of a full metrics subsystem: plain running
// counters, no sampled quantile estimation, since nothing elsewhere in the
// data model tracks latency distributions.
type Stats struct {
	Ticks        uint64
	TasksRun     uint64
	ReadyWakes   uint64
	TimeoutWakes uint64
	ReadyQueued  int
	Waiters      int
	Timers       int
}

// Stats returns a snapshot of the loop's activity counters and current
// queue depths. Safe to call only from the loop's own goroutine.
func (l *Loop) Stats() Stats {
	return Stats{
		Ticks:        l.tickCount,
		TasksRun:     l.tasksRun,
		ReadyWakes:   l.wakesReady,
		TimeoutWakes: l.wakesTime,
		ReadyQueued:  l.ready.Count(),
		Waiters:      l.waiters.Count(),
		Timers:       l.timeouts.Len(),
	}
}

// NewLoop constructs a Loop with a freshly created platform Poller and
// default or user-supplied options (§4.1 create).
func NewLoop(opts ...LoopOption) (*Loop, error) {
	cfg := resolveLoopOptions(opts)
	poller, err := NewPoller(cfg.maxEvents)
	if err != nil {
		return nil, Wrap(NoResources, "create poller", err)
	}
	l := &Loop{
		id:       loopIDSeq.next(),
		poller:   poller,
		logger:   cfg.logger,
		ready:    NewTaskQueue(),
		waiters:  NewWaiterRegistry(),
		timeouts: NewTimeoutHeap(),
		running:  &runState{},
		scratch:  make([]ReadyEvent, cfg.maxEvents),
	}
	l.cachedNowMs = NowMs()
	l.running.setRunning(true)
	return l, nil
}

// ID returns the loop's unique, process-local identifier, used only for
// log correlation.
func (l *Loop) ID() uint64 { return l.id }

// Spawn creates a task bound to l and immediately schedules it on the
// ready queue (§4.4 Create + Resume, convenience composition).
func (l *Loop) Spawn(entry func(*Task)) *Task {
	t := NewTask(l, entry)
	l.enqueueReady(t)
	return t
}

// CurrentTask returns the task presently running on this loop, or nil if
// none (the loop is between ticks or itself not running).
func (l *Loop) CurrentTask() *Task { return l.currentTask }

// Run drives tick iterations until Stop is called and the ready queue and
// waiter registry have both drained (§4.5 step 7). It locks the calling
// goroutine to its OS thread for the duration, since the loop's poller,
// timeout heap, and waiter registry are not safe for concurrent access.
func (l *Loop) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		l.tick()
		if !l.running.running() && l.ready.Empty() && l.waiters.Count() == 0 {
			return
		}
	}
}

// Stop requests the loop to exit after its current iteration, once the
// ready queue and waiter registry have drained (§4.5 Stop). Safe to call
// from any goroutine.
func (l *Loop) Stop() {
	l.running.setRunning(false)
	if err := l.poller.Wake(); err != nil {
		l.logger.ErrorThrottled("poller_wake", "failed to wake poller on stop", err, loopFields(l.id, 0, -1)...)
	}
}

// Close releases the loop's platform poller. The loop must not be running.
func (l *Loop) Close() error {
	return l.poller.Close()
}

// tick runs exactly one iteration of §4.5's driver algorithm.
func (l *Loop) tick() {
	l.tickCount++
	l.cachedNowMs = NowMs()

	timeout := l.pollTimeout()
	n, err := l.poller.Wait(timeout, l.scratch)
	if err != nil {
		l.logger.ErrorThrottled("poller_wait", "poller wait failed", err, loopFields(l.id, 0, -1)...)
		n = 0
	}

	for i := 0; i < n; i++ {
		ev := l.scratch[i]
		l.wakeReady(ev.FD, WakeReady)
	}

	l.drainExpiredTimeouts()

	l.drainReadyQueue()
}

// pollTimeout computes §4.5 step 2: 0 if the ready queue is non-empty,
// otherwise the time remaining until the earliest timeout heap deadline,
// clamped to [0, ∞) where ∞ is represented by -1 (indefinite wait).
func (l *Loop) pollTimeout() int {
	if !l.ready.Empty() {
		return 0
	}
	deadline, ok := l.timeouts.NextDeadline()
	if !ok {
		return -1
	}
	remaining := deadline - l.cachedNowMs
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining)
}

// wakeReady is §4.5 step 4/5's shared tail: look up the waiter, remove its
// registry/timeout/poller entries, record the wake reason, and enqueue it.
func (l *Loop) wakeReady(fd int, reason WakeReason) {
	entry, ok := l.waiters.Lookup(fd)
	if !ok {
		return
	}
	l.waiters.Remove(fd)
	l.timeouts.Remove(fd)
	if fd >= 0 {
		if err := l.poller.Remove(fd); err != nil {
			l.logger.ErrorThrottled("poller_remove", "failed to remove fd from poller", err, loopFields(l.id, entry.task.ID, fd)...)
		}
	}
	entry.task.wake = reason
	if reason == WakeTimeout {
		l.wakesTime++
	} else {
		l.wakesReady++
	}
	l.enqueueReady(entry.task)
}

// drainExpiredTimeouts is §4.5 step 5.
func (l *Loop) drainExpiredTimeouts() {
	for {
		fd, deadlineMs, ok := l.timeouts.Peek()
		if !ok || deadlineMs > l.cachedNowMs {
			return
		}
		l.timeouts.Pop()
		l.wakeReady(fd, WakeTimeout)
	}
}

// drainReadyQueue is §4.5 step 6: run every currently-ready task to its
// next yield or completion before returning to the poller.
func (l *Loop) drainReadyQueue() {
	for {
		t, ok := l.ready.Dequeue()
		if !ok {
			return
		}
		l.currentTask = t
		t.status.Store(StatusRunning)
		t.resume()
		l.currentTask = nil
		l.tasksRun++
		if t.Finished() {
			l.logger.Debug("task finished", append(loopFields(l.id, t.ID, -1), F("status", t.Status().String()))...)
		}
	}
}
